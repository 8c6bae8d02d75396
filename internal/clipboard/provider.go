package clipboard

import (
	"errors"
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// ErrEmpty is returned when the clipboard holds no text.
var ErrEmpty = errors.New("clipboard holds no text")

// Clipboard is a text source and sink.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// Backend is the raw clipboard the provider drives.
type Backend interface {
	Init() error
	Read() []byte
	Write(data []byte)
}

// Provider implements Clipboard over a backend, initialising it once.
type Provider struct {
	backend Backend

	once    sync.Once
	initErr error
}

// NewProvider creates a clipboard provider
func NewProvider(backend Backend) *Provider {
	return &Provider{backend: backend}
}

// NewSystem returns a provider for the system clipboard.
func NewSystem() *Provider {
	return NewProvider(systemBackend{})
}

func (p *Provider) init() error {
	p.once.Do(func() {
		if err := p.backend.Init(); err != nil {
			p.initErr = fmt.Errorf("clipboard unavailable: %w", err)
		}
	})
	return p.initErr
}

// Read returns the clipboard's text.
func (p *Provider) Read() (string, error) {
	if err := p.init(); err != nil {
		return "", err
	}
	data := p.backend.Read()
	if len(data) == 0 {
		return "", ErrEmpty
	}
	return string(data), nil
}

// Write replaces the clipboard's text.
func (p *Provider) Write(text string) error {
	if err := p.init(); err != nil {
		return err
	}
	p.backend.Write([]byte(text))
	return nil
}

type systemBackend struct{}

func (systemBackend) Init() error {
	return clipboard.Init()
}

func (systemBackend) Read() []byte {
	return clipboard.Read(clipboard.FmtText)
}

func (systemBackend) Write(data []byte) {
	clipboard.Write(clipboard.FmtText, data)
}
