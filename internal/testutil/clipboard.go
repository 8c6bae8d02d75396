package testutil

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

// MockClipboard is a mock implementation of clipboard.Clipboard for testing.
type MockClipboard struct {
	mock.Mock
}

// Read mocks the Read method.
func (m *MockClipboard) Read() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// Write mocks the Write method.
func (m *MockClipboard) Write(text string) error {
	args := m.Called(text)
	return args.Error(0)
}

// NewMockClipboard creates a mock clipboard holding text. Writes succeed.
func NewMockClipboard(t *testing.T, text string) *MockClipboard {
	t.Helper()
	m := new(MockClipboard)

	m.On("Read").Return(text, nil).Maybe()
	m.On("Write", mock.Anything).Return(nil).Maybe()

	return m
}
