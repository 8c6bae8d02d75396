package blueprint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/base64x"
	"github.com/klauspost/compress/zlib"
)

// formatVersion is the leading byte of every supported blueprint string.
const formatVersion = '0'

// itemKind is the envelope key and "item" value of a plain blueprint.
const itemKind = "blueprint"

var (
	ErrEmpty        = errors.New("empty blueprint string")
	ErrVersion      = errors.New("unsupported blueprint string version")
	ErrNotBlueprint = errors.New("not a blueprint")
)

// Blueprint is a decoded blueprint object.
type Blueprint struct {
	Entities []Entity
	Tiles    []Tile
	// Version is the packed game version (major<<48 | minor<<32 | patch<<16 | build).
	Version uint64

	fields map[string]json.RawMessage
}

// New creates an empty blueprint for the given packed game version.
func New(version uint64) *Blueprint {
	return &Blueprint{Version: version, fields: map[string]json.RawMessage{}}
}

// GameVersion packs a game version the way blueprints store it.
func GameVersion(major, minor, patch uint16) uint64 {
	return uint64(major)<<48 | uint64(minor)<<32 | uint64(patch)<<16
}

// Decode parses a blueprint string.
func Decode(text string) (*Blueprint, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmpty
	}
	if text[0] != formatVersion {
		return nil, fmt.Errorf("%w: %q", ErrVersion, text[0])
	}

	compressed, err := base64x.StdEncoding.DecodeString(text[1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to open zlib stream: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}

	return Parse(data)
}

// Parse reads the JSON document inside a blueprint string.
func Parse(data []byte) (*Blueprint, error) {
	var envelope map[string]json.RawMessage
	if err := sonic.ConfigStd.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	body, ok := envelope[itemKind]
	if !ok {
		kinds := make([]string, 0, len(envelope))
		for k := range envelope {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		return nil, fmt.Errorf("%w: found %s", ErrNotBlueprint, strings.Join(kinds, ", "))
	}

	var fields map[string]json.RawMessage
	if err := sonic.ConfigStd.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse blueprint: %w", err)
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}

	bp := &Blueprint{fields: fields}
	if raw, ok := fields["entities"]; ok {
		if err := sonic.ConfigStd.Unmarshal(raw, &bp.Entities); err != nil {
			return nil, fmt.Errorf("failed to parse entities: %w", err)
		}
		delete(fields, "entities")
	}
	if raw, ok := fields["tiles"]; ok {
		if err := sonic.ConfigStd.Unmarshal(raw, &bp.Tiles); err != nil {
			return nil, fmt.Errorf("failed to parse tiles: %w", err)
		}
		delete(fields, "tiles")
	}
	if raw, ok := fields["version"]; ok {
		if err := sonic.ConfigStd.Unmarshal(raw, &bp.Version); err != nil {
			return nil, fmt.Errorf("failed to parse version: %w", err)
		}
		delete(fields, "version")
	}

	return bp, nil
}

// MarshalJSON writes the blueprint wrapped in its envelope. Keys are sorted.
func (bp *Blueprint) MarshalJSON() ([]byte, error) {
	body := make(map[string]interface{}, len(bp.fields)+4)
	for k, v := range bp.fields {
		body[k] = v
	}
	if _, ok := body["item"]; !ok {
		body["item"] = itemKind
	}
	if len(bp.Entities) > 0 {
		body["entities"] = bp.Entities
	}
	if len(bp.Tiles) > 0 {
		body["tiles"] = bp.Tiles
	}
	if bp.Version != 0 {
		body["version"] = bp.Version
	}
	return sonic.ConfigStd.Marshal(map[string]interface{}{itemKind: body})
}

// Encode serialises a blueprint to its string form.
func Encode(bp *Blueprint) (string, error) {
	data, err := bp.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON: %w", err)
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write(data); err != nil {
		return "", fmt.Errorf("failed to compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to compress: %w", err)
	}

	return string(formatVersion) + base64x.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Major returns the game's major version, 0 when the blueprint carries none.
func (bp *Blueprint) Major() int {
	return int(bp.Version >> 48)
}

// Directions returns how many directions a full turn is split into: 8 before 2.0, 16 after.
// Mod scripts get the numbering of the game version the mods target, see mods.Mod.Directions.
func (bp *Blueprint) Directions() int {
	if bp.Major() >= 2 {
		return 16
	}
	return 8
}

// Label returns the blueprint's label, if any.
func (bp *Blueprint) Label() string {
	raw, ok := bp.fields["label"]
	if !ok {
		return ""
	}
	var label string
	if err := sonic.ConfigStd.Unmarshal(raw, &label); err != nil {
		return ""
	}
	return label
}
