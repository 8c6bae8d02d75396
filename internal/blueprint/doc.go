// Package blueprint decodes and encodes Factorio blueprint strings.
//
// A blueprint string is a one-character format version ("0") followed by the base64 encoding
// of a zlib-compressed JSON document. The document wraps the blueprint object in an envelope
// keyed by the item kind; only plain blueprints are accepted here.
//
// Key Components:
//   - Decode / Parse: string or JSON to Blueprint
//   - Encode / MarshalJSON: Blueprint back to JSON or string
//   - Entity, Tile: the two collections the tool works with
//
// Fields the tool does not understand, on the blueprint and on each entity, are carried
// through a decode/encode round trip untouched.
//
// Example:
//
//	bp, err := blueprint.Decode(text)
//	bp.Tiles = append(bp.Tiles, blueprint.Tile{Name: "landfill"})
//	out, err := blueprint.Encode(bp)
package blueprint
