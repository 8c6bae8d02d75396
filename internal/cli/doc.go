// Package cli implements the landfiller command and the pipeline behind it.
//
// A run goes through these steps, stopping at the first error:
//
//	validate options → read input → refresh mods → check tile kind
//	→ decode → resolve existing tiles → generate fill → encode → write output
//
// Nothing is written until the encoded blueprint is ready, so a failed run leaves the
// output file or clipboard untouched.
//
// Exit codes:
//   - 0: success
//   - 1: any runtime failure (bad blueprint, existing tiles, I/O)
//   - 2: bad configuration (conflicting flags, unknown tile kind, bad mods folder)
package cli
