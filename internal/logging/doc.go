// Package logging provides structured logging using uber/zap.
//
// Logs always go to stderr so stdout stays free for the blueprint. Output is a console
// encoding, coloured when stderr is a terminal.
//
// Log Levels:
//   - Debug: per-mod and per-script detail
//   - Info: pipeline stages and the final summary
//   - Warn: skipped mods, entities without a known shape
//   - Error: the error that ended the run
//
// Example Usage:
//
//	logger, err := logging.NewWithWriter(logging.DefaultConfig(), os.Stderr)
//	done := logger.Stage("Generating fill")
//	done(zap.Int("tiles", n))
package logging
