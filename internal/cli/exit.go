package cli

import (
	"errors"

	"github.com/GriffinCanCode/landfiller/internal/config"
	"github.com/GriffinCanCode/landfiller/internal/landfill"
)

// Exit statuses
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitConfig = 2
)

// ExitCode maps a run's error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, config.ErrInvalid), errors.Is(err, landfill.ErrUnknownTile):
		return ExitConfig
	default:
		return ExitFailed
	}
}
