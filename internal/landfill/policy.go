package landfill

import (
	"fmt"

	"github.com/GriffinCanCode/landfiller/internal/config"
)

// Action is what happens to the tiles a blueprint already has.
type Action int

const (
	// ActionNone applies when the blueprint has no tiles.
	ActionNone Action = iota
	// ActionMerge keeps existing tiles and fills around them.
	ActionMerge
	// ActionStrip removes existing tiles before filling.
	ActionStrip
)

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionMerge:
		return "merge"
	case ActionStrip:
		return "strip"
	default:
		return "unknown"
	}
}

// ExistingTilesError reports tiles that would be silently overridden.
type ExistingTilesError struct {
	Count int
}

func (e *ExistingTilesError) Error() string {
	return fmt.Sprintf("would override %d tiles: pass --strip to replace them or --merge to keep them", e.Count)
}

// CheckFlags rejects asking for strip and merge at once.
func CheckFlags(strip, merge bool) error {
	if strip && merge {
		return config.ErrStripAndMerge
	}
	return nil
}

// Resolve picks the action for a blueprint holding existing tiles.
func Resolve(existing int, strip, merge bool) (Action, error) {
	if err := CheckFlags(strip, merge); err != nil {
		return ActionNone, err
	}
	switch {
	case strip:
		return ActionStrip, nil
	case merge:
		return ActionMerge, nil
	case existing > 0:
		return ActionNone, &ExistingTilesError{Count: existing}
	default:
		return ActionNone, nil
	}
}
