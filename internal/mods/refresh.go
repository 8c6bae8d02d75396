package mods

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/landfiller/internal/logging"
	"github.com/GriffinCanCode/landfiller/internal/paths"
	"github.com/GriffinCanCode/landfiller/internal/prototypes"
)

// Report describes one refresh.
type Report struct {
	// Loaded lists the mods whose scripts ran, in load order.
	Loaded   []string
	Skipped  []Skipped
	Failed   []ScriptError
	Scripts  int
	Tiles    int
	Entities int
}

// Refresh rebuilds registry from the mods in dir.
func Refresh(ctx context.Context, dir string, registry *prototypes.Registry, logger *logging.Logger) (Report, error) {
	var report Report
	dir = paths.ExpandHome(dir)

	found, skipped, err := Discover(ctx, dir)
	if err != nil {
		return report, err
	}
	report.Skipped = append(report.Skipped, skipped...)

	list, err := LoadModList(dir)
	if err != nil {
		return report, fmt.Errorf("failed to read mod list: %w", err)
	}

	enabled, disabled := Enabled(Newest(found), list)
	report.Skipped = append(report.Skipped, disabled...)

	active, unmet := Resolve(enabled)
	report.Skipped = append(report.Skipped, unmet...)

	ordered, err := Order(active)
	if err != nil {
		return report, err
	}

	for _, s := range report.Skipped {
		logger.Warn("skipping mod", zap.String("mod", s.Name), zap.String("reason", s.Reason))
	}

	v, err := newVM(ctx, logger)
	if err != nil {
		return report, fmt.Errorf("failed to start lua: %w", err)
	}
	defer v.Close()

	loadable := make([]*Mod, 0, len(ordered))
	for _, m := range ordered {
		src, err := m.open()
		if err != nil {
			logger.Warn("skipping mod", zap.String("mod", m.Name), zap.Error(err))
			report.Skipped = append(report.Skipped, Skipped{Name: m.Name, Reason: err.Error()})
			continue
		}
		v.attach(m, src)
		loadable = append(loadable, m)
		report.Loaded = append(report.Loaded, m.Name)
		logger.Debug("loading mod", zap.String("mod", m.Name), zap.Stringer("version", m.Version))
	}
	v.setMods(loadable)
	v.setDirections(directionsFor(loadable))

	if err := v.runStages(ctx, loadable, settingsStage, &report); err != nil {
		return report, err
	}
	if err := v.collectSettings(); err != nil {
		return report, fmt.Errorf("failed to collect settings: %w", err)
	}

	v.seed(registry)
	if err := v.runStages(ctx, loadable, dataStage, &report); err != nil {
		return report, err
	}

	tiles, entities := harvest(v.raw())
	registry.Replace(tiles, entities)
	report.Tiles, report.Entities = len(tiles), len(entities)
	return report, nil
}

func (v *vm) runStages(ctx context.Context, ordered []*Mod, files []string, report *Report) error {
	for _, file := range files {
		ran, failed, err := v.runStage(ctx, ordered, file)
		report.Scripts += ran
		report.Failed = append(report.Failed, failed...)
		if err != nil {
			return err
		}
	}
	return nil
}
