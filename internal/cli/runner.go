package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/landfiller/internal/blueprint"
	"github.com/GriffinCanCode/landfiller/internal/clipboard"
	"github.com/GriffinCanCode/landfiller/internal/config"
	"github.com/GriffinCanCode/landfiller/internal/landfill"
	"github.com/GriffinCanCode/landfiller/internal/logging"
	"github.com/GriffinCanCode/landfiller/internal/mods"
	"github.com/GriffinCanCode/landfiller/internal/paths"
	"github.com/GriffinCanCode/landfiller/internal/prototypes"
)

// ModLoader rebuilds a registry from a mods folder.
type ModLoader func(ctx context.Context, dir string, registry *prototypes.Registry, logger *logging.Logger) (mods.Report, error)

// Runner runs the landfill pipeline for one invocation.
type Runner struct {
	Stdin     io.Reader
	Stdout    io.Writer
	Clipboard clipboard.Clipboard
	Registry  *prototypes.Registry
	LoadMods  ModLoader
	Logger    *logging.Logger
}

// Run executes the pipeline with cfg.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	text, err := r.read(cfg)
	if err != nil {
		return err
	}

	if cfg.UseMods() {
		if err := r.refresh(ctx, cfg.Modpath); err != nil {
			return err
		}
	}

	if err := landfill.ValidateKind(r.Registry, cfg.Landfill); err != nil {
		return err
	}

	bp, err := blueprint.Decode(text)
	if err != nil {
		return fmt.Errorf("failed to decode blueprint: %w", err)
	}

	existing := len(bp.Tiles)
	action, err := landfill.Resolve(existing, cfg.Strip, cfg.Merge)
	if err != nil {
		return err
	}

	done := r.Logger.Stage("Generating fill")
	stats := landfill.Apply(bp, r.Registry.Shapes(bp.Directions()), cfg.Landfill, action, cfg.Margin)
	done(zap.Int("entities", stats.Entities), zap.Int("tiles", stats.Generated))
	r.warnUnknown(stats.Unknown)

	done = r.Logger.Stage("Generating blueprint")
	out, err := blueprint.Encode(bp)
	if err != nil {
		return fmt.Errorf("failed to encode blueprint: %w", err)
	}
	done(zap.Int("bytes", len(out)))

	if err := r.write(cfg, out); err != nil {
		return err
	}

	r.Logger.Info("Added landfill",
		zap.String("blueprint", bp.Label()),
		zap.String("kind", cfg.Landfill),
		zap.Int("tiles", stats.Generated),
		zap.Int("entities", stats.Entities),
		zap.Int("existing", existing),
		zap.Stringer("action", action))
	return nil
}

func (r *Runner) read(cfg *config.Config) (string, error) {
	if cfg.ClipIn {
		text, err := r.Clipboard.Read()
		if err != nil {
			return "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		return text, nil
	}

	if isStdio(cfg.Blueprint) {
		data, err := io.ReadAll(r.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(paths.ExpandHome(cfg.Blueprint))
	if err != nil {
		return "", fmt.Errorf("failed to read blueprint: %w", err)
	}
	return string(data), nil
}

func (r *Runner) refresh(ctx context.Context, dir string) error {
	done := r.Logger.Stage("Loading mods")
	report, err := r.LoadMods(ctx, dir, r.Registry, r.Logger)
	if err != nil {
		return fmt.Errorf("failed to load mods from %s: %w", dir, err)
	}
	done(
		zap.Strings("mods", report.Loaded),
		zap.Int("scripts", report.Scripts),
		zap.Int("failed", len(report.Failed)),
		zap.Int("tiles", report.Tiles),
		zap.Int("entities", report.Entities))
	return nil
}

func (r *Runner) write(cfg *config.Config, out string) error {
	if cfg.ClipOut {
		if err := r.Clipboard.Write(out); err != nil {
			return fmt.Errorf("failed to write clipboard: %w", err)
		}
		return nil
	}

	if isStdio(cfg.Output) {
		if _, err := io.WriteString(r.Stdout, out); err != nil {
			return fmt.Errorf("failed to write stdout: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(paths.ExpandHome(cfg.Output), []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write blueprint: %w", err)
	}
	return nil
}

// warnUnknown logs each entity name without a known prototype once.
func (r *Runner) warnUnknown(names []string) {
	if len(names) == 0 {
		return
	}
	counts := make(map[string]int)
	for _, n := range names {
		counts[n]++
	}
	unique := make([]string, 0, len(counts))
	for n := range counts {
		unique = append(unique, n)
	}
	sort.Strings(unique)

	for _, n := range unique {
		r.Logger.Warn("No collision shape for entity, skipping",
			zap.String("entity", n),
			zap.Int("count", counts[n]))
	}
}

func isStdio(path string) bool {
	return path == "" || path == "-"
}
