package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/landfiller/internal/clipboard"
	"github.com/GriffinCanCode/landfiller/internal/config"
	"github.com/GriffinCanCode/landfiller/internal/logging"
	"github.com/GriffinCanCode/landfiller/internal/mods"
	"github.com/GriffinCanCode/landfiller/internal/prototypes"
)

const longHelp = `Add landfill under a factorio blueprint.

Defaults to consuming from stdin and outputting to stdout.

Note: all options can be given by environment variable using the LANDFILLER_ prefix,
for example LANDFILLER_CLIP_IN=true or LANDFILLER_LANDFILL=refined-concrete.`

const examples = `  landfiller < factory.txt > factory-landfilled.txt
  landfiller --clip-in --clip-out
  landfiller -i factory.txt --merge --landfill refined-concrete`

// Options wires the command to its environment. Zero fields get system defaults.
type Options struct {
	Version   string
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	Clipboard clipboard.Clipboard
	Registry  *prototypes.Registry
	LoadMods  ModLoader
	Logger    *logging.Logger
}

// NewRootCommand creates the landfiller command.
func NewRootCommand(opts Options) *cobra.Command {
	opts = withDefaults(opts)

	cmd := &cobra.Command{
		Use:           "landfiller",
		Short:         "Add landfill under a factorio blueprint",
		Long:          longHelp,
		Example:       examples,
		Version:       opts.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			logger := opts.Logger
			if logger == nil {
				logger, err = newLogger(cfg.LogLevel, opts.Stderr)
				if err != nil {
					return fmt.Errorf("%w: log level %q", config.ErrInvalid, cfg.LogLevel)
				}
				defer logger.Sync()
			}

			registry := opts.Registry
			if registry == nil {
				if registry, err = prototypes.Vanilla(); err != nil {
					return err
				}
			}

			runner := &Runner{
				Stdin:     opts.Stdin,
				Stdout:    opts.Stdout,
				Clipboard: opts.Clipboard,
				Registry:  registry,
				LoadMods:  opts.LoadMods,
				Logger:    logger,
			}
			return runner.Run(cmd.Context(), cfg)
		},
	}

	cmd.SetIn(opts.Stdin)
	cmd.SetOut(opts.Stdout)
	cmd.SetErr(opts.Stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", config.ErrInvalid, err)
	})
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func withDefaults(opts Options) Options {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.NewSystem()
	}
	if opts.LoadMods == nil {
		opts.LoadMods = mods.Refresh
	}
	return opts
}

func newLogger(level string, w io.Writer) (*logging.Logger, error) {
	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Color = false
	if f, ok := w.(*os.File); ok {
		cfg.Color = logging.IsTerminal(f)
	}
	return logging.NewWithWriter(cfg, w)
}
