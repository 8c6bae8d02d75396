package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/landfiller/internal/blueprint"
	"github.com/GriffinCanCode/landfiller/internal/config"
	"github.com/GriffinCanCode/landfiller/internal/landfill"
	"github.com/GriffinCanCode/landfiller/internal/logging"
	"github.com/GriffinCanCode/landfiller/internal/mods"
	"github.com/GriffinCanCode/landfiller/internal/prototypes"
	"github.com/GriffinCanCode/landfiller/internal/testutil"
)

// refusingReader fails the test if the pipeline reads input.
type refusingReader struct {
	t *testing.T
}

func (r refusingReader) Read([]byte) (int, error) {
	r.t.Error("input was read")
	return 0, io.EOF
}

type harness struct {
	stdin     io.Reader
	stdout    bytes.Buffer
	stderr    bytes.Buffer
	clipboard *testutil.MockClipboard
	loads     int
	loader    ModLoader
}

func newHarness(t *testing.T, input string) *harness {
	h := &harness{
		stdin:     bytes.NewBufferString(input),
		clipboard: testutil.NewMockClipboard(t, ""),
	}
	h.loader = func(context.Context, string, *prototypes.Registry, *logging.Logger) (mods.Report, error) {
		h.loads++
		return mods.Report{}, nil
	}
	return h
}

func (h *harness) load(ctx context.Context, dir string, reg *prototypes.Registry, l *logging.Logger) (mods.Report, error) {
	return h.loader(ctx, dir, reg, l)
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	logger, err := logging.NewWithWriter(logging.Config{Level: "debug"}, &h.stderr)
	require.NoError(t, err)

	cmd := NewRootCommand(Options{
		Stdin:     h.stdin,
		Stdout:    &h.stdout,
		Stderr:    &h.stderr,
		Clipboard: h.clipboard,
		LoadMods:  h.load,
		Logger:    logger,
	})
	cmd.SetArgs(append([]string{"--ignore-mods"}, args...))
	return cmd.ExecuteContext(context.Background())
}

func chestBlueprint(t *testing.T, tiles ...blueprint.Tile) string {
	t.Helper()
	return testutil.EncodeBlueprint(t, testutil.Blueprint(
		[]blueprint.Entity{testutil.Entity(1, "wooden-chest", 0.5, 0.5)},
		tiles...,
	))
}

func TestRunStdinToStdout(t *testing.T) {
	h := newHarness(t, chestBlueprint(t))

	require.NoError(t, h.run(t))

	bp := testutil.DecodeBlueprint(t, h.stdout.String())
	assert.Equal(t, []blueprint.Tile{blueprint.NewTile("landfill", 0, 0)}, bp.Tiles)
	assert.Len(t, bp.Entities, 1)
	assert.Contains(t, h.stderr.String(), "Added landfill")
	h.clipboard.AssertNotCalled(t, "Write", mock.Anything)
}

func TestRunNoTilesNeverAborts(t *testing.T) {
	h := newHarness(t, testutil.EncodeBlueprint(t, testutil.Blueprint(nil)))

	require.NoError(t, h.run(t))

	bp := testutil.DecodeBlueprint(t, h.stdout.String())
	assert.Empty(t, bp.Tiles)
}

func TestRunExistingTilesAbort(t *testing.T) {
	h := newHarness(t, chestBlueprint(t, blueprint.NewTile("stone-path", 5, 5)))

	err := h.run(t)

	var existing *landfill.ExistingTilesError
	require.ErrorAs(t, err, &existing)
	assert.Equal(t, 1, existing.Count)
	assert.Equal(t, ExitFailed, ExitCode(err))
	assert.Empty(t, h.stdout.String())
}

func TestRunStripAndMergeBeforeInput(t *testing.T) {
	h := newHarness(t, "")
	h.stdin = refusingReader{t: t}

	err := h.run(t, "--strip", "--merge")

	assert.ErrorIs(t, err, config.ErrStripAndMerge)
	assert.Equal(t, ExitConfig, ExitCode(err))
	assert.Empty(t, h.stdout.String())
	h.clipboard.AssertNotCalled(t, "Read")
}

func TestRunStripAndMerge(t *testing.T) {
	existing := []blueprint.Tile{blueprint.NewTile("stone-path", 0, 0), blueprint.NewTile("stone-path", 9, 9)}

	t.Run("strip", func(t *testing.T) {
		h := newHarness(t, chestBlueprint(t, existing...))
		require.NoError(t, h.run(t, "--strip"))

		bp := testutil.DecodeBlueprint(t, h.stdout.String())
		assert.Equal(t, []blueprint.Tile{blueprint.NewTile("landfill", 0, 0)}, bp.Tiles)
	})

	t.Run("merge", func(t *testing.T) {
		h := newHarness(t, chestBlueprint(t, existing...))
		require.NoError(t, h.run(t, "--merge"))

		bp := testutil.DecodeBlueprint(t, h.stdout.String())
		assert.Equal(t, existing, bp.Tiles)
	})
}

func TestRunMergeIsIdempotent(t *testing.T) {
	first := newHarness(t, chestBlueprint(t))
	require.NoError(t, first.run(t))

	second := newHarness(t, first.stdout.String())
	require.NoError(t, second.run(t, "--merge"))

	a := testutil.DecodeBlueprint(t, first.stdout.String())
	b := testutil.DecodeBlueprint(t, second.stdout.String())
	assert.Equal(t, a.Tiles, b.Tiles)
}

func TestRunUnknownKind(t *testing.T) {
	h := newHarness(t, chestBlueprint(t))

	err := h.run(t, "--landfill", "lava")

	require.ErrorIs(t, err, landfill.ErrUnknownTile)
	assert.Equal(t, ExitConfig, ExitCode(err))
	assert.Contains(t, err.Error(), "landfill")
	assert.Contains(t, err.Error(), "water")
	assert.Empty(t, h.stdout.String())
}

func TestRunOtherKind(t *testing.T) {
	h := newHarness(t, chestBlueprint(t))

	require.NoError(t, h.run(t, "--landfill", "refined-concrete"))

	bp := testutil.DecodeBlueprint(t, h.stdout.String())
	require.Len(t, bp.Tiles, 1)
	assert.Equal(t, "refined-concrete", bp.Tiles[0].Name)
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte(chestBlueprint(t)+"\n"), 0o644))

	h := newHarness(t, "")
	h.stdin = refusingReader{t: t}
	require.NoError(t, h.run(t, "-i", in, "-o", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	bp := testutil.DecodeBlueprint(t, string(data))
	assert.Len(t, bp.Tiles, 1)
	assert.Empty(t, h.stdout.String())
}

func TestRunFailureLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte(chestBlueprint(t, blueprint.NewTile("stone-path", 0, 0))), 0o644))

	h := newHarness(t, "")
	err := h.run(t, "--input", in, "--output", out)
	require.Error(t, err)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunMissingInputFile(t *testing.T) {
	h := newHarness(t, "")

	err := h.run(t, "-i", filepath.Join(t.TempDir(), "missing.txt"))

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, ExitFailed, ExitCode(err))
}

func TestRunBadBlueprint(t *testing.T) {
	h := newHarness(t, "1notablueprint")

	err := h.run(t)

	assert.ErrorIs(t, err, blueprint.ErrVersion)
	assert.Equal(t, ExitFailed, ExitCode(err))
}

func TestRunClipboard(t *testing.T) {
	h := newHarness(t, "")
	h.stdin = refusingReader{t: t}
	h.clipboard = new(testutil.MockClipboard)
	h.clipboard.On("Read").Return(chestBlueprint(t), nil).Once()

	var written string
	h.clipboard.On("Write", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { written = args.String(0) }).
		Return(nil).Once()

	require.NoError(t, h.run(t, "--clip-in", "--clip-out"))

	h.clipboard.AssertExpectations(t)
	assert.Empty(t, h.stdout.String())
	bp := testutil.DecodeBlueprint(t, written)
	assert.Len(t, bp.Tiles, 1)
}

func TestRunClipboardErrors(t *testing.T) {
	h := newHarness(t, chestBlueprint(t))
	h.clipboard = new(testutil.MockClipboard)
	h.clipboard.On("Write", mock.Anything).Return(errors.New("no display"))

	err := h.run(t, "--clip-out")
	assert.ErrorContains(t, err, "no display")
	assert.Equal(t, ExitFailed, ExitCode(err))
}

func TestRunLoadsModsBeforeKindCheck(t *testing.T) {
	modsDir := t.TempDir()
	h := newHarness(t, chestBlueprint(t))
	h.loader = func(_ context.Context, dir string, reg *prototypes.Registry, _ *logging.Logger) (mods.Report, error) {
		h.loads++
		assert.Equal(t, modsDir, dir)
		reg.Replace(append(reg.Tiles(), prototypes.TilePrototype{Name: "modded-fill"}), reg.Entities())
		return mods.Report{Loaded: []string{"modded"}}, nil
	}

	logger := logging.NewNop()
	cmd := NewRootCommand(Options{
		Stdin:     h.stdin,
		Stdout:    &h.stdout,
		Clipboard: h.clipboard,
		LoadMods:  h.loader,
		Logger:    logger,
	})
	cmd.SetArgs([]string{"--modpath", modsDir, "--landfill", "modded-fill"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, 1, h.loads)
	bp := testutil.DecodeBlueprint(t, h.stdout.String())
	require.Len(t, bp.Tiles, 1)
	assert.Equal(t, "modded-fill", bp.Tiles[0].Name)
}

func TestRunIgnoreMods(t *testing.T) {
	h := newHarness(t, chestBlueprint(t))

	require.NoError(t, h.run(t, "--modpath", t.TempDir()))
	assert.Zero(t, h.loads)
}

func TestRunModLoadFailure(t *testing.T) {
	h := newHarness(t, chestBlueprint(t))
	h.loader = func(context.Context, string, *prototypes.Registry, *logging.Logger) (mods.Report, error) {
		return mods.Report{}, fmt.Errorf("scan: %w", mods.ErrDependencyCycle)
	}

	cmd := NewRootCommand(Options{
		Stdin:    h.stdin,
		Stdout:   &h.stdout,
		LoadMods: h.loader,
		Logger:   logging.NewNop(),
	})
	cmd.SetArgs([]string{"--modpath", t.TempDir()})

	err := cmd.Execute()
	assert.ErrorIs(t, err, mods.ErrDependencyCycle)
	assert.Equal(t, ExitFailed, ExitCode(err))
	assert.Empty(t, h.stdout.String())
}

func TestRunBadModpath(t *testing.T) {
	h := newHarness(t, chestBlueprint(t))
	cmd := NewRootCommand(Options{
		Stdin:    refusingReader{t: t},
		Stdout:   &h.stdout,
		LoadMods: h.loader,
		Logger:   logging.NewNop(),
	})
	cmd.SetArgs([]string{"--modpath", filepath.Join(t.TempDir(), "nope")})

	err := cmd.Execute()
	assert.ErrorIs(t, err, config.ErrModpath)
	assert.Equal(t, ExitConfig, ExitCode(err))
}

func TestRunEnvironment(t *testing.T) {
	t.Setenv("LANDFILLER_MERGE", "true")
	t.Setenv("LANDFILLER_LANDFILL", "stone-path")
	h := newHarness(t, chestBlueprint(t, blueprint.NewTile("stone-path", 3, 3)))

	require.NoError(t, h.run(t))

	bp := testutil.DecodeBlueprint(t, h.stdout.String())
	assert.Equal(t, [][2]int{{3, 3}, {0, 0}}, testutil.Cells(bp.Tiles))
}

func TestRunUnknownEntityWarns(t *testing.T) {
	bp := testutil.Blueprint([]blueprint.Entity{
		testutil.Entity(1, "alien-artifact", 0.5, 0.5),
		testutil.Entity(2, "alien-artifact", 2.5, 0.5),
	})
	h := newHarness(t, testutil.EncodeBlueprint(t, bp))

	require.NoError(t, h.run(t))
	assert.Contains(t, h.stderr.String(), "alien-artifact")
	assert.Contains(t, h.stderr.String(), `"count": 2`)
}

func TestRunSpaceAgeBlueprint(t *testing.T) {
	rail := testutil.Entity(2, "curved-rail-a", 10, 10)
	rail.Direction = 4
	bp := blueprint.New(blueprint.GameVersion(2, 0, 28))
	bp.Entities = []blueprint.Entity{
		testutil.Entity(1, "foundry", 0.5, 0.5),
		rail,
		testutil.Entity(3, "turbo-transport-belt", 20.5, 0.5),
	}
	h := newHarness(t, testutil.EncodeBlueprint(t, bp))

	require.NoError(t, h.run(t))

	out := testutil.DecodeBlueprint(t, h.stdout.String())
	assert.Len(t, out.Tiles, 25+12+1)
	assert.NotContains(t, h.stderr.String(), "No collision shape")
}

func TestRunBadFlag(t *testing.T) {
	h := newHarness(t, "")

	err := h.run(t, "--margin", "wide")
	assert.ErrorIs(t, err, config.ErrInvalid)
	assert.Equal(t, ExitConfig, ExitCode(err))
}

func TestRunRejectsArgs(t *testing.T) {
	h := newHarness(t, "")
	assert.Error(t, h.run(t, "extra"))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"strip and merge", config.ErrStripAndMerge, ExitConfig},
		{"modpath", fmt.Errorf("x: %w", config.ErrModpath), ExitConfig},
		{"unknown tile", fmt.Errorf("%w %q", landfill.ErrUnknownTile, "lava"), ExitConfig},
		{"existing tiles", &landfill.ExistingTilesError{Count: 2}, ExitFailed},
		{"codec", blueprint.ErrNotBlueprint, ExitFailed},
		{"io", os.ErrPermission, ExitFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
