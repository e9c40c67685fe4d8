package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/iconfont/internal/config"
	"github.com/roach88/iconfont/internal/fontgen"
	"github.com/roach88/iconfont/internal/stylesheet"
	"github.com/roach88/iconfont/internal/testutil"
)

var start = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// harness wires the root command to fake compilers.
type harness struct {
	fonts    *testutil.FakeFontCompiler
	styles   *testutil.FakeStylesheetCompiler
	settings config.Settings
	id       string
}

func newHarness() *harness {
	return &harness{
		fonts:    &testutil.FakeFontCompiler{},
		styles:   &testutil.FakeStylesheetCompiler{},
		settings: config.Settings{FontHeight: 512, CompileTimeout: time.Minute},
		id:       "build-1",
	}
}

func (h *harness) toolchain() Toolchain {
	return Toolchain{
		Settings: func() (config.Settings, error) { return h.settings, nil },
		Fonts: func(config.Settings) fontgen.Compiler {
			return h.fonts
		},
		Styles: func(config.Settings) stylesheet.Compiler {
			return h.styles
		},
		VerifyFonts: func(fontgen.Result, []rune) error { return nil },
		Now:         testutil.NewDeterministicClock(start, time.Second).Now,
		NewID:       testutil.NewFixedIDGenerator(h.id).Generate,
	}
}

// execute runs the root command and returns stdout and stderr.
func (h *harness) execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommandWithToolchain(h.toolchain())
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "iconfont", cmd.Use)
	assert.Contains(t, cmd.Long, "u<codepoint>-<name>.svg")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"build", "validate", "history"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"verbose", "v", "false"},
		{"format", "", "text"},
		{"dir", "", "./"},
		{"meta", "", ""},
		{"font", "", ""},
		{"svg", "", ""},
		{"dist", "", ""},
		{"mode", "", "webfont"},
		{"fontSvg", "", "false"},
		{"history", "", ""},
		{"no-history", "", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	limitFlag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "n", limitFlag.Shorthand)
	assert.Equal(t, "20", limitFlag.DefValue)
	assert.NotNil(t, historyCmd.Flags().Lookup("allocations"))
}

func TestInvalidFormat(t *testing.T) {
	h := newHarness()
	_, stderr, err := h.execute(t, "build", "--format", "xml", "--dir", t.TempDir())

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "Error [E002]")
	assert.Contains(t, stderr, `invalid format "xml"`)
}

func TestUnknownFlag(t *testing.T) {
	h := newHarness()
	_, stderr, err := h.execute(t, "build", "--colour")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "unknown flag")
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}
