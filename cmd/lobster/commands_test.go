package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/engine"
)

func init() {
	color.NoColor = true
}

func TestCommandNamesAreUnique(t *testing.T) {
	seen := make(map[string]string)
	for _, c := range commands() {
		for _, key := range append([]string{c.name}, c.aliases...) {
			prev, dup := seen[key]
			assert.False(t, dup, "%q used by %s and %s", key, prev, c.name)
			seen[key] = c.name
		}
	}
}

func TestResolve(t *testing.T) {
	reg := newRegistry(commands())
	tests := []struct {
		word  string
		want  string
		fuzzy bool
		ok    bool
	}{
		{"buy", "buy", false, true},
		{"  SELL ", "sell", false, true},
		{"q", "quit", false, true},
		{"sleep", "next", false, true},
		{"contrcts", "contracts", true, true},
		{"statsu", "status", true, true},
		{"boy", "buy", true, true},
		{"ext", "", false, false}, // next and exit are equally close
		{"zz", "", false, false},
		{"xyzzy", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			cmd, fuzzy, ok := reg.resolve(tt.word)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.fuzzy, fuzzy)
			assert.Equal(t, tt.want, cmd.name)
		})
	}
}

func TestDistanceLimit(t *testing.T) {
	assert.Equal(t, 1, distanceLimit(3))
	assert.Equal(t, 1, distanceLimit(4))
	assert.Equal(t, 2, distanceLimit(5))
	assert.Equal(t, 2, distanceLimit(8))
	assert.Equal(t, 3, distanceLimit(9))
}

func TestPick(t *testing.T) {
	i, err := pick([]string{"2"}, 3, "boat")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	for _, args := range [][]string{nil, {"0"}, {"4"}, {"two"}} {
		_, err := pick(args, 3, "boat")
		assert.Error(t, err, "%v", args)
	}
}

func TestAmountArgs(t *testing.T) {
	n, err := amountArg([]string{"1", "40"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 40, n)

	n, err = amountArg([]string{"1"}, 1)
	require.NoError(t, err)
	assert.Zero(t, n, "missing amount means all")

	n, err = amountArg([]string{"1", "all"}, 1)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = amountArg([]string{"1", "-5"}, 1)
	assert.Error(t, err)

	v, err := moneyArg([]string{"$250.50"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 250.50, v)

	_, err = moneyArg([]string{"lots"}, 0)
	assert.Error(t, err)
}

func newTestRepl(t *testing.T, script string) (*repl, *bytes.Buffer) {
	t.Helper()
	bal := config.DefaultBalance()
	bal.Events.Enabled = false
	g, err := engine.New(context.Background(), engine.Options{
		Seed:    7,
		Balance: &bal,
		Strict:  true,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	return &repl{in: strings.NewReader(script), out: &out, g: g}, &out
}

func TestReplSession(t *testing.T) {
	r, out := newTestRepl(t, "statsu\nxyzzy\nloan\nforecast\nnext\nquit\nnext\n")
	require.NoError(t, r.loop(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Type 'help' for commands.")
	assert.Contains(t, text, `(taking "statsu" as status)`)
	assert.Contains(t, text, `unknown command "xyzzy"`)
	assert.Contains(t, text, "The bank will lend up to")
	assert.Contains(t, text, "Today: ")
	assert.Contains(t, text, "Day 1 closed")
	assert.Equal(t, 2, r.g.Day(), "input after quit is ignored")
}

func TestReplBadArguments(t *testing.T) {
	r, out := newTestRepl(t, "buy\nsell 99\ntravel atlantis\nupgrade jetpack\nsave\n")
	require.NoError(t, r.loop(context.Background()))

	text := out.String()
	assert.Contains(t, text, "which boat? give its number")
	assert.Contains(t, text, `no buyer "99"`)
	assert.Contains(t, text, `no town "atlantis"`)
	assert.Contains(t, text, `no item "jetpack"`)
	assert.Contains(t, text, "saving is off")
	assert.Equal(t, 5000.0, r.g.Snapshot().Cash)
}

func TestReplHelpListsEveryCommand(t *testing.T) {
	r, out := newTestRepl(t, "help\n")
	require.NoError(t, r.loop(context.Background()))

	for _, name := range r.reg.names() {
		assert.Contains(t, out.String(), name)
	}
}
