package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sheet = `id,round,date,time,home_team,away_team,set1_h,set1_a,set2_h,set2_a,set3_h,set3_a,status
m1,1,2026-10-01,19:00,Harbour Hawks,Riverside Rays,25,20,25,18,,,played
m2,2,2026-10-20,19:00,Riverside Rays,Harbour Hawks,,,,,,,scheduled
m3,3,2026-10-27,19:00,Harbour Hawks,Riverside Rays,,,,,,,scheduled
`

func writeSheet(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matches.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestStandingsCommand(t *testing.T) {
	t.Parallel()

	out, err := run(t, "standings", "--matches", writeSheet(t, sheet))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "Harbour Hawks")
	require.Contains(t, lines[1], "2:0")
	require.Contains(t, lines[2], "Riverside Rays")
}

func TestRoundsCommandMarksCurrentRound(t *testing.T) {
	t.Parallel()

	out, err := run(t, "rounds", "--matches", writeSheet(t, sheet))
	require.NoError(t, err)
	require.Contains(t, out, "Round 3")
	require.Equal(t, 1, strings.Count(out, "*"), out)
}

func TestRoundCommandOffsetWraps(t *testing.T) {
	t.Parallel()

	opts := &options{
		matches:  writeSheet(t, sheet),
		timezone: "UTC",
		timeout:  time.Second,
		now:      func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) },
	}
	svc, err := opts.service()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printRound(t.Context(), &out, svc, 0))
	require.Contains(t, out.String(), "Round 2 (2/3)")
	require.Contains(t, out.String(), "Scheduled")

	out.Reset()
	require.NoError(t, printRound(t.Context(), &out, svc, 2))
	require.Contains(t, out.String(), "Round 1 (1/3)")
	require.Contains(t, out.String(), "2-0")
	require.Contains(t, out.String(), "Final")
}

func TestRoundCommandEmptySheet(t *testing.T) {
	t.Parallel()

	out, err := run(t, "round", "--matches", writeSheet(t, "id,round,date\n"))
	require.NoError(t, err)
	require.Contains(t, out, "No matches scheduled.")
}

func TestCommandsRequireMatchesSource(t *testing.T) {
	t.Parallel()

	_, err := run(t, "standings", "--matches", "")
	require.ErrorContains(t, err, "--matches is required")
}
