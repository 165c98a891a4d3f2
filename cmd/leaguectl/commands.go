package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/riskibarqy/volley-league/internal/domain/standing"
	"github.com/riskibarqy/volley-league/internal/infrastructure/source/csvsource"
	"github.com/riskibarqy/volley-league/internal/platform/logging"
	"github.com/riskibarqy/volley-league/internal/usecase"
	"github.com/spf13/cobra"
)

type options struct {
	matches  string
	teams    string
	timezone string
	timeout  time.Duration
	verbose  bool
	now      func() time.Time
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "leaguectl",
		Short: "Inspect a volleyball league schedule sheet",
		Long: `leaguectl reads a match sheet (and an optional team roster) from a
local CSV file or an http(s) URL and prints the league table or the
round-by-round fixture list.`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.matches, "matches", os.Getenv("MATCHES_SOURCE"), "match sheet path or URL")
	flags.StringVar(&opts.teams, "teams", os.Getenv("TEAMS_SOURCE"), "optional roster sheet path or URL")
	flags.StringVar(&opts.timezone, "timezone", "UTC", "IANA timezone used to find the current round")
	flags.DurationVar(&opts.timeout, "timeout", 15*time.Second, "source download timeout")
	flags.BoolVar(&opts.verbose, "verbose", false, "log normalization issues to stderr")

	root.AddCommand(
		newStandingsCmd(opts),
		newRoundsCmd(opts),
		newRoundCmd(opts),
	)
	return root
}

func (o *options) service() (*usecase.LeagueService, error) {
	if strings.TrimSpace(o.matches) == "" {
		return nil, fmt.Errorf("--matches is required")
	}
	location, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid --timezone: %w", err)
	}

	logger := logging.NewNop()
	if o.verbose {
		logger = logging.NewJSONWriter(logging.LevelDebug, os.Stderr)
	}

	source := csvsource.New(csvsource.Config{
		MatchesLocation: o.matches,
		TeamsLocation:   o.teams,
		Timeout:         o.timeout,
		MaxRetries:      1,
		Logger:          logger,
	})
	return usecase.NewLeagueService(usecase.LeagueServiceConfig{
		Source:   source,
		Logger:   logger,
		Location: location,
		Now:      o.now,
	}), nil
}

func newStandingsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "standings",
		Short: "Print the ranked league table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			table, err := svc.Standings(cmd.Context())
			if err != nil {
				return err
			}
			return printStandings(cmd.OutOrStdout(), table)
		},
	}
}

func newRoundsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rounds",
		Short: "List every round with its match count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			groups, err := svc.Rounds(cmd.Context())
			if err != nil {
				return err
			}
			current, err := svc.CurrentCursor(cmd.Context())
			if errors.Is(err, usecase.ErrEmptySchedule) {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No matches scheduled.")
				return err
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CURSOR\tROUND\tMATCHES\tFIRST DATE\t")
			for i, g := range groups {
				marker := ""
				if i == current {
					marker = "*"
				}
				first := "TBD"
				if len(g.Matches) > 0 && g.Matches[0].Date != "" {
					first = g.Matches[0].Date
				}
				fmt.Fprintf(w, "%d%s\t%s\t%d\t%s\t\n", i, marker, g.Label(), len(g.Matches), first)
			}
			return w.Flush()
		},
	}
}

func newRoundCmd(opts *options) *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "round",
		Short: "Print the fixtures of the current round, or one --offset rounds away",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			return printRound(cmd.Context(), cmd.OutOrStdout(), svc, offset)
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "rounds to move from the current round, wrapping around")
	return cmd
}

func printRound(ctx context.Context, out io.Writer, svc *usecase.LeagueService, offset int) error {
	current, err := svc.CurrentRoundView(ctx)
	if errors.Is(err, usecase.ErrEmptySchedule) {
		_, err := fmt.Fprintln(out, "No matches scheduled.")
		return err
	}
	if err != nil {
		return err
	}

	view, err := svc.RoundView(ctx, usecase.AdvanceCursor(current.Cursor, offset, current.Total))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s (%d/%d)\n", view.Label, view.Cursor+1, view.Total)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tHOME\tAWAY\tSETS\tSTATUS\t")
	for _, item := range view.Matches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d-%d\t%s\t\n",
			item.Display.WhenText,
			item.Match.HomeTeam,
			item.Match.AwayTeam,
			item.Display.SetsWonHome,
			item.Display.SetsWonAway,
			item.Display.StatusLabel,
		)
	}
	return w.Flush()
}

func printStandings(out io.Writer, table []standing.Standing) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tTEAM\tP\tW\tL\tPTS\tSETS\tSR\tPR\t")
	for _, row := range table {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%d\t%d:%d\t%s\t%s\t\n",
			row.Position,
			row.Team,
			row.Played,
			row.Won,
			row.Lost,
			row.Points,
			row.SetsWon,
			row.SetsLost,
			formatRatio(row.SetRatio),
			formatRatio(row.PointsRatio),
		)
	}
	return w.Flush()
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
