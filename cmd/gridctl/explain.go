package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type explanation struct {
	SessionID string   `json:"session_id"`
	Timetable string   `json:"timetable_id"`
	Day       string   `json:"day"`
	Periods   []string `json:"periods"`
	Subgroups []string `json:"subgroups"`
	Matched   bool     `json:"matched"`
	Rule      string   `json:"rule"`
}

func newExplainCmd(root *rootOptions) *cobra.Command {
	var (
		snapshotPath string
		sessionID    string
		who          viewerFlags
	)
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show which eligibility rule decides an activity for a viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(snapshotPath)
			if err != nil {
				return err
			}
			viewer, err := who.viewer(root.defaultSpecialization)
			if err != nil {
				return err
			}
			if viewer == nil {
				return fmt.Errorf("explain needs --year-group or --faculty")
			}

			matcher := root.projectionOptions().Matcher
			var results []explanation
			for _, a := range snap.Assignments() {
				if a.SessionID != sessionID {
					continue
				}
				decision := matcher.Explain(a, viewer)
				results = append(results, explanation{
					SessionID: a.SessionID,
					Timetable: a.TimetableID,
					Day:       a.Day.Name,
					Periods:   a.PeriodNames(),
					Subgroups: a.Subgroups,
					Matched:   decision.Matched,
					Rule:      string(decision.Rule),
				})
			}
			if len(results) == 0 {
				return fmt.Errorf("session %s not found in snapshot", sessionID)
			}

			out := cmd.OutOrStdout()
			if root.asJSON {
				return writeJSON(out, results)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SESSION\tTIMETABLE\tDAY\tPERIODS\tSUBGROUPS\tMATCHED\tRULE")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
					r.SessionID, r.Timetable, r.Day,
					strings.Join(r.Periods, ","), strings.Join(r.Subgroups, ","),
					r.Matched, r.Rule)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "snapshot JSON file")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to explain")
	who.bind(cmd)
	_ = cmd.MarkFlagRequired("snapshot")
	_ = cmd.MarkFlagRequired("session")
	return cmd
}
