package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/projection"
)

type rootOptions struct {
	defaultSpecialization string
	weekdaysOnly          bool
	asJSON                bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "gridctl",
		Short:         "Project and inspect timetable snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.defaultSpecialization, "default-specialization", projection.DefaultSpecialization, "specialization assumed for compact year groups")
	cmd.PersistentFlags().BoolVar(&opts.weekdaysOnly, "weekdays-only", false, "drop weekend and unranked day columns")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "write JSON instead of tables")

	cmd.AddCommand(
		newProjectCmd(opts),
		newExplainCmd(opts),
		newDiffCmd(opts),
		newTokenCmd(),
	)
	return cmd
}

func (o *rootOptions) projectionOptions() projection.Options {
	return projection.Options{
		Matcher:      projection.NewMatcher(o.defaultSpecialization),
		WeekdaysOnly: o.weekdaysOnly,
	}
}

// viewerFlags selects whose personal grid to project. Leaving both identities empty
// selects the administrative grids.
type viewerFlags struct {
	yearGroup      string
	specialization string
	subjects       []string
	faculty        string
}

func (f *viewerFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.yearGroup, "year-group", "", "student year group, e.g. Y1S1.SE.1")
	cmd.Flags().StringVar(&f.specialization, "specialization", "", "student specialization")
	cmd.Flags().StringSliceVar(&f.subjects, "subjects", nil, "student enrolled subject codes")
	cmd.Flags().StringVar(&f.faculty, "faculty", "", "faculty id")
}

func (f *viewerFlags) viewer(defaultSpecialization string) (models.Viewer, error) {
	yearGroup := strings.TrimSpace(f.yearGroup)
	faculty := strings.TrimSpace(f.faculty)
	switch {
	case yearGroup != "" && faculty != "":
		return nil, fmt.Errorf("--year-group and --faculty are mutually exclusive")
	case faculty != "":
		return models.FacultyViewer{ID: faculty}, nil
	case yearGroup != "":
		return projection.NewStudentViewer(yearGroup, f.specialization, f.subjects, defaultSpecialization), nil
	default:
		return nil, nil
	}
}

func loadSnapshot(path string) (*models.TimetableSnapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap models.TimetableSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if len(snap.Days) == 0 || len(snap.Periods) == 0 {
		days, periods := projection.ExtractTaxonomy(snap.Assignments())
		if len(snap.Days) == 0 {
			snap.Days = days
		}
		if len(snap.Periods) == 0 {
			snap.Periods = periods
		}
	}
	return &snap, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeGrid renders a grid as an aligned table with one row per period.
func writeGrid(w io.Writer, grid models.Grid) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := []string{"PERIOD"}
	for _, d := range grid.Days {
		header = append(header, d.Name)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range grid.Rows {
		cols := []string{row.Label}
		for _, cell := range row.Cells {
			cols = append(cols, cellText(cell))
		}
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	return tw.Flush()
}

func cellText(cell models.GridCell) string {
	if cell.Empty() {
		return "-"
	}
	parts := make([]string, 0, len(cell.Entries))
	for _, e := range cell.Entries {
		parts = append(parts, fmt.Sprintf("%s@%s", e.SubjectCode, e.Assignment.Room.Name))
	}
	return strings.Join(parts, " / ")
}
