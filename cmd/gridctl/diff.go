package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/projection"
)

var errDiffFound = errors.New("snapshots differ")

type cellChange struct {
	Cell   string `json:"cell"`
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

func (c cellChange) marker() string {
	switch {
	case c.Before == "":
		return "+"
	case c.After == "":
		return "-"
	default:
		return "~"
	}
}

func newDiffCmd(root *rootOptions) *cobra.Command {
	var (
		exitCode bool
		who      viewerFlags
	)
	cmd := &cobra.Command{
		Use:   "diff <before.json> <after.json>",
		Short: "Compare the grids projected from two snapshots cell by cell",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			viewer, err := who.viewer(root.defaultSpecialization)
			if err != nil {
				return err
			}

			snaps := make([]*models.TimetableSnapshot, len(args))
			p := pool.New().WithErrors()
			for i, path := range args {
				i, path := i, path
				p.Go(func() error {
					snap, err := loadSnapshot(path)
					if err != nil {
						return err
					}
					snaps[i] = snap
					return nil
				})
			}
			if err := p.Wait(); err != nil {
				return err
			}

			opts := root.projectionOptions()
			changes := diffCells(projectCells(snaps[0], viewer, opts), projectCells(snaps[1], viewer, opts))

			out := cmd.OutOrStdout()
			if root.asJSON {
				if err := writeJSON(out, changes); err != nil {
					return err
				}
			} else if len(changes) == 0 {
				fmt.Fprintln(out, "no differences")
			} else {
				for _, c := range changes {
					switch c.marker() {
					case "+":
						fmt.Fprintf(out, "+ %s: %s\n", c.Cell, c.After)
					case "-":
						fmt.Fprintf(out, "- %s: %s\n", c.Cell, c.Before)
					default:
						fmt.Fprintf(out, "~ %s: %s -> %s\n", c.Cell, c.Before, c.After)
					}
				}
			}
			if exitCode && len(changes) > 0 {
				return errDiffFound
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit with status 1 when the grids differ")
	who.bind(cmd)
	return cmd
}

// projectCells flattens the grids of a snapshot into "section period day" keys. Admin
// grids are keyed by semester so snapshots from different algorithms line up.
func projectCells(snap *models.TimetableSnapshot, viewer models.Viewer, opts projection.Options) map[string]string {
	cells := make(map[string]string)
	collect := func(section string, grid models.Grid) {
		for _, row := range grid.Rows {
			for _, cell := range row.Cells {
				if cell.Empty() {
					continue
				}
				cells[fmt.Sprintf("%s %s %s", section, row.Period.Name, cell.Day)] = cellText(cell)
			}
		}
	}
	if viewer != nil {
		view := projection.NewPersonalView(snap.Assignments(), snap.Days, snap.Periods, viewer, snap.References, opts)
		collect(string(viewer.Kind()), view.Grid)
		return cells
	}
	for _, tt := range snap.Timetables {
		view := projection.NewAdminView(tt, snap.Days, snap.Periods, snap.References, opts)
		section := tt.Semester
		if section == "" {
			section = tt.ID
		}
		collect(section, view.Grid)
	}
	return cells
}

func diffCells(before, after map[string]string) []cellChange {
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var changes []cellChange
	for _, k := range sorted {
		if before[k] == after[k] {
			continue
		}
		changes = append(changes, cellChange{Cell: k, Before: before[k], After: after[k]})
	}
	return changes
}
