package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thilinahansana/university-scheduler-console/internal/projection"
)

func newProjectCmd(root *rootOptions) *cobra.Command {
	var (
		snapshotPath string
		timetableID  string
		who          viewerFlags
	)
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Render the administrative or a personal grid from a snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(snapshotPath)
			if err != nil {
				return err
			}
			viewer, err := who.viewer(root.defaultSpecialization)
			if err != nil {
				return err
			}
			opts := root.projectionOptions()
			out := cmd.OutOrStdout()

			if viewer != nil {
				view := projection.NewPersonalView(snap.Assignments(), snap.Days, snap.Periods, viewer, snap.References, opts)
				if root.asJSON {
					return writeJSON(out, view)
				}
				fmt.Fprintf(out, "== %s timetable (%d entries)\n", viewer.Kind(), view.Grid.EntryCount())
				return writeGrid(out, view.Grid)
			}

			views := make([]projection.AdminView, 0, len(snap.Timetables))
			for _, tt := range snap.Timetables {
				if timetableID != "" && tt.ID != timetableID {
					continue
				}
				views = append(views, projection.NewAdminView(tt, snap.Days, snap.Periods, snap.References, opts))
			}
			if timetableID != "" && len(views) == 0 {
				return fmt.Errorf("timetable %s not found in snapshot", timetableID)
			}
			if root.asJSON {
				return writeJSON(out, views)
			}
			for _, v := range views {
				fmt.Fprintf(out, "== %s %s (%s)\n", v.Semester, v.Algorithm, v.TimetableID)
				if err := writeGrid(out, v.Grid); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "snapshot JSON file")
	cmd.Flags().StringVar(&timetableID, "timetable", "", "only project this semester timetable")
	who.bind(cmd)
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}
