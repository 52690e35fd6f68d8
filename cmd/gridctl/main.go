// Command gridctl projects timetable snapshots offline. It renders the grids the console
// would serve, explains eligibility decisions, diffs two snapshots and mints local tokens.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errDiffFound) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
