package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/pursuit/internal/model"
	"github.com/verte-zerg/pursuit/internal/trajectory"
)

// RenderTrials prints catalog entries as an aligned table.
func RenderTrials(w io.Writer, entries []model.TrialEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No trials found.")
		return err
	}
	headers := []string{"Participant", "Trial", "Samples", "Events", "Duration (s)", "Saved", "Run", "File"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Participant),
			strconv.Itoa(e.Trial),
			strconv.Itoa(e.Samples),
			strconv.Itoa(e.Events),
			fmt.Sprintf("%.2f", e.DurationSec),
			e.SavedAt.Local().Format("2006-01-02 15:04"),
			shortRun(e.RunID),
			e.Path,
		})
	}
	rightAlign := map[int]bool{0: true, 1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderRefs prints the trials found on disk, one participant per line.
func RenderRefs(w io.Writer, refs []trajectory.Ref) error {
	if len(refs) == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}
	headers := []string{"Participant", "Trials"}
	var rows [][]string
	for i := 0; i < len(refs); {
		j := i
		trials := ""
		for ; j < len(refs) && refs[j].Participant == refs[i].Participant; j++ {
			if trials != "" {
				trials += " "
			}
			trials += strconv.Itoa(refs[j].Trial)
		}
		rows = append(rows, []string{strconv.Itoa(refs[i].Participant), trials})
		i = j
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func shortRun(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
