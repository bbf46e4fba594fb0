package service

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/olekukonko/tablewriter"
)

// WriteRunRecords renders stored runs as a table, or as JSON when asJSON is set
func WriteRunRecords(writer io.Writer, runs []domain.RunRecord, asJSON bool) error {
	if asJSON {
		if runs == nil {
			runs = []domain.RunRecord{}
		}
		return WriteJSON(writer, runs)
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(writer, "No runs recorded.")
		return err
	}

	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Run", "Started", "Duration", "Repositories", "Passed", "Failed"})

	var data [][]string
	for _, r := range runs {
		data = append(data, []string{
			r.RunID,
			r.StartedAt.Local().Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
			strconv.Itoa(r.Repositories),
			strconv.Itoa(r.Passed),
			strconv.Itoa(r.Failed),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// WriteSnapshotRecords renders the stored rows of one repository
func WriteSnapshotRecords(writer io.Writer, rows []domain.SnapshotRecord, asJSON bool) error {
	if asJSON {
		if rows == nil {
			rows = []domain.SnapshotRecord{}
		}
		return WriteJSON(writer, rows)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(writer, "No snapshots recorded.")
		return err
	}

	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Recorded", "Run", "Status", "Files", "Linter", "Docstyle", "Coverage", "Remarks"})

	var data [][]string
	for _, r := range rows {
		status := "PASS"
		if !r.Status {
			status = "FAIL"
		}
		coverage := "n/a"
		if r.Coverage != nil {
			coverage = strconv.FormatFloat(*r.Coverage, 'f', 1, 64) + "%"
		}
		data = append(data, []string{
			r.RecordedAt.Local().Format(time.DateTime),
			r.RunID,
			status,
			strconv.Itoa(r.SourceFiles),
			fmt.Sprintf("%d/%d", r.LinterTotal-r.LinterFailed, r.LinterTotal),
			fmt.Sprintf("%d/%d", r.DocstyleTotal-r.DocstyleFailed, r.DocstyleTotal),
			coverage,
			FormatRemarks(r.Remarks),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
