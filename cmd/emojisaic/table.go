package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"emojisaic/internal/jobs"
)

func renderTable(headers table.Row, rows []table.Row) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(headers)
	tw.AppendRows(rows)
	return tw.Render()
}

// renderJobSummary renders the end-of-run table shown after a batch of jobs.
func renderJobSummary(list []*jobs.Job) string {
	rows := make([]table.Row, 0, len(list))
	for _, job := range list {
		detail := job.OutputPath
		if job.Status == jobs.StatusFailed {
			detail = job.ErrorMsg
		}
		rows = append(rows, table.Row{
			job.SourcePath,
			string(job.Status),
			fmt.Sprintf("%d/%d", job.FramesDone, job.FramesTotal),
			detail,
		})
	}
	return renderTable(table.Row{"Source", "Status", "Frames", "Result"}, rows)
}

func isTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
