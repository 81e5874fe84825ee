package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"videothingy/media-pipeline/internal/db"
	"videothingy/media-pipeline/internal/ffmpeg"
)

// Long JSON payloads wrap instead of stretching the job table.
const jobValueWidth = 72

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

// renderSilenceTable lists intervals with clock times and a total in the
// footer.
func renderSilenceTable(intervals []ffmpeg.SilenceInterval) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"#", "Start", "End", "Duration (s)"})

	var total float64
	for i, iv := range intervals {
		tw.AppendRow(table.Row{
			i + 1,
			ffmpeg.FormatTime(iv.Start),
			ffmpeg.FormatTime(iv.End),
			fmt.Sprintf("%.3f", iv.Duration),
		})
		total += iv.Duration
	}
	tw.AppendFooter(table.Row{"", "", "Total", fmt.Sprintf("%.3f", total)})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}

// renderJobTable prints one status record as field/value pairs.
func renderJobTable(rec *db.VideoJobStatus) string {
	tw := newTableWriter()
	tw.AppendHeader(table.Row{"Field", "Value"})
	tw.AppendRows([]table.Row{
		{"Job ID", rec.JobID},
		{"Type", rec.JobType},
		{"Status", rec.Status},
		{"Created", formatStamp(rec.CreatedAt)},
		{"Updated", formatStamp(rec.UpdatedAt)},
	})
	if len(rec.InputPayload) > 0 {
		tw.AppendRow(table.Row{"Input", string(rec.InputPayload)})
	}
	if len(rec.OutputDetails) > 0 {
		tw.AppendRow(table.Row{"Output", string(rec.OutputDetails)})
	}
	if rec.ErrorMessage != nil {
		tw.AppendRow(table.Row{"Error", *rec.ErrorMessage})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: jobValueWidth, WidthMaxEnforcer: text.WrapHard},
	})
	return tw.Render()
}

func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.RFC3339)
}
