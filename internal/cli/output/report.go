// Package output renders the end-of-run report for CLI commands.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/Dualog-students/GridFSCleaner/pkg/gc"
)

// Format represents the report output format.
type Format string

const (
	// FormatTable renders a human-readable summary table.
	FormatTable Format = "table"
	// FormatJSON renders the report as a single JSON object, for piping
	// into jq or a monitoring pipeline.
	FormatJSON Format = "json"
)

// ParseFormat parses a string into a Format, returning an error if invalid.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json)", s)
	}
}

// Report is the end-of-run summary handed to the renderer.
type Report struct {
	Target string
	Stats  *gc.Stats
}

// Print renders the report in the requested format.
func Print(w io.Writer, format Format, r Report) error {
	switch format {
	case FormatJSON:
		return printJSON(w, r)
	default:
		return printTable(w, r)
	}
}

func mode(dryRun bool) string {
	if dryRun {
		return "dry-run"
	}
	return "execute"
}

func printTable(w io.Writer, r Report) error {
	s := r.Stats

	action := "Chunks to delete"
	processed := "Files to clean"
	if !s.DryRun {
		action = "Chunks deleted"
		processed = "Files cleaned"
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator(":")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	rows := [][2]string{
		{"Mode", mode(s.DryRun)},
		{"Target", r.Target},
		{"Chunks scanned", strconv.FormatInt(s.ChunksScanned, 10)},
		{"Distinct files", strconv.FormatInt(s.DistinctFiles, 10)},
		{"Valid files", strconv.FormatInt(s.ValidFiles, 10)},
		{"Orphan files", strconv.FormatInt(s.OrphanFiles, 10)},
		{action, strconv.FormatInt(s.OrphanChunks, 10)},
		{processed, strconv.FormatInt(s.FilesProcessed, 10)},
		{"Elapsed", FormatDuration(s.Elapsed)},
	}
	if len(s.FailedFiles) > 0 {
		rows = append(rows, [2]string{"Failed files", strconv.Itoa(len(s.FailedFiles))})
	}

	for _, row := range rows {
		table.Append([]string{row[0], row[1]})
	}
	table.Render()

	if len(s.FailedFiles) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Files that could not be reconciled:")
		for _, id := range s.FailedFiles {
			fmt.Fprintf(w, "  %s\n", id.Hex())
		}
	}

	return nil
}

// jsonReport is the wire shape of the JSON report. Field names are stable;
// scripts depend on them.
type jsonReport struct {
	Mode           string   `json:"mode"`
	Target         string   `json:"target"`
	ChunksScanned  int64    `json:"chunks_scanned"`
	DistinctFiles  int64    `json:"distinct_files"`
	ValidFiles     int64    `json:"valid_files"`
	OrphanFiles    int64    `json:"orphan_files"`
	OrphanChunks   int64    `json:"orphan_chunks"`
	FilesProcessed int64    `json:"files_processed"`
	FailedFiles    []string `json:"failed_files,omitempty"`
	ElapsedSeconds float64  `json:"elapsed_seconds"`
}

func printJSON(w io.Writer, r Report) error {
	s := r.Stats

	out := jsonReport{
		Mode:           mode(s.DryRun),
		Target:         r.Target,
		ChunksScanned:  s.ChunksScanned,
		DistinctFiles:  s.DistinctFiles,
		ValidFiles:     s.ValidFiles,
		OrphanFiles:    s.OrphanFiles,
		OrphanChunks:   s.OrphanChunks,
		FilesProcessed: s.FilesProcessed,
		ElapsedSeconds: s.Elapsed.Seconds(),
	}
	for _, id := range s.FailedFiles {
		out.FailedFiles = append(out.FailedFiles, id.Hex())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// FormatDuration renders a duration for human consumption: "3d 0h 30m 15s",
// dropping leading zero units.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
