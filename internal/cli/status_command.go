package cli

import (
	"errors"
	"flag"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/souffleinspire/bananaImgGenaration/internal/config"
	"github.com/souffleinspire/bananaImgGenaration/internal/model"
	"github.com/souffleinspire/bananaImgGenaration/internal/runstore"
	"github.com/souffleinspire/bananaImgGenaration/internal/story"
)

type statusRow struct {
	model.Slot
	FilePresent bool `json:"file_present"`
}

type statusReport struct {
	OutputDir string           `json:"output_dir"`
	StatePath string           `json:"state_path"`
	Table     model.StateTable `json:"state"`
	Rows      []statusRow      `json:"rows"`
}

func runStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	configPath := fs.String("config", config.DefaultPath, "config file path")
	outputDir := fs.String("output-dir", "", "image output directory override (default: config output_dir)")
	jsonOut := fs.Bool("json", false, "print JSON output")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	dir := defaultIfEmpty(strings.TrimSpace(*outputDir), cfg.OutputDir)

	tbl, err := story.LoadState(dir)
	if err != nil {
		if errors.Is(err, story.ErrNoState) {
			fmt.Printf("no image state in %s yet\n", dir)
			fmt.Println("start here:")
			fmt.Println("  bananagen generate")
			fmt.Println("  bananagen remaining")
			return nil
		}
		return err
	}

	report := statusReport{
		OutputDir: dir,
		StatePath: story.StatePath(dir),
		Table:     tbl,
		Rows:      make([]statusRow, 0, len(tbl.Slots)),
	}
	for _, s := range tbl.Slots {
		report.Rows = append(report.Rows, statusRow{
			Slot:        s,
			FilePresent: s.Path != "" && runstore.FileExists(s.Path),
		})
	}
	if *jsonOut {
		return printJSON(report)
	}

	fmt.Println(titleStyle.Render("image state: " + report.StatePath))
	fmt.Println(renderStatusTable(report.Rows))
	fmt.Printf("prefix: %s  updated: %s\n", tbl.Prefix, defaultIfEmpty(tbl.UpdatedAt, "-"))
	fmt.Printf("generated/pending/failed: %d/%d/%d of %d\n", tbl.Generated, tbl.Pending, tbl.Failed, tbl.Total)
	return nil
}

func renderStatusTable(rows []statusRow) string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		file := "-"
		if r.Path != "" {
			file = filepath.Base(r.Path)
			if !r.FilePresent {
				file += " (missing)"
			}
		}
		note := r.Reason
		if r.LastError != "" {
			note = strings.TrimSpace(note + " " + r.LastError)
		}
		data = append(data, []string{
			strconv.Itoa(r.Index + 1),
			r.Status,
			strconv.Itoa(r.Attempts),
			file,
			truncateRunes(note, 60),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("#", "STATUS", "TRIES", "FILE", "NOTE").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Bold(true)
			}
			if col != 1 || row < 0 || row >= len(data) {
				return base
			}
			return base.Inherit(slotStatusStyle(data[row][1]))
		}).
		String()
}

func slotStatusStyle(status string) lipgloss.Style {
	switch status {
	case model.StatusGenerated:
		return okStyle
	case model.StatusFailed:
		return errorStyle
	case model.StatusRunning:
		return warnStyle
	default:
		return mutedStyle
	}
}
