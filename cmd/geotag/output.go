package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// tone is the severity shown in a status line.
type tone int

const (
	toneInfo tone = iota
	toneOK
	toneWarn
	toneError
)

const ansiReset = "\x1b[0m"

var tones = [...]struct{ label, color string }{
	toneInfo:  {"INFO", "\x1b[34m"},
	toneOK:    {"OK", "\x1b[32m"},
	toneWarn:  {"WARN", "\x1b[33m"},
	toneError: {"ERROR", "\x1b[31m"},
}

const statusLabelWidth = 20

// printer writes human output, colouring it only on a terminal.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) printer {
	return printer{w: w, color: isTerminal(w)}
}

func (p printer) section(title string) {
	title = strings.TrimSpace(title)
	rule := strings.Repeat("─", len([]rune(title)))
	if p.color {
		title = tones[toneInfo].color + title + ansiReset
	}
	fmt.Fprintf(p.w, "\n%s\n%s\n", title, rule)
}

func (p printer) status(label string, t tone, msg string) {
	fmt.Fprintln(p.w, statusLine(label, t, msg, p.color))
}

func (p printer) table(t string) {
	fmt.Fprintln(p.w, t)
}

// statusLine renders "  Label:   [TONE] message".
func statusLine(label string, t tone, msg string, color bool) string {
	tag := "[" + tones[t].label + "]"
	if msg != "" {
		tag += " " + msg
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", tag)
	if color {
		return tones[t].color + line + ansiReset
	}
	return line
}

// saveSummary describes a batch result in one line.
func saveSummary(saved, failed, cancelled int) (tone, string) {
	total := saved + failed
	if total == 0 {
		return toneInfo, "nothing to save"
	}
	msg := fmt.Sprintf("%d of %d saved", saved, total)
	if cancelled > 0 {
		msg += fmt.Sprintf(", %d cancelled", cancelled)
		if rest := failed - cancelled; rest > 0 {
			msg += fmt.Sprintf(", %d failed", rest)
		}
		return toneWarn, msg
	}
	if failed > 0 {
		return toneError, msg + fmt.Sprintf(", %d failed", failed)
	}
	return toneOK, msg
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// renderTable draws a rounded table. Columns listed in right (1-based) are
// right-aligned; short rows are padded with blanks.
func renderTable(headers []string, rows [][]string, right ...int) string {
	if len(headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, r := range rows {
		tw.AppendRow(toRow(r, len(headers)))
	}
	configs := make([]table.ColumnConfig, 0, len(right))
	for _, n := range right {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		row[i] = ""
	}
	for i, c := range cells[:min(len(cells), width)] {
		row[i] = c
	}
	return row
}

// writeJSON prints v as indented JSON on stdout.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
