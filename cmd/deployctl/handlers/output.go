package handlers

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
	colorWhite = lipgloss.Color("#f9fafb")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	nameStyle    = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	failedStyle  = lipgloss.NewStyle().Foreground(colorRed)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
)

// render applies style only when stdout is a terminal.
func render(style lipgloss.Style, s string) string {
	if !isInteractiveTTY() {
		return s
	}
	return style.Render(s)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(b))
	return err
}

func printHeader(title string) {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, render(titleStyle, "  "+title))
	fmt.Fprintln(stdout, render(dimStyle, "  "+strings.Repeat("=", len(title))))
}

func printSection(name string) {
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, render(sectionStyle, "  "+name))
	fmt.Fprintln(stdout, render(dimStyle, "  "+strings.Repeat("-", 35)))
}

func printField(name, value string) {
	fmt.Fprintf(stdout, "  %s  %s\n", render(nameStyle, fmt.Sprintf("%-18s", name)), render(valueStyle, value))
}

func printCheck(name string, ok bool, extra string) {
	mark := render(valueStyle, checkMark)
	if !ok {
		mark = render(failedStyle, crossMark)
	}
	if extra != "" {
		fmt.Fprintf(stdout, "  %s  %-20s %s\n", mark, name, render(dimStyle, extra))
		return
	}
	fmt.Fprintf(stdout, "  %s  %s\n", mark, name)
}

// printFields prints a record sorted by key.
func printFields(record map[string]string) {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printField(k, record[k])
	}
}
