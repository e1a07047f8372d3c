package main

import (
	"fmt"
	"strings"
	"time"

	"chatsynth/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
)

var (
	accent  = lipgloss.Color("#8BC34A")
	warning = lipgloss.Color("#FFB300")
	muted   = lipgloss.Color("#7A8599")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	successStyle = lipgloss.NewStyle().Foreground(accent)
	warnStyle    = lipgloss.NewStyle().Foreground(warning)
	labelStyle   = lipgloss.NewStyle().Foreground(muted)
	pathStyle    = lipgloss.NewStyle().Underline(true)
)

// renderResult formats a finished run for the terminal.
func renderResult(res *pipeline.Result) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("chatsynth run "+res.RunID) + "\n")
	fmt.Fprintf(&b, "%s %d sessions, %d messages (seed %d) in %v\n",
		labelStyle.Render("generated:"), res.Sessions, res.Messages, res.Seed, res.Duration.Round(time.Millisecond))

	b.WriteString(labelStyle.Render("files:") + "\n")
	for _, f := range res.Files {
		b.WriteString("  " + successStyle.Render("✓") + " " + pathStyle.Render(f) + "\n")
	}
	if res.Database != "" {
		b.WriteString(labelStyle.Render("database: ") + pathStyle.Render(res.Database) + "\n")
	}
	if len(res.Uploaded) > 0 {
		fmt.Fprintf(&b, "%s %d objects\n", labelStyle.Render("uploaded:"), len(res.Uploaded))
	}
	for _, w := range res.Warnings {
		b.WriteString(warnStyle.Render("! "+w) + "\n")
	}
	return b.String()
}
