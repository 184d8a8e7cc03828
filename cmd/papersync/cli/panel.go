// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	panelBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	panelTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

// PrintPanel writes a titled block of operator-facing text to w. On a
// terminal the block is drawn inside a rounded border; otherwise the
// title and body are written as plain lines so that output stays
// copy-pasteable in logs.
func PrintPanel(w io.Writer, title, body string) error {
	body = strings.TrimRight(body, "\n")
	if !IsTerminal(w) {
		_, err := fmt.Fprintf(w, "%s\n\n%s\n", title, body)
		return err
	}
	_, err := fmt.Fprintln(w, panelBorder.Render(panelTitle.Render(title)+"\n\n"+body))
	return err
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
