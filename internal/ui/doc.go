// Package ui styles command-line output with lipgloss.
//
// Commands print through a [Palette] so headings, success and failure lines look the same everywhere.
// Styles degrade to plain text when the output is not a terminal.
package ui
