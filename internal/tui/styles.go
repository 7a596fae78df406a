// Package tui implements the Bubble Tea TUI for tabula.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/tabula/internal/styles"
)

// Styles used for rendering the TUI.
var (
	bannerStyle = styles.BannerStyle.
			PaddingLeft(1).
			PaddingBottom(1)

	searchPromptStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(styles.ColorBlue).
				Bold(true)

	statusStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(styles.ColorGray)

	errorBannerStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(styles.ColorRed).
				Bold(true)

	noticeStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(styles.ColorGreen)

	helpBarStyle = lipgloss.NewStyle().
			PaddingLeft(1)

	agreedStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGreen)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue)
)

// Modal styles.
var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorBlue).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorWhite)

	modalHelpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			MarginTop(1)

	modalButtonStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(styles.ColorBgAlt).
				Foreground(lipgloss.Color("#a9b1d6"))

	modalButtonSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(styles.ColorBlue).
					Foreground(styles.ColorBg).
					Bold(true)
)

// Icons and symbols.
const (
	iconDot   = "•"
	iconCheck = "✔"
)
