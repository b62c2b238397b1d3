// Package cli renders tally's terminal output with lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
)

// Palette.
var (
	AccentColor  = lipgloss.Color("#5B8DEF")
	GoodColor    = lipgloss.Color("#4ECDC4")
	CautionColor = lipgloss.Color("#FFE66D")
	BadColor     = lipgloss.Color("#FF6B6B")
	NoteColor    = lipgloss.Color("#95E1D3")
	MutedColor   = lipgloss.Color("#666666")
	BorderColor  = lipgloss.Color("#333333")
)

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(AccentColor).MarginBottom(1)
	SuccessStyle = lipgloss.NewStyle().Foreground(GoodColor)
	WarningStyle = lipgloss.NewStyle().Foreground(CautionColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(BadColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(NoteColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(MutedColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// BoxStyle frames summaries and review lists.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	// TableHeaderStyle underlines the header row of RenderTable.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(BorderColor)

	TableCellStyle = lipgloss.NewStyle().PaddingRight(2)
)

// tierStyles colors match tiers from most to least certain.
var tierStyles = map[model.MatchTier]lipgloss.Style{
	model.TierRule:      lipgloss.NewStyle().Foreground(AccentColor).Bold(true),
	model.TierExact:     lipgloss.NewStyle().Foreground(GoodColor),
	model.TierFuzzy:     lipgloss.NewStyle().Foreground(CautionColor),
	model.TierUnmatched: lipgloss.NewStyle().Foreground(BadColor),
}

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	TallyIcon   = "🧾"
	ChartIcon   = "📊"
	FolderIcon  = "🗄️"
)

// FormatSuccess prefixes message with a check mark.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError prefixes message with a cross.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning prefixes message with a warning sign.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo prefixes message with an info sign.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle renders a section title.
func FormatTitle(title string) string {
	return TitleStyle.Render(TallyIcon + " " + title)
}

// FormatTier colors a match tier name.
func FormatTier(tier model.MatchTier, text string) string {
	style, ok := tierStyles[tier]
	if !ok {
		return text
	}
	return style.Render(text)
}

// FormatAmount renders a signed amount with two decimals: inflows green, outflows red.
func FormatAmount(amount decimal.Decimal) string {
	text := amount.StringFixed(2)
	switch {
	case amount.IsPositive():
		return SuccessStyle.Render(text)
	case amount.IsNegative():
		return ErrorStyle.Render(text)
	default:
		return text
	}
}

// RenderBox frames content under a bold title.
func RenderBox(title, content string) string {
	heading := TitleStyle.UnsetMargins().Render(title)
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, heading, content))
}
