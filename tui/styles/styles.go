package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Color palette: amber on slate, green for gains and red for losses.
var (
	PrimaryColor = lipgloss.Color("#D97706")
	AccentColor  = lipgloss.Color("#FBBF24")

	BuyColor  = lipgloss.Color("#10B981")
	SellColor = lipgloss.Color("#EF4444")

	BackgroundColor  = lipgloss.Color("#1F2937")
	BorderColor      = lipgloss.Color("#374151")
	FocusBorderColor = PrimaryColor

	TextColor          = lipgloss.Color("#F9FAFB")
	TextSecondaryColor = lipgloss.Color("#9CA3AF")
	TextMutedColor     = lipgloss.Color("#6B7280")
)

// Panel styles
var (
	// Base panel style
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	// Focused panels swap to a thick amber border
	FocusedPanelStyle = PanelStyle.
				Border(lipgloss.ThickBorder()).
				BorderForeground(FocusBorderColor)

	// Panel title style
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1)

	// Header row style
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextSecondaryColor)

	// Row styles
	RowStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	SelectedRowStyle = RowStyle.
				Background(BorderColor)

	// Highlight for the human player's row
	SelfRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	// Medal colors for the top three standings
	MedalStyles = []lipgloss.Style{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FBBF24")),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D1D5DB")),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#B45309")),
	}
)

// Text styles
var (
	BuyStyle  = lipgloss.NewStyle().Bold(true).Foreground(BuyColor)
	SellStyle = lipgloss.NewStyle().Bold(true).Foreground(SellColor)

	// Price styles
	PriceStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	PriceUpStyle = lipgloss.NewStyle().
			Foreground(BuyColor)

	PriceDownStyle = lipgloss.NewStyle().
			Foreground(SellColor)

	// Quantity style
	QuantityStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)

	// Round and timestamp style
	TimeStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	// Feed severity styles
	FeedNormalStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	FeedImportantStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(AccentColor)
)

// Input styles
var (
	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	FocusedInputStyle = InputStyle.
				BorderForeground(FocusBorderColor)

	LabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)

	PlaceholderStyle = lipgloss.NewStyle().
				Foreground(TextMutedColor)

	DropdownItemStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Padding(0, 1)

	DropdownSelectedStyle = DropdownItemStyle.
				Background(BorderColor)

	DropdownMatchStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)
)

// Chart styles (per-round candles)
var (
	CandleUpStyle   = PriceUpStyle
	CandleDownStyle = PriceDownStyle

	ChartAxisStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor)

	ChartLabelStyle = lipgloss.NewStyle().
			Foreground(TextSecondaryColor)
)

// Status bar styles
var (
	StatusBarStyle = lipgloss.NewStyle().
			Background(BackgroundColor).
			Foreground(TextSecondaryColor).
			Padding(0, 1)

	StatusBarKeyStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	StatusBarDescStyle = lipgloss.NewStyle().
				Foreground(TextSecondaryColor)

	StatusErrorStyle = PriceDownStyle
	StatusOKStyle    = PriceUpStyle
)

// RenderTitle renders the title bar of a panel.
func RenderTitle(title string, focused bool) string {
	style := TitleStyle
	if focused {
		style = style.Foreground(FocusBorderColor)
	}
	return style.Render(title)
}

// FormatMoney renders an amount as dollars with two decimals, e.g. "$1234.50".
func FormatMoney(v decimal.Decimal) string {
	if v.IsNegative() {
		return "-$" + v.Neg().StringFixed(2)
	}
	return "$" + v.StringFixed(2)
}

// ChangeStyle picks the up/down color for a signed change.
func ChangeStyle(change decimal.Decimal) lipgloss.Style {
	switch change.Sign() {
	case 1:
		return PriceUpStyle
	case -1:
		return PriceDownStyle
	default:
		return PriceStyle
	}
}
