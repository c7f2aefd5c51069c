package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/market"
	"github.com/zappabad/trenchor/tui/styles"
)

// Candle is one round of a commodity's price: it opens at the previous
// round's price and closes at this round's.
type Candle struct {
	Round int
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// CandlesFromHistory turns a price series (seed price first) into one candle per round.
func CandlesFromHistory(history []decimal.Decimal) []Candle {
	if len(history) == 0 {
		return nil
	}
	out := make([]Candle, 0, len(history))
	seed := history[0].InexactFloat64()
	out = append(out, Candle{Open: seed, High: seed, Low: seed, Close: seed})
	for i := 1; i < len(history); i++ {
		open := history[i-1].InexactFloat64()
		closePrice := history[i].InexactFloat64()
		c := Candle{Round: i, Open: open, Close: closePrice, High: open, Low: open}
		if closePrice > c.High {
			c.High = closePrice
		}
		if closePrice < c.Low {
			c.Low = closePrice
		}
		out = append(out, c)
	}
	return out
}

// ChartPanel displays a per-round candlestick chart of one commodity.
type ChartPanel struct {
	commodity market.Commodity
	candles   []Candle

	focused bool
	width   int
	height  int
}

// NewChartPanel creates a new chart panel.
func NewChartPanel() *ChartPanel {
	return &ChartPanel{}
}

// Init initializes the panel.
func (p *ChartPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *ChartPanel) Update(msg tea.Msg) (*ChartPanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *ChartPanel) View() string {
	name := "No commodity"
	if p.commodity.ID != "" {
		name = p.commodity.DisplayName()
	}

	var content strings.Builder

	chartWidth := p.width - 12 // Leave room for price axis
	chartHeight := p.height - 6
	if chartHeight < 5 {
		chartHeight = 5
	}

	if len(p.candles) < 2 {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("Advance a round to see prices move..."))
	} else {
		content.WriteString(p.renderChart(chartWidth, chartHeight, p.candles))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle(fmt.Sprintf("📉 Chart - %s", name), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *ChartPanel) renderChart(width, height int, candles []Candle) string {
	// Reserve space: 9 chars for price axis, 1 for separator
	chartWidth := width - 10
	if chartWidth < 10 {
		chartWidth = 10
	}

	// Each candle needs 2 chars: candle, space
	candlesToShow := chartWidth / 2
	if candlesToShow < 1 {
		candlesToShow = 1
	}
	display := candles
	if len(display) > candlesToShow {
		display = display[len(display)-candlesToShow:]
	}

	minPrice, maxPrice := display[0].Low, display[0].High
	for _, c := range display {
		if c.Low < minPrice {
			minPrice = c.Low
		}
		if c.High > maxPrice {
			maxPrice = c.High
		}
	}

	// 10% padding, never a flat range
	padding := (maxPrice - minPrice) * 0.1
	if padding < 0.5 {
		padding = 0.5
	}
	minPrice -= padding
	maxPrice += padding

	// Reserve rows for the round axis
	chartHeight := height - 3
	if chartHeight < 5 {
		chartHeight = 5
	}

	var result strings.Builder

	// Rows top to bottom = high to low price
	for row := 0; row < chartHeight; row++ {
		price := yToPrice(row, minPrice, maxPrice, chartHeight)
		result.WriteString(styles.ChartAxisStyle.Render(fmt.Sprintf("%8.2f │", price)))

		for _, c := range display {
			char := candleChar(c, row, minPrice, maxPrice, chartHeight)

			style := styles.CandleUpStyle
			if c.Close < c.Open {
				style = styles.CandleDownStyle
			}
			result.WriteString(style.Render(string(char)))
			result.WriteString(" ")
		}
		result.WriteString("\n")
	}

	result.WriteString(styles.ChartAxisStyle.Render("─────────┴"))
	for range display {
		result.WriteString(styles.ChartAxisStyle.Render("──"))
	}
	result.WriteString("\n")

	// Round axis: label the first, the last and every fifth candle
	result.WriteString(styles.ChartAxisStyle.Render("          "))
	for i, c := range display {
		if i == 0 || i == len(display)-1 || c.Round%5 == 0 {
			result.WriteString(styles.ChartLabelStyle.Render(fmt.Sprintf("%-2d", c.Round%100)))
		} else {
			result.WriteString("  ")
		}
	}

	return result.String()
}

// candleChar returns the character to draw for a candle at a given row.
func candleChar(c Candle, row int, minPrice, maxPrice float64, height int) rune {
	rowPrice := yToPrice(row, minPrice, maxPrice, height)

	bodyTop, bodyBottom := c.Open, c.Close
	if c.Close > c.Open {
		bodyTop, bodyBottom = c.Close, c.Open
	}

	// half a row either way
	tolerance := (maxPrice - minPrice) / float64(height*2)

	if rowPrice <= bodyTop+tolerance && rowPrice >= bodyBottom-tolerance {
		return '┃'
	}
	if rowPrice <= c.High+tolerance && rowPrice > bodyTop {
		return '│'
	}
	if rowPrice >= c.Low-tolerance && rowPrice < bodyBottom {
		return '│'
	}
	return ' '
}

func yToPrice(y int, minPrice, maxPrice float64, height int) float64 {
	if height <= 1 {
		return minPrice
	}
	ratio := float64(y) / float64(height-1)
	return maxPrice - ratio*(maxPrice-minPrice)
}

// SetFocus sets the focus state of the panel.
func (p *ChartPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *ChartPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetCommodity switches the charted commodity.
func (p *ChartPanel) SetCommodity(c market.Commodity) {
	if c.ID != p.commodity.ID {
		p.candles = nil
	}
	p.commodity = c
}

// SetHistory replaces the candles from a full price series.
func (p *ChartPanel) SetHistory(history []decimal.Decimal) {
	p.candles = CandlesFromHistory(history)
}

// Commodity returns the charted commodity.
func (p *ChartPanel) Commodity() market.Commodity {
	return p.commodity
}
