package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/trenchor/internal/market"
	marketview "github.com/zappabad/trenchor/internal/market/view"
	"github.com/zappabad/trenchor/tui/styles"
)

// MarketPanel displays current prices for all commodities.
type MarketPanel struct {
	commodities   []market.Commodity
	quotes        map[market.CommodityID]marketview.Quote
	selectedIndex int
	focused       bool
	width         int
	height        int
}

// NewMarketPanel creates a new market panel.
func NewMarketPanel(commodities []market.Commodity) *MarketPanel {
	return &MarketPanel{
		commodities: commodities,
		quotes:      make(map[market.CommodityID]marketview.Quote),
	}
}

// Init initializes the panel.
func (p *MarketPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *MarketPanel) Update(msg tea.Msg) (*MarketPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.commodities)-1 {
				p.selectedIndex++
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			c := p.SelectedCommodity()
			return p, func() tea.Msg { return CommoditySelectedMsg{Commodity: c} }
		}
	}
	return p, nil
}

// View renders the panel.
func (p *MarketPanel) View() string {
	var content strings.Builder

	header := fmt.Sprintf("%-10s %10s %9s  %s", "Commodity", "Price", "Change", "Trend")
	content.WriteString(styles.HeaderStyle.Render(header))
	content.WriteString("\n")

	for i, c := range p.commodities {
		q, ok := p.quotes[c.ID]

		price, change, trend := "-", "-", ""
		changeStyle := styles.PriceStyle
		if ok {
			price = styles.FormatMoney(q.Price)
			change = q.Change
			changeStyle = styles.ChangeStyle(q.ChangePercent)
			trend = sparkline(q)
		}

		name := fmt.Sprintf("%-10s %10s ", c.DisplayName(), price)
		style := styles.RowStyle
		if i == p.selectedIndex && p.focused {
			style = styles.SelectedRowStyle
		}
		content.WriteString(style.Render(name))
		content.WriteString(changeStyle.Render(fmt.Sprintf("%9s", change)))
		content.WriteString("  " + trend)
		if i < len(p.commodities)-1 {
			content.WriteString("\n")
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📈 Market", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// sparkline renders one arrow per move in the quote's history window.
func sparkline(q marketview.Quote) string {
	var b strings.Builder
	for i := 1; i < len(q.History); i++ {
		switch q.History[i].Cmp(q.History[i-1]) {
		case 1:
			b.WriteString(styles.PriceUpStyle.Render("▲"))
		case -1:
			b.WriteString(styles.PriceDownStyle.Render("▼"))
		default:
			b.WriteString(styles.PriceStyle.Render("·"))
		}
	}
	return b.String()
}

// SetFocus sets the focus state of the panel.
func (p *MarketPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *MarketPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetSnapshot replaces every quote.
func (p *MarketPanel) SetSnapshot(snap marketview.MarketSnapshot) {
	for _, q := range snap.Quotes {
		p.quotes[q.ID] = q
	}
}

// SelectedCommodity returns the currently selected commodity.
func (p *MarketPanel) SelectedCommodity() market.Commodity {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.commodities) {
		return p.commodities[p.selectedIndex]
	}
	return market.Commodity{}
}

// CommoditySelectedMsg is sent when a commodity is picked in the market panel.
type CommoditySelectedMsg struct {
	Commodity market.Commodity
}
