package panels

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/ledger"
	ledgerview "github.com/zappabad/trenchor/internal/ledger/view"
	"github.com/zappabad/trenchor/internal/market"
	marketview "github.com/zappabad/trenchor/internal/market/view"
	"github.com/zappabad/trenchor/tui/styles"
)

// PortfolioPanel shows the human player's cash, holdings and recent trades.
type PortfolioPanel struct {
	report *ledgerview.PlayerReport
	prices map[market.CommodityID]decimal.Decimal

	focused bool
	width   int
	height  int
}

// NewPortfolioPanel creates a new portfolio panel.
func NewPortfolioPanel() *PortfolioPanel {
	return &PortfolioPanel{prices: make(map[market.CommodityID]decimal.Decimal)}
}

// Init initializes the panel.
func (p *PortfolioPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *PortfolioPanel) Update(msg tea.Msg) (*PortfolioPanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *PortfolioPanel) View() string {
	var content strings.Builder

	if p.report == nil {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("Spectating: no player seat"))
	} else {
		r := p.report
		profit := r.Portfolio.Total.Sub(r.Initial)

		content.WriteString(styles.LabelStyle.Render("Cash      "))
		content.WriteString(styles.PriceStyle.Render(styles.FormatMoney(r.Balance)))
		content.WriteString("\n")
		content.WriteString(styles.LabelStyle.Render("Holdings  "))
		content.WriteString(styles.PriceStyle.Render(styles.FormatMoney(r.Portfolio.Holdings)))
		content.WriteString("\n")
		content.WriteString(styles.LabelStyle.Render("Total     "))
		content.WriteString(styles.PriceStyle.Render(styles.FormatMoney(r.Portfolio.Total)))
		content.WriteString(" ")
		content.WriteString(styles.ChangeStyle(profit).Render(fmt.Sprintf("(%s)", styles.FormatMoney(profit))))
		content.WriteString("\n\n")

		content.WriteString(styles.HeaderStyle.Render(fmt.Sprintf("%-10s %6s %12s", "Holding", "Qty", "Value")))
		content.WriteString("\n")
		if len(r.Holdings) == 0 {
			content.WriteString(styles.PlaceholderStyle.Render("nothing owned"))
			content.WriteString("\n")
		}
		for _, id := range sortedHoldings(r.Holdings) {
			qty := r.Holdings[id]
			value := "-"
			if price, ok := p.prices[id]; ok {
				value = styles.FormatMoney(price.Mul(decimal.NewFromInt(qty)))
			}
			content.WriteString(styles.RowStyle.Render(fmt.Sprintf("%-10s ", id)))
			content.WriteString(styles.QuantityStyle.Render(fmt.Sprintf("%6d", qty)))
			content.WriteString(styles.PriceStyle.Render(fmt.Sprintf(" %12s", value)))
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(styles.HeaderStyle.Render(fmt.Sprintf("Trades %d (buy %d / sell %d)", r.Stats.Total, r.Stats.Buys, r.Stats.Sells)))
		for i := len(r.RecentTrades) - 1; i >= 0; i-- {
			content.WriteString("\n")
			content.WriteString(renderTrade(r.RecentTrades[i]))
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("💼 Portfolio", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func renderTrade(t ledger.Trade) string {
	side := styles.BuyStyle.Render("BUY ")
	if t.Side == ledger.SideSell {
		side = styles.SellStyle.Render("SELL")
	}
	return fmt.Sprintf("%s %s %s %s @ %s",
		styles.TimeStyle.Render(fmt.Sprintf("R%-3d", t.Round)),
		side,
		styles.QuantityStyle.Render(fmt.Sprintf("%4d", t.Quantity)),
		styles.RowStyle.Render(fmt.Sprintf("%-8s", t.Commodity)),
		styles.PriceStyle.Render(styles.FormatMoney(t.Price)),
	)
}

func sortedHoldings(h map[market.CommodityID]int64) []market.CommodityID {
	ids := make([]market.CommodityID, 0, len(h))
	for id := range h {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SetFocus sets the focus state of the panel.
func (p *PortfolioPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *PortfolioPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetReport replaces the player report. nil means there is no human player.
func (p *PortfolioPanel) SetReport(r *ledgerview.PlayerReport) {
	p.report = r
}

// SetPrices records current prices for valuing holdings.
func (p *PortfolioPanel) SetPrices(snap marketview.MarketSnapshot) {
	for _, q := range snap.Quotes {
		p.prices[q.ID] = q.Price
	}
}
