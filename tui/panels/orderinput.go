package panels

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/zappabad/trenchor/internal/ledger"
	"github.com/zappabad/trenchor/internal/market"
	marketview "github.com/zappabad/trenchor/internal/market/view"
	"github.com/zappabad/trenchor/tui/styles"
)

// OrderInputField represents the currently focused input field.
type OrderInputField int

const (
	FieldCommodity OrderInputField = iota
	FieldSide
	FieldQuantity
	FieldSubmit
)

// OrderInputPanel handles order entry with commodity autocomplete.
type OrderInputPanel struct {
	commodities    []market.Commodity
	commodityInput textinput.Model
	quantityInput  textinput.Model
	prices         map[market.CommodityID]decimal.Decimal

	// Dropdown state
	showDropdown     bool
	dropdownFiltered []market.Commodity
	dropdownIndex    int

	sideIndex int // 0 = BUY, 1 = SELL

	currentField OrderInputField
	selected     *market.Commodity
	invalid      string

	focused bool
	width   int
	height  int
}

// NewOrderInputPanel creates a new order input panel.
func NewOrderInputPanel(commodities []market.Commodity) *OrderInputPanel {
	commodityInput := textinput.New()
	commodityInput.Placeholder = "Search commodity..."
	commodityInput.Width = 15
	commodityInput.CharLimit = 20

	quantityInput := textinput.New()
	quantityInput.Placeholder = "Quantity"
	quantityInput.Width = 10
	quantityInput.CharLimit = 12

	return &OrderInputPanel{
		commodities:      commodities,
		commodityInput:   commodityInput,
		quantityInput:    quantityInput,
		prices:           make(map[market.CommodityID]decimal.Decimal),
		dropdownFiltered: commodities,
		currentField:     FieldCommodity,
	}
}

// Init initializes the panel.
func (p *OrderInputPanel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the panel.
func (p *OrderInputPanel) Update(msg tea.Msg) (*OrderInputPanel, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("down"))):
			if p.showDropdown {
				if p.dropdownIndex < len(p.dropdownFiltered)-1 {
					p.dropdownIndex++
				}
				return p, nil
			}
			p.nextField()
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("up"))):
			if p.showDropdown {
				if p.dropdownIndex > 0 {
					p.dropdownIndex--
				}
				return p, nil
			}
			p.prevField()
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			if p.currentField == FieldSubmit {
				return p, p.submitOrder()
			}
			p.nextField()
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
			p.showDropdown = false
			return p, nil

		case key.Matches(msg, key.NewBinding(key.WithKeys("left", "right", " "))):
			if p.currentField == FieldSide {
				p.sideIndex = 1 - p.sideIndex
				return p, nil
			}
		}
	}

	switch p.currentField {
	case FieldCommodity:
		before := p.commodityInput.Value()
		p.commodityInput, cmd = p.commodityInput.Update(msg)
		if p.commodityInput.Value() != before {
			p.filterDropdown(p.commodityInput.Value())
			p.showDropdown = len(p.commodityInput.Value()) > 0
			p.selected = nil
		}

	case FieldQuantity:
		p.quantityInput, cmd = p.quantityInput.Update(msg)
	}

	return p, cmd
}

// View renders the panel.
func (p *OrderInputPanel) View() string {
	var content strings.Builder

	content.WriteString(p.renderField("Item", FieldCommodity, p.renderCommodityField()))
	content.WriteString("\n")

	content.WriteString(p.renderField("Side", FieldSide, p.renderSideField()))
	content.WriteString("\n")

	quantityStyle := styles.InputStyle
	if p.currentField == FieldQuantity && p.focused {
		quantityStyle = styles.FocusedInputStyle
	}
	content.WriteString(p.renderField("Qty", FieldQuantity, quantityStyle.Render(p.quantityInput.View())))
	content.WriteString("\n\n")

	submitStyle := styles.InputStyle
	if p.currentField == FieldSubmit && p.focused {
		submitStyle = styles.FocusedInputStyle.Bold(true).Foreground(styles.PrimaryColor)
	}
	content.WriteString(submitStyle.Render("  [Submit Order]  "))

	content.WriteString("\n\n")
	content.WriteString(p.renderOrderSummary())
	if p.invalid != "" {
		content.WriteString("\n")
		content.WriteString(styles.StatusErrorStyle.Render(p.invalid))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📝 Order Entry", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *OrderInputPanel) renderField(label string, field OrderInputField, inputView string) string {
	labelStyle := styles.LabelStyle
	if p.currentField == field && p.focused {
		labelStyle = labelStyle.Foreground(styles.PrimaryColor)
	}
	return labelStyle.Render(fmt.Sprintf("%-6s", label)) + inputView
}

func (p *OrderInputPanel) renderCommodityField() string {
	var result strings.Builder

	inputStyle := styles.InputStyle
	if p.currentField == FieldCommodity && p.focused {
		inputStyle = styles.FocusedInputStyle
	}
	result.WriteString(inputStyle.Render(p.commodityInput.View()))

	if p.showDropdown && len(p.dropdownFiltered) > 0 {
		result.WriteString("\n")
		for i, c := range p.dropdownFiltered {
			style := styles.DropdownItemStyle
			if i == p.dropdownIndex {
				style = styles.DropdownSelectedStyle
			}
			result.WriteString("      " + style.Render(p.highlightMatch(c.DisplayName(), p.commodityInput.Value())))
			if i < len(p.dropdownFiltered)-1 {
				result.WriteString("\n")
			}
		}
	}

	return result.String()
}

func (p *OrderInputPanel) renderSideField() string {
	buy := styles.DropdownItemStyle.Render("BUY")
	sell := styles.DropdownItemStyle.Render("SELL")

	active := styles.DropdownItemStyle.Bold(true)
	if p.currentField == FieldSide && p.focused {
		active = styles.DropdownSelectedStyle
	}
	if p.sideIndex == 0 {
		buy = active.Foreground(styles.BuyColor).Render("BUY")
	} else {
		sell = active.Foreground(styles.SellColor).Render("SELL")
	}
	return buy + " | " + sell
}

func (p *OrderInputPanel) renderOrderSummary() string {
	name := "---"
	if p.selected != nil {
		name = p.selected.DisplayName()
	}

	side := styles.BuyStyle.Render("BUY")
	if p.sideIndex == 1 {
		side = styles.SellStyle.Render("SELL")
	}

	qty := p.quantityInput.Value()
	if qty == "" {
		qty = "0"
	}

	summary := fmt.Sprintf("%s %s x%s", side, name, qty)
	if p.selected != nil {
		if price, ok := p.prices[p.selected.ID]; ok {
			summary += " @ " + styles.FormatMoney(price)
			if n, err := strconv.ParseInt(qty, 10, 64); err == nil && n > 0 {
				summary += " = " + styles.FormatMoney(price.Mul(decimal.NewFromInt(n)))
			}
		}
	}
	return styles.HeaderStyle.Render("Order: ") + summary
}

func (p *OrderInputPanel) filterDropdown(query string) {
	query = strings.ToUpper(query)
	p.dropdownFiltered = nil
	p.dropdownIndex = 0

	for _, c := range p.commodities {
		if strings.Contains(strings.ToUpper(c.DisplayName()), query) || strings.Contains(strings.ToUpper(string(c.ID)), query) {
			p.dropdownFiltered = append(p.dropdownFiltered, c)
		}
	}
}

func (p *OrderInputPanel) highlightMatch(item, query string) string {
	if query == "" {
		return item
	}

	idx := strings.Index(strings.ToUpper(item), strings.ToUpper(query))
	if idx == -1 {
		return item
	}

	before := item[:idx]
	match := item[idx : idx+len(query)]
	after := item[idx+len(query):]

	return before + styles.DropdownMatchStyle.Render(match) + after
}

func (p *OrderInputPanel) selectDropdownItem() {
	if p.dropdownIndex < len(p.dropdownFiltered) {
		c := p.dropdownFiltered[p.dropdownIndex]
		p.commodityInput.SetValue(c.DisplayName())
		p.selected = &c
	}
}

func (p *OrderInputPanel) nextField() {
	switch p.currentField {
	case FieldCommodity:
		if p.selected == nil {
			p.selectDropdownItem()
		}
		p.showDropdown = false
		p.currentField = FieldSide
		p.commodityInput.Blur()
	case FieldSide:
		p.currentField = FieldQuantity
		p.quantityInput.Focus()
	case FieldQuantity:
		p.currentField = FieldSubmit
		p.quantityInput.Blur()
	case FieldSubmit:
		p.currentField = FieldCommodity
		p.commodityInput.Focus()
	}
}

func (p *OrderInputPanel) prevField() {
	p.showDropdown = false
	switch p.currentField {
	case FieldCommodity:
		p.currentField = FieldSubmit
		p.commodityInput.Blur()
	case FieldSide:
		p.currentField = FieldCommodity
		p.commodityInput.Focus()
	case FieldQuantity:
		p.currentField = FieldSide
		p.quantityInput.Blur()
	case FieldSubmit:
		p.currentField = FieldQuantity
		p.quantityInput.Focus()
	}
}

func (p *OrderInputPanel) submitOrder() tea.Cmd {
	p.invalid = ""
	if p.selected == nil {
		p.invalid = "pick a commodity"
		return nil
	}

	qty, err := strconv.ParseInt(strings.TrimSpace(p.quantityInput.Value()), 10, 64)
	if err != nil || qty <= 0 {
		p.invalid = "quantity must be a positive whole number"
		return nil
	}

	side := ledger.SideBuy
	if p.sideIndex == 1 {
		side = ledger.SideSell
	}

	msg := OrderSubmitMsg{
		Commodity: p.selected.ID,
		Side:      side,
		Quantity:  qty,
	}
	return func() tea.Msg { return msg }
}

// SetFocus sets the focus state of the panel.
func (p *OrderInputPanel) SetFocus(focused bool) {
	p.focused = focused
	if focused {
		switch p.currentField {
		case FieldCommodity:
			p.commodityInput.Focus()
		case FieldQuantity:
			p.quantityInput.Focus()
		}
	} else {
		p.commodityInput.Blur()
		p.quantityInput.Blur()
	}
}

// SetSize sets the panel dimensions.
func (p *OrderInputPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetPrices records current prices for the order summary.
func (p *OrderInputPanel) SetPrices(snap marketview.MarketSnapshot) {
	for _, q := range snap.Quotes {
		p.prices[q.ID] = q.Price
	}
}

// SetCommodity pre-fills the commodity field.
func (p *OrderInputPanel) SetCommodity(c market.Commodity) {
	p.commodityInput.SetValue(c.DisplayName())
	p.selected = &c
	p.showDropdown = false
}

// Reset clears the quantity and returns to the first field. The side and
// commodity stay so repeated orders are quick.
func (p *OrderInputPanel) Reset() {
	p.quantityInput.SetValue("")
	p.invalid = ""
	p.showDropdown = false
	p.currentField = FieldCommodity
	if p.focused {
		p.quantityInput.Blur()
		p.commodityInput.Focus()
	}
}

// OrderSubmitMsg is sent when an order is submitted.
type OrderSubmitMsg struct {
	Commodity market.CommodityID
	Side      ledger.Side
	Quantity  int64
}
