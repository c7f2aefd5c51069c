package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/trenchor/internal/api"
	"github.com/zappabad/trenchor/internal/game"
	"github.com/zappabad/trenchor/internal/ledger"
	"github.com/zappabad/trenchor/internal/market"
	"github.com/zappabad/trenchor/tui/panels"
	"github.com/zappabad/trenchor/tui/styles"
)

// PanelFocus represents which panel is currently focused.
type PanelFocus int

const (
	FocusMarket      PanelFocus = 0
	FocusChart       PanelFocus = 1
	FocusLeaderboard PanelFocus = 2
	FocusFeed        PanelFocus = 3
	FocusPortfolio   PanelFocus = 4
	FocusOrderInput  PanelFocus = 5

	panelCount = 6
)

const requestTimeout = 2 * time.Second

// Model is the main TUI application model.
type Model struct {
	svc   *api.Service
	human ledger.PlayerID

	commodities []market.Commodity

	// Panels
	marketPanel      *panels.MarketPanel
	chartPanel       *panels.ChartPanel
	leaderboardPanel *panels.LeaderboardPanel
	feedPanel        *panels.FeedPanel
	portfolioPanel   *panels.PortfolioPanel
	orderInputPanel  *panels.OrderInputPanel

	focusedPanel PanelFocus

	width  int
	height int

	// Latest game state
	round     int
	maxRounds int
	state     game.State

	statusMsg string
	statusErr bool
	ready     bool
}

// NewModel creates a new TUI model. human may be empty to spectate an AI-only game.
func NewModel(svc *api.Service, human ledger.PlayerID, commodities []market.Commodity) *Model {
	chartPanel := panels.NewChartPanel()
	if len(commodities) > 0 {
		chartPanel.SetCommodity(commodities[0])
	}

	focus := FocusOrderInput
	if human == "" {
		focus = FocusMarket
	}

	return &Model{
		svc:              svc,
		human:            human,
		commodities:      commodities,
		marketPanel:      panels.NewMarketPanel(commodities),
		chartPanel:       chartPanel,
		leaderboardPanel: panels.NewLeaderboardPanel(human),
		feedPanel:        panels.NewFeedPanel(),
		portfolioPanel:   panels.NewPortfolioPanel(),
		orderInputPanel:  panels.NewOrderInputPanel(commodities),
		focusedPanel:     focus,
		statusMsg:        "Press n to start the first round",
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.marketPanel.Init(),
		m.chartPanel.Init(),
		m.leaderboardPanel.Init(),
		m.feedPanel.Init(),
		m.portfolioPanel.Init(),
		m.orderInputPanel.Init(),
		m.fetchView(),
		m.listenUpdates(),
		m.tickRefresh(),
	)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		typing := m.focusedPanel == FocusOrderInput

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if !typing {
				return m, tea.Quit
			}

		case "ctrl+n":
			return m, m.advance()
		case "n":
			if !typing {
				return m, m.advance()
			}

		case "tab":
			m.cycleFocus(1)
			return m, nil
		case "shift+tab":
			m.cycleFocus(-1)
			return m, nil

		case "f1":
			m.setFocus(FocusMarket)
		case "f2":
			m.setFocus(FocusChart)
		case "f3":
			m.setFocus(FocusLeaderboard)
		case "f4":
			m.setFocus(FocusFeed)
		case "f5":
			m.setFocus(FocusPortfolio)
		case "f6":
			m.setFocus(FocusOrderInput)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case viewMsg:
		m.applyView(msg.view)

	case updateMsg:
		cmds = append(cmds, m.fetchView(), m.listenUpdates())

	case panels.CommoditySelectedMsg:
		m.chartPanel.SetCommodity(msg.Commodity)
		m.orderInputPanel.SetCommodity(msg.Commodity)
		if m.human != "" {
			m.setFocus(FocusOrderInput)
		}
		cmds = append(cmds, m.fetchView())

	case panels.OrderSubmitMsg:
		cmds = append(cmds, m.submitOrder(msg))

	case orderResultMsg:
		m.setStatus(msg.message, msg.err)
		if !msg.err {
			m.orderInputPanel.Reset()
		}

	case advanceResultMsg:
		m.setStatus(msg.message, msg.err)

	case errMsg:
		m.setStatus(msg.err.Error(), true)

	case tickMsg:
		cmds = append(cmds, m.fetchView(), m.tickRefresh())
	}

	m.updateFocusedPanel(msg, &cmds)

	return m, tea.Batch(cmds...)
}

func (m *Model) updateFocusedPanel(msg tea.Msg, cmds *[]tea.Cmd) {
	var cmd tea.Cmd

	switch m.focusedPanel {
	case FocusMarket:
		m.marketPanel, cmd = m.marketPanel.Update(msg)
		selected := m.marketPanel.SelectedCommodity()
		if selected.ID != "" && selected.ID != m.chartPanel.Commodity().ID {
			m.chartPanel.SetCommodity(selected)
			*cmds = append(*cmds, m.fetchView())
		}
	case FocusChart:
		m.chartPanel, cmd = m.chartPanel.Update(msg)
	case FocusLeaderboard:
		m.leaderboardPanel, cmd = m.leaderboardPanel.Update(msg)
	case FocusFeed:
		m.feedPanel, cmd = m.feedPanel.Update(msg)
	case FocusPortfolio:
		m.portfolioPanel, cmd = m.portfolioPanel.Update(msg)
	case FocusOrderInput:
		m.orderInputPanel, cmd = m.orderInputPanel.Update(msg)
	}

	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
}

// View renders the UI.
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	m.marketPanel.SetFocus(m.focusedPanel == FocusMarket)
	m.chartPanel.SetFocus(m.focusedPanel == FocusChart)
	m.leaderboardPanel.SetFocus(m.focusedPanel == FocusLeaderboard)
	m.feedPanel.SetFocus(m.focusedPanel == FocusFeed)
	m.portfolioPanel.SetFocus(m.focusedPanel == FocusPortfolio)
	m.orderInputPanel.SetFocus(m.focusedPanel == FocusOrderInput)

	// Layout:
	// ┌─────────────────────────────────────────────┐
	// │   Market      │    Chart     │ Leaderboard  │
	// ├───────────────┼──────────────┼──────────────┤
	// │    Feed       │  Portfolio   │ Order Entry  │
	// └───────────────┴──────────────┴──────────────┘

	leftWidth := m.width / 3
	middleWidth := m.width / 3
	rightWidth := m.width - leftWidth - middleWidth

	topHeight := (m.height - 3) / 2
	bottomHeight := m.height - topHeight - 3

	m.marketPanel.SetSize(leftWidth, topHeight)
	m.chartPanel.SetSize(middleWidth, topHeight)
	m.leaderboardPanel.SetSize(rightWidth, topHeight)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.marketPanel.View(),
		m.chartPanel.View(),
		m.leaderboardPanel.View(),
	)

	m.feedPanel.SetSize(leftWidth, bottomHeight)
	m.portfolioPanel.SetSize(middleWidth, bottomHeight)
	m.orderInputPanel.SetSize(rightWidth, bottomHeight)

	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top,
		m.feedPanel.View(),
		m.portfolioPanel.View(),
		m.orderInputPanel.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, bottomRow, m.renderStatusBar())
}

func (m *Model) renderStatusBar() string {
	help := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.StatusBarKeyStyle.Render("n/ctrl+n")+styles.StatusBarDescStyle.Render(" next round"),
		" │ ",
		styles.StatusBarKeyStyle.Render("F1-F6")+styles.StatusBarDescStyle.Render(" panels"),
		" │ ",
		styles.StatusBarKeyStyle.Render("Tab/Enter")+styles.StatusBarDescStyle.Render(" navigate"),
		" │ ",
		styles.StatusBarKeyStyle.Render("q")+styles.StatusBarDescStyle.Render(" quit"),
	)

	round := fmt.Sprintf(" │ Round %d/%d (%s)", m.round, m.maxRounds, m.state)

	status := ""
	if m.statusMsg != "" {
		style := styles.StatusOKStyle
		if m.statusErr {
			style = styles.StatusErrorStyle
		}
		status = " │ " + style.Render(m.statusMsg)
	}

	return styles.StatusBarStyle.Width(m.width).Render(help + round + status)
}

func (m *Model) setFocus(panel PanelFocus) {
	m.focusedPanel = panel
}

func (m *Model) cycleFocus(step int) {
	m.focusedPanel = PanelFocus((int(m.focusedPanel) + step + panelCount) % panelCount)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.statusMsg = text
	m.statusErr = isErr
}

func (m *Model) applyView(v api.View) {
	m.round = v.Round
	m.maxRounds = v.MaxRounds
	m.state = v.State

	m.marketPanel.SetSnapshot(v.Market)
	m.chartPanel.SetHistory(v.Histories[m.chartPanel.Commodity().ID])
	m.leaderboardPanel.SetOpponents(v.Opponents)
	m.leaderboardPanel.SetStandings(v.Leaderboard)
	m.feedPanel.SetHeadlines(v.Headlines)
	m.portfolioPanel.SetPrices(v.Market)
	m.portfolioPanel.SetReport(v.Report)
	m.orderInputPanel.SetPrices(v.Market)
}

func (m *Model) fetchView() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		v, err := m.svc.View(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return viewMsg{view: v}
	}
}

func (m *Model) advance() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		rep, ok, err := m.svc.Advance(ctx)
		if err != nil {
			return advanceResultMsg{message: "Advance failed: " + err.Error(), err: true}
		}
		if !ok {
			return advanceResultMsg{message: "Game over: no rounds left"}
		}
		return advanceResultMsg{message: fmt.Sprintf("Round %d played (%d AI turns)", rep.Round, len(rep.Turns))}
	}
}

func (m *Model) submitOrder(order panels.OrderSubmitMsg) tea.Cmd {
	return func() tea.Msg {
		if m.human == "" {
			return orderResultMsg{message: "Spectating: orders are disabled", err: true}
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var (
			res game.TradeResult
			err error
		)
		if order.Side == ledger.SideBuy {
			res, err = m.svc.Buy(ctx, order.Commodity, order.Quantity)
		} else {
			res, err = m.svc.Sell(ctx, order.Commodity, order.Quantity)
		}
		if err != nil {
			return orderResultMsg{message: "Order failed: " + err.Error(), err: true}
		}
		return orderResultMsg{message: fmt.Sprintf("%s, cash %s", res.Message, styles.FormatMoney(res.Balance))}
	}
}

// listenUpdates waits for the next session change.
func (m *Model) listenUpdates() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.svc.Updates()
		if !ok {
			return nil
		}
		return updateMsg{update: u}
	}
}

// tickMsg is sent periodically to refresh data.
type tickMsg struct{}

func (m *Model) tickRefresh() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg{}
	})
}

type viewMsg struct {
	view api.View
}

type updateMsg struct {
	update api.Update
}

// orderResultMsg is sent after an order is processed.
type orderResultMsg struct {
	message string
	err     bool
}

type advanceResultMsg struct {
	message string
	err     bool
}

type errMsg struct {
	err error
}
