package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/trenchor/internal/game"
	"github.com/zappabad/trenchor/internal/ledger"
	"github.com/zappabad/trenchor/internal/trader/runner"
	"github.com/zappabad/trenchor/tui/styles"
)

// LeaderboardPanel ranks every player by portfolio value.
type LeaderboardPanel struct {
	self      ledger.PlayerID
	standings []game.Standing
	profiles  map[ledger.PlayerID]string

	focused bool
	width   int
	height  int
}

// NewLeaderboardPanel creates a leaderboard that highlights self.
func NewLeaderboardPanel(self ledger.PlayerID) *LeaderboardPanel {
	return &LeaderboardPanel{
		self:     self,
		profiles: make(map[ledger.PlayerID]string),
	}
}

// Init initializes the panel.
func (p *LeaderboardPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *LeaderboardPanel) Update(msg tea.Msg) (*LeaderboardPanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *LeaderboardPanel) View() string {
	var content strings.Builder

	header := fmt.Sprintf("%-3s %-22s %12s %9s", "#", "Player", "Value", "Profit")
	content.WriteString(styles.HeaderStyle.Render(header))

	for _, st := range p.standings {
		content.WriteString("\n")

		rank := fmt.Sprintf("%-3d", st.Rank)
		if st.Rank >= 1 && st.Rank <= len(styles.MedalStyles) {
			rank = styles.MedalStyles[st.Rank-1].Render(rank)
		}

		name := string(st.Name)
		if prof, ok := p.profiles[st.Name]; ok {
			name = fmt.Sprintf("%s (%s)", name, prof)
		}
		if len(name) > 22 {
			name = name[:21] + "…"
		}

		nameStyle := styles.RowStyle
		if st.Name == p.self {
			nameStyle = styles.SelfRowStyle
		}

		content.WriteString(rank)
		content.WriteString(" ")
		content.WriteString(nameStyle.Render(fmt.Sprintf("%-22s", name)))
		content.WriteString(styles.PriceStyle.Render(fmt.Sprintf(" %12s", styles.FormatMoney(st.Valuation))))
		content.WriteString(styles.ChangeStyle(st.Profit).Render(fmt.Sprintf(" %8s%%", st.ProfitPercent.StringFixed(2))))
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("🏆 Leaderboard", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *LeaderboardPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *LeaderboardPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetStandings replaces the leaderboard rows.
func (p *LeaderboardPanel) SetStandings(standings []game.Standing) {
	p.standings = standings
}

// SetOpponents labels AI rows with their profile.
func (p *LeaderboardPanel) SetOpponents(infos []runner.Info) {
	for _, info := range infos {
		p.profiles[info.Name] = info.Profile.Name
	}
}
