package panels

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zappabad/trenchor/internal/feed"
	"github.com/zappabad/trenchor/tui/styles"
)

// FeedPanel displays game headlines, newest last.
type FeedPanel struct {
	headlines     []feed.Headline
	selectedIndex int
	scrollOffset  int
	follow        bool
	focused       bool
	width         int
	height        int
	maxItems      int
}

// NewFeedPanel creates a new feed panel.
func NewFeedPanel() *FeedPanel {
	return &FeedPanel{
		maxItems: 100,
		follow:   true,
	}
}

// Init initializes the panel.
func (p *FeedPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *FeedPanel) Update(msg tea.Msg) (*FeedPanel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !p.focused {
			return p, nil
		}
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if p.selectedIndex > 0 {
				p.selectedIndex--
				p.follow = false
				if p.selectedIndex < p.scrollOffset {
					p.scrollOffset = p.selectedIndex
				}
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if p.selectedIndex < len(p.headlines)-1 {
				p.selectedIndex++
				p.follow = p.selectedIndex == len(p.headlines)-1
				if p.selectedIndex >= p.scrollOffset+p.visibleItems() {
					p.scrollOffset = p.selectedIndex - p.visibleItems() + 1
				}
			}
		}
	}
	return p, nil
}

func (p *FeedPanel) visibleItems() int {
	n := p.height - 4
	if n < 1 {
		n = 1
	}
	return n
}

// View renders the panel.
func (p *FeedPanel) View() string {
	var content strings.Builder

	if len(p.headlines) == 0 {
		content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("Nothing has happened yet"))
	} else {
		visible := p.visibleItems()
		start := p.scrollOffset
		end := start + visible
		if end > len(p.headlines) {
			end = len(p.headlines)
		}

		for i := start; i < end; i++ {
			h := p.headlines[i]

			text := h.Text
			if limit := p.width - 12; limit > 3 && len(text) > limit {
				text = text[:limit-3] + "..."
			}

			textStyle := styles.FeedNormalStyle
			if h.Severity > 0 {
				textStyle = styles.FeedImportantStyle
			}

			line := fmt.Sprintf("%s %s", styles.TimeStyle.Render(fmt.Sprintf("R%-3d", h.Round)), textStyle.Render(text))
			if i == p.selectedIndex && p.focused {
				line = styles.SelectedRowStyle.Render(line)
			}

			content.WriteString(line)
			if i < end-1 {
				content.WriteString("\n")
			}
		}

		if len(p.headlines) > visible {
			content.WriteString("\n")
			content.WriteString(lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(
				fmt.Sprintf(" (%d/%d)", p.selectedIndex+1, len(p.headlines))))
		}
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle("📰 Feed", p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

// SetFocus sets the focus state of the panel.
func (p *FeedPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *FeedPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetHeadlines replaces the headlines, oldest first.
func (p *FeedPanel) SetHeadlines(items []feed.Headline) {
	p.headlines = items
	if len(p.headlines) > p.maxItems {
		p.headlines = p.headlines[len(p.headlines)-p.maxItems:]
	}
	if p.follow || p.selectedIndex >= len(p.headlines) {
		p.selectedIndex = len(p.headlines) - 1
		if p.selectedIndex < 0 {
			p.selectedIndex = 0
		}
		p.scrollOffset = len(p.headlines) - p.visibleItems()
		if p.scrollOffset < 0 {
			p.scrollOffset = 0
		}
	}
}

// SelectedHeadline returns the currently selected headline.
func (p *FeedPanel) SelectedHeadline() *feed.Headline {
	if p.selectedIndex >= 0 && p.selectedIndex < len(p.headlines) {
		return &p.headlines[p.selectedIndex]
	}
	return nil
}
