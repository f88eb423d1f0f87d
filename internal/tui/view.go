package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"titleshop/internal/engine"
	"titleshop/internal/ui"
)

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := lipgloss.NewStyle().Width(sidebarW).Render(m.renderSidebar())

	var main string
	if m.state.Proposal != nil {
		main = m.renderDialog(*m.state.Proposal)
	} else {
		main = m.renderTabs() + "\n\n" + m.renderMain()
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, "  ", main)

	return header + "\n\n" + body + "\n" + m.renderFooter()
}

func (m boardModel) busy() bool {
	if m.loading || m.state.Sending {
		return true
	}
	return m.state.Proposal != nil && m.state.Proposal.Confirming
}

func (m boardModel) renderHeader() string {
	if !m.state.LoggedIn {
		return ui.Heading(ui.IconShop, "Title Shop") + ui.Muted.Render(" | not logged in")
	}
	u := m.state.User
	h := fmt.Sprintf("%s | %s | %s",
		ui.Heading(ui.IconShop, "Title Shop"),
		ui.UserBadge(u.Username, u.IsGuest, u.IsAdmin),
		ui.Coins(m.state.Balance),
	)
	if m.busy() {
		h += " " + m.spin.View()
	}
	return h
}

func (m boardModel) renderSidebar() string {
	owned, done := 0, 0
	for _, t := range m.state.Titles {
		if t.Owned {
			owned++
		}
	}
	for _, t := range m.state.Tasks {
		if t.Completed {
			done++
		}
	}
	lines := []string{ui.PanelTitle.Render("Profile")}
	lines = append(lines, ui.LabelValue("Balance", m.state.Balance))
	lines = append(lines, ui.LabelValue("Titles", fmt.Sprintf("%d/%d", owned, len(m.state.Titles))))
	lines = append(lines, ui.LabelValue("Tasks", fmt.Sprintf("%d/%d", done, len(m.state.Tasks))))
	lines = append(lines, "")
	lines = append(lines, ui.PanelTitle.Render("Keys"))
	lines = append(lines, "- tab: next tab")
	switch m.tab {
	case tabTitles:
		lines = append(lines, "- ↑/↓ or j/k: move")
		lines = append(lines, "- enter/b: buy")
		lines = append(lines, "- c: copy owned title")
	case tabTasks:
		lines = append(lines, "- ↑/↓ or j/k: move")
	case tabChat:
		lines = append(lines, "- enter: send")
		lines = append(lines, "- pgup/pgdown: scroll")
		lines = append(lines, "- esc: back to titles")
	}
	if m.tab != tabChat {
		lines = append(lines, "- r: refresh")
		lines = append(lines, "- q: quit")
	}
	return strings.Join(lines, "\n")
}

func (m boardModel) renderTabs() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if tab(i) == m.tab {
			parts = append(parts, ui.TabActive.Render(label))
		} else {
			parts = append(parts, ui.TabInactive.Render(label))
		}
	}
	return strings.Join(parts, "   ")
}

func (m boardModel) renderMain() string {
	if m.loading && len(m.state.Titles) == 0 {
		return m.spin.View() + " Loading…"
	}
	switch m.tab {
	case tabTasks:
		return m.renderTasks()
	case tabChat:
		return m.chatView.View() + "\n" + m.input.View()
	default:
		return m.renderTitles()
	}
}

func (m boardModel) renderTitles() string {
	if len(m.state.Titles) == 0 {
		return ui.Muted.Render("(no titles)")
	}
	nameW := m.mainWidth() - 16
	if nameW < 12 {
		nameW = 12
	}
	var out []string
	for i, t := range m.state.Titles {
		cursor := "  "
		if i == m.titleSel {
			cursor = "> "
		}
		price := ui.Price(t.Price, m.state.Balance)
		if t.Owned {
			price = ui.BadgeOwned
		}
		out = append(out, cursor+padRight(t.Name, nameW)+" "+price)
	}
	if t := m.selectedTitle(); t != nil && t.Description != "" {
		out = append(out, "", ui.Muted.Render(wordwrap.String(t.Description, m.mainWidth())))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderTasks() string {
	if len(m.state.Tasks) == 0 {
		return ui.Muted.Render("(no tasks)")
	}
	nameW := m.mainWidth() - 32
	if nameW < 12 {
		nameW = 12
	}
	var out []string
	for i, t := range m.state.Tasks {
		cursor := "  "
		if i == m.taskSel {
			cursor = "> "
		}
		prog := fmt.Sprintf("%d/%d", t.Progress, t.MaxProgress)
		row := fmt.Sprintf("%s%s %s %-9s %s", cursor, padRight(t.Name, nameW), ui.ProgressBar(t.Ratio(), 10), prog, ui.Delta(t.Reward))
		if t.Completed {
			row += " " + ui.IconDone
		}
		out = append(out, row)
	}
	if m.taskSel < len(m.state.Tasks) {
		if d := m.state.Tasks[m.taskSel].Description; d != "" {
			out = append(out, "", ui.Muted.Render(wordwrap.String(d, m.mainWidth())))
		}
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderChat(width int) string {
	if len(m.state.Messages) == 0 {
		return ui.Muted.Render("(no messages yet)")
	}
	if width <= 0 {
		width = 50
	}
	var b strings.Builder
	for _, msg := range m.state.Messages {
		ts := ""
		if t, ok := msg.Created(); ok {
			ts = ui.Dim.Render(t.Local().Format("15:04")) + " "
		}
		name := ui.UserBadge(msg.Username, false, msg.IsAdmin)
		if msg.UserID == m.state.User.ID {
			name = ui.Gold.Render(msg.Username)
		}
		b.WriteString(ts + name + "\n")
		b.WriteString(wordwrap.String(msg.Body, width-2) + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m boardModel) renderDialog(p engine.Proposal) string {
	lines := []string{
		ui.Heading(ui.IconCrown, "Buy "+p.Name+"?"),
		"",
		ui.LabelValue("Price", ui.Coins(p.Price)),
		ui.LabelValue("Balance", ui.Coins(p.Balance)),
	}
	if p.CanAfford {
		lines = append(lines, ui.LabelValue("After", ui.Coins(p.BalanceAfter)))
	} else {
		lines = append(lines, ui.Bad.Render(fmt.Sprintf("Not enough coins: need %d more.", p.Price-p.Balance)))
	}
	if p.LastError != "" {
		lines = append(lines, "", ui.Bad.Render(p.LastError))
	}
	lines = append(lines, "")
	switch {
	case p.Confirming:
		lines = append(lines, m.spin.View()+" Buying…")
	case p.CanAfford:
		lines = append(lines, ui.Key.Render("[y] confirm")+"   "+ui.Muted.Render("[n] cancel"))
	default:
		lines = append(lines, ui.Dim.Render("[y] confirm")+"   "+ui.Muted.Render("[n] cancel"))
	}
	return ui.Dialog.Render(strings.Join(lines, "\n"))
}

func (m boardModel) renderFooter() string {
	var out []string
	for _, t := range m.toasts {
		out = append(out, ui.Toast.Render(t.text))
	}
	out = append(out, m.lastLog)
	return "\n" + strings.Join(out, "\n")
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
