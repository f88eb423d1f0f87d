package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/decred/slog"

	"titleshop/internal/engine"
	"titleshop/internal/ui"
)

type tab int

const (
	tabTitles tab = iota
	tabTasks
	tabChat
	tabCount
)

var tabNames = [...]string{"Titles", "Tasks", "Chat"}

const (
	toastTTL  = 4 * time.Second
	maxToasts = 3
	sidebarW  = 28
)

type toast struct {
	text  string
	until time.Time
}

type boardModel struct {
	ctx  context.Context
	eng  *engine.Engine
	log  slog.Logger
	copy func(string) error
	now  func() time.Time

	width  int
	height int

	tab      tab
	state    engine.State
	titleSel int
	taskSel  int

	input    textarea.Model
	chatView viewport.Model
	spin     spinner.Model

	toasts  []toast
	lastLog string
	loading bool
	err     error
}

type changedMsg struct{}

type notifyMsg struct {
	n engine.Notification
}

type loadedMsg struct {
	err error
}

type confirmedMsg struct {
	res engine.PurchaseResult
	err error
}

type sentMsg struct {
	err error
}

type actionMsg struct {
	action string
	err    error
}

type refreshedMsg struct {
	err error
}

type toastExpiredMsg struct{}

func newBoardModel(ctx context.Context, eng *engine.Engine, log slog.Logger) boardModel {
	ta := textarea.New()
	ta.Placeholder = "Say something…"
	ta.Prompt = ui.Muted.Render(":: ")
	ta.CharLimit = engine.MaxMessageLength
	ta.ShowLineNumbers = false
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.Gold

	return boardModel{
		ctx:      ctx,
		eng:      eng,
		log:      log,
		copy:     clipboard.WriteAll,
		now:      time.Now,
		state:    eng.Snapshot(),
		input:    ta,
		chatView: viewport.New(50, 12),
		spin:     sp,
		loading:  true,
		lastLog:  "Connecting…",
	}
}

func (m boardModel) Init() tea.Cmd {
	return tea.Batch(m.startCmd(), m.spin.Tick)
}

func (m boardModel) startCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.eng.Start(m.ctx)}
	}
}

func (m boardModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.eng.Refresh(m.ctx); err != nil {
			return refreshedMsg{err: err}
		}
		return refreshedMsg{err: m.eng.Load(m.ctx)}
	}
}

func (m boardModel) confirmCmd() tea.Cmd {
	return func() tea.Msg {
		res, err := m.eng.Confirm(m.ctx)
		return confirmedMsg{res: res, err: err}
	}
}

func (m boardModel) sendCmd(body string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.eng.SendMessage(m.ctx, body)
		return sentMsg{err: err}
	}
}

func (m boardModel) actionCmd(action string) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{action: action, err: m.eng.RecordAction(m.ctx, action, 1)}
	}
}

func expireCmd() tea.Cmd {
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{} })
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case changedMsg:
		m.sync()
		return m, nil
	case notifyMsg:
		m.sync()
		m.pushToast(msg.n)
		return m, expireCmd()
	case toastExpiredMsg:
		m.dropExpired()
		return m, nil
	case loadedMsg:
		m.loading = false
		m.sync()
		if msg.err != nil {
			if errors.Is(msg.err, engine.ErrNoSession) {
				m.err = msg.err
				return m, nil
			}
			m.lastLog = "Load failed: " + describe(msg.err)
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Loaded at %s.", m.now().Format("15:04:05"))
		return m, m.actionCmd(engine.ActionVisitShop)
	case refreshedMsg:
		if msg.err != nil {
			m.lastLog = "Refresh failed: " + describe(msg.err)
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", m.now().Format("15:04:05"))
		return m, nil
	case confirmedMsg:
		m.sync()
		m.lastLog = confirmText(msg)
		return m, nil
	case sentMsg:
		m.sync()
		if msg.err != nil {
			m.lastLog = "Send failed: " + describe(msg.err)
			return m, nil
		}
		m.input.Reset()
		m.chatView.GotoBottom()
		return m, nil
	case actionMsg:
		if msg.err != nil {
			m.log.Debugf("action %s: %v", msg.action, msg.err)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func confirmText(msg confirmedMsg) string {
	var ae engine.AffordabilityError
	switch {
	case msg.err == nil:
		if msg.res.Message != "" {
			return fmt.Sprintf("%s Balance %d.", msg.res.Message, msg.res.Coins)
		}
		return fmt.Sprintf("Bought %s. Balance %d.", msg.res.Name, msg.res.Coins)
	case errors.As(msg.err, &ae):
		return fmt.Sprintf("Not enough coins: need %d more.", ae.Price-ae.Balance)
	case errors.Is(msg.err, engine.ErrBusy):
		return "Purchase already in flight."
	case errors.Is(msg.err, engine.ErrStale):
		return "Purchase discarded."
	default:
		return "Purchase failed: " + describe(msg.err)
	}
}

// describe renders rejections verbatim and anything else as-is.
func describe(err error) string {
	if msg, ok := engine.RejectionMessage(err); ok {
		return msg
	}
	return err.Error()
}

func (m boardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}
	if m.err != nil {
		if key == "q" || key == "esc" {
			return m.quit()
		}
		return m, nil
	}
	if m.state.Proposal != nil {
		return m.handleDialogKey(key)
	}
	switch key {
	case "tab":
		return m.switchTab((m.tab + 1) % tabCount)
	case "shift+tab":
		return m.switchTab((m.tab + tabCount - 1) % tabCount)
	}
	if m.tab == tabChat {
		return m.handleChatKey(msg)
	}

	switch key {
	case "q":
		return m.quit()
	case "1", "2", "3":
		return m.switchTab(tab(key[0] - '1'))
	case "r":
		m.lastLog = "Refreshing…"
		return m, m.refreshCmd()
	case "up", "k":
		m.move(-1)
		return m, nil
	case "down", "j":
		m.move(1)
		return m, nil
	case "enter", "b":
		if m.tab == tabTitles {
			return m.propose()
		}
	case "c":
		if m.tab == tabTitles {
			return m.copySelected()
		}
	}
	return m, nil
}

func (m boardModel) handleDialogKey(key string) (tea.Model, tea.Cmd) {
	p := m.state.Proposal
	switch key {
	case "esc", "n":
		m.eng.CancelPurchase()
		m.lastLog = "Purchase cancelled."
		m.sync()
		return m, nil
	case "enter", "y":
		if p.Confirming {
			return m, nil
		}
		if !p.CanAfford {
			m.lastLog = fmt.Sprintf("Not enough coins: need %d more.", p.Price-p.Balance)
			return m, nil
		}
		m.lastLog = fmt.Sprintf("Buying %s…", p.Name)
		return m, m.confirmCmd()
	}
	return m, nil
}

func (m boardModel) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.switchTab(tabTitles)
	case "enter":
		if m.state.Sending {
			return m, nil
		}
		body := m.input.Value()
		return m, m.sendCmd(body)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m boardModel) switchTab(t tab) (tea.Model, tea.Cmd) {
	if t < 0 || t >= tabCount || t == m.tab {
		return m, nil
	}
	m.tab = t
	cmds := []tea.Cmd{m.actionCmd(engine.ActionOpenTab)}
	switch t {
	case tabChat:
		cmds = append(cmds, m.input.Focus())
	case tabTitles:
		m.input.Blur()
		cmds = append(cmds, m.actionCmd(engine.ActionVisitShop))
	default:
		m.input.Blur()
	}
	return m, tea.Batch(cmds...)
}

func (m boardModel) quit() (tea.Model, tea.Cmd) {
	m.eng.Stop()
	return m, tea.Quit
}

func (m *boardModel) move(delta int) {
	switch m.tab {
	case tabTitles:
		m.titleSel = clamp(m.titleSel+delta, len(m.state.Titles))
	case tabTasks:
		m.taskSel = clamp(m.taskSel+delta, len(m.state.Tasks))
	}
}

func (m boardModel) selectedTitle() *engine.Title {
	if m.titleSel < 0 || m.titleSel >= len(m.state.Titles) {
		return nil
	}
	t := m.state.Titles[m.titleSel]
	return &t
}

func (m boardModel) propose() (tea.Model, tea.Cmd) {
	t := m.selectedTitle()
	if t == nil {
		return m, nil
	}
	if t.Owned {
		m.lastLog = "Already owned. Press c to copy it."
		return m, nil
	}
	if _, err := m.eng.Propose(t.ID); err != nil {
		m.lastLog = "Cannot buy: " + describe(err)
		return m, nil
	}
	m.sync()
	return m, m.actionCmd(engine.ActionViewTitle)
}

func (m boardModel) copySelected() (tea.Model, tea.Cmd) {
	t := m.selectedTitle()
	if t == nil {
		return m, nil
	}
	if !t.Owned {
		m.lastLog = "Only owned titles can be copied."
		return m, nil
	}
	if err := m.copy(t.Name); err != nil {
		m.log.Warnf("clipboard: %v", err)
		m.lastLog = "Copy failed: " + err.Error()
		return m, nil
	}
	m.lastLog = fmt.Sprintf("Copied %q to clipboard.", t.Name)
	return m, nil
}

func (m *boardModel) pushToast(n engine.Notification) {
	var text string
	switch n.Kind {
	case engine.NotifyTaskCompleted:
		text = fmt.Sprintf("%s %s  +%d", ui.IconDone, n.Title, n.Reward)
	case engine.NotifyPurchased:
		text = fmt.Sprintf("%s %s is yours", ui.IconCrown, n.Title)
	case engine.NotifyGrant:
		text = fmt.Sprintf("%s +%d coins granted", ui.IconCoin, n.Reward)
	default:
		text = n.Text
	}
	m.toasts = append(m.toasts, toast{text: text, until: m.now().Add(toastTTL)})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
}

func (m *boardModel) dropExpired() {
	now := m.now()
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.until) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// sync re-reads the engine snapshot and refits dependent widgets.
func (m *boardModel) sync() {
	atBottom := m.chatView.AtBottom() || len(m.state.Messages) == 0
	m.state = m.eng.Snapshot()
	m.titleSel = clamp(m.titleSel, len(m.state.Titles))
	m.taskSel = clamp(m.taskSel, len(m.state.Tasks))
	m.chatView.SetContent(m.renderChat(m.chatView.Width))
	if atBottom {
		m.chatView.GotoBottom()
	}
}

func (m *boardModel) resize() {
	w := m.mainWidth()
	m.input.SetWidth(w)
	m.chatView.Width = w
	h := m.height - 12
	if h < 4 {
		h = 4
	}
	m.chatView.Height = h
	m.chatView.SetContent(m.renderChat(w))
}

func (m boardModel) mainWidth() int {
	if m.width <= 0 {
		return 60
	}
	w := m.width - sidebarW - 4
	if w < 30 {
		w = 30
	}
	return w
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
