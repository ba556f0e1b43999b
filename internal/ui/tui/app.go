// Package tui is the terminal client. Every screen is drawn from its
// controller's resource; controller methods run on the dispatcher through
// the Runner, and resource changes wake the program up for a redraw.
package tui

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"academy/internal/app/resource"
	"academy/internal/app/screens"
	"academy/internal/domain/chat"
	"academy/internal/domain/injury"
	"academy/internal/domain/roster"
	"academy/internal/domain/stadium"
	"academy/internal/domain/tournament"
	"academy/internal/domain/wire"
)

type Screen int

const (
	ScreenInbox Screen = iota
	ScreenThread
	ScreenInjuries
	ScreenRoster
	ScreenStadiums
	ScreenTournaments
)

var screenTitles = map[Screen]string{
	ScreenInbox:       "Inbox",
	ScreenThread:      "Chat",
	ScreenInjuries:    "Injuries",
	ScreenRoster:      "Roster",
	ScreenStadiums:    "Stadiums",
	ScreenTournaments: "Tournaments",
}

var screenOrder = []Screen{ScreenInbox, ScreenThread, ScreenInjuries, ScreenRoster, ScreenStadiums, ScreenTournaments}

// Controllers are the screens the UI drives. Roster may be nil when the
// signed-in user has no team.
type Controllers struct {
	Conversations *screens.Conversations
	Injuries      *screens.Injuries
	Roster        *screens.Roster
	Stadiums      *screens.Stadiums
	Tournaments   *screens.Tournaments
	Live          *screens.LiveRouter
	NewThread     func(other wire.Identifier) *screens.Thread
}

// Runner executes fn on the controllers' dispatcher.
type Runner func(fn func())

type changedMsg struct{}

type statusMsg string

// notifier forwards messages to the program once Bind has run.
type notifier struct {
	mu      sync.Mutex
	program *tea.Program
}

func (n *notifier) send(msg tea.Msg) {
	n.mu.Lock()
	p := n.program
	n.mu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}

func watch[T any](slot *resource.Slot[T], n *notifier) func() {
	return slot.Subscribe(func(resource.Resource[T]) { n.send(changedMsg{}) })
}

type Model struct {
	ctx    context.Context
	c      Controllers
	run    Runner
	notify *notifier

	active Screen
	cursor map[Screen]int

	thread       *screens.Thread
	threadName   string
	detachThread func()

	input   textinput.Model
	spinner spinner.Model
	status  string
	width   int
	height  int
	theme   theme
}

func New(ctx context.Context, c Controllers, run Runner) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Write a message"
	input.CharLimit = 2000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ec27e"))

	return Model{
		ctx:     ctx,
		c:       c,
		run:     run,
		notify:  &notifier{},
		cursor:  make(map[Screen]int),
		input:   input,
		spinner: sp,
		theme:   newTheme(),
	}
}

// Bind connects the model to p and subscribes to every screen resource. The
// returned function unsubscribes.
func (m Model) Bind(p *tea.Program) func() {
	m.notify.mu.Lock()
	m.notify.program = p
	m.notify.mu.Unlock()

	var stops []func()
	if c := m.c.Conversations; c != nil {
		stops = append(stops, watch(c.List(), m.notify), watch(c.SendState(), m.notify))
	}
	if c := m.c.Injuries; c != nil {
		stops = append(stops, watch(c.List(), m.notify), watch(c.ActionState(), m.notify))
	}
	if c := m.c.Roster; c != nil {
		stops = append(stops, watch(c.Players(), m.notify), watch(c.ActionState(), m.notify))
	}
	if c := m.c.Stadiums; c != nil {
		stops = append(stops, watch(c.List(), m.notify))
	}
	if c := m.c.Tournaments; c != nil {
		stops = append(stops, watch(c.List(), m.notify))
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for _, s := range screenOrder {
		if s != ScreenThread && m.available(s) {
			cmds = append(cmds, m.refresh(s))
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-6)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case changedMsg:
		m.clampCursor()
		return m, nil
	case statusMsg:
		m.status = string(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		m.closeThread()
		return m, tea.Quit
	}
	if m.active == ScreenThread && m.input.Focused() {
		switch key {
		case "esc":
			m.input.Blur()
			m.active = ScreenInbox
			return m, nil
		case "enter":
			return m.sendInput()
		case "tab", "shift+tab":
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}
	switch key {
	case "q":
		m.closeThread()
		return m, tea.Quit
	case "tab", "right", "l":
		m.switchScreen(1)
	case "shift+tab", "left", "h":
		m.switchScreen(-1)
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "r":
		m.status = ""
		return m, m.refresh(m.active)
	case "i":
		if m.active == ScreenThread {
			m.input.Focus()
			return m, textinput.Blink
		}
	case "enter":
		if m.active == ScreenInbox {
			return m.openSelected()
		}
	case "x":
		if m.active == ScreenInjuries {
			return m, m.resolveSelected()
		}
	case "d":
		if m.active == ScreenRoster {
			return m, m.removeSelected()
		}
	}
	return m, nil
}

func (m Model) available(s Screen) bool {
	switch s {
	case ScreenInbox:
		return m.c.Conversations != nil
	case ScreenThread:
		return m.thread != nil
	case ScreenInjuries:
		return m.c.Injuries != nil
	case ScreenRoster:
		return m.c.Roster != nil
	case ScreenStadiums:
		return m.c.Stadiums != nil
	case ScreenTournaments:
		return m.c.Tournaments != nil
	}
	return false
}

func (m *Model) switchScreen(step int) {
	idx := 0
	for i, s := range screenOrder {
		if s == m.active {
			idx = i
		}
	}
	for range screenOrder {
		idx = (idx + step + len(screenOrder)) % len(screenOrder)
		if m.available(screenOrder[idx]) {
			m.active = screenOrder[idx]
			break
		}
	}
	if m.active == ScreenThread {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) moveCursor(step int) {
	m.cursor[m.active] += step
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := m.itemCount(m.active)
	c := m.cursor[m.active]
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	m.cursor[m.active] = c
}

func (m Model) itemCount(s Screen) int {
	switch s {
	case ScreenInbox:
		return len(m.conversations())
	case ScreenInjuries:
		return len(m.injuries())
	case ScreenRoster:
		return len(m.players())
	case ScreenStadiums:
		if m.c.Stadiums != nil {
			list, _ := m.c.Stadiums.List().State().Value()
			return len(list)
		}
	}
	return 0
}

func (m Model) conversations() []chat.Conversation {
	if m.c.Conversations == nil {
		return nil
	}
	list, _ := m.c.Conversations.List().State().Value()
	return list
}

func (m Model) injuries() []injury.Injury {
	if m.c.Injuries == nil {
		return nil
	}
	list, _ := m.c.Injuries.List().State().Value()
	return list
}

func (m Model) players() []roster.Player {
	if m.c.Roster == nil {
		return nil
	}
	list, _ := m.c.Roster.Players().State().Value()
	return list
}

// refresh reloads screen s on the dispatcher.
func (m Model) refresh(s Screen) tea.Cmd {
	ctx, c, n, thread := m.ctx, m.c, m.notify, m.thread
	var job func()
	switch s {
	case ScreenInbox:
		if c.Conversations != nil {
			job = func() { report(n, c.Conversations.Refresh(ctx)) }
		}
	case ScreenThread:
		if thread != nil {
			job = func() { thread.Refresh(ctx) }
		}
	case ScreenInjuries:
		if c.Injuries != nil {
			job = func() { c.Injuries.Load(ctx, "") }
		}
	case ScreenRoster:
		if c.Roster != nil {
			job = func() { report(n, c.Roster.Load(ctx)) }
		}
	case ScreenStadiums:
		if c.Stadiums != nil {
			job = func() { c.Stadiums.Load(ctx) }
		}
	case ScreenTournaments:
		if c.Tournaments != nil {
			job = func() { c.Tournaments.Load(ctx) }
		}
	}
	if job == nil {
		return nil
	}
	run := m.run
	return func() tea.Msg {
		run(job)
		return nil
	}
}

func report(n *notifier, err error) {
	if err != nil {
		n.send(statusMsg(err.Error()))
	}
}

func (m Model) openSelected() (tea.Model, tea.Cmd) {
	list := m.conversations()
	idx := m.cursor[ScreenInbox]
	if idx < 0 || idx >= len(list) || m.c.NewThread == nil {
		return m, nil
	}
	conv := list[idx]
	m.closeThread()

	t := m.c.NewThread(conv.OtherUserID)
	stops := []func(){watch(t.Messages(), m.notify), watch(t.SendState(), m.notify)}
	if m.c.Live != nil {
		stops = append(stops, m.c.Live.Attach(t))
	}
	m.thread = t
	m.threadName = conv.DisplayName()
	m.detachThread = func() {
		for _, stop := range stops {
			stop()
		}
	}
	m.active = ScreenThread
	m.input.Focus()

	ctx, n, inbox, other, run := m.ctx, m.notify, m.c.Conversations, conv.OtherUserID, m.run
	return m, tea.Batch(textinput.Blink, func() tea.Msg {
		run(func() {
			report(n, t.Open(ctx))
			if conv.UnreadCount > 0 {
				report(n, inbox.MarkRead(ctx, other))
			}
		})
		return nil
	})
}

func (m *Model) closeThread() {
	if m.detachThread != nil {
		m.detachThread()
	}
	m.thread, m.detachThread, m.threadName = nil, nil, ""
}

func (m Model) sendInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.thread == nil {
		return m, nil
	}
	m.input.Reset()
	ctx, n, t, run := m.ctx, m.notify, m.thread, m.run
	return m, func() tea.Msg {
		run(func() {
			_, err := t.Send(ctx, text)
			report(n, err)
		})
		return nil
	}
}

func (m Model) resolveSelected() tea.Cmd {
	list := m.injuries()
	idx := m.cursor[ScreenInjuries]
	if idx < 0 || idx >= len(list) || !list[idx].IsOpen() {
		return nil
	}
	ctx, n, c, id, run := m.ctx, m.notify, m.c.Injuries, list[idx].ID, m.run
	return func() tea.Msg {
		run(func() { report(n, c.SetStatus(ctx, id, injury.StatusResolved)) })
		return nil
	}
}

func (m Model) removeSelected() tea.Cmd {
	list := m.players()
	idx := m.cursor[ScreenRoster]
	if idx < 0 || idx >= len(list) {
		return nil
	}
	ctx, n, c, id, run := m.ctx, m.notify, m.c.Roster, list[idx].ID, m.run
	return func() tea.Msg {
		run(func() { report(n, c.RemovePlayer(ctx, id)) })
		return nil
	}
}

func (m Model) View() string {
	th := m.theme
	var tabs []string
	for _, s := range screenOrder {
		if !m.available(s) {
			continue
		}
		title := screenTitles[s]
		if s == ScreenThread && m.threadName != "" {
			title = m.threadName
		}
		if s == m.active {
			tabs = append(tabs, th.tabActive.Render(title))
		} else {
			tabs = append(tabs, th.tabInactive.Render(title))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, append([]string{th.header.Render("Academy")}, tabs...)...)

	panel := th.panel
	if m.width > 4 {
		panel = panel.Width(m.width - 4)
	}
	footer := th.footer.Render(m.help())
	if m.status != "" {
		footer = th.errorText.Render(m.status) + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, panel.Render(m.body()), footer)
}

func (m Model) body() string {
	th, spin, cursor := m.theme, m.spinner.View(), m.cursor[m.active]
	switch m.active {
	case ScreenInbox:
		if m.c.Conversations == nil {
			return ""
		}
		return renderResource(th, m.c.Conversations.List().State(), spin, func(list []chat.Conversation) string {
			lines := make([]string, 0, len(list))
			for _, c := range list {
				line := conversationLine(c)
				if c.UnreadCount > 0 {
					line = th.unread.Render(line)
				}
				lines = append(lines, line)
			}
			return renderList(th, lines, cursor, "No conversations yet")
		})
	case ScreenThread:
		return m.threadBody()
	case ScreenInjuries:
		return renderResource(th, m.c.Injuries.List().State(), spin, func(list []injury.Injury) string {
			lines := make([]string, 0, len(list))
			for _, i := range list {
				lines = append(lines, injuryLine(i))
			}
			return renderList(th, lines, cursor, "No injuries reported")
		})
	case ScreenRoster:
		return renderResource(th, m.c.Roster.Players().State(), spin, func(list []roster.Player) string {
			lines := make([]string, 0, len(list))
			for _, p := range list {
				lines = append(lines, playerLine(p))
			}
			return renderList(th, lines, cursor, "No players on this team")
		})
	case ScreenStadiums:
		return renderResource(th, m.c.Stadiums.List().State(), spin, func(list []stadium.Stadium) string {
			lines := make([]string, 0, len(list))
			for _, s := range list {
				lines = append(lines, stadiumLine(s))
			}
			return renderList(th, lines, cursor, "No stadiums")
		})
	case ScreenTournaments:
		return renderResource(th, m.c.Tournaments.List().State(), spin, func(list []tournament.Tournament) string {
			var lines []string
			for _, t := range list {
				lines = append(lines, tournamentLines(t)...)
			}
			if len(lines) == 0 {
				return th.muted.Render("No tournaments")
			}
			return strings.Join(lines, "\n")
		})
	}
	return ""
}

// threadBody keeps the cached transcript on screen while the server copy loads.
func (m Model) threadBody() string {
	if m.thread == nil {
		return ""
	}
	th, t := m.theme, m.thread
	local, _ := m.localUser()
	transcript := func(list []chat.Message) string {
		if len(list) == 0 {
			return th.muted.Render("No messages yet")
		}
		lines := make([]string, 0, len(list))
		for _, msg := range list {
			lines = append(lines, messageLine(th, local, msg))
		}
		return strings.Join(lines, "\n")
	}
	state := t.Messages().State()
	var out string
	if state.IsLoading() && len(t.Cached()) > 0 {
		out = transcript(t.Cached()) + "\n" + m.spinner.View() + " refreshing..."
	} else {
		out = renderResource(th, state, m.spinner.View(), transcript)
	}
	if send := t.SendState().State(); send.IsError() {
		out += "\n" + th.errorText.Render("Send failed: "+send.Message())
	}
	return out + "\n\n" + m.input.View()
}

func (m Model) localUser() (wire.Identifier, bool) {
	if m.c.Conversations == nil {
		return "", false
	}
	id := m.c.Conversations.LocalUserID()
	return id, !id.IsZero()
}

func (m Model) help() string {
	switch m.active {
	case ScreenInbox:
		return "enter open · r refresh · tab switch · q quit"
	case ScreenThread:
		if m.input.Focused() {
			return "enter send · esc back"
		}
		return "i write · r refresh · tab switch · q quit"
	case ScreenInjuries:
		return "x resolve · r refresh · tab switch · q quit"
	case ScreenRoster:
		return "d remove · r refresh · tab switch · q quit"
	}
	return "r refresh · tab switch · q quit"
}
