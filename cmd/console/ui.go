package main

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/masquerade/pkg/mask"
	"github.com/jwebster45206/masquerade/pkg/mood"
	"github.com/jwebster45206/masquerade/pkg/queue"
	"github.com/jwebster45206/masquerade/pkg/state"
)

const (
	PlaceHolderText = "enter 0, close 0, room, mask MR.SH, talk 3, help..."
	maxFeedLines    = 500
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	session      *state.SessionState
	events       <-chan SSEEvent
	feed         []string
	feedViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int

	// Quit confirmation state
	showQuitModal bool
}

type sseEventMsg struct {
	event SSEEvent
	ok    bool
}

type sessionMsg struct {
	session *state.SessionState
	err     error
}

type eventSentMsg struct {
	eventType queue.EventType
	eventID   string
	err       error
}

var (
	feedPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	levelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

var titleCaser = cases.Title(language.English)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, ss *state.SessionState, events <-chan SSEEvent) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	feedVp := viewport.New(50, 20)
	feedVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		session:      ss,
		events:       events,
		textarea:     ta,
		feedViewport: feedVp,
		metaViewport: metaVp,
		feed: []string{
			titleStyle.Render("MASQUERADE"),
			"Blend in. Match the crowd's mask and ride the right elevator up.",
			"Type help for commands.",
		},
	}
}

// moodLabel turns "look_at_player" into "Look At Player".
func moodLabel(m mood.Mood) string {
	return titleCaser.String(strings.ReplaceAll(string(m), "_", " "))
}

var faces mask.CodeResolver = newFaceArt()

func maskLabel(m mask.Attributes) string {
	code := m.Code()
	if code == "" {
		return m.String()
	}
	if face, ok := faces.Resolve(code); ok {
		return code + " " + face
	}
	return code
}

func writeMetadata(ss *state.SessionState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("SESSION") + "\n\n")

	content.WriteString("ID:\n")
	content.WriteString(ss.ID.String()[:8] + "...\n")
	content.WriteString(fmt.Sprintf("Seed: %d\n\n", ss.Seed))

	content.WriteString(levelStyle.Render(fmt.Sprintf("Level %d", ss.Level)) + "\n")
	content.WriteString(fmt.Sprintf("Best: %d\n", ss.BestLevel))
	content.WriteString(fmt.Sprintf("Wins: %d  Losses: %d\n", ss.Wins, ss.Losses))
	content.WriteString(fmt.Sprintf("Clock: %.1fs\n\n", ss.Clock))

	content.WriteString("Your mask:\n")
	content.WriteString(maskLabel(ss.PlayerMask) + "\n\n")

	if d := ss.Design; d != nil {
		content.WriteString(fmt.Sprintf("Tier %d, %d guests\n", d.AttributeTier, d.NpcCount))
		content.WriteString(fmt.Sprintf("You ride elevator %d\n\n", d.PlayerElevatorIndex))

		content.WriteString("Elevators:\n")
		for _, e := range d.Elevators {
			label := "-"
			if e.Mask != nil {
				label = maskLabel(*e.Mask)
			}
			content.WriteString(fmt.Sprintf("• %d %s\n", e.Index, label))
		}
		content.WriteString("\n")
	}

	if len(ss.Occupied) > 0 {
		occupied := make([]string, len(ss.Occupied))
		for i, idx := range ss.Occupied {
			occupied[i] = strconv.Itoa(idx)
		}
		content.WriteString("Inside: " + strings.Join(occupied, ", ") + "\n\n")
	}

	if len(ss.Moods) > 0 {
		counts := make(map[mood.Mood]int)
		for _, m := range ss.Moods {
			counts[m]++
		}
		moods := make([]string, 0, len(counts))
		for m := range counts {
			moods = append(moods, string(m))
		}
		sort.Strings(moods)

		content.WriteString("Crowd:\n")
		for _, m := range moods {
			content.WriteString(fmt.Sprintf("• %s: %d\n", moodLabel(mood.Mood(m)), counts[mood.Mood(m)]))
		}
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• help: Help\n")
	content.WriteString("• copy: Copy seed\n")

	return content.String()
}

// formatEvent renders one stream event as a feed line. It returns "" for
// events the feed does not show.
func formatEvent(e SSEEvent) string {
	num := func(key string) int {
		if v, ok := e.Data[key].(float64); ok {
			return int(v)
		}
		return 0
	}
	str := func(key string) string {
		if v, ok := e.Data[key].(string); ok {
			return v
		}
		return ""
	}

	switch e.Type {
	case "connected":
		return promptStyle.Render("Connected to event stream.")
	case "level.generated":
		return levelStyle.Render(fmt.Sprintf("Level %d", num("level"))) +
			fmt.Sprintf(": %d guests, tier %d. Wear %s and board elevator %d.",
				num("npc_count"), num("tier"), str("player_mask"), num("player_elevator"))
	case "npc.reaction":
		return fmt.Sprintf("Guest %d: %s → %s", num("npc_id"),
			moodLabel(mood.Mood(str("from"))), moodLabel(mood.Mood(str("to"))))
	case "elevator.resolved":
		if success, _ := e.Data["success"].(bool); success {
			return successStyle.Render(fmt.Sprintf("Elevator %d goes up. On to level %d.", num("elevator"), num("next_level")))
		}
		return errorStyle.Render(fmt.Sprintf("Elevator %d was wrong. The crowd turns on you. Back to level %d.", num("elevator"), num("next_level")))
	case "elevator.doors":
		if open, _ := e.Data["open"].(bool); open {
			return promptStyle.Render(fmt.Sprintf("Elevator %d doors open.", num("elevator")))
		}
		return promptStyle.Render(fmt.Sprintf("Elevator %d doors close.", num("elevator")))
	case streamErrorEvent:
		return errorStyle.Render("Event stream lost: " + str("error"))
	}
	return ""
}

// refreshesSession reports whether an event changes the sidebar.
func refreshesSession(eventType string) bool {
	switch eventType {
	case "level.generated", "elevator.resolved", "elevator.doors":
		return true
	}
	return false
}

// parseCommand turns a typed command into a player event. A nil event with
// a nil error means the command is handled locally.
func parseCommand(input string, ss *state.SessionState) (*queue.PlayerEvent, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	event := &queue.PlayerEvent{SessionID: ss.ID}
	intArg := func() (*int, error) {
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s needs a number", fields[0])
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%s needs a number, got %q", fields[0], fields[1])
		}
		return &n, nil
	}

	var err error
	switch fields[0] {
	case "enter":
		event.Type = queue.EventPlayerEnteredElevator
		event.Elevator, err = intArg()
	case "exit":
		event.Type = queue.EventPlayerExitedElevator
		event.Elevator, err = intArg()
	case "close":
		event.Type = queue.EventElevatorDoorsClosed
		event.Elevator, err = intArg()
	case "talk":
		event.Type = queue.EventNpcInteracted
		event.NpcID, err = intArg()
	case "room":
		event.Type = queue.EventPlayerEnteredRoom
	case "mask":
		if len(fields) < 2 {
			return nil, fmt.Errorf("mask needs a code like MR.SH")
		}
		m, ok := mask.ParseCode(fields[1])
		if !ok {
			return nil, fmt.Errorf("unknown mask code %q", fields[1])
		}
		event.Type = queue.EventMaskSelected
		event.Mask = &m
	case "help", "copy", "refresh":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown command %q, type help", fields[0])
	}
	if err != nil {
		return nil, err
	}
	return event, event.Validate()
}

const helpText = `Commands:
• enter N  - step into elevator N
• exit N   - step out of elevator N
• close N  - force elevator N's doors shut
• room     - walk into the ballroom
• mask CODE - put on a mask, e.g. MR.SH
• talk N   - approach guest N
• copy     - copy the session seed
• refresh  - reload the sidebar
• Ctrl+C   - quit

How to play:
• Walk into the room and watch the crowd react
• Find the mask most guests wear
• Board the elevator showing that mask before the doors close`

func (m *ConsoleUI) appendFeed(line string) {
	if line == "" {
		return
	}
	m.feed = append(m.feed, line)
	if len(m.feed) > maxFeedLines {
		m.feed = m.feed[len(m.feed)-maxFeedLines:]
	}
	m.writeFeedContent()
}

// writeFeedContent rebuilds the feed for the current viewport width
func (m *ConsoleUI) writeFeedContent() {
	width := m.feedViewport.Width - 6 // Account for left(3) + right(3) padding
	if width < 10 {
		width = 10
	}

	var content strings.Builder
	for _, line := range m.feed {
		content.WriteString(wordwrap.String(line, width) + "\n")
	}
	m.feedViewport.SetContent(content.String())
	m.feedViewport.GotoBottom()
}

func (m ConsoleUI) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.events
		return sseEventMsg{event: e, ok: ok}
	}
}

func (m ConsoleUI) refreshSession() tea.Cmd {
	return func() tea.Msg {
		ss, err := getSession(m.client, m.config.APIBaseURL, m.session.ID)
		return sessionMsg{ss, err}
	}
}

func (m ConsoleUI) send(event *queue.PlayerEvent) tea.Cmd {
	return func() tea.Msg {
		id, err := sendEvent(m.client, m.config.APIBaseURL, event)
		return eventSentMsg{eventType: event.Type, eventID: id, err: err}
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForEvent())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.feedViewport, vpCmd = m.feedViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		feedWidth := int(float64(m.width)*0.7) - 4
		metaWidth := m.width - feedWidth - 6

		m.feedViewport.Width = feedWidth - 2
		m.feedViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(feedWidth - 4)

		m.ready = true
		m.writeFeedContent()
		m.metaViewport.SetContent(writeMetadata(m.session))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			return m.handleCommand(input)
		}

	case sseEventMsg:
		if !msg.ok {
			m.appendFeed(noticeStyle.Render("Event stream closed."))
			return m, nil
		}
		m.appendFeed(formatEvent(msg.event))
		cmds := []tea.Cmd{m.waitForEvent()}
		if refreshesSession(msg.event.Type) {
			cmds = append(cmds, m.refreshSession())
		}
		return m, tea.Batch(cmds...)

	case sessionMsg:
		if msg.err != nil {
			m.appendFeed(errorStyle.Render("Error: " + msg.err.Error()))
		} else if msg.session != nil {
			m.session = msg.session
			m.metaViewport.SetContent(writeMetadata(m.session))
		}
		return m, nil

	case eventSentMsg:
		if msg.err != nil {
			m.appendFeed(errorStyle.Render("Error: " + msg.err.Error()))
		}
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.feedViewport, vpCmd = m.feedViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	m.appendFeed(userStyle.Render("> " + input))

	event, err := parseCommand(input, m.session)
	if err != nil {
		m.appendFeed(errorStyle.Render(err.Error()))
		return m, nil
	}
	if event != nil {
		return m, m.send(event)
	}

	switch strings.Fields(strings.ToLower(input))[0] {
	case "help":
		m.appendFeed(titleStyle.Render("Help:") + "\n" + helpText)
	case "copy":
		if err := clipboard.WriteAll(strconv.FormatInt(m.session.Seed, 10)); err != nil {
			m.appendFeed(errorStyle.Render("Clipboard unavailable: " + err.Error()))
		} else {
			m.appendFeed(noticeStyle.Render(fmt.Sprintf("Seed %d copied.", m.session.Seed)))
		}
	case "refresh":
		return m, m.refreshSession()
	}
	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case sseEventMsg:
		// Keep draining the stream behind the modal.
		if msg.ok {
			m.appendFeed(formatEvent(msg.event))
			return m, m.waitForEvent()
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Party?"))
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("You reached level %d.", m.session.BestLevel))
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	feedWidth := int(float64(m.width)*0.7) - 4
	metaWidth := m.width - feedWidth - 6

	feedPanel := feedPanelStyle.Width(feedWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.feedViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(1, feedWidth-4))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, feedPanel, metaPanel)
}
