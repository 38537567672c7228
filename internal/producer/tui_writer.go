package producer

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"mailbox-bridge/internal/command"
	"mailbox-bridge/internal/mailbox"
	"mailbox-bridge/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// snapshotMsg carries the latest snapshot for the attribute table.
type snapshotMsg struct{ snap telemetry.Snapshot }

// logMsg carries a log line for the viewport.
type logMsg struct{ line string }

const maxLogLines = 200

// TUIWriter renders the live snapshot and command log in a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
	now        func() time.Time
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter() *TUIWriter {
	w := &TUIWriter{done: make(chan struct{}), now: time.Now}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements SnapshotWriter.
func (w *TUIWriter) Write(snap telemetry.Snapshot) error {
	w.program.Send(snapshotMsg{snap: snap.Clone()})
	line := fmt.Sprintf("%s[%s]%s snapshot", colorGray, w.now().Format(time.RFC3339), colorReset)
	for _, k := range snap.Keys() {
		line += fmt.Sprintf(" %s%s=%v%s", colorCyan, k, snap[k], colorReset)
	}
	w.program.Send(logMsg{line: line})
	return nil
}

// WriteCommand implements CommandSink.
func (w *TUIWriter) WriteCommand(cmd mailbox.Command, outcome command.Outcome) error {
	oc := colorGreen
	switch outcome {
	case command.Unrecognized:
		oc = colorYellow
	case command.Failed:
		oc = colorRed
	}
	line := fmt.Sprintf("%s[%s]%s %sCMD%s %s%s%s params=%q %s%s%s",
		colorGray, w.now().Format(time.RFC3339), colorReset,
		colorMagenta, colorReset,
		colorBlue, cmd.Name, colorReset,
		cmd.Parameters,
		oc, outcome, colorReset)
	w.program.Send(logMsg{line: line})
	return nil
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

type tuiModel struct {
	table  table.Model
	vp     viewport.Model
	logs   []string
	snap   telemetry.Snapshot
	wrap   bool
	width  int
	height int
}

func newTUIModel() tuiModel {
	cols := []table.Column{
		{Title: "Attribute", Width: 24},
		{Title: "Value", Width: 20},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(2))
	return tuiModel{table: t, vp: viewport.New(0, 0)}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.resize()
		m.refreshViewport()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
		case "up", "k":
			m.vp.LineUp(1)
		case "down", "j":
			m.vp.LineDown(1)
		}
	case snapshotMsg:
		m.snap = msg.snap
		rows := make([]table.Row, 0, len(m.snap))
		for _, k := range m.snap.Keys() {
			rows = append(rows, table.Row{k, fmt.Sprintf("%v", m.snap[k])})
		}
		m.table.SetRows(rows)
		m.table.SetHeight(len(rows) + 1)
		m.resize()
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > maxLogLines {
			m.logs = m.logs[len(m.logs)-maxLogLines:]
		}
		m.refreshViewport()
		m.vp.GotoBottom()
	}
	return m, nil
}

func (m *tuiModel) resize() {
	h := m.height - m.table.Height() - 4
	if h < 3 {
		h = 3
	}
	m.vp.Height = h
}

func (m *tuiModel) refreshViewport() {
	content := ""
	for i, l := range m.logs {
		if i > 0 {
			content += "\n"
		}
		if m.wrap && m.vp.Width > 0 {
			content += wordwrap.String(l, m.vp.Width)
		} else {
			content += l
		}
	}
	m.vp.SetContent(content)
}

func (m tuiModel) View() string {
	header := titleStyle.Render("mailbox-bridge producer") + "  (q quit, w wrap, j/k scroll)"
	return header + "\n" + m.table.View() + "\n" + m.vp.View()
}
