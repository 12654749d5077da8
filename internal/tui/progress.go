package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/benchload/pkg/benchload"
)

type tableStartedMsg struct {
	table        string
	index, total int
}

type rowsCommittedMsg struct {
	rows int64
}

type tableFinishedMsg struct {
	table   string
	rows    int64
	elapsed time.Duration
}

type tableFailedMsg struct {
	table string
	err   error
}

// progressModel shows a line per finished table and a spinner for the table
// being loaded. Finished lines are kept in the model so the final frame,
// rendered on quit, always includes them.
type progressModel struct {
	spinner spinner.Model
	lines   []string

	table string
	index int
	total int
	rows  int64
}

func newProgressModel() progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return progressModel{spinner: s}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tableStartedMsg:
		m.table = msg.table
		m.index = msg.index
		m.total = msg.total
		m.rows = 0
		return m, nil
	case rowsCommittedMsg:
		m.rows = msg.rows
		return m, nil
	case tableFinishedMsg:
		m.table = ""
		m.lines = append(m.lines, finishedLine(msg.table, msg.rows, msg.elapsed))
		return m, nil
	case tableFailedMsg:
		m.table = ""
		m.lines = append(m.lines, failedLine(msg.table, msg.err))
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	for _, l := range m.lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	if m.table != "" {
		fmt.Fprintf(&b, "%s [%d/%d] %s", m.spinner.View(), m.index+1, m.total, TableStyle.Render(m.table))
		if m.rows > 0 {
			b.WriteString(MutedStyle.Render(fmt.Sprintf("  %s rows committed", FormatRows(m.rows))))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func finishedLine(table string, rows int64, elapsed time.Duration) string {
	return fmt.Sprintf("%s %s %s",
		SuccessStyle.Render(SymbolCheck),
		table,
		MutedStyle.Render(fmt.Sprintf("%s rows in %s", FormatRows(rows), FormatElapsed(elapsed))))
}

func failedLine(table string, err error) string {
	return fmt.Sprintf("%s %s %s", ErrorStyle.Render(SymbolCross), table, MutedStyle.Render(err.Error()))
}

// TerminalProgress renders load progress as a live terminal display.
// The program takes no keyboard input and leaves signal handling to the
// caller, so Ctrl+C cancels the run context as usual.
type TerminalProgress struct {
	program *tea.Program
	done    chan struct{}
	stop    sync.Once

	mu      sync.Mutex
	started time.Time
}

// NewTerminalProgress starts rendering to out. Stop must be called to
// restore the terminal.
func NewTerminalProgress(out io.Writer) *TerminalProgress {
	p := &TerminalProgress{
		program: tea.NewProgram(newProgressModel(),
			tea.WithOutput(out),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
	return p
}

func (p *TerminalProgress) TableStarted(table string, index, total int) {
	p.mu.Lock()
	p.started = time.Now()
	p.mu.Unlock()
	p.program.Send(tableStartedMsg{table: table, index: index, total: total})
}

func (p *TerminalProgress) RowsCommitted(_ string, rows int64) {
	p.program.Send(rowsCommittedMsg{rows: rows})
}

func (p *TerminalProgress) TableFinished(table string, rows int64) {
	p.mu.Lock()
	elapsed := time.Since(p.started)
	p.mu.Unlock()
	p.program.Send(tableFinishedMsg{table: table, rows: rows, elapsed: elapsed})
}

func (p *TerminalProgress) TableFailed(table string, err error) {
	p.program.Send(tableFailedMsg{table: table, err: err})
}

// Stop waits for pending output to be rendered and releases the terminal.
func (p *TerminalProgress) Stop() {
	p.stop.Do(func() {
		p.program.Quit()
		<-p.done
	})
}

var _ benchload.Progress = (*TerminalProgress)(nil)
