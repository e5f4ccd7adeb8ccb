package output

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/volleyfire/volleyfire/internal/metrics"
)

const barRefreshInterval = 100 * time.Millisecond

var barCountStyle = lipgloss.NewStyle().Faint(true)

// IterationProgress renders an animated progress bar for runs bounded
// by a fixed iteration budget. It owns the terminal while running; the
// plain ticker line is the fallback for non-interactive output.
type IterationProgress struct {
	program  *tea.Program
	finished chan struct{}
}

// NewIterationProgress builds the bar over the shared live view.
// shutdown is invoked on a keyboard interrupt and should cancel the
// run context.
func NewIterationProgress(live *metrics.LiveStats, total int, out io.Writer, shutdown func()) *IterationProgress {
	model := iterationModel{
		live:     live,
		total:    total,
		bar:      progress.New(progress.WithDefaultGradient()),
		shutdown: shutdown,
	}
	return &IterationProgress{
		program:  tea.NewProgram(model, tea.WithOutput(out)),
		finished: make(chan struct{}),
	}
}

// Start runs the bar in a background goroutine.
func (p *IterationProgress) Start() {
	go func() {
		defer close(p.finished)
		_, _ = p.program.Run()
	}()
}

// Stop quits the bar and waits for the terminal to be released.
func (p *IterationProgress) Stop() {
	p.program.Quit()
	<-p.finished
}

type barTickMsg time.Time

func barTick() tea.Cmd {
	return tea.Tick(barRefreshInterval, func(t time.Time) tea.Msg { return barTickMsg(t) })
}

type iterationModel struct {
	live     *metrics.LiveStats
	total    int
	bar      progress.Model
	snap     metrics.LiveSnapshot
	shutdown func()
}

func (m iterationModel) Init() tea.Cmd { return barTick() }

func (m iterationModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.shutdown != nil {
				m.shutdown()
			}
			// Do not quit here; the caller quits once the run has
			// wound down, so the last counts still get drawn.
		}
		return m, nil
	case tea.WindowSizeMsg:
		width := msg.Width - 4
		if width < 10 {
			width = 10
		}
		m.bar.Width = width
		return m, nil
	case barTickMsg:
		m.snap = m.live.Snapshot()
		pct := 0.0
		if m.total > 0 {
			pct = float64(m.snap.Total) / float64(m.total)
			if pct > 1 {
				pct = 1
			}
		}
		return m, tea.Batch(m.bar.SetPercent(pct), barTick())
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m iterationModel) View() string {
	counts := fmt.Sprintf("%d/%d requests | failures %d | p95 %.1fms",
		m.snap.Total, m.total, m.snap.Failures, float64(m.snap.P95)/float64(time.Millisecond))
	return m.bar.View() + "\n" + barCountStyle.Render(counts) + "\n"
}
