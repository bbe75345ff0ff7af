package output

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/torosent/volley/internal/metrics"
)

const barRefresh = 100 * time.Millisecond

type (
	refreshMsg time.Time
	finishMsg  struct{}
)

// ProgressBar is an animated terminal progress bar for interactive sessions.
type ProgressBar struct {
	program  *tea.Program
	done     *atomic.Int64
	finished chan struct{}
	once     sync.Once
	started  atomic.Bool
}

// NewProgressBar builds a bar over total requests drawn on w. collector may
// be nil.
func NewProgressBar(collector *metrics.Collector, total int, w io.Writer) *ProgressBar {
	done := new(atomic.Int64)
	m := newBarModel(collector, int64(total), done)
	return &ProgressBar{
		program: tea.NewProgram(m,
			tea.WithInput(nil),
			tea.WithOutput(w),
			tea.WithoutSignalHandler(),
		),
		done:     done,
		finished: make(chan struct{}),
	}
}

// Start runs the bar in a background goroutine.
func (b *ProgressBar) Start() {
	if !b.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(b.finished)
		_, _ = b.program.Run()
	}()
}

// Tick records one finished request.
func (b *ProgressBar) Tick() {
	b.done.Add(1)
}

// Stop renders the final frame and waits for the bar to exit.
func (b *ProgressBar) Stop() {
	if !b.started.Load() {
		return
	}
	b.once.Do(func() {
		b.program.Send(finishMsg{})
		<-b.finished
	})
}

type barModel struct {
	bar       progress.Model
	collector *metrics.Collector
	total     int64
	done      *atomic.Int64
	start     time.Time
	finished  bool
}

func newBarModel(collector *metrics.Collector, total int64, done *atomic.Int64) barModel {
	return barModel{
		bar:       progress.New(progress.WithDefaultGradient()),
		collector: collector,
		total:     total,
		done:      done,
		start:     time.Now(),
	}
}

func refresh() tea.Cmd {
	return tea.Tick(barRefresh, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m barModel) Init() tea.Cmd {
	return refresh()
}

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		if m.finished {
			return m, nil
		}
		return m, refresh()
	case finishMsg:
		m.finished = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}
		if m.bar.Width < 10 {
			m.bar.Width = 10
		}
		return m, nil
	}
	return m, nil
}

func (m barModel) percent() float64 {
	if m.total <= 0 {
		return 1
	}
	pct := float64(m.done.Load()) / float64(m.total)
	if pct > 1 {
		pct = 1
	}
	return pct
}

func (m barModel) View() string {
	line := fmt.Sprintf("%s %d/%d", m.bar.ViewAs(m.percent()), m.done.Load(), m.total)
	if m.collector != nil {
		snap := m.collector.Snapshot(time.Since(m.start))
		line += fmt.Sprintf("  %.1f req/s  %d failed", snap.RequestsPerSec, snap.Failures)
	}
	return line + "\n"
}
