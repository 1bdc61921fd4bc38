// Package tui provides the interactive Bubble Tea timeline for subcal.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/logging"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/schedule"
	"github.com/theirongolddev/subcal/internal/selection"
	"github.com/theirongolddev/subcal/internal/source"
	"github.com/theirongolddev/subcal/internal/timeline"
	"github.com/theirongolddev/subcal/internal/tui/theme"
)

// Source supplies subscription snapshots.
type Source interface {
	List(ctx context.Context) ([]model.Subscription, error)
	Version(ctx context.Context) (int64, error)
}

// Writer persists subscriptions added from the timeline.
type Writer interface {
	Upsert(ctx context.Context, sub model.Subscription) error
}

// Highlights toggles the today, current month and current year accents.
type Highlights struct {
	Today bool
	Month bool
	Year  bool
}

// Options configures the timeline app.
type Options struct {
	Source     Source
	Writer     Writer // optional; enables the add form
	Timeline   timeline.Options
	SortMode   schedule.SortMode
	Highlights Highlights
	Currency   string        // chart currency; empty picks the largest
	Refresh    time.Duration // store polling interval; 0 disables
	Input      source.Options
	Logger     *zap.Logger
}

// dataLoadedMsg carries a store snapshot.
type dataLoadedMsg struct {
	subs     []model.Subscription
	version  int64
	err      error
	fromPoll bool
}

// unchangedMsg reports a poll that found the same store version.
type unchangedMsg struct{}

type pollMsg struct{}

type savedMsg struct {
	name string
	err  error
}

// App is the root Bubble Tea model.
type App struct {
	opts   Options
	engine *timeline.Engine
	keys   keyMap
	help   help.Model
	log    *zap.Logger

	width  int
	height int

	cursor   dayindex.Day
	placed   bool
	loaded   bool
	loadErr  error
	version  int64
	sortMode schedule.SortMode
	showHelp bool
	status   string

	spinner spinner.Model

	form   *huh.Form
	formIn *source.Input
}

const (
	minTerminalWidth = 40
	maxNameWidth     = 18
	minNameWidth     = 8
	loadTimeout      = 10 * time.Second
)

// NewApp creates the timeline model.
func NewApp(opts Options) App {
	log := logging.OrNop(opts.Logger)
	if opts.Timeline.Logger == nil {
		opts.Timeline.Logger = log
	}
	engine := timeline.New(opts.Timeline)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	mode := opts.SortMode
	if mode == "" {
		mode = schedule.SortNextCharge
	}

	return App{
		opts:     opts,
		engine:   engine,
		keys:     defaultKeyMap(),
		help:     help.New(),
		log:      log,
		cursor:   engine.Today(),
		sortMode: mode,
		spinner:  sp,
	}
}

// Run starts the app on the terminal and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		loadCmd(a.opts.Source, false),
		a.spinner.Tick,
		pollCmd(a.opts.Refresh),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width-4, 72))
		}
		if !a.placed && a.width > 0 {
			a.engine.ScrollToDay(a.cursor, a.visibleWidth())
			a.placed = true
		}
		a.keepCursorVisible()
		return a, nil

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case dataLoadedMsg:
		next := tea.Cmd(nil)
		if msg.fromPoll {
			next = pollCmd(a.opts.Refresh)
		}
		a.loaded = true
		if msg.err != nil {
			a.loadErr = msg.err
			a.log.Warn("loading subscriptions failed", zap.Error(msg.err))
			return a, next
		}
		a.loadErr = nil
		a.version = msg.version
		a.engine.SetSubscriptions(msg.subs, msg.version)
		a.log.Debug("subscriptions loaded", zap.Int("count", len(msg.subs)), zap.Int64("version", msg.version))
		return a, next

	case unchangedMsg:
		return a, pollCmd(a.opts.Refresh)

	case pollMsg:
		return a, checkVersionCmd(a.opts.Source, a.version)

	case savedMsg:
		if msg.err != nil {
			a.status = "save failed: " + msg.err.Error()
			return a, nil
		}
		a.status = "added " + msg.name
		return a, loadCmd(a.opts.Source, false)
	}

	if a.form != nil {
		return a.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.MouseMsg:
		return a.updateMouse(msg)
	case tea.KeyMsg:
		return a.updateKeys(msg)
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if key.Matches(msg, a.keys.Help) {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Left):
		a.moveCursor(a.cursor - 1)
	case key.Matches(msg, a.keys.Right):
		a.moveCursor(a.cursor + 1)
	case key.Matches(msg, a.keys.PrevMonth):
		a.moveCursor(dayindex.FromPartsValue(dayindex.AddMonthsClamped(a.cursor.Parts(), -1)))
	case key.Matches(msg, a.keys.NextMonth):
		a.moveCursor(dayindex.FromPartsValue(dayindex.AddMonthsClamped(a.cursor.Parts(), 1)))
	case key.Matches(msg, a.keys.ZoomIn):
		a.zoom(a.engine.ZoomIn, float64(a.cursor)+0.5)
	case key.Matches(msg, a.keys.ZoomOut):
		a.zoom(a.engine.ZoomOut, float64(a.cursor)+0.5)
	case key.Matches(msg, a.keys.SelectDay):
		a.toggle(selection.Day)
	case key.Matches(msg, a.keys.SelectMon):
		a.toggle(selection.Month)
	case key.Matches(msg, a.keys.SelectYear):
		a.toggle(selection.Year)
	case key.Matches(msg, a.keys.Clear):
		if a.engine.ClearSelection() {
			a.status = "selection cleared"
		}
	case key.Matches(msg, a.keys.Today):
		a.cursor = a.engine.Today()
		a.engine.ScrollToToday(a.visibleWidth())
		a.coverCursorYear()
	case key.Matches(msg, a.keys.Sort):
		a.sortMode = nextSortMode(a.sortMode)
		a.status = "sort: " + string(a.sortMode)
	case key.Matches(msg, a.keys.Reload):
		return a, loadCmd(a.opts.Source, false)
	case key.Matches(msg, a.keys.Add):
		if a.opts.Writer == nil {
			a.status = "read-only: adding is disabled"
			return a, nil
		}
		return a.openForm()
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.showHelp {
		return a, nil
	}
	gutter := a.gutterWidth()
	if msg.X < gutter {
		return a, nil
	}
	x := float64(msg.X-gutter)*CellPx + CellPx/2
	day := a.engine.Viewport().ScreenToDay(x)

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.zoom(a.engine.ZoomIn, a.engine.Viewport().ScreenToDayFloat(x))
	case tea.MouseButtonWheelDown:
		a.zoom(a.engine.ZoomOut, a.engine.Viewport().ScreenToDayFloat(x))
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress {
			a.moveCursor(day)
		}
	}
	return a, nil
}

// moveCursor sets the cursor, materializes its year and scrolls just enough
// to keep it on screen.
func (a *App) moveCursor(d dayindex.Day) {
	a.cursor = a.engine.Viewport().Bounds().Clamp(d)
	a.coverCursorYear()
	a.keepCursorVisible()
}

func (a *App) coverCursorYear() {
	a.engine.GrowRangeToCover(dayindex.YearStart(a.cursor))
	a.engine.GrowRangeToCover(dayindex.YearEnd(a.cursor))
}

func (a *App) keepCursorVisible() {
	if a.width == 0 {
		return
	}
	vp := a.engine.Viewport()
	visible := a.visibleWidth()
	left := vp.DayToScreen(float64(a.cursor))
	right := left + vp.DayWidth
	switch {
	case left < 0:
		vp.Scroll += left
	case right > visible:
		vp.Scroll += right - visible
	}
	vp.ClampScroll(visible)
	a.engine.Scrolled(visible)
}

func (a *App) zoom(step func(float64) bool, anchor float64) {
	if step(anchor) {
		a.engine.Scrolled(a.visibleWidth())
		a.keepCursorVisible()
	}
}

func (a *App) toggle(kind selection.Kind) {
	res := a.engine.Toggle(kind, a.cursor)
	if res.Removed {
		a.status = kind.String() + " removed"
		return
	}
	effective := a.engine.Selection().EffectiveKind(kind)
	a.status = effective.String() + " selected"
	if effective != kind {
		a.status += fmt.Sprintf(" (%s ticks hidden at this zoom)", kind)
	}
	if res.Dropped > 0 {
		a.status += fmt.Sprintf(", replaced %d overlapping", res.Dropped)
	}
}

func (a App) openForm() (tea.Model, tea.Cmd) {
	a.formIn = &source.Input{StartDate: a.cursor.ISO()}
	a.form = NewSubscriptionForm(a.formIn, nil, a.opts.Input)
	if a.width > 0 {
		a.form = a.form.WithWidth(min(a.width-4, 72))
	}
	return a, a.form.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		in := *a.formIn
		a.form, a.formIn = nil, nil
		sub, err := source.Normalize(in, nil, a.opts.Input)
		if err != nil {
			a.status = "Error: " + err.Error()
			return a, nil
		}
		return a, saveCmd(a.opts.Writer, sub)
	case huh.StateAborted:
		a.form, a.formIn = nil, nil
		return a, nil
	}
	return a, cmd
}

func nextSortMode(current schedule.SortMode) schedule.SortMode {
	for i, m := range schedule.SortModes {
		if m == current {
			return schedule.SortModes[(i+1)%len(schedule.SortModes)]
		}
	}
	return schedule.SortModes[0]
}

func (a App) nameWidth() int {
	return min(max(a.width/5, minNameWidth), maxNameWidth)
}

func (a App) gutterWidth() int {
	return a.nameWidth() + 1
}

func (a App) timelineCols() int {
	return max(a.width-a.gutterWidth(), 1)
}

// visibleWidth is the timeline area in viewport pixels.
func (a App) visibleWidth() float64 {
	return float64(a.timelineCols()) * CellPx
}

func loadCmd(src Source, fromPoll bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		version, err := src.Version(ctx)
		if err != nil {
			return dataLoadedMsg{err: fmt.Errorf("reading store version: %w", err), fromPoll: fromPoll}
		}
		subs, err := src.List(ctx)
		if err != nil {
			return dataLoadedMsg{err: fmt.Errorf("listing subscriptions: %w", err), fromPoll: fromPoll}
		}
		return dataLoadedMsg{subs: subs, version: version, fromPoll: fromPoll}
	}
}

// checkVersionCmd reloads only when the store version moved past known.
func checkVersionCmd(src Source, known int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		version, err := src.Version(ctx)
		if err != nil || version == known {
			return unchangedMsg{}
		}
		return loadCmd(src, true)()
	}
}

func pollCmd(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

func saveCmd(w Writer, sub model.Subscription) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if err := w.Upsert(ctx, sub); err != nil {
			return savedMsg{name: sub.Name, err: err}
		}
		return savedMsg{name: sub.Name}
	}
}
