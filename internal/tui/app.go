package tui

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmtidy/internal/ai"
	"github.com/nikbrunner/bmtidy/internal/exporter"
	"github.com/nikbrunner/bmtidy/internal/model"
	"github.com/nikbrunner/bmtidy/internal/tui/layout"
	"github.com/nikbrunner/bmtidy/internal/workflow"
)

// inputMode selects what the text input at the bottom is editing.
type inputMode int

const (
	inputNone inputMode = iota
	inputFilter
	inputFolder
	inputMove
)

// Messages produced by background analysis.
type analysisProgressMsg struct {
	processed int
	total     int
}

type analysisDoneMsg struct {
	recs []ai.Recommendation
	err  error
}

type suggestionsDoneMsg struct {
	suggestions []ai.SuggestedFolder
	err         error
}

// App is the main bubbletea model for the cleanup workflow.
type App struct {
	session  *workflow.Session
	analyzer *ai.Analyzer
	keys     KeyMap
	styles   Styles
	layout   layout.LayoutConfig

	// List state
	cursor  int
	visible []model.Record

	// Input state
	inputMode inputMode
	input     textinput.Model

	// Analysis state
	spin      spinner.Model
	processed int
	total     int
	events    chan tea.Msg

	// For gg command
	lastKeyWasG bool

	status    string
	statusErr bool
	exported  bool

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Session  *workflow.Session
	Analyzer *ai.Analyzer // nil disables AI actions
	Keys     *KeyMap      // optional, uses default if nil
	Styles   *Styles      // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	cfg := layout.DefaultConfig()

	input := textinput.New()
	input.CharLimit = cfg.Input.PathCharLimit
	input.Width = cfg.Input.PathWidth

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	app := App{
		session:  params.Session,
		analyzer: params.Analyzer,
		keys:     keys,
		styles:   styles,
		layout:   cfg,
		input:    input,
		spin:     spin,
		events:   make(chan tea.Msg, 16),
		width:    80,
		height:   24,
	}

	app.refreshVisible()
	return app
}

// Session returns the underlying workflow session, for persisting on exit.
func (a App) Session() *workflow.Session {
	return a.session
}

// Exported reports whether the session was exported and reset. The saved
// session blob should be discarded instead of rewritten in that case.
func (a App) Exported() bool {
	return a.exported
}

// refreshVisible rebuilds the visible record list and clamps the cursor.
func (a *App) refreshVisible() {
	a.visible = a.session.FilteredRecords()
	a.clampCursor()
}

func (a *App) clampCursor() {
	max := a.listLen() - 1
	if a.cursor > max {
		a.cursor = max
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// listLen is the length of whatever list the cursor moves through in the
// current stage.
func (a *App) listLen() int {
	if a.session.Stage() == workflow.StageOrganize {
		return len(a.session.Suggestions())
	}
	return len(a.visible)
}

// cursorRecord returns the record under the cursor, or nil.
func (a *App) cursorRecord() *model.Record {
	if a.cursor < 0 || a.cursor >= len(a.visible) {
		return nil
	}
	return &a.visible[a.cursor]
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusErr = false
}

func (a *App) setError(err error) {
	a.status = err.Error()
	a.statusErr = true
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		if !a.session.Analyzing() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case analysisProgressMsg:
		a.processed = msg.processed
		a.total = msg.total
		return a, a.waitForEvent()

	case analysisDoneMsg:
		a.session.EndAnalysis()
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		a.session.SetRecommendations(msg.recs)
		a.refreshVisible()
		a.setStatus("analysis complete")
		return a, nil

	case suggestionsDoneMsg:
		a.session.EndAnalysis()
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		a.session.SetSuggestions(msg.suggestions)
		a.clampCursor()
		a.setStatus("folder suggestions ready")
		return a, nil

	case tea.KeyMsg:
		if a.inputMode != inputNone {
			return a.updateInput(msg)
		}
		return a.updateList(msg)
	}

	return a, nil
}

// updateInput handles keys while the text input is active.
func (a App) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.inputMode = inputNone
		a.input.Blur()
		return a, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(a.input.Value())
		mode := a.inputMode
		a.inputMode = inputNone
		a.input.Blur()
		a.applyInput(mode, value)
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) applyInput(mode inputMode, value string) {
	switch mode {
	case inputFilter:
		f := a.session.Filters()
		f.Text = value
		a.session.SetFilters(f)
		a.refreshVisible()
		if value == "" {
			a.setStatus("filter cleared")
		} else {
			a.setStatus("filter: " + value)
		}

	case inputFolder:
		path := parsePath(value)
		if err := a.session.CreateFolder(path); err != nil {
			a.setError(err)
			return
		}
		a.setStatus("created folder " + model.PathString(path))

	case inputMove:
		path := parsePath(value)
		if err := a.session.MoveSelected(path); err != nil {
			a.setError(err)
			return
		}
		a.refreshVisible()
		a.setStatus("moved to " + model.PathString(path))
	}
}

// parsePath splits a slash-separated folder path into segments.
func parsePath(value string) []string {
	var path []string
	for _, segment := range strings.Split(value, "/") {
		if s := strings.TrimSpace(segment); s != "" {
			path = append(path, s)
		}
	}
	return path
}

// updateList handles keys in normal list mode.
func (a App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		if a.cursor < a.listLen()-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Bottom):
		if n := a.listLen(); n > 0 {
			a.cursor = n - 1
		}

	case key.Matches(msg, a.keys.NextStage):
		a.session.NextStage()
		a.cursor = 0
		a.refreshVisible()

	case key.Matches(msg, a.keys.PrevStage):
		a.session.PrevStage()
		a.cursor = 0
		a.refreshVisible()

	case key.Matches(msg, a.keys.Undo):
		if err := a.session.Undo(); err != nil {
			a.setError(err)
		} else {
			a.refreshVisible()
			a.setStatus("undone")
		}

	case key.Matches(msg, a.keys.Filter):
		return a.startInput(inputFilter, "filter: ", a.session.Filters().Text)

	default:
		switch a.session.Stage() {
		case workflow.StageReview:
			return a.updateReview(msg)
		case workflow.StageOrganize:
			return a.updateOrganize(msg)
		case workflow.StagePreview:
			return a.updatePreview(msg)
		}
	}

	return a, nil
}

func (a App) startInput(mode inputMode, prompt, value string) (tea.Model, tea.Cmd) {
	a.inputMode = mode
	a.input.Prompt = prompt
	a.input.SetValue(value)
	a.input.CursorEnd()
	return a, a.input.Focus()
}

// updateReview handles stage-specific keys in the review stage.
func (a App) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.ToggleSelect):
		if rec := a.cursorRecord(); rec != nil {
			a.session.ToggleSelect(rec.ID)
		}

	case key.Matches(msg, a.keys.SelectAll):
		ids := make([]string, len(a.visible))
		for i, r := range a.visible {
			ids[i] = r.ID
		}
		a.session.SelectAll(ids)

	case key.Matches(msg, a.keys.DeselectAll):
		a.session.DeselectAll()

	case key.Matches(msg, a.keys.SelectDeletes):
		a.session.SelectByRecommendation(ai.RecommendDelete)
		a.setStatus("selected AI delete recommendations")

	case key.Matches(msg, a.keys.Delete):
		n := a.session.SelectedCount()
		if n == 0 {
			a.setStatus("nothing selected")
			break
		}
		if err := a.session.DeleteSelected(); err != nil {
			a.setError(err)
			break
		}
		a.refreshVisible()
		a.setStatus("deleted " + plural(n, "record"))

	case key.Matches(msg, a.keys.Analyze):
		return a.startAnalysis()

	case key.Matches(msg, a.keys.Accept):
		if rec := a.cursorRecord(); rec != nil {
			a.session.AcceptRecommendation(rec.ID)
		}

	case key.Matches(msg, a.keys.Reject):
		if rec := a.cursorRecord(); rec != nil {
			a.session.RejectRecommendation(rec.ID)
		}

	case key.Matches(msg, a.keys.YankURL):
		if rec := a.cursorRecord(); rec != nil {
			if err := clipboard.WriteAll(rec.URL); err != nil {
				a.setError(err)
			} else {
				a.setStatus("copied URL")
			}
		}
	}

	return a, nil
}

// updateOrganize handles stage-specific keys in the organize stage.
func (a App) updateOrganize(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Suggest):
		return a.startSuggestions()

	case key.Matches(msg, a.keys.Apply):
		suggestions := a.session.Suggestions()
		if a.cursor < 0 || a.cursor >= len(suggestions) {
			break
		}
		s := suggestions[a.cursor]
		if err := a.session.ApplySuggestion(s); err != nil {
			a.setError(err)
			break
		}
		a.refreshVisible()
		a.setStatus("applied " + s.Name)

	case key.Matches(msg, a.keys.NewFolder):
		return a.startInput(inputFolder, "new folder path: ", "")

	case key.Matches(msg, a.keys.Move):
		if a.session.SelectedCount() == 0 {
			a.setStatus("nothing selected")
			break
		}
		return a.startInput(inputMove, "move to path: ", "")
	}

	return a, nil
}

// updatePreview handles stage-specific keys in the preview stage.
func (a App) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Export) {
		path, err := exporter.DefaultExportPath()
		if err != nil {
			a.setError(err)
			return a, nil
		}
		html := exporter.ExportHTML(a.session.ExportRecords())
		if err := os.WriteFile(path, []byte(html), 0644); err != nil {
			a.setError(err)
			return a, nil
		}
		a.session.Reset()
		a.exported = true
		a.cursor = 0
		a.refreshVisible()
		a.setStatus("exported to " + path)
	}

	return a, nil
}

// startAnalysis launches a background recommendation run.
func (a App) startAnalysis() (tea.Model, tea.Cmd) {
	if a.analyzer == nil {
		a.setStatus("AI not configured (set an API key)")
		return a, nil
	}
	if !a.session.BeginAnalysis() {
		a.setStatus("analysis already running")
		return a, nil
	}

	records := a.session.ActiveRecords()
	a.processed = 0
	a.total = len(records)
	a.setStatus("")

	analyzer := a.analyzer
	events := a.events
	run := func() tea.Msg {
		recs, err := analyzer.AnalyzeRecords(context.Background(), records, false,
			func(processed, total int) {
				events <- analysisProgressMsg{processed, total}
			})
		return analysisDoneMsg{recs: recs, err: err}
	}

	return a, tea.Batch(a.spin.Tick, run, a.waitForEvent())
}

// startSuggestions launches a background folder suggestion run.
func (a App) startSuggestions() (tea.Model, tea.Cmd) {
	if a.analyzer == nil {
		a.setStatus("AI not configured (set an API key)")
		return a, nil
	}
	if !a.session.BeginAnalysis() {
		a.setStatus("analysis already running")
		return a, nil
	}

	records := a.session.ActiveRecords()
	a.processed = 0
	a.total = len(records)
	a.setStatus("")

	analyzer := a.analyzer
	events := a.events
	run := func() tea.Msg {
		suggestions, err := analyzer.SuggestFolders(context.Background(), records, false,
			func(processed, total int) {
				events <- analysisProgressMsg{processed, total}
			})
		return suggestionsDoneMsg{suggestions: suggestions, err: err}
	}

	return a, tea.Batch(a.spin.Tick, run, a.waitForEvent())
}

// waitForEvent forwards the next background event to the update loop.
func (a App) waitForEvent() tea.Cmd {
	events := a.events
	return func() tea.Msg {
		return <-events
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
