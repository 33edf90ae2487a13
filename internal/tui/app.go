package tui

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	lipglossv2 "charm.land/lipgloss/v2"
	"github.com/gosimple/slug"

	"github.com/skisplace/epoxyview/internal/api"
	"github.com/skisplace/epoxyview/internal/config"
	"github.com/skisplace/epoxyview/internal/hooks"
	"github.com/skisplace/epoxyview/internal/journal"
	"github.com/skisplace/epoxyview/internal/logger"
	"github.com/skisplace/epoxyview/internal/render"
	"github.com/skisplace/epoxyview/internal/wizard"
)

// App is the main Bubbletea model. It owns the wizard controller and wires
// async task completions back into it; all state transitions happen in the
// controller, the app only translates terminal events and schedules IO.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	client *api.Client
	orch   *render.Orchestrator
	jr     *journal.Journal // nil unless debug
	hooks  *hooks.Config    // nil when no hooks file exists

	ctrl *wizard.Controller

	theme Theme
	s     styles

	upload    *uploadStep
	system    *systemStep
	style     *styleStep
	rendering *renderingStep
	result    *resultStep

	spin        spinner.Model
	help        *helpOverlay
	helpVisible bool
	notice      string // inline guard-violation notice, cleared on next input

	width, height int
	quitting      bool
}

// NewApp creates the TUI application. jr may be nil.
func NewApp(ctx context.Context, cfg *config.Config, client *api.Client, jr *journal.Journal) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	theme := DefaultTheme()
	sp.Style = lipglossv2.NewStyle().Foreground(lipglossv2.Color(theme.Accent))

	ctrl := wizard.NewController(cfg.Systems)

	a := &App{
		ctx:       ctx,
		cfg:       cfg,
		client:    client,
		orch:      render.New(client, cfg.ProjectID, cfg.Debug),
		jr:        jr,
		ctrl:      ctrl,
		theme:     theme,
		s:         buildStyles(theme),
		upload:    newUploadStep(),
		style:     newStyleStep(),
		rendering: newRenderingStep(),
		result:    newResultStep(),
		spin:      sp,
		help:      newHelpOverlay(),
		width:     80,
		height:    24,
	}

	ctrl.OnTransition(func(from, to wizard.Step) {
		logger.Debug("wizard: %s -> %s", from, to)
		jr.Record(ctx, journal.EventTransition, to.String(), map[string]string{"from": from.String()})
	})

	return a
}

func (a *App) Init() tea.Cmd {
	if err := a.cfg.Validate(); err != nil {
		a.ctrl.SetError(&wizard.Error{
			Kind:    wizard.ErrConfigMissing,
			Message: err.Error(),
			Err:     err,
		})
		return nil
	}
	return a.fetchTheme()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	st := a.ctrl.State()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.upload.SetSize(msg.Width, msg.Height)
		a.result.setSize(msg.Width, msg.Height)
		a.help.setSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyPressMsg:
		a.notice = ""
		switch msg.String() {
		case "ctrl+c":
			a.quitting = true
			return a, tea.Quit
		case "q":
			// The mask editor does not bind q, so quitting is safe there too.
			if !a.helpVisible {
				a.quitting = true
				return a, tea.Quit
			}
		case "?":
			a.helpVisible = !a.helpVisible
			if a.helpVisible {
				a.help.open()
			}
			return a, nil
		}
		if a.helpVisible {
			if msg.String() == "esc" {
				a.helpVisible = false
				return a, nil
			}
			return a, a.help.Update(msg)
		}
		if st.LastError != nil {
			return a, errorOverlay{}.Update(msg)
		}
		return a, a.updateStep(msg)

	case tea.MouseWheelMsg:
		if a.helpVisible {
			return a, a.help.Update(msg)
		}
		return a, nil

	case tea.MouseClickMsg, tea.MouseMotionMsg, tea.MouseReleaseMsg:
		if a.helpVisible {
			return a, nil
		}
		if st.LastError == nil && st.Step == wizard.StepResult {
			return a, a.result.Update(msg, st)
		}
		return a, nil

	case spinner.TickMsg:
		if st.StylesLoading || st.Step == wizard.StepRendering {
			var cmd tea.Cmd
			a.spin, cmd = a.spin.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, a.handleAppMsg(msg)
}

// updateStep routes key input to the active step.
func (a *App) updateStep(msg tea.KeyPressMsg) tea.Cmd {
	st := a.ctrl.State()
	switch st.Step {
	case wizard.StepUpload:
		return a.upload.Update(msg)
	case wizard.StepSystemSelect:
		if a.system == nil {
			a.system = newSystemStep(a.cfg.Systems)
		}
		return a.system.Update(msg)
	case wizard.StepStyleSelect:
		return a.style.Update(msg, st.VisibleStyles())
	case wizard.StepRendering:
		return nil
	case wizard.StepResult:
		return a.result.Update(msg, st)
	}
	return nil
}

// handleAppMsg applies step-emitted and task-completion messages to the
// controller and schedules follow-up IO.
func (a *App) handleAppMsg(msg tea.Msg) tea.Cmd {
	st := a.ctrl.State()

	switch msg := msg.(type) {
	case fileSelectedMsg:
		if err := a.ctrl.HandleFileSelected(msg.path); err != nil {
			a.notice = err.Error()
			return nil
		}
		cmds := []tea.Cmd{a.uploadFile(msg.path)}
		if st.Step == wizard.StepStyleSelect && a.ctrl.BeginStyleFetch() {
			cmds = append(cmds, a.fetchStyles(), a.spin.Tick)
		}
		return tea.Batch(cmds...)

	case systemChosenMsg:
		if err := a.ctrl.HandleSystemChosen(msg.category); err != nil {
			a.notice = err.Error()
			return nil
		}
		if a.ctrl.BeginStyleFetch() {
			return tea.Batch(a.fetchStyles(), a.spin.Tick)
		}
		return nil

	case styleChosenMsg:
		if err := a.ctrl.HandleStyleSelected(msg.id); err != nil {
			a.notice = err.Error()
		}
		return nil

	case blendAdjustedMsg:
		a.ctrl.SetBlendStrength(st.Tuning.BlendStrength + msg.delta)
		return nil

	case finishCycledMsg:
		a.ctrl.SetFinish(nextFinish(st.Tuning.Finish))
		return nil

	case renderRequestMsg:
		if err := a.ctrl.BeginRender(); err != nil {
			a.notice = err.Error()
			return nil
		}
		return tea.Batch(a.submitRender(), a.spin.Tick)

	case stylesRetryReqMsg:
		if err := a.ctrl.RetryStyleFetch(); err != nil {
			a.notice = err.Error()
			return nil
		}
		if a.ctrl.BeginStyleFetch() {
			return tea.Batch(a.fetchStyles(), a.spin.Tick)
		}
		return nil

	case uploadResultMsg:
		a.ctrl.HandleUploadResult(msg.generation, msg.imageID, msg.err)
		a.recordNetwork("upload", msg.err)
		return a.fireErrorHook()

	case stylesResultMsg:
		a.ctrl.HandleStylesResult(msg.generation, msg.styles, msg.err)
		a.recordNetwork("styles", msg.err)
		return a.fireErrorHook()

	case renderResultMsg:
		a.ctrl.HandleRenderResult(msg.generation, msg.result, msg.err)
		a.recordNetwork("preview", msg.err)
		if msg.err == nil && msg.result != nil && st.Step == wizard.StepResult {
			return a.fireHook(a.hookFor("on_render"), hooks.Variables{
				ResultURL: msg.result.ResultImageURL,
				Style:     a.selectedStyleName(),
			})
		}
		return a.fireErrorHook()

	case themeResultMsg:
		if msg.err != nil || msg.cfg == nil || msg.cfg.Theme == nil {
			return nil
		}
		a.theme = a.theme.ApplyServerTheme(msg.cfg.Theme)
		a.s = buildStyles(a.theme)
		a.spin.Style = lipglossv2.NewStyle().Foreground(lipglossv2.Color(a.theme.Accent))
		return nil

	case strokeCommittedMsg:
		if st.Mask != nil {
			a.jr.Record(a.ctx, journal.EventStroke, st.Mask.Mode().String(), map[string]int{
				"radius":  st.Mask.BrushRadius(),
				"history": st.Mask.HistoryIndex(),
			})
		}
		return nil

	case maskEditRequestMsg:
		return a.fetchMaskSource()

	case maskSourceMsg:
		if msg.generation != a.ctrl.Generation() {
			return nil
		}
		if msg.err != nil {
			a.notice = "could not open the photo for mask editing: " + msg.err.Error()
			return nil
		}
		if err := a.ctrl.EnableMaskEditing(msg.naturalW, msg.naturalH, msg.source); err != nil {
			a.notice = err.Error()
			return nil
		}
		a.result.startEditing(msg.source)
		return nil

	case maskEditCancelledMsg:
		a.ctrl.DisableMaskEditing()
		return nil

	case applyMaskMsg:
		if err := a.ctrl.ApplyMask(); err != nil {
			a.notice = err.Error()
			return nil
		}
		a.result.stopEditing()
		if err := a.ctrl.BeginRerender(); err != nil {
			a.notice = err.Error()
			return nil
		}
		return tea.Batch(a.submitRender(), a.spin.Tick)

	case saveResultMsg:
		return a.saveResult()

	case resultSavedMsg:
		if msg.err != nil {
			a.notice = "save failed: " + msg.err.Error()
			return nil
		}
		a.result.savedPath = msg.path
		vars := hooks.Variables{Path: msg.path, Style: a.selectedStyleName()}
		if res := st.RenderResult; res != nil {
			vars.ResultURL = res.ResultImageURL
		}
		return a.fireHook(a.hookFor("on_save"), vars)

	case newPreviewMsg:
		a.resetSession()
		return nil

	case dismissErrorMsg:
		if st.LastError != nil && !st.LastError.Recoverable() {
			return nil
		}
		a.ctrl.DismissError()
		a.resetSteps()
		return nil
	}

	return nil
}

// resetSession starts a fresh wizard session, replacing all step state.
func (a *App) resetSession() {
	a.ctrl.Reset()
	a.resetSteps()
}

func (a *App) resetSteps() {
	a.upload = newUploadStep()
	a.upload.SetSize(a.width, a.height)
	a.system = nil
	a.style = newStyleStep()
	a.result = newResultStep()
	a.result.setSize(a.width, a.height)
	a.notice = ""
}

func nextFinish(f wizard.Finish) wizard.Finish {
	switch f {
	case wizard.FinishGloss:
		return wizard.FinishSatin
	case wizard.FinishSatin:
		return wizard.FinishMatte
	default:
		return wizard.FinishGloss
	}
}

func (a *App) recordNetwork(op string, err error) {
	meta := map[string]string{"op": op}
	if err != nil {
		meta["error"] = err.Error()
		logger.Warn("network %s: %v", op, err)
	}
	a.jr.Record(a.ctx, journal.EventNetwork, op, meta)
}

func (a *App) selectedStyleName() string {
	st := a.ctrl.State()
	if style, ok := st.StyleByID(st.SelectedStyle); ok {
		return style.Name
	}
	return ""
}

func (a *App) hookFor(event string) *hooks.HookConfig {
	if a.hooks == nil {
		return nil
	}
	switch event {
	case "on_render":
		return a.hooks.Hooks.OnRender
	case "on_save":
		return a.hooks.Hooks.OnSave
	case "on_error":
		return a.hooks.Hooks.OnError
	}
	return nil
}

// fireHook runs a hook off the event loop. Hook output goes to the log, not
// the screen.
func (a *App) fireHook(hook *hooks.HookConfig, vars hooks.Variables) tea.Cmd {
	if hook == nil {
		return nil
	}
	return func() tea.Msg {
		out, err := hooks.Execute(a.ctx, hook, ".", vars)
		if err != nil {
			logger.Warn("hook cancelled: %v", err)
		} else if out != "" {
			logger.Debug("hook output: %s", out)
		}
		return nil
	}
}

func (a *App) fireErrorHook() tea.Cmd {
	e := a.ctrl.State().LastError
	if e == nil {
		return nil
	}
	a.jr.Record(a.ctx, journal.EventError, e.Kind.String(), map[string]string{"message": e.Message})
	return a.fireHook(a.hookFor("on_error"), hooks.Variables{Error: e.Message})
}

// Commands. Each captures the generation at issue time so results arriving
// after a reset are dropped by the controller.

func (a *App) fetchTheme() tea.Cmd {
	return func() tea.Msg {
		cfg, err := a.client.Config(a.ctx)
		return themeResultMsg{cfg: cfg, err: err}
	}
}

func (a *App) uploadFile(path string) tea.Cmd {
	gen := a.ctrl.Generation()
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadResultMsg{generation: gen, err: err}
		}
		defer f.Close()
		id, err := a.client.Upload(a.ctx, filepath.Base(path), f)
		return uploadResultMsg{generation: gen, imageID: id, err: err}
	}
}

func (a *App) fetchStyles() tea.Cmd {
	gen := a.ctrl.Generation()
	return func() tea.Msg {
		styles, err := a.client.Styles(a.ctx)
		return stylesResultMsg{generation: gen, styles: styles, err: err}
	}
}

func (a *App) submitRender() tea.Cmd {
	gen := a.ctrl.Generation()
	snapshot := *a.ctrl.State()
	return func() tea.Msg {
		res, err := a.orch.Submit(a.ctx, &snapshot)
		return renderResultMsg{generation: gen, result: res, err: err}
	}
}

// fetchMaskSource resolves the base image's natural size from the local
// photo and downloads the server-detected mask when one exists. Editing is
// enabled only after both are known.
func (a *App) fetchMaskSource() tea.Cmd {
	gen := a.ctrl.Generation()
	localPath := a.ctrl.State().Uploaded.LocalPath
	maskURL := ""
	if res := a.ctrl.State().RenderResult; res != nil {
		maskURL = res.MaskImageURL
	}
	return func() tea.Msg {
		f, err := os.Open(localPath)
		if err != nil {
			return maskSourceMsg{generation: gen, err: err}
		}
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		if err != nil {
			return maskSourceMsg{generation: gen, err: fmt.Errorf("decoding %s: %w", localPath, err)}
		}

		var source image.Image
		if maskURL != "" {
			// A failed mask download degrades to a blank mask instead of
			// blocking the editor.
			if img, err := a.client.FetchImage(a.ctx, maskURL); err == nil {
				source = img
			} else {
				logger.Warn("mask download failed, starting blank: %v", err)
			}
		}
		return maskSourceMsg{
			generation: gen,
			naturalW:   cfg.Width,
			naturalH:   cfg.Height,
			source:     source,
		}
	}
}

func (a *App) saveResult() tea.Cmd {
	st := a.ctrl.State()
	if st.RenderResult == nil {
		return nil
	}
	url := st.RenderResult.ResultImageURL
	name := "preview"
	if style, ok := st.StyleByID(st.SelectedStyle); ok {
		name = slug.Make(style.Name) + "-preview"
	}
	outDir := a.cfg.OutputDir
	return func() tea.Msg {
		data, err := a.client.Download(a.ctx, url)
		if err != nil {
			return resultSavedMsg{err: err}
		}
		path := filepath.Join(outDir, name+extensionFor(url, data))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return resultSavedMsg{err: err}
		}
		return resultSavedMsg{path: path}
	}
}

// extensionFor picks a file extension from the URL, falling back to content
// sniffing.
func extensionFor(url string, data []byte) string {
	lower := strings.ToLower(url)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	if bytes.HasPrefix(data, []byte("\x89PNG")) {
		return ".png"
	}
	return ".jpg"
}

func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	if a.quitting {
		view.AltScreen = false
		view.MouseMode = 0
		view.Content = lipglossv2.NewLayer("")
		return view
	}

	st := a.ctrl.State()

	var body string
	switch {
	case a.helpVisible:
		body = a.help.View(a.s)
	case st.LastError != nil:
		body = errorOverlay{}.View(a.s, st.LastError)
	default:
		body = a.stepView(st)
	}

	header := a.s.title.Render("epoxyview") + "  " + a.s.muted.Render(st.Step.String()) +
		"  " + a.s.statusBar.Render(" ? help ")
	content := header + "\n\n" + body
	if a.notice != "" {
		content += "\n\n" + a.s.errorText.Render(a.notice)
	}

	view.Content = lipglossv2.NewLayer(content)
	return view
}

func (a *App) stepView(st *wizard.State) string {
	switch st.Step {
	case wizard.StepUpload:
		return a.upload.View(a.s)
	case wizard.StepSystemSelect:
		if a.system == nil {
			a.system = newSystemStep(a.cfg.Systems)
		}
		return a.system.View(a.s)
	case wizard.StepStyleSelect:
		return a.style.View(a.s, st, a.spin.View())
	case wizard.StepRendering:
		return a.rendering.View(a.s, st, a.spin.View())
	case wizard.StepResult:
		return a.result.View(a.s, st)
	}
	return ""
}

// Run starts the TUI and blocks until it exits.
func Run(ctx context.Context, cfg *config.Config) error {
	client := api.NewClient(cfg.APIBase, cfg.APIKey)

	var jr *journal.Journal
	if cfg.Debug {
		var err error
		jr, err = journal.Open(ctx, cfg.DataDir, journal.NewSessionID())
		if err != nil {
			logger.Warn("debug journal unavailable: %v", err)
		} else {
			defer jr.Close()
		}
	}

	app := NewApp(ctx, cfg, client, jr)
	if hcfg, err := hooks.LoadConfig("."); err != nil {
		logger.Warn("ignoring hooks config: %v", err)
	} else {
		app.hooks = hcfg
	}

	p := tea.NewProgram(app)
	_, err := p.Run()
	return err
}
