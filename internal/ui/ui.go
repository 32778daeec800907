package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/shared"
	"github.com/desertthunder/roastify/internal/tasks"
)

const appTitle = "SPOTIFY ROASTER"

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoginView ViewState = iota
	StartView
	KeyInputView
	LoadingView
	ResultView
	ErrorView
)

func (v ViewState) String() string {
	switch v {
	case LoginView:
		return "login"
	case StartView:
		return "start"
	case KeyInputView:
		return "key_input"
	case LoadingView:
		return "loading"
	case ResultView:
		return "result"
	case ErrorView:
		return "error"
	default:
		return ""
	}
}

// LoginFunc runs the browser login and returns once the session holds a token (or the login failed).
type LoginFunc func(ctx context.Context) error

// Options configures a [Model].
type Options struct {
	Session  *tasks.Session
	Login    LoginFunc
	Progress <-chan tasks.ProgressUpdate // the channel the session reports to, if any
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	session  *tasks.Session
	login    LoginFunc
	progress <-chan tasks.ProgressUpdate
	width    int
	height   int
	spinner  spinner.Model
	input    textinput.Model
	status   Decrypt
	title    Decrypt
	body     Decrypt
	shinePos int
	result   *models.RoastResult
	notice   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
//
// The starting view depends on whether the session already holds a token.
func NewModel(ctx context.Context, opts Options) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.err

	in := textinput.New()
	in.Placeholder = "Paste API Key here"
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.CharLimit = 256

	m := &Model{
		ctx:      ctx,
		session:  opts.Session,
		login:    opts.Login,
		progress: opts.Progress,
		spinner:  sp,
		input:    in,
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.view = m.home()
	return m
}

// Init starts the title animation and the progress listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(shineTick(), m.waitForProgress())
}

// ViewState returns the active view.
func (m *Model) ViewState() ViewState {
	return m.view
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = min(48, max(msg.Width-8, 10))
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case decryptTickMsg:
		var c1, c2, c3 tea.Cmd
		m.status, c1 = m.status.Update(msg)
		m.title, c2 = m.title.Update(msg)
		m.body, c3 = m.body.Update(msg)
		return m, tea.Batch(c1, c2, c3)

	case Msg:
		return m.handleMsg(msg)
	}

	if m.view == KeyInputView {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgShineTick:
		m.shinePos = (m.shinePos + 1) % (len(appTitle) + 6)
		return m, shineTick()

	case MsgProgressUpdate:
		update, _ := msg.data.(tasks.ProgressUpdate)
		var cmd tea.Cmd
		if update.State == tasks.Fetching || update.State == tasks.Generating {
			m.status = NewDecrypt(update.Message, StatusSpeed, StatusDelay)
			cmd = m.status.Init()
		}
		return m, tea.Batch(cmd, m.waitForProgress())

	case MsgLoginComplete:
		if err := asError(msg.data); err != nil {
			return m.showError(err)
		}
		m.notice = ""
		m.view = m.home()
		return m, nil

	case MsgLogoutComplete:
		if err := asError(msg.data); err != nil {
			return m.showError(err)
		}
		m.result = nil
		m.notice = "Logged out."
		m.view = LoginView
		return m, nil

	case MsgRoastComplete:
		out, _ := msg.data.(roastOutcome)
		return m.handleRoastComplete(out)
	}
	return m, nil
}

func (m *Model) handleRoastComplete(out roastOutcome) (tea.Model, tea.Cmd) {
	switch {
	case out.err == nil && out.result != nil:
		m.result = out.result
		m.notice = ""
		m.view = ResultView
		m.title = NewDecrypt(out.result.Roast.Title, TitleSpeed, 0)
		m.body = NewDecrypt(out.result.Roast.Body, BodySpeed, BodyDelay)
		return m, tea.Batch(m.title.Init(), m.body.Init())
	case errors.Is(out.err, shared.ErrMissingCredential):
		m.notice = ""
		return m.openKeyInput()
	case errors.Is(out.err, shared.ErrCredentialInvalid):
		m.notice = tasks.UserMessage(out.err)
		return m.openKeyInput()
	case errors.Is(out.err, shared.ErrTokenExpired), errors.Is(out.err, shared.ErrNotAuthenticated):
		m.notice = tasks.UserMessage(out.err)
		m.view = LoginView
		return m, nil
	case errors.Is(out.err, shared.ErrRoastInFlight):
		return m, nil
	default:
		return m.showError(out.err)
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	switch m.view {
	case KeyInputView:
		return m.handleKeyInputKeys(msg)
	case LoadingView:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.enter):
		switch m.view {
		case LoginView:
			return m.startLogin()
		case StartView:
			return m.startRoast("")
		case ErrorView:
			m.err = nil
			m.view = m.home()
			return m, nil
		}

	case key.Matches(msg, m.keys.again):
		if m.view == ResultView || m.view == ErrorView {
			if !m.session.LoggedIn() {
				m.view = LoginView
				return m, nil
			}
			return m.startRoast("")
		}

	case key.Matches(msg, m.keys.logout):
		if m.view != LoginView {
			return m, m.doLogout()
		}

	case key.Matches(msg, m.keys.apiKey):
		if m.view != LoginView {
			m.notice = ""
			return m.openKeyInput()
		}
	}

	return m, nil
}

func (m *Model) handleKeyInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.input.Blur()
		m.input.Reset()
		m.notice = ""
		m.view = m.home()
		return m, nil

	case key.Matches(msg, m.keys.enter):
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			return m, nil
		}
		m.input.Blur()
		m.input.Reset()
		return m.startRoast(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) openKeyInput() (tea.Model, tea.Cmd) {
	m.view = KeyInputView
	m.input.Reset()
	return m, m.input.Focus()
}

func (m *Model) startLogin() (tea.Model, tea.Cmd) {
	if m.login == nil {
		return m.showError(fmt.Errorf("%w: login is not available", shared.ErrMissingCredentials))
	}

	m.notice = ""
	m.view = LoadingView
	m.status = NewDecrypt("WAITING FOR SPOTIFY...", StatusSpeed, 0)

	login, ctx := m.login, m.ctx
	return m, tea.Batch(m.spinner.Tick, m.status.Init(), func() tea.Msg {
		return loginCompleteMsg(login(ctx))
	})
}

// startRoast moves to the loading view and runs the session in a command.
//
// Without a stored key it opens the key input instead.
func (m *Model) startRoast(credential string) (tea.Model, tea.Cmd) {
	if credential == "" && !m.session.HasCredential() {
		return m.openKeyInput()
	}

	m.view = LoadingView
	m.result = nil
	m.err = nil
	m.session.Reset()
	m.status = NewDecrypt(tasks.FetchingMessage, StatusSpeed, StatusDelay)

	session, ctx := m.session, m.ctx
	return m, tea.Batch(m.spinner.Tick, m.status.Init(), func() tea.Msg {
		result, err := session.Roast(ctx, credential)
		return roastCompleteMsg(result, err)
	})
}

func (m *Model) doLogout() tea.Cmd {
	session, ctx := m.session, m.ctx
	return func() tea.Msg {
		return logoutCompleteMsg(session.Logout(ctx))
	}
}

func (m *Model) showError(err error) (tea.Model, tea.Cmd) {
	m.err = err
	m.view = ErrorView
	return m, nil
}

func (m *Model) home() ViewState {
	if m.session != nil && m.session.LoggedIn() {
		return StartView
	}
	return LoginView
}

func (m *Model) waitForProgress() tea.Cmd {
	if m.progress == nil {
		return nil
	}
	ch := m.progress
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case LoginView:
		body = m.renderLogin()
	case StartView:
		body = m.renderStart()
	case KeyInputView:
		body = m.renderKeyInput()
	case LoadingView:
		body = m.renderLoading()
	case ResultView:
		body = m.renderResult()
	case ErrorView:
		body = m.renderError()
	}

	header := styles.Shine(appTitle, m.shinePos-3)
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body) + "\n"
}

func (m *Model) renderNotice() string {
	if m.notice == "" {
		return ""
	}
	return styles.warn.Render(m.notice) + "\n\n"
}

func (m *Model) renderLogin() string {
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "login with spotify")),
		m.keys.quit,
	})
	return fmt.Sprintf("%s%s\n\n%s",
		m.renderNotice(),
		styles.muted.Render("Ready to get cooked by AI based on your questionable music taste?"),
		helpView,
	)
}

func (m *Model) renderStart() string {
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "roast me")),
		m.keys.apiKey,
		key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "wait, I'm scared (log out)")),
		m.keys.quit,
	})
	return fmt.Sprintf("%s%s\n\n%s", m.renderNotice(), styles.title.Render("Logged In. Prepared to die?"), helpView)
}

func (m *Model) renderKeyInput() string {
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		m.keys.back,
	})
	return fmt.Sprintf("%s%s\n%s\n%s\n\n%s\n\n%s",
		m.renderNotice(),
		styles.title.Render("One Last Thing..."),
		"We need a Gemini API Key to generate the roast.",
		styles.muted.Render("Get one at https://aistudio.google.com/app/apikey"),
		m.input.View(),
		helpView,
	)
}

func (m *Model) renderLoading() string {
	return fmt.Sprintf("%s %s\n\n%s",
		m.spinner.View(),
		styles.scream.Render(m.status.View()),
		m.help.ShortHelpView([]key.Binding{m.keys.quit}),
	)
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return styles.err.Render("No roast available")
	}

	var evidence strings.Builder
	evidence.WriteString(styles.ok.Render("EVIDENCE (YOUR TOP HITS)"))
	evidence.WriteString("\n\n")
	for i, t := range m.result.Tracks {
		fmt.Fprintf(&evidence, "%s%s\n    %s\n",
			styles.rank.Render(fmt.Sprintf("#%d", i+1)),
			t.Name,
			styles.muted.Render(t.PrimaryArtist()),
		)
	}

	width := 60
	if m.width > 0 {
		width = max(min(m.width-6, 72), 20)
	}
	card := styles.card.Width(width).Render(
		styles.roast.Render(strings.ToUpper(m.title.View())) + "\n" + m.body.View(),
	)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.again, m.keys.logout, m.keys.apiKey, m.keys.quit})
	return lipgloss.JoinVertical(lipgloss.Left, evidence.String(), card, "", helpView)
}

func (m *Model) renderError() string {
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "back")),
		m.keys.again,
		m.keys.apiKey,
		m.keys.quit,
	})
	return fmt.Sprintf("%s\n\n%s", styles.err.Render(tasks.UserMessage(m.err)), helpView)
}
