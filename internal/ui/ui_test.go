package ui

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/repositories"
	"github.com/desertthunder/roastify/internal/shared"
	"github.com/desertthunder/roastify/internal/tasks"
	tu "github.com/desertthunder/roastify/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScramble(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	text := "Certified NPC\nyou are cooked"

	t.Run("Nothing Revealed", func(t *testing.T) {
		got := Scramble(text, 0, rnd)
		require.Equal(t, len([]rune(text)), len([]rune(got)))
		for i, r := range []rune(text) {
			g := []rune(got)[i]
			if r == ' ' || r == '\n' {
				assert.Equal(t, r, g, "whitespace at %d must be kept", i)
				continue
			}
			assert.Contains(t, scrambleLetters, string(g))
		}
	})

	t.Run("Prefix Revealed", func(t *testing.T) {
		got := Scramble(text, 4.5, rnd)
		assert.Equal(t, "Certi", got[:5], "indexes below the cursor are final")
	})

	t.Run("Fully Revealed", func(t *testing.T) {
		assert.Equal(t, text, Scramble(text, float64(len(text)), rnd))
	})

	t.Run("Multibyte", func(t *testing.T) {
		assert.Equal(t, "Beyoncé", Scramble("Beyoncé", 7, rnd))
	})
}

func TestDecrypt(t *testing.T) {
	t.Run("Starts Blank", func(t *testing.T) {
		d := NewDecrypt("ab\ncd", time.Millisecond, 0)
		assert.Equal(t, "  \n  ", d.View())
		assert.False(t, d.Done())
		assert.NotNil(t, d.Init())
	})

	t.Run("Ends On Exact Text", func(t *testing.T) {
		text := "You are cooked."
		d := NewDecrypt(text, time.Millisecond, 0)

		ticks := 0
		for !d.Done() {
			var cmd tea.Cmd
			d, cmd = d.Update(decryptTickMsg{id: d.id})
			ticks++
			if !d.Done() {
				require.NotNil(t, cmd, "an unfinished decrypt schedules another tick")
			}
			require.Less(t, ticks, 100)
		}

		assert.Equal(t, text, d.View())
		// half a character per tick, plus the final frame
		assert.Equal(t, 2*len(text)+1, ticks)
	})

	t.Run("Ignores Other Ticks", func(t *testing.T) {
		d := NewDecrypt("abc", time.Millisecond, 0)
		other := NewDecrypt("xyz", time.Millisecond, 0)

		d2, cmd := d.Update(decryptTickMsg{id: other.id})
		assert.Nil(t, cmd)
		assert.Equal(t, d.View(), d2.View())
	})
}

func TestShine(t *testing.T) {
	out := styles.Shine(appTitle, 0)
	assert.NotEmpty(t, out)
}

type tuiFixture struct {
	store     *repositories.MemoryStore
	generator *tu.MockGenerator
	spotify   *tu.MockTrackFetcher
	session   *tasks.Session
	model     *Model
	logins    int
}

func newTUIFixture(t *testing.T, token, credential string) *tuiFixture {
	t.Helper()
	f := &tuiFixture{
		store:     repositories.NewMemoryStore(),
		generator: &tu.MockGenerator{Roast: tu.SampleRoast()},
		spotify:   tu.NewMockTrackFetcher(tu.SampleTracks()),
	}
	if token != "" {
		f.store.Set(models.KeySpotifyToken, token)
	}
	if credential != "" {
		f.store.Set(models.KeyGeminiAPIKey, credential)
	}

	s, err := tasks.NewSession(tasks.SessionOpts{Store: f.store, Spotify: f.spotify, Generator: f.generator})
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))
	f.session = s

	f.model = NewModel(context.Background(), Options{
		Session: s,
		Login: func(ctx context.Context) error {
			f.logins++
			return nil
		},
	})
	return f
}

func press(m *Model, keys string) tea.Cmd {
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestModel(t *testing.T) {
	t.Run("Starting View", func(t *testing.T) {
		assert.Equal(t, LoginView, newTUIFixture(t, "", "").model.ViewState())
		assert.Equal(t, StartView, newTUIFixture(t, "tok", "").model.ViewState())
	})

	t.Run("Login Renders Prompt", func(t *testing.T) {
		f := newTUIFixture(t, "", "")
		assert.Contains(t, f.model.View(), "questionable music taste")

		cmd := press(f.model, "enter")
		assert.NotNil(t, cmd)
		assert.Equal(t, LoadingView, f.model.ViewState())

		f.store.Set(models.KeySpotifyToken, "tok")
		f.session.Init(context.Background())
		f.model.Update(loginCompleteMsg(nil))
		assert.Equal(t, StartView, f.model.ViewState())
		assert.Contains(t, f.model.View(), "Prepared to die?")
	})

	t.Run("Login Failure Shows Error", func(t *testing.T) {
		f := newTUIFixture(t, "", "")
		f.model.Update(loginCompleteMsg(&tasks.AuthorizationError{Code: "access_denied"}))
		assert.Equal(t, ErrorView, f.model.ViewState())
		assert.Contains(t, f.model.View(), "Developer Dashboard")
	})

	t.Run("Roast Without Key Opens Input", func(t *testing.T) {
		f := newTUIFixture(t, "tok", "")
		press(f.model, "enter")
		assert.Equal(t, KeyInputView, f.model.ViewState())
		assert.Contains(t, f.model.View(), "One Last Thing")
	})

	t.Run("Typed Key Starts Roast", func(t *testing.T) {
		f := newTUIFixture(t, "tok", "")
		press(f.model, "k")
		require.Equal(t, KeyInputView, f.model.ViewState())

		press(f.model, "sk-123")
		assert.NotContains(t, f.model.View(), "sk-123", "the key input is masked")

		cmd := press(f.model, "enter")
		require.NotNil(t, cmd)
		assert.Equal(t, LoadingView, f.model.ViewState())
	})

	t.Run("Esc Cancels Key Input", func(t *testing.T) {
		f := newTUIFixture(t, "tok", "")
		press(f.model, "k")
		press(f.model, "esc")
		assert.Equal(t, StartView, f.model.ViewState())
	})

	t.Run("Quit Key Is Typed Into Input", func(t *testing.T) {
		f := newTUIFixture(t, "tok", "")
		press(f.model, "k")
		press(f.model, "q")
		assert.Equal(t, KeyInputView, f.model.ViewState())
	})

	t.Run("Roast Result", func(t *testing.T) {
		f := newTUIFixture(t, "tok", "key")
		cmd := press(f.model, "enter")
		require.NotNil(t, cmd)
		assert.Equal(t, LoadingView, f.model.ViewState())

		result, err := f.session.Roast(context.Background(), "")
		require.NoError(t, err)

		f.model.Update(roastCompleteMsg(result, nil))
		assert.Equal(t, ResultView, f.model.ViewState())

		view := f.model.View()
		assert.Contains(t, view, "EVIDENCE")
		assert.Contains(t, view, "#1")
		assert.Contains(t, view, "Espresso")
		assert.Contains(t, view, "Sabrina Carpenter")
	})

	t.Run("Invalid Key Reopens Input With Notice", func(t *testing.T) {
		f := newTUIFixture(t, "tok", "key")
		f.model.Update(roastCompleteMsg(nil, shared.ErrCredentialInvalid))
		assert.Equal(t, KeyInputView, f.model.ViewState())
		assert.Contains(t, f.model.View(), "Invalid Gemini API Key")
	})

	t.Run("Expired Session Returns To Login", func(t *testing.T) {
		f := newTUIFixture(t, "tok", "key")
		f.model.Update(roastCompleteMsg(nil, shared.ErrTokenExpired))
		assert.Equal(t, LoginView, f.model.ViewState())
		assert.Contains(t, f.model.View(), "Session expired")
	})

	t.Run("Generic Failure Shows Error", func(t *testing.T) {
		f := newTUIFixture(t, "tok", "key")
		f.model.Update(roastCompleteMsg(nil, errors.New("boom")))
		assert.Equal(t, ErrorView, f.model.ViewState())
		assert.Contains(t, f.model.View(), "Failed to roast")

		press(f.model, "enter")
		assert.Equal(t, StartView, f.model.ViewState())
	})

	t.Run("Logout", func(t *testing.T) {
		f := newTUIFixture(t, "tok", "key")
		cmd := press(f.model, "l")
		require.NotNil(t, cmd)

		f.model.Update(cmd())
		assert.Equal(t, LoginView, f.model.ViewState())
		for _, k := range models.StateKeys {
			_, ok, _ := f.store.Get(k)
			assert.False(t, ok, "%s should be cleared", k)
		}
	})

	t.Run("Progress Update Restarts Status", func(t *testing.T) {
		ch := make(chan tasks.ProgressUpdate, 1)
		f := newTUIFixture(t, "tok", "key")
		f.model.progress = ch

		_, cmd := f.model.Update(progressUpdateMsg(tasks.ProgressUpdate{State: tasks.Generating, Message: tasks.GeneratingMessage}))
		assert.NotNil(t, cmd)
		assert.Equal(t, tasks.GeneratingMessage, f.model.status.Text())
	})

	t.Run("Quit", func(t *testing.T) {
		f := newTUIFixture(t, "tok", "key")
		cmd := press(f.model, "q")
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	})

	t.Run("Window Size", func(t *testing.T) {
		f := newTUIFixture(t, "tok", "key")
		f.model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
		assert.Equal(t, 100, f.model.width)
		assert.True(t, strings.HasSuffix(f.model.View(), "\n"))
	})
}
