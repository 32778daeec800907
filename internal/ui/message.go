package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLoginComplete MsgKind = iota
	MsgProgressUpdate
	MsgRoastComplete
	MsgLogoutComplete
	MsgShineTick
)

type roastOutcome struct {
	result *models.RoastResult
	err    error
}

// loginCompleteMsg is the constructor for [MsgLoginComplete]
func loginCompleteMsg(err error) Msg {
	return Msg{kind: MsgLoginComplete, data: err}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// roastCompleteMsg is the constructor for [MsgRoastComplete]
func roastCompleteMsg(result *models.RoastResult, err error) Msg {
	return Msg{kind: MsgRoastComplete, data: roastOutcome{result, err}}
}

// logoutCompleteMsg is the constructor for [MsgLogoutComplete]
func logoutCompleteMsg(err error) Msg {
	return Msg{kind: MsgLogoutComplete, data: err}
}

// shineTick schedules the next [MsgShineTick]
func shineTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return Msg{kind: MsgShineTick}
	})
}

func asError(data any) error {
	if err, ok := data.(error); ok {
		return err
	}
	return nil
}
