package ui

import (
	"math/rand/v2"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const scrambleLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Default reveal timings.
const (
	StatusSpeed = 50 * time.Millisecond
	TitleSpeed  = 80 * time.Millisecond
	BodySpeed   = 10 * time.Millisecond
	StatusDelay = 500 * time.Millisecond
	BodyDelay   = time.Second
)

var lastDecryptID int64

func nextDecryptID() int {
	return int(atomic.AddInt64(&lastDecryptID, 1))
}

// Scramble renders text with the first revealed characters in place and the rest replaced by random
// alphanumerics. Spaces and newlines are always kept so wrapping stays stable.
func Scramble(text string, revealed float64, rnd *rand.Rand) string {
	runes := []rune(text)
	out := make([]rune, len(runes))
	for i, r := range runes {
		switch {
		case float64(i) < revealed:
			out[i] = r
		case r == ' ' || r == '\n':
			out[i] = r
		default:
			out[i] = rune(scrambleLetters[rnd.IntN(len(scrambleLetters))])
		}
	}
	return string(out)
}

// blank returns a frame of spaces the width of text, keeping newlines.
func blank(text string) string {
	runes := []rune(text)
	for i, r := range runes {
		if r != '\n' {
			runes[i] = ' '
		}
	}
	return string(runes)
}

// decryptTickMsg advances the [Decrypt] with the matching id.
type decryptTickMsg struct {
	id int
}

// Decrypt is a bubbletea component that reveals text left to right through scrambled characters.
//
// After delay, each tick moves the cursor half a character. The last frame is always the exact text.
type Decrypt struct {
	id     int
	text   string
	length int
	speed  time.Duration
	delay  time.Duration
	cursor float64
	frame  string
	done   bool
	rnd    *rand.Rand
}

// NewDecrypt creates a [Decrypt] for text. Call Init to start it.
func NewDecrypt(text string, speed, delay time.Duration) Decrypt {
	return Decrypt{
		id:     nextDecryptID(),
		text:   text,
		length: len([]rune(text)),
		speed:  speed,
		delay:  delay,
		frame:  blank(text),
		rnd:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Init schedules the first tick after the reveal delay.
func (d Decrypt) Init() tea.Cmd {
	id := d.id
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return decryptTickMsg{id: id}
	})
}

// Update handles ticks addressed to this component and ignores everything else.
func (d Decrypt) Update(msg tea.Msg) (Decrypt, tea.Cmd) {
	tick, ok := msg.(decryptTickMsg)
	if !ok || tick.id != d.id || d.done {
		return d, nil
	}

	d = d.step()
	if d.done {
		return d, nil
	}

	id := d.id
	return d, tea.Tick(d.speed, func(time.Time) tea.Msg {
		return decryptTickMsg{id: id}
	})
}

// step renders one frame and advances the cursor.
func (d Decrypt) step() Decrypt {
	if d.cursor >= float64(d.length) {
		d.frame = d.text
		d.done = true
		return d
	}
	d.frame = Scramble(d.text, d.cursor, d.rnd)
	d.cursor += 0.5
	return d
}

// View returns the current frame.
func (d Decrypt) View() string {
	return d.frame
}

// Done reports whether the full text is shown.
func (d Decrypt) Done() bool {
	return d.done
}

// Text returns the target text.
func (d Decrypt) Text() string {
	return d.text
}
