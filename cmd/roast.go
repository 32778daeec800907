package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/desertthunder/roastify/internal/formatter"
	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/tasks"
	"github.com/desertthunder/roastify/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Roast fetches the top tracks, generates the roast, and prints or saves it.
func (r *Runner) Roast(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if err := r.prepare(ctx); err != nil {
		return err
	}

	path := cmd.String("output")
	interactive := format == formatter.FormatText && path == ""

	r.drainProgress()

	var wg sync.WaitGroup
	done := make(chan struct{})
	if interactive {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.watchProgress(done)
		}()
	}

	result, err := r.session.Roast(ctx, cmd.String("key"))
	close(done)
	wg.Wait()

	if err != nil {
		return r.fail(err)
	}

	if path != "" {
		written, err := formatter.WriteResult(result, format, path)
		if err != nil {
			return err
		}
		r.logger.Info("roast saved", "path", written, "format", format)
		return r.writePlain("✓ Roast saved to %s\n", written)
	}

	if interactive && !cmd.Bool("no-animate") && isTerminal(r.output) {
		return r.printAnimated(result, ui.TitleSpeed)
	}

	return formatter.Write(r.output, result, format)
}

// watchProgress prints the status line of each busy state until done is closed.
func (r *Runner) watchProgress(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case update := <-r.progress:
			if update.State.Busy() && update.State != tasks.Authenticating {
				r.writePlain("» %s\n", update.Message)
			}
		}
	}
}

// printAnimated prints the evidence list and reveals the title through scrambled frames.
func (r *Runner) printAnimated(result *models.RoastResult, speed time.Duration) error {
	r.writePlainln("EVIDENCE (YOUR TOP HITS)")
	for i, track := range result.Tracks {
		r.writePlain("#%d  %s\n    %s\n", i+1, track.Name, track.PrimaryArtist())
	}
	r.writePlain("\n")

	rnd := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	if err := reveal(r.output, result.Roast.Title, speed, rnd); err != nil {
		return err
	}

	return r.writePlain("\n%s\n", result.Roast.Body)
}

// reveal redraws text in place, advancing the reveal cursor half a character per frame.
//
// The final frame is the exact text followed by a newline.
func reveal(w io.Writer, text string, speed time.Duration, rnd *rand.Rand) error {
	length := float64(len([]rune(text)))
	for cursor := 0.0; cursor < length; cursor += 0.5 {
		if _, err := fmt.Fprintf(w, "\r%s", ui.Scramble(text, cursor, rnd)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if speed > 0 {
			time.Sleep(speed)
		}
	}

	if _, err := fmt.Fprintf(w, "\r%s\n", text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
