package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/desertthunder/roastify/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const apiKeyHelp = "Get one at https://aistudio.google.com/app/apikey"

// KeySet stores a Gemini API key from --key, a masked prompt, or one line of stdin.
func (r *Runner) KeySet(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(ctx); err != nil {
		return err
	}

	key := cmd.String("key")
	if key == "" {
		var err error
		if key, err = r.promptKey(); err != nil {
			return err
		}
	}

	if err := r.session.SetCredential(key); err != nil {
		return r.fail(err)
	}

	return r.writePlain("✓ Gemini API key saved\n")
}

// KeyClear removes the stored Gemini API key.
func (r *Runner) KeyClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(ctx); err != nil {
		return err
	}

	if err := r.session.ClearCredential(); err != nil {
		return r.fail(err)
	}

	return r.writePlain("✓ Gemini API key cleared\n")
}

// promptKey asks for the key with a masked input on a terminal and reads a line otherwise.
func (r *Runner) promptKey() (string, error) {
	if f, ok := r.input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		var key string
		err := huh.NewInput().
			Title("Gemini API Key").
			Description(apiKeyHelp).
			Placeholder("Paste API Key here").
			EchoMode(huh.EchoModePassword).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("API key is required")
				}
				return nil
			}).
			Value(&key).
			Run()
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return key, nil
	}

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%w: no API key on stdin. %s", shared.ErrMissingArgument, apiKeyHelp)
	}
	return line, nil
}
