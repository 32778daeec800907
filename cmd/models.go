package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/services"
	"github.com/desertthunder/roastify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Models lists the models that support content generation and marks the one discovery would pick.
func (r *Runner) Models(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepare(ctx); err != nil {
		return err
	}

	credential, ok, err := r.store.Get(models.KeyGeminiAPIKey)
	if err != nil {
		return err
	}
	if !ok || credential == "" {
		return r.fail(shared.ErrMissingCredential)
	}

	all, err := r.lister.ListModels(ctx, credential)
	if err != nil {
		return r.fail(err)
	}

	var usable []services.Model
	for _, m := range all {
		if m.SupportsGeneration() {
			usable = append(usable, m)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(usable, cmd.Bool("pretty"))
	}

	fallback := r.config.Credentials.Gemini.Model
	if fallback == "" {
		fallback = services.DefaultGeminiModel
	}
	picked := services.SelectModel(all, fallback)

	r.writePlainHeader(fmt.Sprintf("Models (%d of %d support generation)", len(usable), len(all)))
	for _, m := range usable {
		prefix := "  "
		if m.ID() == picked {
			prefix = "→ "
		}
		if m.DisplayName != "" {
			r.writePlain("%s%s (%s)\n", prefix, m.ID(), m.DisplayName)
		} else {
			r.writePlain("%s%s\n", prefix, m.ID())
		}
	}
	return r.writePlainln("Fallback after a failed request: %s", picked)
}
