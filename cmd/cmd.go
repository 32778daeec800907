// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/roastify/internal/formatter"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

// newApp returns the root command with the global flags and all subcommands.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "roastify",
		Usage:   "Get your Spotify top tracks roasted by Gemini",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep the session in memory instead of the database",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}

// setupCommand writes the config file and initializes the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml and initialize the database",
		Action: r.Setup,
	}
}

// loginCommand runs the PKCE login in the browser.
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "login",
		Usage:  "Log in with Spotify",
		Action: r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the Spotify token and Gemini API key",
		Action: r.Logout,
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show whether a Spotify token and Gemini API key are stored",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Status,
	}
}

// keyCommand manages the stored Gemini API key.
func keyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "Manage the Gemini API key",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Store a Gemini API key (prompts when --key is omitted)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "key",
						Aliases: []string{"k"},
						Usage:   "API key to store",
					},
				},
				Action: r.KeySet,
			},
			{
				Name:   "clear",
				Usage:  "Remove the stored Gemini API key",
				Action: r.KeyClear,
			},
		},
	}
}

// roastCommand runs one fetch and generate cycle.
func roastCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "roast",
		Usage: "Roast your top tracks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, markdown, json, csv)",
				Value:   string(formatter.FormatText),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the roast to a file instead of stdout",
			},
			&cli.StringFlag{
				Name:    "key",
				Aliases: []string{"k"},
				Usage:   "Gemini API key to store and use",
			},
			&cli.BoolFlag{
				Name:  "no-animate",
				Usage: "Print the roast without the reveal animation",
			},
		},
		Action: r.Roast,
	}
}

func modelsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "models",
		Usage: "List Gemini models that can generate a roast",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Models,
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive roast TUI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "File that receives logs while the TUI is running",
				Value: "./tmp/roastify-tui.log",
			},
		},
		Action: r.TUI,
	}
}
