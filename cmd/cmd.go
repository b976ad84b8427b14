// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/ytlinks/internal/formatter"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

func useFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "use",
		Aliases: []string{"u"},
		Usage:   "Webhook to call: transcript or chat",
		Value:   "transcript",
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml from the defaults, or print the effective config",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "show",
						Usage: "Print the effective configuration (secrets redacted)",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// serveCommand runs the API server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the REST API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides server.port)",
			},
			&cli.BoolFlag{
				Name:  "no-workers",
				Usage: "Only enqueue webhook jobs; leave delivery to `ytlinks worker`",
			},
		},
		Action: r.Serve,
	}
}

// workerCommand runs dispatch workers against the AMQP queue.
func workerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "Deliver queued links to the n8n webhooks",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent consumers (overrides webhook.workers)",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address, e.g. :9090",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print every delivery as it happens",
			},
		},
		Action: r.Worker,
	}
}

// usersCommand handles account operations.
func usersCommand(r *Runner) *cli.Command {
	emailArg := []cli.Argument{&cli.StringArg{Name: "email"}}
	return &cli.Command{
		Name:    "users",
		Aliases: []string{"user"},
		Usage:   "Manage your account",
		Commands: []*cli.Command{
			{
				Name:      "register",
				Usage:     "Create an account and sign in",
				Arguments: emailArg,
				Action:    r.UsersRegister,
			},
			{
				Name:      "login",
				Usage:     "Sign in with an existing email",
				Arguments: emailArg,
				Action:    r.UsersLogin,
			},
			{
				Name:   "logout",
				Usage:  "Revoke the session token and forget it",
				Action: r.UsersLogout,
			},
			{
				Name:   "delete",
				Usage:  "Delete your account and all of its links",
				Flags:  []cli.Flag{&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask for confirmation"}},
				Action: r.UsersDelete,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed in user",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.UsersWhoAmI,
			},
		},
	}
}

// linksCommand handles link operations.
func linksCommand(r *Runner) *cli.Command {
	idArg := []cli.Argument{&cli.StringArg{Name: "id"}}
	inputFlags := []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Video title"},
		&cli.StringFlag{Name: "url", Usage: "YouTube URL"},
		&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "Free-form notes"},
	}

	return &cli.Command{
		Name:    "links",
		Aliases: []string{"link", "ls"},
		Usage:   "Manage your YouTube links",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List links, optionally by status",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "pending, sent, processed, failed or all", Value: "all"},
					jsonFlag(),
				},
				Action: r.LinksList,
			},
			{
				Name:   "summary",
				Usage:  "Count links per status",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.LinksSummary,
			},
			{
				Name:  "add",
				Usage: "Save a YouTube link",
				Flags: append(inputFlags,
					&cli.BoolFlag{Name: "send", Usage: "Queue the new link for delivery right away"},
					useFlag(),
				),
				Action: r.LinksAdd,
			},
			{
				Name:      "show",
				Usage:     "Show one link",
				Arguments: idArg,
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.LinksShow,
			},
			{
				Name:      "edit",
				Usage:     "Change the title, URL or notes of a link",
				Arguments: idArg,
				Flags:     inputFlags,
				Action:    r.LinksEdit,
			},
			{
				Name:      "rm",
				Aliases:   []string{"delete"},
				Usage:     "Delete a link",
				Arguments: idArg,
				Action:    r.LinksRemove,
			},
			{
				Name:  "status",
				Usage: "Set the status of a link",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "status"},
				},
				Action: r.LinksStatus,
			},
			{
				Name:      "send",
				Usage:     "Call the webhook from this machine and record the outcome",
				Arguments: idArg,
				Flags:     []cli.Flag{useFlag()},
				Action:    r.LinksSend,
			},
			{
				Name:      "resend",
				Usage:     "Ask the server to deliver the link to the webhook",
				Arguments: idArg,
				Flags:     []cli.Flag{useFlag()},
				Action:    r.LinksResend,
			},
			{
				Name:      "open",
				Usage:     "Open the video in the default browser",
				Arguments: idArg,
				Action:    r.LinksOpen,
			},
			{
				Name:  "export",
				Usage: "Export links to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Export format (json, csv, markdown, txt)", Value: formatter.FormatJSON},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file, or directory with --split"},
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Only export links with this status", Value: "all"},
					&cli.StringFlag{Name: "title", Usage: "Heading for markdown and text exports"},
					&cli.BoolFlag{Name: "split", Usage: "Write one file per status plus a manifest"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent writers with --split", Value: 4},
				},
				Action: r.LinksExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive links dashboard",
		Action:  r.TUI,
	}
}
