// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func rootPassFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "root-pass",
		Usage:    "Root password for the token service",
		Required: true,
	}
}

// setupCommand handles database lifecycle operations
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Database lifecycle operations",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:  "teardown",
				Usage: "Roll back the schema and drop all tables",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip the confirmation prompt",
					},
				},
				Action: r.SetupTeardown,
			},
		},
	}
}

// syncCommand handles listening history synchronization
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Synchronize listening history",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Crawl recently played tracks for every registered user",
				Flags: []cli.Flag{
					configFlag(),
					rootPassFlag(),
					&cli.StringFlag{
						Name:    "date",
						Aliases: []string{"d"},
						Usage:   "Target date (YYYY-MM-DD), defaults to today",
					},
					&cli.StringFlag{
						Name:  "tz",
						Usage: "IANA timezone for day boundaries, overrides config",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the run report as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.SyncRun,
			},
			{
				Name:   "check",
				Usage:  "Verify token service and catalog connectivity",
				Flags:  []cli.Flag{configFlag(), rootPassFlag()},
				Action: r.SyncCheck,
			},
		},
	}
}

// usersCommand lists registered users
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Registered user operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List users registered with the token service",
				Flags: []cli.Flag{
					configFlag(),
					rootPassFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.UsersList,
			},
		},
	}
}
