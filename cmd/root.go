package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "emofeed",
		Usage: "An emoji micro-blogging feed",
		Description: `A minimal micro-blogging feed where users post short emoji
		updates and browse a global feed, per-user profiles and single posts.

		Posts are stored in an SQLite database and served over an HTTP API
		together with per-page hydration payloads, so a client cache can be
		seeded before the first render.

		Flags can generally be set via environment variables, e.g.:

		--database => EMOFEED_DATABASE=emofeed.db
		--config => EMOFEED_CONFIG=config.toml
		`,
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			rollbackCmd(),
			seedCmd(),
			feedCmd(),
			postCmd(),
			tidyCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
