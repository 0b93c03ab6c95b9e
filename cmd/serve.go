package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"emofeed/config"
	"emofeed/db"
	"emofeed/feeds"
	"emofeed/hydrate"
	"emofeed/server"
	"emofeed/users"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the emofeed API",
		Description: `Starts the emofeed HTTP server.

Serves the feed read API, the create-post write API and the page hydration
payloads for the home, profile and single-post pages.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file",
				EnvVars: []string{"EMOFEED_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "SQLite database file location, overrides the config file",
				EnvVars: []string{"EMOFEED_DATABASE"},
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return err
			}
			if database := ctx.String("database"); database != "" {
				cfg.Database.Path = database
			}

			if err := db.Migrate(cfg.Database.Path); err != nil {
				return fmt.Errorf("could not migrate database: %w", err)
			}

			reader := db.NewReader(cfg.Database.Path, cfg.Feed.Window)
			writer := db.NewWriter(cfg.Database.Path)
			resolver := users.NewResolver(reader, cfg.Avatar.FallbackURL)
			service := feeds.NewService(reader, resolver)

			app := server.Server(&server.ServerConfig{
				Feeds:      service,
				Writer:     writer,
				Resolver:   resolver,
				Prefetcher: hydrate.NewPrefetcher(service),
			})

			// Graceful shutdown
			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)

			go func() {
				<-interrupt
				log.Info("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					log.Error("Error shutting down server", err)
				}
			}()

			log.WithFields(log.Fields{
				"address": cfg.Server.Addr(),
			}).Info("Starting server...")

			if err := app.Listen(cfg.Server.Addr()); err != nil {
				return err
			}

			reader.Close()
			writer.Close()

			return nil
		},
	}
}
