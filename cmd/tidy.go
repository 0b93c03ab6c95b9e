package cmd

import (
	"fmt"

	"emofeed/db"

	"github.com/urfave/cli/v2"
)

func tidyCmd() *cli.Command {
	return &cli.Command{
		Name:  "tidy",
		Usage: "Tidy up the database",
		Description: `Tidy up the database by removing posts that are old.

		Remove posts that are older than 90 days from the database.
		This is to keep the database size down and to keep the feed fresh.`,
		Flags: []cli.Flag{
			databaseFlag(),
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")
			fmt.Println("Database configured: ", database)

			deleted, err := db.Tidy(ctx.Context, database)
			if err != nil {
				return err
			}

			fmt.Println("Deleted posts: ", deleted)
			return nil
		},
	}
}
