package cmd

import (
	"context"
	"fmt"
	"time"

	"emofeed/db"

	"github.com/cqroot/prompt"
	"github.com/urfave/cli/v2"
)

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Seed the database with demo users and posts",
		Description: `Seeds the database with a handful of demo users and posts.

One of the seeded users is deleted again after posting, so the feed contains
posts that resolve to the deleted-user placeholder.`,
		Flags: []cli.Flag{
			databaseFlag(),
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")

			if err := db.Migrate(database); err != nil {
				return fmt.Errorf("could not migrate database: %w", err)
			}

			writer := db.NewWriter(database)
			defer writer.Close()

			count, err := writer.CountPosts(ctx.Context)
			if err != nil {
				return err
			}

			if count > 0 {
				answer, err := prompt.New().Ask(
					fmt.Sprintf("Database already has %d posts. Seed anyway?", count),
				).Choose([]string{"Yes", "No"})
				if err != nil {
					return err
				}
				if answer != "Yes" {
					return nil
				}
			}

			return seed(ctx.Context, writer)
		},
	}
}

func seed(ctx context.Context, writer *db.Writer) error {
	users := []struct {
		username string
		avatar   string
		posts    []string
		deleted  bool
	}{
		{
			username: "alice",
			avatar:   "https://i.pravatar.cc/150?u=alice",
			posts:    []string{"🌞🌻", "🎉🎊🥳", "☕️💻"},
		},
		{
			username: "bob",
			avatar:   "https://i.pravatar.cc/150?u=bob",
			posts:    []string{"🐢", "🍕🍕🍕"},
		},
		{
			// Deleted after posting so the feed exercises the
			// deleted-user placeholder.
			username: "mallory",
			avatar:   "https://i.pravatar.cc/150?u=mallory",
			posts:    []string{"👻"},
			deleted:  true,
		},
	}

	for _, entry := range users {
		author, err := writer.CreateUser(ctx, entry.username, entry.avatar)
		if err != nil {
			return fmt.Errorf("could not create user %s: %w", entry.username, err)
		}

		for _, content := range entry.posts {
			if _, err := writer.CreatePost(ctx, author.ID, content); err != nil {
				return fmt.Errorf("could not create post for %s: %w", entry.username, err)
			}
			// Creation time is the ordering key; keep timestamps distinct.
			time.Sleep(5 * time.Millisecond)
		}

		if entry.deleted {
			if err := writer.DeleteUser(ctx, author.ID); err != nil {
				return fmt.Errorf("could not delete user %s: %w", entry.username, err)
			}
			fmt.Printf("Seeded and deleted @%s (posts now orphaned)\n", entry.username)
			continue
		}

		fmt.Printf("Seeded @%s (id %s)\n", entry.username, author.ID)
	}

	return nil
}
