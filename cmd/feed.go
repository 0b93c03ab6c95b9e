package cmd

import (
	"context"
	"fmt"
	"time"

	"emofeed/cache"
	"emofeed/client"
	"emofeed/models"

	"github.com/urfave/cli/v2"
)

func serverFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Value:   "http://localhost:3000",
		Usage:   "Base URL of the emofeed server",
		EnvVars: []string{"EMOFEED_SERVER"},
	}
}

func feedCmd() *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Fetch and print the feed",
		Description: `Fetches the feed from the server and prints it.

With no flags the global feed is printed. Use --author to print one author's
posts or --post to print a single post. The page hydration payload seeds the
client cache first, so the feed renders from the snapshot without an extra
query.`,
		Flags: []cli.Flag{
			serverFlag(),
			&cli.StringFlag{
				Name:  "author",
				Usage: "Print posts for this author id",
			},
			&cli.StringFlag{
				Name:  "post",
				Usage: "Print the single post with this id",
			},
		},
		Action: func(ctx *cli.Context) error {
			fetcher := client.NewHTTPFetcher(ctx.String("server"), "")
			feedClient := client.NewClient(cache.New(), fetcher)

			timeout, cancel := context.WithTimeout(ctx.Context, 30*time.Second)
			defer cancel()

			// Seed the cache the way a page load would.
			if snapshot, err := fetcher.Page(timeout, "/pages/home"); err == nil {
				feedClient.Seed(snapshot)
			}

			if id := ctx.String("post"); id != "" {
				result, err := client.Await(timeout, func() client.Result[models.PostWithAuthor] {
					return feedClient.FeedByID(timeout, id)
				})
				if err != nil {
					return err
				}
				if result.IsError {
					return fmt.Errorf("something went wrong fetching the post")
				}
				if result.Data.Post.ID == "" {
					fmt.Println("No post")
					return nil
				}
				printPost(result.Data)
				return nil
			}

			var result client.Result[[]models.PostWithAuthor]
			var err error
			if author := ctx.String("author"); author != "" {
				result, err = client.Await(timeout, func() client.Result[[]models.PostWithAuthor] {
					return feedClient.FeedByAuthor(timeout, author)
				})
			} else {
				result, err = client.Await(timeout, func() client.Result[[]models.PostWithAuthor] {
					return feedClient.FeedAll(timeout)
				})
			}
			if err != nil {
				return err
			}
			if result.IsError {
				return fmt.Errorf("something went wrong fetching the feed")
			}
			if len(result.Data) == 0 {
				fmt.Println("No posts")
				return nil
			}

			for _, post := range result.Data {
				printPost(post)
			}
			return nil
		},
	}
}

func printPost(post models.PostWithAuthor) {
	fmt.Printf("@%s · %s\n  %s\n",
		post.Author.Username,
		post.Post.CreatedAt.Local().Format(time.RFC822),
		post.Post.Content,
	)
}
