package cmd

import (
	"context"
	"time"

	"emofeed/cache"
	"emofeed/client"

	"github.com/urfave/cli/v2"
)

func postCmd() *cli.Command {
	return &cli.Command{
		Name:  "post",
		Usage: "Create a new post",
		Description: `Submits a new post to the server as the given user.

The submission runs through the same pending/settled notification flow as the
UI: an uploading notification while the write is in flight, replaced in place
by a success or error notification once it settles.`,
		Flags: []cli.Flag{
			serverFlag(),
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "User id to post as",
				EnvVars:  []string{"EMOFEED_USER"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "content",
				Aliases:  []string{"m"},
				Usage:    "Post content",
				Required: true,
			},
		},
		Action: func(ctx *cli.Context) error {
			fetcher := client.NewHTTPFetcher(ctx.String("server"), ctx.String("user"))
			feedClient := client.NewClient(cache.New(), fetcher)
			composer := client.NewPostComposer(feedClient, client.LogNotifier{})

			timeout, cancel := context.WithTimeout(ctx.Context, 30*time.Second)
			defer cancel()

			composer.SetInput(ctx.String("content"))
			return composer.Submit(timeout)
		},
	}
}
