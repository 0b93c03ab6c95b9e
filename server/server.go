package server

import (
	"errors"
	"strings"
	"time"

	"emofeed/db"
	"emofeed/feeds"
	"emofeed/hydrate"
	"emofeed/metrics"
	"emofeed/models"
	"emofeed/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type ServerConfig struct {

	// Feed join service backing all read queries
	Feeds *feeds.Service

	// Writer for the create-post path
	Writer *db.Writer

	// Resolver to join a freshly created post with its author
	Resolver *users.Resolver

	// Prefetcher for page hydration payloads
	Prefetcher *hydrate.Prefetcher
}

type createPostInput struct {
	Content string `json:"content"`
}

type errorBody struct {
	Message     string              `json:"message"`
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
}

// Returns a fiber.App instance serving the feed API and the page hydration
// payloads.
func Server(config *ServerConfig) *fiber.App {

	app := fiber.New(fiber.Config{
		UnescapePath: true,
	})

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		// start timer
		start := time.Now()

		// next routes
		err := c.Next()

		// stop timer
		stop := time.Now()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": stop.Sub(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:3001",
		AllowHeaders: "Cache-Control, Content-Type, X-User-ID",
	}))

	// Rate limit the write path only
	app.Use(limiter.New(limiter.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != "POST"
		},
		Max:        10,
		Expiration: time.Minute,
	}))

	// Page payloads are generated on demand at first request and memoized
	// here, so repeated requests for the same page hit the generated copy.
	app.Use(cache.New(cache.Config{
		Next: func(c *fiber.Ctx) bool {
			if c.Method() != "GET" {
				return true
			}
			return !strings.HasPrefix(c.Path(), "/pages")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Request().URI().String()
		},
		Expiration: 10 * time.Second,
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Read API

	app.Get("/api/posts", func(c *fiber.Ctx) error {
		metrics.FeedQueries.WithLabelValues(feeds.KeyAll()).Inc()

		feed, err := config.Feeds.FeedAll(c.Context())
		if err != nil {
			log.WithFields(log.Fields{"error": err}).Error("Error getting feed")
			return c.Status(500).JSON(errorBody{Message: "Something went wrong"})
		}
		return c.JSON(feed)
	})

	app.Get("/api/posts/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		metrics.FeedQueries.WithLabelValues("posts.getById").Inc()

		post, err := config.Feeds.FeedByID(c.Context(), id)
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(404).JSON(errorBody{Message: "Post not found"})
		}
		if err != nil {
			log.WithFields(log.Fields{
				"id":    id,
				"error": err,
			}).Error("Error getting post")
			return c.Status(500).JSON(errorBody{Message: "Something went wrong"})
		}
		return c.JSON(post)
	})

	app.Get("/api/authors/:id/posts", func(c *fiber.Ctx) error {
		id := c.Params("id")
		metrics.FeedQueries.WithLabelValues("posts.getByAuthor").Inc()

		feed, err := config.Feeds.FeedByAuthor(c.Context(), id)
		if err != nil {
			log.WithFields(log.Fields{
				"user":  id,
				"error": err,
			}).Error("Error getting author feed")
			return c.Status(500).JSON(errorBody{Message: "Something went wrong"})
		}
		return c.JSON(feed)
	})

	app.Get("/api/profile/:username", func(c *fiber.Ctx) error {
		username := c.Params("username")

		author, err := config.Feeds.Profile(c.Context(), username)
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(404).JSON(errorBody{Message: "Profile not found"})
		}
		if err != nil {
			log.WithFields(log.Fields{
				"username": username,
				"error":    err,
			}).Error("Error getting profile")
			return c.Status(500).JSON(errorBody{Message: "Something went wrong"})
		}
		return c.JSON(author)
	})

	// Write API

	app.Post("/api/posts", func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return c.Status(401).JSON(errorBody{Message: "Sign in to post"})
		}

		var input createPostInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(400).JSON(errorBody{Message: "Invalid request body"})
		}

		post, err := config.Writer.CreatePost(c.Context(), userID, input.Content)
		if err != nil {
			var validation *models.ValidationError
			if errors.As(err, &validation) {
				return c.Status(400).JSON(errorBody{
					Message:     "Invalid post",
					FieldErrors: validation.FieldErrors,
				})
			}
			log.WithFields(log.Fields{"error": err}).Error("Error creating post")
			return c.Status(500).JSON(errorBody{Message: "Something went wrong"})
		}

		metrics.PostsCreated.Inc()

		return c.Status(201).JSON(models.PostWithAuthor{
			Post:   post,
			Author: config.Resolver.Resolve(c.Context(), post.AuthorID),
		})
	})

	// Page hydration payloads

	app.Get("/pages/home", func(c *fiber.Ctx) error {
		snapshot, err := config.Prefetcher.HomePage(c.Context())
		if err != nil {
			return pageError(c, err)
		}
		return c.JSON(snapshot)
	})

	app.Get("/pages/profile/:slug", func(c *fiber.Ctx) error {
		snapshot, err := config.Prefetcher.ProfilePage(c.Context(), c.Params("slug"))
		if err != nil {
			return pageError(c, err)
		}
		return c.JSON(snapshot)
	})

	app.Get("/pages/post/:id", func(c *fiber.Ctx) error {
		snapshot, err := config.Prefetcher.PostPage(c.Context(), c.Params("id"))
		if err != nil {
			return pageError(c, err)
		}
		return c.JSON(snapshot)
	})

	return app
}

// pageError maps prefetch failures: a malformed route parameter is fatal for
// the page, everything else is already absorbed by the prefetcher.
func pageError(c *fiber.Ctx, err error) error {
	var generation *hydrate.GenerationError
	if errors.As(err, &generation) {
		log.WithFields(log.Fields{
			"param":  generation.Param,
			"reason": generation.Reason,
		}).Error("Page generation failed")
		return c.Status(500).JSON(errorBody{Message: "Page generation failed"})
	}
	return c.Status(500).JSON(errorBody{Message: "Something went wrong"})
}
