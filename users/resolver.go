// Package users resolves post author ids to profile projections. Resolution
// can always fail for individual ids (accounts get deleted, posts stay); the
// resolver absorbs that by producing a canonical deleted-user placeholder
// instead of an error, so every caller sees one author shape.
package users

import (
	"context"

	"emofeed/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Directory is the identity source the resolver reads from. The SQLite
// reader implements it; a remote identity provider could as well.
type Directory interface {
	GetUser(ctx context.Context, id string) (models.Author, error)
	GetUsers(ctx context.Context, ids []string) ([]models.Author, error)
	GetUserByUsername(ctx context.Context, username string) (models.Author, error)
}

type Resolver struct {
	dir            Directory
	fallbackAvatar string
}

func NewResolver(dir Directory, fallbackAvatar string) *Resolver {
	return &Resolver{
		dir:            dir,
		fallbackAvatar: fallbackAvatar,
	}
}

// Deleted returns the placeholder author substituted when a user id no
// longer resolves. This is the only place the placeholder is constructed.
func (r *Resolver) Deleted() models.Author {
	return models.Author{
		Username:        models.DeletedUsername,
		ProfileImageURL: r.fallbackAvatar,
	}
}

// Resolve returns the profile projection for a user id. A missing user is
// not an error: the deleted-user placeholder comes back instead.
func (r *Resolver) Resolve(ctx context.Context, id string) models.Author {
	author, err := r.dir.GetUser(ctx, id)
	if err != nil {
		return r.Deleted()
	}
	return author
}

// ResolveAll resolves the distinct set of author ids in one directory read
// and returns a map from id to profile. Every requested id is present in the
// result; unresolvable ids map to the deleted-user placeholder.
func (r *Resolver) ResolveAll(ctx context.Context, ids []string) map[string]models.Author {
	distinct := lo.Uniq(ids)

	resolved := map[string]models.Author{}
	authors, err := r.dir.GetUsers(ctx, distinct)
	if err != nil {
		// Treat a failed directory read like a miss for every id rather
		// than failing the feed render.
		log.WithFields(log.Fields{"error": err}).Warn("Directory lookup failed, substituting deleted users")
	} else {
		resolved = lo.KeyBy(authors, func(author models.Author) string {
			return author.ID
		})
	}

	result := make(map[string]models.Author, len(distinct))
	for _, id := range distinct {
		if author, ok := resolved[id]; ok {
			result[id] = author
		} else {
			result[id] = r.Deleted()
		}
	}

	return result
}

// ByUsername looks up a profile by display handle. Returns
// models.ErrNotFound when no user has the handle.
func (r *Resolver) ByUsername(ctx context.Context, username string) (models.Author, error) {
	return r.dir.GetUserByUsername(ctx, username)
}
