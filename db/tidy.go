package db

import (
	"context"
	"time"

	sb "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// RetentionPeriod is how long posts are kept before Tidy removes them.
const RetentionPeriod = 90 * 24 * time.Hour

// Tidy removes posts older than the retention period from the database.
func Tidy(ctx context.Context, database string) (int64, error) {
	db, err := connection(database)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	cutoff := time.Now().Add(-RetentionPeriod).UnixMilli()
	deletePosts := sb.NewDeleteBuilder()
	query, args := deletePosts.DeleteFrom("posts").Where(deletePosts.LessEqualThan("created_at", cutoff)).Build()

	log.WithFields(log.Fields{
		"cutoff": time.UnixMilli(cutoff).Format(time.RFC3339),
	}).Info("Tidying database")

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
