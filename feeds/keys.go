package feeds

import "net/url"

// Cache keys are structural: derived from the query name and its parameters,
// so two queries with equal parameters share one cache entry regardless of
// where they were issued.

func KeyAll() string {
	return "posts.getAll"
}

func KeyByAuthor(userID string) string {
	return "posts.getByAuthor?user=" + url.QueryEscape(userID)
}

func KeyByID(postID string) string {
	return "posts.getById?id=" + url.QueryEscape(postID)
}

func KeyProfile(username string) string {
	return "profile.byUsername?username=" + url.QueryEscape(username)
}
