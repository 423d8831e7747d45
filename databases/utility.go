package databases

import "go.mongodb.org/mongo-driver/mongo/options"

// pageOpts builds find options for a zero-based page of the given size.
// Non-positive sizes fall back to a single default page.
func pageOpts(limit, page int) *options.FindOptions {
	if limit <= 0 {
		limit = 50
	}
	if page < 0 {
		page = 0
	}
	l := int64(limit)
	skip := int64(page) * l
	return &options.FindOptions{Limit: &l, Skip: &skip}
}
