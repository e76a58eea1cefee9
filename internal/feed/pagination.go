package feed

import "gorm.io/gorm"

// Page is one window of feed rows plus the continuation token. NextCursor
// is the id of the first row beyond the page and is absent once the stream
// is exhausted.
type Page struct {
	Items      []Row `json:"items"`
	NextCursor *uint `json:"nextCursor,omitempty"`
}

// Window fetches limit+1 rows below cursor (cursor 0 means unbounded),
// ordered descending by column. When the extra row comes back it is popped
// and its id becomes the next cursor. Pages over a static snapshot are
// disjoint and exhaustive; rows inserted above the cursor never show up in
// continuations, and rows deleted below it are skipped silently.
func Window[T any](q *gorm.DB, column string, cursor uint, limit int, id func(*T) uint) ([]T, *uint, error) {
	if cursor > 0 {
		q = q.Where(column+" < ?", cursor)
	}
	items := make([]T, 0, limit+1)
	if err := q.Order(column + " DESC").Limit(limit + 1).Find(&items).Error; err != nil {
		return nil, nil, err
	}
	var next *uint
	if len(items) > limit {
		last := items[limit]
		c := id(&last)
		next = &c
		items = items[:limit]
	}
	return items, next, nil
}
