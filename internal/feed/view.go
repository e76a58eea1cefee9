// Package feed builds the denormalized per-viewer post projection and the
// cursor-paginated windows served by the feed and reply endpoints.
package feed

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Feed scopes.
const (
	ScopeForYou    = "for-you"
	ScopeFollowing = "following"
)

// Row is the per-request projection of a post: author snapshot, first
// repost attribution, exact association counts and viewer-specific flags.
// Rows are materialized per query and never stored.
type Row struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	AuthorID       uint   `json:"authorId"`
	AuthorUsername string `json:"authorUsername"`
	AuthorImage    string `json:"authorImage,omitempty"`

	ReposterID       *uint      `json:"reposterId,omitempty"`
	ReposterUsername *string    `json:"reposterUsername,omitempty"`
	RepostID         *uint      `json:"repostId,omitempty"`
	RepostCreatedAt  *time.Time `json:"repostCreatedAt,omitempty"`

	RepostsCount int64 `json:"repostsCount"`
	LikesCount   int64 `json:"likesCount"`
	SavesCount   int64 `json:"savesCount"`
	RepliesCount int64 `json:"repliesCount"`

	IsLiked    bool `json:"isLiked"`
	IsSaved    bool `json:"isSaved"`
	IsReposted bool `json:"isReposted"`
	IsOwner    bool `json:"isOwner"`

	ReplyToID *uint `json:"replyToId"`
}

// postRow is the scan target of the base query. Counts come from correlated
// subqueries; viewer flags and first-repost attribution are merged in
// afterwards by assemble.
type postRow struct {
	ID             uint
	Content        string
	Image          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	AuthorID       uint
	AuthorUsername string
	AuthorImage    string
	ReplyToID      *uint
	RepostsCount   int64
	LikesCount     int64
	SavesCount     int64
	RepliesCount   int64
}

const rowColumns = `posts.id, posts.content, posts.image, posts.created_at, posts.updated_at,
posts.author_id, users.username AS author_username, users.image AS author_image, posts.reply_to_id,
(SELECT COUNT(*) FROM reposts WHERE reposts.post_id = posts.id) AS reposts_count,
(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count,
(SELECT COUNT(*) FROM saves WHERE saves.post_id = posts.id) AS saves_count,
(SELECT COUNT(*) FROM posts AS replies WHERE replies.reply_to_id = posts.id) AS replies_count`

// Builder resolves posts into feed rows. Pure read; the caller must have
// resolved the viewer identity already.
type Builder struct {
	db *gorm.DB
}

func NewBuilder(db *gorm.DB) *Builder {
	return &Builder{db: db}
}

func (b *Builder) base(ctx context.Context) *gorm.DB {
	return b.db.WithContext(ctx).
		Table("posts").
		Select(rowColumns).
		Joins("JOIN users ON users.id = posts.author_id")
}

// Feed returns one page of top-level posts for viewer. The following scope
// restricts to posts authored by followed users or reposted by at least one
// of them; a post qualifies once however many followed users reposted it.
func (b *Builder) Feed(ctx context.Context, scope string, viewer, cursor uint, limit int) (*Page, error) {
	q := b.base(ctx).Where("posts.reply_to_id IS NULL")
	if scope == ScopeFollowing {
		q = q.Where(`(posts.author_id IN (SELECT following_id FROM follows WHERE follower_id = ?)
			OR EXISTS (SELECT 1 FROM reposts
				JOIN follows ON follows.following_id = reposts.user_id
				WHERE reposts.post_id = posts.id AND follows.follower_id = ?))`,
			viewer, viewer)
	}
	return b.page(ctx, q, viewer, cursor, limit)
}

// Replies returns one page of the direct children of a post.
func (b *Builder) Replies(ctx context.Context, postID, viewer, cursor uint, limit int) (*Page, error) {
	q := b.base(ctx).Where("posts.reply_to_id = ?", postID)
	return b.page(ctx, q, viewer, cursor, limit)
}

// ByID resolves a single post. Returns gorm.ErrRecordNotFound if it does
// not exist.
func (b *Builder) ByID(ctx context.Context, postID, viewer uint) (*Row, error) {
	var raw []postRow
	if err := b.base(ctx).Where("posts.id = ?", postID).Limit(1).Find(&raw).Error; err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	rows, err := b.assemble(ctx, raw, viewer)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (b *Builder) page(ctx context.Context, q *gorm.DB, viewer, cursor uint, limit int) (*Page, error) {
	raw, next, err := Window[postRow](q, "posts.id", cursor, limit, func(r *postRow) uint { return r.ID })
	if err != nil {
		return nil, err
	}
	items, err := b.assemble(ctx, raw, viewer)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, NextCursor: next}, nil
}

// assemble merges viewer flags and first-repost attribution into raw rows.
func (b *Builder) assemble(ctx context.Context, raw []postRow, viewer uint) ([]Row, error) {
	items := make([]Row, 0, len(raw))
	if len(raw) == 0 {
		return items, nil
	}

	ids := make([]uint, len(raw))
	for i := range raw {
		ids[i] = raw[i].ID
	}

	liked, err := b.viewerMarks(ctx, "likes", viewer, ids)
	if err != nil {
		return nil, err
	}
	saved, err := b.viewerMarks(ctx, "saves", viewer, ids)
	if err != nil {
		return nil, err
	}
	reposted, err := b.viewerMarks(ctx, "reposts", viewer, ids)
	if err != nil {
		return nil, err
	}
	firsts, err := b.firstReposts(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, r := range raw {
		row := Row{
			ID:             r.ID,
			Content:        r.Content,
			Image:          r.Image,
			CreatedAt:      r.CreatedAt,
			UpdatedAt:      r.UpdatedAt,
			AuthorID:       r.AuthorID,
			AuthorUsername: r.AuthorUsername,
			AuthorImage:    r.AuthorImage,
			RepostsCount:   r.RepostsCount,
			LikesCount:     r.LikesCount,
			SavesCount:     r.SavesCount,
			RepliesCount:   r.RepliesCount,
			IsLiked:        liked[r.ID],
			IsSaved:        saved[r.ID],
			IsReposted:     reposted[r.ID],
			IsOwner:        r.AuthorID == viewer,
			ReplyToID:      r.ReplyToID,
		}
		if fr, ok := firsts[r.ID]; ok {
			row.ReposterID = &fr.UserID
			row.ReposterUsername = &fr.Username
			row.RepostID = &fr.ID
			row.RepostCreatedAt = &fr.CreatedAt
		}
		items = append(items, row)
	}
	return items, nil
}

// viewerMarks reports which of the given posts carry an association row of
// the given kind for the viewer.
func (b *Builder) viewerMarks(ctx context.Context, table string, viewer uint, ids []uint) (map[uint]bool, error) {
	var postIDs []uint
	err := b.db.WithContext(ctx).Table(table).
		Where("user_id = ? AND post_id IN ?", viewer, ids).
		Pluck("post_id", &postIDs).Error
	if err != nil {
		return nil, err
	}
	marks := make(map[uint]bool, len(postIDs))
	for _, id := range postIDs {
		marks[id] = true
	}
	return marks, nil
}

type firstRepost struct {
	ID        uint
	UserID    uint
	PostID    uint
	CreatedAt time.Time
	Username  string
}

// firstReposts resolves, per post, the earliest repost (ties broken by
// lowest id) with the reposting user's name for "X reposted" attribution.
func (b *Builder) firstReposts(ctx context.Context, ids []uint) (map[uint]firstRepost, error) {
	var all []firstRepost
	err := b.db.WithContext(ctx).Table("reposts").
		Select("reposts.id, reposts.user_id, reposts.post_id, reposts.created_at, users.username").
		Joins("JOIN users ON users.id = reposts.user_id").
		Where("reposts.post_id IN ?", ids).
		Order("reposts.created_at ASC, reposts.id ASC").
		Find(&all).Error
	if err != nil {
		return nil, err
	}
	firsts := make(map[uint]firstRepost, len(ids))
	for _, r := range all {
		if _, ok := firsts[r.PostID]; !ok {
			firsts[r.PostID] = r
		}
	}
	return firsts, nil
}
