package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ripplehq/ripple/internal/feed"
	"github.com/ripplehq/ripple/internal/models"
)

// --- Structs for request binding ---

type CreatePostInput struct {
	Content string `json:"content" binding:"required,max=280"`
	Image   string `json:"image"`
}

type UpdatePostInput struct {
	Content string  `json:"content" binding:"required,max=280"`
	Image   *string `json:"image"`
}

// GetFeed serves GET /api/feed?type=&cursor=&limit=.
func (e *Env) GetFeed(c *gin.Context) {
	scope := c.DefaultQuery("type", feed.ScopeForYou)
	if scope != feed.ScopeForYou && scope != feed.ScopeFollowing {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed type"})
		return
	}
	cursor, limit, ok := pageParams(c, feedDefaultLimit, maxPageLimit)
	if !ok {
		return
	}

	page, err := e.Feed.Feed(c.Request.Context(), scope, viewerID(c), cursor, limit)
	if err != nil {
		internalError(c, "feed query", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetPost serves GET /api/posts/:id.
func (e *Env) GetPost(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}

	row, err := e.Feed.ByID(c.Request.Context(), postID, viewerID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		internalError(c, "post lookup", err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// GetReplies serves GET /api/posts/:id/replies?cursor=&limit=.
func (e *Env) GetReplies(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	cursor, limit, ok := pageParams(c, repliesDefaultLimit, maxPageLimit)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var count int64
	if err := e.DB.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		internalError(c, "reply parent lookup", err)
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	page, err := e.Feed.Replies(ctx, postID, viewerID(c), cursor, limit)
	if err != nil {
		internalError(c, "replies query", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreatePost serves POST /api/posts.
func (e *Env) CreatePost(c *gin.Context) {
	e.createPost(c, nil)
}

// ReplyToPost serves POST /api/posts/:id/reply. The parent must exist.
func (e *Env) ReplyToPost(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}

	var count int64
	if err := e.DB.WithContext(c.Request.Context()).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		internalError(c, "reply parent lookup", err)
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	e.createPost(c, &postID)
}

func (e *Env) createPost(c *gin.Context, replyToID *uint) {
	var input CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content cannot be empty"})
		return
	}

	post := models.Post{
		Content:   content,
		Image:     input.Image,
		AuthorID:  viewerID(c),
		ReplyToID: replyToID,
	}
	if err := e.DB.WithContext(c.Request.Context()).Create(&post).Error; err != nil {
		internalError(c, "post creation", err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost serves PATCH /api/posts/:id. Author only; empty and unchanged
// content are both rejected.
func (e *Env) UpdatePost(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input UpdatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	var post models.Post
	if err := e.DB.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		internalError(c, "post lookup", err)
		return
	}
	if post.AuthorID != viewerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can edit this post"})
		return
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content cannot be empty"})
		return
	}
	if content == post.Content && (input.Image == nil || *input.Image == post.Image) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is unchanged"})
		return
	}

	updates := map[string]any{"content": content}
	if input.Image != nil {
		updates["image"] = *input.Image
	}
	if err := e.DB.WithContext(ctx).Model(&post).Updates(updates).Error; err != nil {
		internalError(c, "post update", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost serves DELETE /api/posts/:id. Author only. Dependent likes,
// saves, reposts and the whole reply subtree go with it; re-deleting an
// already-deleted post yields 404.
func (e *Env) DeletePost(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var post models.Post
	if err := e.DB.WithContext(ctx).First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		internalError(c, "post lookup", err)
		return
	}
	if post.AuthorID != viewerID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can delete this post"})
		return
	}

	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := collectThread(tx, postID)
		if err != nil {
			return err
		}
		for _, assoc := range []any{&models.Like{}, &models.Save{}, &models.Repost{}} {
			if err := tx.Where("post_id IN ?", ids).Delete(assoc).Error; err != nil {
				return err
			}
		}
		return tx.Where("id IN ?", ids).Delete(&models.Post{}).Error
	})
	if err != nil {
		internalError(c, "post deletion", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// collectThread gathers a post id plus its reply subtree by repeated keyed
// lookup, level by level.
func collectThread(tx *gorm.DB, rootID uint) ([]uint, error) {
	ids := []uint{rootID}
	frontier := []uint{rootID}
	for len(frontier) > 0 {
		var children []uint
		err := tx.Model(&models.Post{}).Where("reply_to_id IN ?", frontier).Pluck("id", &children).Error
		if err != nil {
			return nil, err
		}
		ids = append(ids, children...)
		frontier = children
	}
	return ids, nil
}

// --- Like / Save / Repost toggles ---

func (e *Env) LikePost(c *gin.Context) {
	e.mark(c, &models.Like{}, func(userID, postID uint) any {
		return &models.Like{UserID: userID, PostID: postID}
	})
}

func (e *Env) UnlikePost(c *gin.Context) {
	e.unmark(c, &models.Like{})
}

func (e *Env) SavePost(c *gin.Context) {
	e.mark(c, &models.Save{}, func(userID, postID uint) any {
		return &models.Save{UserID: userID, PostID: postID}
	})
}

func (e *Env) UnsavePost(c *gin.Context) {
	e.unmark(c, &models.Save{})
}

func (e *Env) RepostPost(c *gin.Context) {
	e.mark(c, &models.Repost{}, func(userID, postID uint) any {
		return &models.Repost{UserID: userID, PostID: postID}
	})
}

func (e *Env) UnrepostPost(c *gin.Context) {
	e.unmark(c, &models.Repost{})
}

// mark idempotently creates an association row for (viewer, post). A lost
// race against an identical request falls through to the unique index and
// still counts as success.
func (e *Env) mark(c *gin.Context, probe any, build func(userID, postID uint) any) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	viewer := viewerID(c)
	ctx := c.Request.Context()

	var count int64
	if err := e.DB.WithContext(ctx).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		internalError(c, "post lookup", err)
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if err := e.DB.WithContext(ctx).Model(probe).
		Where("user_id = ? AND post_id = ?", viewer, postID).Count(&count).Error; err != nil {
		internalError(c, "association lookup", err)
		return
	}
	if count == 0 {
		if err := e.DB.WithContext(ctx).Create(build(viewer, postID)).Error; err != nil {
			e.DB.WithContext(ctx).Model(probe).
				Where("user_id = ? AND post_id = ?", viewer, postID).Count(&count)
			if count == 0 {
				internalError(c, "association creation", err)
				return
			}
		}
	}
	c.Status(http.StatusNoContent)
}

// unmark removes an association row if present; removing a missing one is
// a no-op.
func (e *Env) unmark(c *gin.Context, probe any) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	err := e.DB.WithContext(c.Request.Context()).
		Where("user_id = ? AND post_id = ?", viewerID(c), postID).
		Delete(probe).Error
	if err != nil {
		internalError(c, "association removal", err)
		return
	}
	c.Status(http.StatusNoContent)
}
