package http

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ripplehq/ripple/internal/feed"
	"github.com/ripplehq/ripple/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type UpdateProfileInput struct {
	Username string  `json:"username" binding:"required,min=3,max=20"`
	Bio      *string `json:"bio" binding:"omitempty,max=160"`
	Image    *string `json:"image"`
	Cover    *string `json:"cover"`
}

// followListItem is one entry of a follower/following listing. ID is the
// follow row id and doubles as the pagination cursor.
type followListItem struct {
	ID       uint   `json:"id"`
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	Image    string `json:"image,omitempty"`
}

type userPage struct {
	Items      []followListItem `json:"items"`
	NextCursor *uint            `json:"nextCursor,omitempty"`
}

type profileResponse struct {
	models.User
	PostsCount     int64 `json:"postsCount"`
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
	IsCurrentUser  bool  `json:"isCurrentUser"`
	IsFollowing    bool  `json:"isFollowing"`
}

// FollowUser serves POST /api/users/:id/follow. Self-follows are rejected;
// a duplicate follow never creates a second row. The notification write is
// fire-and-forget.
func (e *Env) FollowUser(c *gin.Context) {
	targetID, ok := idParam(c, "id")
	if !ok {
		return
	}
	viewer := viewerID(c)
	if targetID == viewer {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
		return
	}

	ctx := c.Request.Context()
	var count int64
	if err := e.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", targetID).Count(&count).Error; err != nil {
		internalError(c, "user lookup", err)
		return
	}
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := e.DB.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", viewer, targetID).Count(&count).Error; err != nil {
		internalError(c, "follow lookup", err)
		return
	}
	if count == 0 {
		follow := models.Follow{FollowerID: viewer, FollowingID: targetID}
		if err := e.DB.WithContext(ctx).Create(&follow).Error; err != nil {
			// lost race; the unique index keeps the pair single
			e.DB.WithContext(ctx).Model(&models.Follow{}).
				Where("follower_id = ? AND following_id = ?", viewer, targetID).Count(&count)
			if count == 0 {
				internalError(c, "follow creation", err)
				return
			}
		} else {
			go e.Notify.FollowCreated(targetID, viewer)
		}
	}
	c.Status(http.StatusNoContent)
}

// UnfollowUser serves DELETE /api/users/:id/follow. Unfollowing someone you
// do not follow is a no-op.
func (e *Env) UnfollowUser(c *gin.Context) {
	targetID, ok := idParam(c, "id")
	if !ok {
		return
	}
	viewer := viewerID(c)

	res := e.DB.WithContext(c.Request.Context()).
		Where("follower_id = ? AND following_id = ?", viewer, targetID).
		Delete(&models.Follow{})
	if res.Error != nil {
		internalError(c, "unfollow", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		go e.Notify.FollowRemoved(targetID, viewer)
	}
	c.Status(http.StatusNoContent)
}

// GetFollowers serves GET /api/users/:id/followers?cursor=&limit=.
func (e *Env) GetFollowers(c *gin.Context) {
	e.followList(c, "follows.follower_id", "follows.following_id")
}

// GetFollowing serves GET /api/users/:id/following?cursor=&limit=.
func (e *Env) GetFollowing(c *gin.Context) {
	e.followList(c, "follows.following_id", "follows.follower_id")
}

func (e *Env) followList(c *gin.Context, joinColumn, whereColumn string) {
	userID, ok := idParam(c, "id")
	if !ok {
		return
	}
	cursor, limit, ok := pageParams(c, listDefaultLimit, maxPageLimit)
	if !ok {
		return
	}

	q := e.DB.WithContext(c.Request.Context()).
		Table("follows").
		Select("follows.id AS id, users.id AS user_id, users.username, users.image").
		Joins("JOIN users ON users.id = " + joinColumn).
		Where(whereColumn+" = ?", userID)

	items, next, err := feed.Window[followListItem](q, "follows.id", cursor, limit,
		func(i *followListItem) uint { return i.ID })
	if err != nil {
		internalError(c, "follow listing", err)
		return
	}
	c.JSON(http.StatusOK, userPage{Items: items, NextCursor: next})
}

// GetProfile serves GET /api/profiles/:username with live counts and the
// viewer's follow flag.
func (e *Env) GetProfile(c *gin.Context) {
	username := c.Param("username")
	ctx := c.Request.Context()

	var user models.User
	if err := e.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		internalError(c, "profile lookup", err)
		return
	}

	resp := profileResponse{User: user, IsCurrentUser: user.ID == viewerID(c)}
	counts := []struct {
		model any
		query string
		args  []any
		dest  *int64
	}{
		{&models.Post{}, "author_id = ?", []any{user.ID}, &resp.PostsCount},
		{&models.Follow{}, "following_id = ?", []any{user.ID}, &resp.FollowersCount},
		{&models.Follow{}, "follower_id = ?", []any{user.ID}, &resp.FollowingCount},
	}
	for _, q := range counts {
		if err := e.DB.WithContext(ctx).Model(q.model).Where(q.query, q.args...).Count(q.dest).Error; err != nil {
			internalError(c, "profile counts", err)
			return
		}
	}

	var following int64
	err := e.DB.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", viewerID(c), user.ID).
		Count(&following).Error
	if err != nil {
		internalError(c, "profile follow flag", err)
		return
	}
	resp.IsFollowing = following > 0

	c.JSON(http.StatusOK, resp)
}

// UpdateProfile serves PATCH /api/profile. Duplicate usernames conflict.
func (e *Env) UpdateProfile(c *gin.Context) {
	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if !usernamePattern.MatchString(input.Username) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username can only contain letters, numbers and underscores"})
		return
	}

	ctx := c.Request.Context()
	viewer := viewerID(c)

	var taken int64
	err := e.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", input.Username, viewer).
		Count(&taken).Error
	if err != nil {
		internalError(c, "username check", err)
		return
	}
	if taken > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "This username is already taken"})
		return
	}

	updates := map[string]any{"username": input.Username}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.Image != nil {
		updates["image"] = *input.Image
	}
	if input.Cover != nil {
		updates["cover"] = *input.Cover
	}

	var user models.User
	if err := e.DB.WithContext(ctx).First(&user, viewer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		internalError(c, "profile update lookup", err)
		return
	}
	if err := e.DB.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		internalError(c, "profile update", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SearchUsers serves GET /api/users/search?q=&limit=.
func (e *Env) SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" || len(query) > 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search query"})
		return
	}
	_, limit, ok := pageParams(c, searchDefaultLimit, searchMaxLimit)
	if !ok {
		return
	}

	var results []followListItem
	err := e.DB.WithContext(c.Request.Context()).
		Table("users").
		Select("users.id AS id, users.id AS user_id, users.username, users.image").
		Where("LOWER(username) LIKE ?", "%"+strings.ToLower(query)+"%").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		internalError(c, "user search", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": results})
}

// GetSuggestions serves GET /api/users/suggestions?limit= — random users
// the viewer does not follow yet.
func (e *Env) GetSuggestions(c *gin.Context) {
	_, limit, ok := pageParams(c, suggestionsDefaultLimit, searchMaxLimit)
	if !ok {
		return
	}
	viewer := viewerID(c)

	var results []followListItem
	err := e.DB.WithContext(c.Request.Context()).
		Table("users").
		Select("users.id AS id, users.id AS user_id, users.username, users.image").
		Where("users.id <> ?", viewer).
		Where(`NOT EXISTS (SELECT 1 FROM follows
			WHERE follows.follower_id = ? AND follows.following_id = users.id)`, viewer).
		Order("RANDOM()").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		internalError(c, "user suggestions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": results})
}
