package models

import "time"

// User is an account holder. Password material never leaves the server.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:20;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null" json:"-"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Bio          string    `gorm:"size:160" json:"bio,omitempty"`
	Image        string    `json:"image,omitempty"`
	Cover        string    `json:"cover,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Post is a top-level post or, when ReplyToID is set, a reply.
// Deleting the author or the parent post removes it as well.
type Post struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Content   string    `gorm:"size:280;not null" json:"content"`
	Image     string    `json:"image,omitempty"`
	AuthorID  uint      `gorm:"not null;index" json:"authorId"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	ReplyToID *uint     `gorm:"index" json:"replyToId"`
	ReplyTo   *Post     `gorm:"foreignKey:ReplyToID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Like, Save and Repost are (user, post) association rows.
// The composite unique index guarantees at most one row per pair and kind.

type Like struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_user_post" json:"userId"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_like_user_post" json:"postId"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

type Save struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_save_user_post" json:"userId"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_save_user_post" json:"postId"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repost struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_repost_user_post" json:"userId"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_repost_user_post" json:"postId"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// Follow links a follower to the account they follow, unique per ordered
// pair. Self-follows are rejected at the write boundary, not here.
type Follow struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	FollowerID  uint      `gorm:"not null;index;uniqueIndex:idx_follower_following" json:"followerId"`
	Follower    User      `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	FollowingID uint      `gorm:"not null;index;uniqueIndex:idx_follower_following" json:"followingId"`
	Following   User      `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Notification is a best-effort record written after follow/unfollow.
type Notification struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	ActorID    uint      `gorm:"not null" json:"actorId"`
	Type       string    `gorm:"not null" json:"type"`
	TargetID   uint      `json:"targetId"`
	TargetType string    `json:"targetType"`
	CreatedAt  time.Time `json:"createdAt"`
}

// All returns every model in migration order.
func All() []any {
	return []any{&User{}, &Post{}, &Like{}, &Save{}, &Repost{}, &Follow{}, &Notification{}}
}
