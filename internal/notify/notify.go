// Package notify records follow notifications as a best-effort side
// channel. A failed write or delete is logged and never rolls back the
// follow/unfollow it accompanies.
package notify

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ripplehq/ripple/internal/models"
)

const opTimeout = 5 * time.Second

type Recorder struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// FollowCreated records a "follow" notification for userID caused by actorID.
func (r *Recorder) FollowCreated(userID, actorID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	n := models.Notification{
		UserID:     userID,
		ActorID:    actorID,
		Type:       "follow",
		TargetID:   userID,
		TargetType: "profile",
	}
	if err := r.db.WithContext(ctx).Create(&n).Error; err != nil {
		log.Errorf("Error recording follow notification for user %d: %v", userID, err)
	}
}

// FollowRemoved deletes the matching follow notification, if any.
func (r *Recorder) FollowRemoved(userID, actorID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND actor_id = ? AND type = ? AND target_type = ?",
			userID, actorID, "follow", "profile").
		Delete(&models.Notification{}).Error
	if err != nil {
		log.Errorf("Error removing follow notification for user %d: %v", userID, err)
	}
}
