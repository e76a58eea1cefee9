package http

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/ripplehq/ripple/internal/feed"
	"github.com/ripplehq/ripple/internal/notify"
)

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, db *gorm.DB) {

	// --- Dependencies ---
	env := &Env{
		DB:     db,
		Feed:   feed.NewBuilder(db),
		Notify: notify.New(db),
	}

	// --- Middleware ---
	router.Use(SecurityHeadersMiddleware())

	corsOrigin := os.Getenv("CORS_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "*" // Default to allow all for local dev
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// --- Rate Limiter Setup ---
	limiter := NewIPRateLimiter(rate.Limit(rateLimitRPS), rateLimitBurst)
	go func() {
		for {
			time.Sleep(10 * time.Minute)
			limiter.mu.Lock()
			for ip, v := range limiter.visitors {
				if v.Allow() {
					// Idle limiter, drop it; active ones stay.
					delete(limiter.visitors, ip)
				}
			}
			limiter.mu.Unlock()
		}
	}()

	// --- API Routes ---

	api := router.Group("/api")

	api.POST("/auth/register", env.Register)
	api.POST("/auth/login", env.Login)

	authed := api.Group("", JWTAuthMiddleware())
	{
		authed.GET("/feed", env.GetFeed)

		authed.GET("/posts/:id", env.GetPost)
		authed.GET("/posts/:id/replies", env.GetReplies)
		authed.POST("/posts", RateLimitMiddleware(limiter), env.CreatePost)
		authed.POST("/posts/:id/reply", RateLimitMiddleware(limiter), env.ReplyToPost)
		authed.PATCH("/posts/:id", env.UpdatePost)
		authed.DELETE("/posts/:id", env.DeletePost)

		authed.PUT("/posts/:id/like", env.LikePost)
		authed.DELETE("/posts/:id/like", env.UnlikePost)
		authed.PUT("/posts/:id/save", env.SavePost)
		authed.DELETE("/posts/:id/save", env.UnsavePost)
		authed.PUT("/posts/:id/repost", env.RepostPost)
		authed.DELETE("/posts/:id/repost", env.UnrepostPost)

		authed.POST("/users/:id/follow", env.FollowUser)
		authed.DELETE("/users/:id/follow", env.UnfollowUser)
		authed.GET("/users/:id/followers", env.GetFollowers)
		authed.GET("/users/:id/following", env.GetFollowing)
		authed.GET("/users/search", env.SearchUsers)
		authed.GET("/users/suggestions", env.GetSuggestions)

		authed.GET("/profiles/:username", env.GetProfile)
		authed.PATCH("/profile", env.UpdateProfile)
	}
}
