package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ripplehq/ripple/internal/auth"
	"github.com/ripplehq/ripple/internal/models"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=20"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register serves POST /api/auth/register.
func (e *Env) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if !usernamePattern.MatchString(input.Username) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username can only contain letters, numbers and underscores"})
		return
	}

	ctx := c.Request.Context()
	var count int64
	err := e.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", input.Username, input.Email).
		Count(&count).Error
	if err != nil {
		internalError(c, "registration check", err)
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Username or email already taken"})
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		internalError(c, "password hashing", err)
		return
	}
	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := e.DB.WithContext(ctx).Create(&user).Error; err != nil {
		internalError(c, "user creation", err)
		return
	}

	token, err := auth.IssueToken(user.ID)
	if err != nil {
		internalError(c, "token issuing", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login serves POST /api/auth/login.
func (e *Env) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var user models.User
	err := e.DB.WithContext(c.Request.Context()).
		Where("email = ?", input.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		internalError(c, "login lookup", err)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, input.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.IssueToken(user.ID)
	if err != nil {
		internalError(c, "token issuing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
