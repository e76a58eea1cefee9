package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ripplehq/ripple/internal/auth"
	"github.com/ripplehq/ripple/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	router := gin.New()
	SetupRoutes(router, db)
	return router, db
}

func seedUser(t *testing.T, db *gorm.DB, name string) (models.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{Username: name, Email: name + "@example.com", PasswordHash: hash}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	token, err := auth.IssueToken(u.ID)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return u, token
}

func seedPost(t *testing.T, db *gorm.DB, author uint, content string) models.Post {
	t.Helper()
	p := models.Post{Content: content, AuthorID: author}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return p
}

// reqCounter feeds every request a distinct client IP so the per-IP write
// limiter never throttles the suite.
var reqCounter int

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	reqCounter++
	req.RemoteAddr = fmt.Sprintf("10.1.%d.%d:1234", reqCounter/200, reqCounter%200)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

type pageResp struct {
	Items      []map[string]any `json:"items"`
	NextCursor *uint            `json:"nextCursor"`
}

func TestRegisterAndLogin(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "alice@example.com", "password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decode[map[string]any](t, w)
	if resp["token"] == "" {
		t.Fatal("register returned no token")
	}

	// Same username again conflicts.
	w = doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"username": "alice", "email": "other@example.com", "password": "password123",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	router, _ := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/feed", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated feed status = %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/feed", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d, want 401", w.Code)
	}
}

func TestCreateAndGetPost(t *testing.T) {
	router, db := setupRouter(t)
	_, token := seedUser(t, db, "alice")

	w := doJSON(t, router, http.MethodPost, "/api/posts", token, gin.H{"content": "hello world"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	created := decode[models.Post](t, w)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/posts/%d", created.ID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, body %s", w.Code, w.Body.String())
	}
	row := decode[map[string]any](t, w)
	if row["content"] != "hello world" {
		t.Errorf("content = %v", row["content"])
	}
	if row["isOwner"] != true {
		t.Errorf("isOwner = %v, want true", row["isOwner"])
	}
	if row["likesCount"] != float64(0) {
		t.Errorf("likesCount = %v, want 0", row["likesCount"])
	}
}

func TestCreatePostValidation(t *testing.T) {
	router, db := setupRouter(t)
	_, token := seedUser(t, db, "alice")

	cases := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t "},
		{"too long", strings.Repeat("a", 281)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/api/posts", token, gin.H{"content": c.content})
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestUpdatePostGuards(t *testing.T) {
	router, db := setupRouter(t)
	alice, aliceToken := seedUser(t, db, "alice")
	_, bobToken := seedUser(t, db, "bob")
	post := seedPost(t, db, alice.ID, "original")
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	w := doJSON(t, router, http.MethodPatch, path, aliceToken, gin.H{"content": ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty content status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPatch, path, aliceToken, gin.H{"content": "original"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unchanged content status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPatch, path, bobToken, gin.H{"content": "hijacked"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner status = %d, want 403", w.Code)
	}

	w = doJSON(t, router, http.MethodPatch, path, aliceToken, gin.H{"content": "edited"})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, path, aliceToken, nil)
	row := decode[map[string]any](t, w)
	if row["content"] != "edited" {
		t.Errorf("content after update = %v, want edited", row["content"])
	}

	w = doJSON(t, router, http.MethodPatch, "/api/posts/9999", aliceToken, gin.H{"content": "x"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing post status = %d, want 404", w.Code)
	}
}

func TestDeletePostCascades(t *testing.T) {
	router, db := setupRouter(t)
	alice, aliceToken := seedUser(t, db, "alice")
	bob, bobToken := seedUser(t, db, "bob")
	post := seedPost(t, db, alice.ID, "doomed")
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	// Dependent rows: a like, a save, a repost and a reply with its own like.
	if err := db.Create(&models.Like{UserID: bob.ID, PostID: post.ID}).Error; err != nil {
		t.Fatalf("seed like: %v", err)
	}
	if err := db.Create(&models.Save{UserID: bob.ID, PostID: post.ID}).Error; err != nil {
		t.Fatalf("seed save: %v", err)
	}
	if err := db.Create(&models.Repost{UserID: bob.ID, PostID: post.ID}).Error; err != nil {
		t.Fatalf("seed repost: %v", err)
	}
	reply := models.Post{Content: "a reply", AuthorID: bob.ID, ReplyToID: &post.ID}
	if err := db.Create(&reply).Error; err != nil {
		t.Fatalf("seed reply: %v", err)
	}
	if err := db.Create(&models.Like{UserID: alice.ID, PostID: reply.ID}).Error; err != nil {
		t.Fatalf("seed reply like: %v", err)
	}

	w := doJSON(t, router, http.MethodDelete, path, bobToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("non-owner delete status = %d, want 403", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, path, aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", w.Code, w.Body.String())
	}

	for name, model := range map[string]any{
		"posts":   &models.Post{},
		"likes":   &models.Like{},
		"saves":   &models.Save{},
		"reposts": &models.Repost{},
	} {
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if count != 0 {
			t.Errorf("%s count = %d after cascade, want 0", name, count)
		}
	}

	w = doJSON(t, router, http.MethodGet, path, aliceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}

	// Re-deleting is tolerated as NOT_FOUND, never a crash.
	w = doJSON(t, router, http.MethodDelete, path, aliceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("re-delete status = %d, want 404", w.Code)
	}
}

func TestLikeToggleIdempotent(t *testing.T) {
	router, db := setupRouter(t)
	alice, _ := seedUser(t, db, "alice")
	_, bobToken := seedUser(t, db, "bob")
	post := seedPost(t, db, alice.ID, "likeable")
	path := fmt.Sprintf("/api/posts/%d/like", post.ID)

	for i := 0; i < 2; i++ {
		w := doJSON(t, router, http.MethodPut, path, bobToken, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("like status = %d, body %s", w.Code, w.Body.String())
		}
	}
	var count int64
	if err := db.Model(&models.Like{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("like count = %d after double like, want 1", count)
	}

	w := doJSON(t, router, http.MethodDelete, path, bobToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("unlike status = %d", w.Code)
	}
	if err := db.Model(&models.Like{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("like count = %d after unlike, want 0", count)
	}

	// Unliking again is a no-op.
	w = doJSON(t, router, http.MethodDelete, path, bobToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("repeat unlike status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPut, "/api/posts/9999/like", bobToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("like missing post status = %d, want 404", w.Code)
	}
}

func TestFollowRules(t *testing.T) {
	router, db := setupRouter(t)
	alice, aliceToken := seedUser(t, db, "alice")
	bob, _ := seedUser(t, db, "bob")

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", alice.ID), aliceToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self-follow status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/users/9999/follow", aliceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("follow missing user status = %d, want 404", w.Code)
	}

	followPath := fmt.Sprintf("/api/users/%d/follow", bob.ID)
	for i := 0; i < 2; i++ {
		w = doJSON(t, router, http.MethodPost, followPath, aliceToken, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("follow status = %d, body %s", w.Code, w.Body.String())
		}
	}
	var count int64
	if err := db.Model(&models.Follow{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("follow count = %d after double follow, want 1", count)
	}

	// The notification write is fire-and-forget; give it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if err := db.Model(&models.Notification{}).
			Where("user_id = ? AND actor_id = ? AND type = ?", bob.ID, alice.ID, "follow").
			Count(&count).Error; err != nil {
			t.Fatalf("notification count: %v", err)
		}
		if count == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("follow notification never recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}

	w = doJSON(t, router, http.MethodDelete, followPath, aliceToken, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("unfollow status = %d", w.Code)
	}
	if err := db.Model(&models.Follow{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("follow count = %d after unfollow, want 0", count)
	}
}

func TestFollowerListingPagination(t *testing.T) {
	router, db := setupRouter(t)
	alice, aliceToken := seedUser(t, db, "alice")

	var followers []models.User
	for i := 0; i < 3; i++ {
		u, _ := seedUser(t, db, fmt.Sprintf("fan%d", i))
		if err := db.Create(&models.Follow{FollowerID: u.ID, FollowingID: alice.ID}).Error; err != nil {
			t.Fatalf("seed follow: %v", err)
		}
		followers = append(followers, u)
	}

	base := fmt.Sprintf("/api/users/%d/followers", alice.ID)
	w := doJSON(t, router, http.MethodGet, base+"?limit=2", aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("followers status = %d, body %s", w.Code, w.Body.String())
	}
	page := decode[pageResp](t, w)
	if len(page.Items) != 2 || page.NextCursor == nil {
		t.Fatalf("page 1: %d items, cursor %v", len(page.Items), page.NextCursor)
	}
	// Newest follow first.
	if page.Items[0]["username"] != followers[2].Username {
		t.Errorf("first item = %v, want %s", page.Items[0]["username"], followers[2].Username)
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("%s?limit=2&cursor=%d", base, *page.NextCursor), aliceToken, nil)
	page = decode[pageResp](t, w)
	if len(page.Items) != 1 || page.NextCursor != nil {
		t.Fatalf("page 2: %d items, cursor %v", len(page.Items), page.NextCursor)
	}
}

func TestProfile(t *testing.T) {
	router, db := setupRouter(t)
	alice, aliceToken := seedUser(t, db, "alice")
	bob, bobToken := seedUser(t, db, "bob")

	seedPost(t, db, alice.ID, "one")
	seedPost(t, db, alice.ID, "two")
	if err := db.Create(&models.Follow{FollowerID: bob.ID, FollowingID: alice.ID}).Error; err != nil {
		t.Fatalf("seed follow: %v", err)
	}

	w := doJSON(t, router, http.MethodGet, "/api/profiles/alice", bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile status = %d, body %s", w.Code, w.Body.String())
	}
	profile := decode[map[string]any](t, w)
	if profile["postsCount"] != float64(2) {
		t.Errorf("postsCount = %v, want 2", profile["postsCount"])
	}
	if profile["followersCount"] != float64(1) {
		t.Errorf("followersCount = %v, want 1", profile["followersCount"])
	}
	if profile["isFollowing"] != true {
		t.Errorf("isFollowing = %v, want true", profile["isFollowing"])
	}
	if profile["isCurrentUser"] != false {
		t.Errorf("isCurrentUser = %v, want false", profile["isCurrentUser"])
	}

	w = doJSON(t, router, http.MethodGet, "/api/profiles/alice", aliceToken, nil)
	profile = decode[map[string]any](t, w)
	if profile["isCurrentUser"] != true {
		t.Errorf("own profile isCurrentUser = %v, want true", profile["isCurrentUser"])
	}

	w = doJSON(t, router, http.MethodGet, "/api/profiles/nobody", aliceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing profile status = %d, want 404", w.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	router, db := setupRouter(t)
	_, aliceToken := seedUser(t, db, "alice")
	seedUser(t, db, "bob")

	w := doJSON(t, router, http.MethodPatch, "/api/profile", aliceToken, gin.H{"username": "bob"})
	if w.Code != http.StatusConflict {
		t.Fatalf("taken username status = %d, want 409", w.Code)
	}

	w = doJSON(t, router, http.MethodPatch, "/api/profile", aliceToken, gin.H{"username": "not valid!"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid username status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodPatch, "/api/profile", aliceToken, gin.H{
		"username": "alice_2", "bio": "hello there",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}
	user := decode[models.User](t, w)
	if user.Username != "alice_2" || user.Bio != "hello there" {
		t.Errorf("updated user = %+v", user)
	}
}

func TestFeedParamValidation(t *testing.T) {
	router, db := setupRouter(t)
	_, token := seedUser(t, db, "alice")

	cases := []struct {
		name string
		path string
	}{
		{"bad type", "/api/feed?type=trending"},
		{"bad cursor", "/api/feed?cursor=abc"},
		{"bad limit", "/api/feed?limit=abc"},
		{"limit too small", "/api/feed?limit=0"},
		{"limit too large", "/api/feed?limit=101"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodGet, c.path, token, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestReplyEndpoint(t *testing.T) {
	router, db := setupRouter(t)
	alice, aliceToken := seedUser(t, db, "alice")
	post := seedPost(t, db, alice.ID, "thread root")

	w := doJSON(t, router, http.MethodPost, "/api/posts/9999/reply", aliceToken, gin.H{"content": "into the void"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("reply to missing post status = %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/posts/%d/reply", post.ID), aliceToken, gin.H{"content": "a reply"})
	if w.Code != http.StatusCreated {
		t.Fatalf("reply status = %d, body %s", w.Code, w.Body.String())
	}
	reply := decode[models.Post](t, w)
	if reply.ReplyToID == nil || *reply.ReplyToID != post.ID {
		t.Fatalf("replyToId = %v, want %d", reply.ReplyToID, post.ID)
	}

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/posts/%d/replies", post.ID), aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("replies status = %d, body %s", w.Code, w.Body.String())
	}
	page := decode[pageResp](t, w)
	if len(page.Items) != 1 {
		t.Fatalf("replies page has %d items, want 1", len(page.Items))
	}

	w = doJSON(t, router, http.MethodGet, "/api/posts/9999/replies", aliceToken, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("replies of missing post status = %d, want 404", w.Code)
	}
}

func TestSearchAndSuggestions(t *testing.T) {
	router, db := setupRouter(t)
	alice, aliceToken := seedUser(t, db, "alice")
	bob, _ := seedUser(t, db, "bob")
	seedUser(t, db, "bobby")

	w := doJSON(t, router, http.MethodGet, "/api/users/search?q=bob", aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d, body %s", w.Code, w.Body.String())
	}
	page := decode[pageResp](t, w)
	if len(page.Items) != 2 {
		t.Fatalf("search returned %d items, want 2", len(page.Items))
	}

	w = doJSON(t, router, http.MethodGet, "/api/users/search?q=", aliceToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty query status = %d, want 400", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/users/search?q=bob&limit=11", aliceToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversized limit status = %d, want 400", w.Code)
	}

	// Suggestions exclude self and already-followed users.
	if err := db.Create(&models.Follow{FollowerID: alice.ID, FollowingID: bob.ID}).Error; err != nil {
		t.Fatalf("seed follow: %v", err)
	}
	w = doJSON(t, router, http.MethodGet, "/api/users/suggestions?limit=10", aliceToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("suggestions status = %d, body %s", w.Code, w.Body.String())
	}
	page = decode[pageResp](t, w)
	if len(page.Items) != 1 {
		t.Fatalf("suggestions returned %d items, want 1", len(page.Items))
	}
	if page.Items[0]["username"] != "bobby" {
		t.Errorf("suggestion = %v, want bobby", page.Items[0]["username"])
	}
}

func TestFeedPaginationOverHTTP(t *testing.T) {
	router, db := setupRouter(t)
	alice, token := seedUser(t, db, "alice")
	for i := 0; i < 45; i++ {
		seedPost(t, db, alice.ID, fmt.Sprintf("post %d", i))
	}

	seen := make(map[float64]bool)
	cursor := ""
	pages := 0
	for {
		path := "/api/feed?limit=20" + cursor
		w := doJSON(t, router, http.MethodGet, path, token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("feed status = %d, body %s", w.Code, w.Body.String())
		}
		page := decode[pageResp](t, w)
		pages++
		for _, item := range page.Items {
			id := item["id"].(float64)
			if seen[id] {
				t.Fatalf("duplicate post %v across pages", id)
			}
			seen[id] = true
		}
		if page.NextCursor == nil {
			if len(page.Items) != 5 {
				t.Fatalf("final page has %d items, want 5", len(page.Items))
			}
			break
		}
		if len(page.Items) != 20 {
			t.Fatalf("full page has %d items, want 20", len(page.Items))
		}
		cursor = fmt.Sprintf("&cursor=%d", *page.NextCursor)
	}
	if pages != 3 || len(seen) != 45 {
		t.Fatalf("walked %d pages with %d rows, want 3 pages / 45 rows", pages, len(seen))
	}
}
