package handlers

import (
	"fmt"
	"net/http"
	"testing"
)

func TestCreatePostRequiresImage(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice", "alice@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/posts", token, map[string]string{"caption": "no image"})
	wantStatus(t, rec, http.StatusBadRequest)
	wantMessage(t, rec, "Image is required")
}

func TestCreatePost(t *testing.T) {
	env := newTestEnv(t)
	token, id := env.register(t, "alice", "alice@x.com", "secret1")

	post := env.createPost(t, token, map[string]string{
		"caption":  "hello",
		"tags":     "sunset, beach ,go",
		"location": "Dhaka",
	})

	if post["caption"] != "hello" {
		t.Errorf("caption = %v", post["caption"])
	}
	if post["userId"] != id {
		t.Errorf("userId = %v, want %v", post["userId"], id)
	}
	tags, _ := post["tags"].([]interface{})
	if len(tags) != 3 || tags[0] != "sunset" || tags[1] != "beach" || tags[2] != "go" {
		t.Errorf("tags = %v, want trimmed [sunset beach go]", post["tags"])
	}
	likes, _ := post["likes"].([]interface{})
	if len(likes) != 0 {
		t.Errorf("new post likes = %v, want empty", post["likes"])
	}
	author, _ := post["user"].(map[string]interface{})
	if author == nil || author["username"] != "alice" {
		t.Errorf("embedded author = %v", post["user"])
	}
	image, _ := post["image"].(string)
	if len(image) == 0 || image[:9] != "/uploads/" {
		t.Errorf("image = %q, want /uploads/ path", image)
	}
}

func TestPublicFeedIncludesNewPost(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice", "alice@x.com", "secret1")
	env.createPost(t, token, map[string]string{"caption": "hello"})

	rec := env.do(t, http.MethodGet, "/api/posts/public", "", nil)
	wantStatus(t, rec, http.StatusOK)

	var posts []struct {
		Caption string   `json:"caption"`
		Likes   []string `json:"likes"`
	}
	decode(t, rec, &posts)
	if len(posts) != 1 || posts[0].Caption != "hello" {
		t.Fatalf("public feed = %+v", posts)
	}
	if len(posts[0].Likes) != 0 {
		t.Errorf("likes = %v, want empty", posts[0].Likes)
	}
}

func TestPublicFeedCapNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice", "alice@x.com", "secret1")
	for i := 0; i < 12; i++ {
		env.createPost(t, token, map[string]string{"caption": fmt.Sprintf("post-%02d", i)})
	}

	rec := env.do(t, http.MethodGet, "/api/posts/public", "", nil)
	wantStatus(t, rec, http.StatusOK)
	var posts []struct {
		Caption string `json:"caption"`
	}
	decode(t, rec, &posts)
	if len(posts) != 10 {
		t.Fatalf("public feed size = %d, want 10", len(posts))
	}
	if posts[0].Caption != "post-11" {
		t.Errorf("first post = %q, want post-11 (newest)", posts[0].Caption)
	}
}

func TestLikeToggleIsInvolution(t *testing.T) {
	env := newTestEnv(t)
	token, id := env.register(t, "alice", "alice@x.com", "secret1")
	post := env.createPost(t, token, map[string]string{"caption": "likeable"})
	pid := postID(t, post)

	var resp struct {
		Likes []string `json:"likes"`
	}
	rec := env.do(t, http.MethodPost, likeURL(pid), token, nil)
	wantStatus(t, rec, http.StatusOK)
	decode(t, rec, &resp)
	if len(resp.Likes) != 1 || resp.Likes[0] != id {
		t.Fatalf("likes after first toggle = %v, want [%s]", resp.Likes, id)
	}

	rec = env.do(t, http.MethodPost, likeURL(pid), token, nil)
	decode(t, rec, &resp)
	if len(resp.Likes) != 0 {
		t.Fatalf("likes after second toggle = %v, want empty", resp.Likes)
	}
}

func TestLikeUnknownPost(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice", "alice@x.com", "secret1")

	rec := env.do(t, http.MethodPost, likeURL("missing"), token, nil)
	wantStatus(t, rec, http.StatusNotFound)
}

func TestFeedFollowsVisibility(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, aliceID := env.register(t, "alice", "alice@x.com", "secret1")
	bobToken, _ := env.register(t, "bob", "bob@x.com", "secret1")
	env.createPost(t, aliceToken, map[string]string{"caption": "from alice"})

	var posts []struct {
		Caption string `json:"caption"`
	}

	// Not following yet: alice's post is invisible to bob.
	rec := env.do(t, http.MethodGet, "/api/posts", bobToken, nil)
	wantStatus(t, rec, http.StatusOK)
	decode(t, rec, &posts)
	if len(posts) != 0 {
		t.Fatalf("feed before follow = %+v, want empty", posts)
	}

	env.do(t, http.MethodPost, "/api/users/follow/"+aliceID, bobToken, nil)
	rec = env.do(t, http.MethodGet, "/api/posts", bobToken, nil)
	decode(t, rec, &posts)
	if len(posts) != 1 || posts[0].Caption != "from alice" {
		t.Fatalf("feed after follow = %+v", posts)
	}

	env.do(t, http.MethodDelete, "/api/users/follow/"+aliceID, bobToken, nil)
	rec = env.do(t, http.MethodGet, "/api/posts", bobToken, nil)
	decode(t, rec, &posts)
	if len(posts) != 0 {
		t.Fatalf("feed after unfollow = %+v, want empty", posts)
	}
}

func TestFeedIncludesOwnPosts(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice", "alice@x.com", "secret1")
	env.createPost(t, token, map[string]string{"caption": "mine"})

	var posts []struct {
		Caption string `json:"caption"`
	}
	rec := env.do(t, http.MethodGet, "/api/posts", token, nil)
	wantStatus(t, rec, http.StatusOK)
	decode(t, rec, &posts)
	if len(posts) != 1 || posts[0].Caption != "mine" {
		t.Fatalf("own feed = %+v", posts)
	}
}

func TestUpdatePostOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register(t, "alice", "alice@x.com", "secret1")
	bobToken, _ := env.register(t, "bob", "bob@x.com", "secret1")
	post := env.createPost(t, aliceToken, map[string]string{"caption": "original", "location": "here"})
	pid := postID(t, post)

	rec := env.do(t, http.MethodPut, "/api/posts/"+pid, bobToken, map[string]string{"caption": "hijacked"})
	wantStatus(t, rec, http.StatusUnauthorized)

	// Unchanged after the rejected update.
	var got struct {
		Caption string `json:"caption"`
	}
	rec = env.do(t, http.MethodGet, "/api/posts/"+pid, "", nil)
	decode(t, rec, &got)
	if got.Caption != "original" {
		t.Fatalf("caption after rejected update = %q", got.Caption)
	}

	// Partial update by the owner: location survives an untouched field.
	rec = env.do(t, http.MethodPut, "/api/posts/"+pid, aliceToken, map[string]string{"caption": "edited"})
	wantStatus(t, rec, http.StatusOK)
	var updated struct {
		Caption  string `json:"caption"`
		Location string `json:"location"`
	}
	decode(t, rec, &updated)
	if updated.Caption != "edited" || updated.Location != "here" {
		t.Errorf("partial update gave caption=%q location=%q", updated.Caption, updated.Location)
	}
}

func TestDeletePostCascades(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register(t, "alice", "alice@x.com", "secret1")
	bobToken, _ := env.register(t, "bob", "bob@x.com", "secret1")
	post := env.createPost(t, aliceToken, map[string]string{"caption": "doomed"})
	pid := postID(t, post)

	rec := env.do(t, http.MethodPost, "/api/comments", bobToken, map[string]string{
		"postId":  pid,
		"content": "nice shot",
	})
	wantStatus(t, rec, http.StatusOK)

	// A stranger cannot delete it.
	rec = env.do(t, http.MethodDelete, "/api/posts/"+pid, bobToken, nil)
	wantStatus(t, rec, http.StatusUnauthorized)

	rec = env.do(t, http.MethodDelete, "/api/posts/"+pid, aliceToken, nil)
	wantStatus(t, rec, http.StatusOK)
	wantMessage(t, rec, "Post removed")

	rec = env.do(t, http.MethodGet, "/api/posts/"+pid, "", nil)
	wantStatus(t, rec, http.StatusNotFound)

	// The cascade removed the comments too.
	var comments []interface{}
	rec = env.do(t, http.MethodGet, "/api/comments/post/"+pid, "", nil)
	wantStatus(t, rec, http.StatusOK)
	decode(t, rec, &comments)
	if len(comments) != 0 {
		t.Errorf("orphan comments survived the delete: %v", comments)
	}
}

func TestGetPostEmbedsComments(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register(t, "alice", "alice@x.com", "secret1")
	bobToken, _ := env.register(t, "bob", "bob@x.com", "secret1")
	post := env.createPost(t, aliceToken, map[string]string{"caption": "discuss"})
	pid := postID(t, post)

	env.do(t, http.MethodPost, "/api/comments", bobToken, map[string]string{"postId": pid, "content": "first"})
	env.do(t, http.MethodPost, "/api/comments", bobToken, map[string]string{"postId": pid, "content": "second"})

	var detail struct {
		User struct {
			Username string `json:"username"`
		} `json:"user"`
		Comments []struct {
			Content string `json:"content"`
			User    struct {
				Username string `json:"username"`
			} `json:"user"`
		} `json:"comments"`
	}
	rec := env.do(t, http.MethodGet, "/api/posts/"+pid, "", nil)
	wantStatus(t, rec, http.StatusOK)
	decode(t, rec, &detail)

	if detail.User.Username != "alice" {
		t.Errorf("post author = %q", detail.User.Username)
	}
	if len(detail.Comments) != 2 {
		t.Fatalf("embedded comments = %d, want 2", len(detail.Comments))
	}
	if detail.Comments[0].Content != "first" || detail.Comments[0].User.Username != "bob" {
		t.Errorf("first comment = %+v", detail.Comments[0])
	}
}

func TestGetUserPosts(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, aliceID := env.register(t, "alice", "alice@x.com", "secret1")
	bobToken, _ := env.register(t, "bob", "bob@x.com", "secret1")
	env.createPost(t, aliceToken, map[string]string{"caption": "a1"})
	env.createPost(t, bobToken, map[string]string{"caption": "b1"})

	var posts []struct {
		Caption string `json:"caption"`
	}
	rec := env.do(t, http.MethodGet, "/api/posts/user/"+aliceID, "", nil)
	wantStatus(t, rec, http.StatusOK)
	decode(t, rec, &posts)
	if len(posts) != 1 || posts[0].Caption != "a1" {
		t.Errorf("user posts = %+v", posts)
	}
}
