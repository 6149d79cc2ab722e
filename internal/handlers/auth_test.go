package handlers

import (
	"net/http"
	"testing"
)

func TestRegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	_, registeredID := env.register(t, "alice", "alice@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "secret1",
	})
	wantStatus(t, rec, http.StatusOK)

	var login struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	decode(t, rec, &login)
	if login.User.ID != registeredID {
		t.Errorf("login user id = %q, want %q", login.User.ID, registeredID)
	}

	rec = env.do(t, http.MethodGet, "/api/auth/me", login.Token, nil)
	wantStatus(t, rec, http.StatusOK)

	var me struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	decode(t, rec, &me)
	if me.Username != "alice" {
		t.Errorf("me username = %q, want alice", me.Username)
	}
}

func TestRegisterAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret1",
	})
	wantStatus(t, rec, http.StatusOK)

	var resp struct {
		User struct {
			ProfilePicture string   `json:"profilePicture"`
			Followers      []string `json:"followers"`
			Following      []string `json:"following"`
			Posts          []string `json:"posts"`
		} `json:"user"`
	}
	decode(t, rec, &resp)
	if resp.User.ProfilePicture != "/uploads/default-avatar.svg" {
		t.Errorf("profilePicture = %q, want default", resp.User.ProfilePicture)
	}
	if resp.User.Followers == nil || resp.User.Following == nil || resp.User.Posts == nil {
		t.Error("graph fields should be empty arrays, not null")
	}
	if len(resp.User.Followers)+len(resp.User.Following)+len(resp.User.Posts) != 0 {
		t.Error("new user should have empty graph and post list")
	}
}

func TestRegisterNeverExposesPassword(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "secret1",
	})
	wantStatus(t, rec, http.StatusOK)

	var resp struct {
		User map[string]interface{} `json:"user"`
	}
	decode(t, rec, &resp)
	if _, ok := resp.User["password"]; ok {
		t.Error("password must never be serialized")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "alice@x.com", "secret1")

	// Same email, different username.
	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@x.com",
		"password": "other-pass",
	})
	wantStatus(t, rec, http.StatusBadRequest)
	wantMessage(t, rec, "User already exists")

	// Same username, different email.
	rec = env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice2@x.com",
		"password": "other-pass",
	})
	wantStatus(t, rec, http.StatusBadRequest)

	// Nothing was partially created: neither rejected identity can log in.
	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice2@x.com",
		"password": "other-pass",
	})
	wantStatus(t, rec, http.StatusBadRequest)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	for name, body := range map[string]map[string]string{
		"missing username": {"email": "a@x.com", "password": "secret1"},
		"missing email":    {"username": "alice", "password": "secret1"},
		"missing password": {"username": "alice", "email": "a@x.com"},
		"bad email":        {"username": "alice", "email": "nope", "password": "secret1"},
	} {
		rec := env.do(t, http.MethodPost, "/api/auth/register", "", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "alice@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@x.com",
		"password": "wrong",
	})
	wantStatus(t, rec, http.StatusBadRequest)
	wantMessage(t, rec, "Invalid credentials")

	// Unknown email yields the identical message.
	rec = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@x.com",
		"password": "secret1",
	})
	wantStatus(t, rec, http.StatusBadRequest)
	wantMessage(t, rec, "Invalid credentials")
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	wantStatus(t, rec, http.StatusUnauthorized)

	rec = env.do(t, http.MethodGet, "/api/auth/me", "not-a-jwt", nil)
	wantStatus(t, rec, http.StatusForbidden)
}
