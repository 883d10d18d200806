package container_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-posts-api/config"
	"github.com/FACorreiaa/go-posts-api/internal/api/auth"
	"github.com/FACorreiaa/go-posts-api/internal/container"
	"github.com/FACorreiaa/go-posts-api/internal/types"
)

const e2eSecret = "e2e-signing-secret"

func testConfig(revocation bool) *config.Config {
	cfg := &config.Config{Mode: "test"}
	cfg.JWT = config.JWTConfig{
		SecretKey:         e2eSecret,
		TokenTTL:          time.Hour,
		Issuer:            "go-posts-api",
		RevocationEnabled: revocation,
	}
	cfg.Auth = config.AuthConfig{BcryptCost: bcrypt.MinCost, DefaultRole: string(types.RoleUser)}
	cfg.Server.Timeout = 5 * time.Second
	return cfg
}

// E2ETestSuite drives the full HTTP stack over in-memory storage.
type E2ETestSuite struct {
	suite.Suite
	revocation bool
	cfg        *config.Config
	store      *memStore
	server     *httptest.Server
	client     *http.Client
}

func (s *E2ETestSuite) SetupTest() {
	s.cfg = testConfig(s.revocation)
	s.store = newMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := container.Build(s.cfg, container.Repositories{Auth: s.store, User: s.store, Post: s.store}, logger)
	s.Require().NoError(err)

	s.server = httptest.NewServer(c.Handler())
	s.client = s.server.Client()
}

func (s *E2ETestSuite) TearDownTest() {
	s.server.Close()
}

type apiResponse struct {
	status int
	body   []byte
}

func (s *E2ETestSuite) do(method, path, token string, payload any) apiResponse {
	var body io.Reader
	if payload != nil {
		switch p := payload.(type) {
		case string:
			body = bytes.NewBufferString(p)
		default:
			raw, err := json.Marshal(p)
			s.Require().NoError(err)
			body = bytes.NewReader(raw)
		}
	}
	req, err := http.NewRequest(method, s.server.URL+path, body)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return apiResponse{status: resp.StatusCode, body: raw}
}

func (s *E2ETestSuite) decode(r apiResponse, dst any) {
	s.Require().NoError(json.Unmarshal(r.body, dst), string(r.body))
}

func (s *E2ETestSuite) errorOf(r apiResponse) string {
	var resp types.Response
	s.decode(r, &resp)
	return resp.Error
}

func (s *E2ETestSuite) signup(email, password string, role types.Role) types.SignupResponse {
	r := s.do(http.MethodPost, "/api/auth/signup", "", types.SignupRequest{Email: email, Password: password, Role: role})
	s.Require().Equal(http.StatusCreated, r.status, string(r.body))
	var resp types.SignupResponse
	s.decode(r, &resp)
	return resp
}

func (s *E2ETestSuite) TestSignupProfileAndExpiry() {
	created := s.signup("a@x.com", "secret123", "")
	s.Equal(types.RoleUser, created.Role)

	tokens, err := auth.NewTokenManager(s.cfg.JWT)
	s.Require().NoError(err)
	claims, err := tokens.Verify(created.Token)
	s.Require().NoError(err)
	s.Equal(created.ID.String(), claims.Subject)

	r := s.do(http.MethodGet, "/api/auth/profile", created.Token, nil)
	s.Require().Equal(http.StatusOK, r.status)
	var profile map[string]any
	s.decode(r, &profile)
	s.Equal(created.ID.String(), profile["id"])
	s.Equal("a@x.com", profile["email"])
	s.NotContains(profile, "password")
	s.NotContains(profile, "passwordHash")
	s.NotContains(string(r.body), "$2a$")

	r = s.do(http.MethodGet, "/api/auth/profile", "", nil)
	s.Equal(http.StatusUnauthorized, r.status)
	s.Equal(auth.MsgNoToken, s.errorOf(r))

	past, err := auth.NewTokenManager(s.cfg.JWT, auth.WithClock(func() time.Time {
		return time.Now().Add(-2 * s.cfg.JWT.TokenTTL)
	}))
	s.Require().NoError(err)
	expired, err := past.Issue(created.ID)
	s.Require().NoError(err)

	r = s.do(http.MethodGet, "/api/auth/profile", expired, nil)
	s.Equal(http.StatusUnauthorized, r.status)
	s.Equal(auth.MsgTokenExpired, s.errorOf(r))
}

func (s *E2ETestSuite) TestForeignAndGarbageTokens() {
	created := s.signup("a@x.com", "secret123", "")

	foreign, err := auth.NewTokenManager(config.JWTConfig{SecretKey: "not-" + e2eSecret, Issuer: "go-posts-api"})
	s.Require().NoError(err)
	forged, err := foreign.Issue(created.ID)
	s.Require().NoError(err)

	r := s.do(http.MethodGet, "/api/auth/profile", forged, nil)
	s.Equal(http.StatusUnauthorized, r.status)
	s.Equal(auth.MsgInvalidToken, s.errorOf(r))

	r = s.do(http.MethodGet, "/api/auth/profile", "garbage", nil)
	s.Equal(http.StatusUnauthorized, r.status)
	s.Equal(auth.MsgInvalidToken, s.errorOf(r))
}

func (s *E2ETestSuite) TestDeletedUserToken() {
	created := s.signup("gone@x.com", "secret123", "")
	s.store.deleteUser(created.ID)

	r := s.do(http.MethodGet, "/api/auth/profile", created.Token, nil)
	s.Equal(http.StatusUnauthorized, r.status)
	s.Equal(auth.MsgUserNotFound, s.errorOf(r))
}

func (s *E2ETestSuite) TestSignupValidation() {
	r := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "a@x.com"})
	s.Equal(http.StatusBadRequest, r.status)

	r = s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "a@x.com", "password": "pw", "role": "superuser"})
	s.Equal(http.StatusBadRequest, r.status)

	s.signup("dup@x.com", "pw", "")
	r = s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{"email": "dup@x.com", "password": "other"})
	s.Equal(http.StatusConflict, r.status)
}

func (s *E2ETestSuite) TestEmailMatchingIsExact() {
	s.signup("case@x.com", "secret123", "")
	s.signup("Case@x.com", "secret123", "")

	r := s.do(http.MethodPost, "/api/auth/login", "", types.LoginRequest{Email: "CASE@x.com", Password: "secret123"})
	s.Equal(http.StatusUnauthorized, r.status)
}

func (s *E2ETestSuite) TestLoginDoesNotRevealWhichFieldWasWrong() {
	s.signup("real@x.com", "secret123", "")

	wrongPassword := s.do(http.MethodPost, "/api/auth/login", "", types.LoginRequest{Email: "real@x.com", Password: "nope"})
	unknownEmail := s.do(http.MethodPost, "/api/auth/login", "", types.LoginRequest{Email: "ghost@x.com", Password: "secret123"})

	s.Equal(http.StatusUnauthorized, wrongPassword.status)
	s.Equal(wrongPassword.status, unknownEmail.status)
	s.Equal(wrongPassword.body, unknownEmail.body)
	s.Equal(auth.MsgInvalidCredentials, s.errorOf(wrongPassword))

	ok := s.do(http.MethodPost, "/api/auth/login", "", types.LoginRequest{Email: "real@x.com", Password: "secret123"})
	s.Require().Equal(http.StatusOK, ok.status)
	var login types.LoginResponse
	s.decode(ok, &login)
	s.NotEmpty(login.Token)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/api/auth/profile", login.Token, nil).status)
}

func (s *E2ETestSuite) TestPostOwnership() {
	alice := s.signup("alice@x.com", "secret123", "")
	bob := s.signup("bob@x.com", "secret123", "")

	r := s.do(http.MethodPost, "/api/posts", alice.Token, map[string]any{
		"title": "  First  ", "description": "hello", "tags": []string{"go"},
	})
	s.Require().Equal(http.StatusCreated, r.status, string(r.body))
	var created types.PostCreatedResponse
	s.decode(r, &created)
	postPath := "/api/posts/" + created.ID.String()

	r = s.do(http.MethodPut, postPath, bob.Token, map[string]any{"title": "hijacked"})
	s.Equal(http.StatusForbidden, r.status)
	s.Equal(auth.MsgNotOwner, s.errorOf(r))

	for _, payload := range []map[string]any{
		{"title": "   "},
		{"description": ""},
		{"images": []map[string]string{{"url": "u"}}},
	} {
		r = s.do(http.MethodPut, postPath, bob.Token, payload)
		s.Equal(http.StatusForbidden, r.status, string(r.body))
		s.Equal(auth.MsgNotOwner, s.errorOf(r))
	}
	s.Equal(http.StatusNotFound, s.do(http.MethodPut, "/api/posts/"+uuid.NewString(), bob.Token, map[string]any{"title": "   "}).status)

	r = s.do(http.MethodPut, postPath, alice.Token, map[string]any{"title": "   "})
	s.Equal(http.StatusBadRequest, r.status)
	s.Equal("Please Enter Post Title", s.errorOf(r))

	r = s.do(http.MethodGet, postPath, "", nil)
	s.Require().Equal(http.StatusOK, r.status)
	var stored types.Post
	s.decode(r, &stored)
	s.Equal("First", stored.Title)
	s.Equal(alice.ID, stored.UserID)

	r = s.do(http.MethodPut, postPath, alice.Token, map[string]any{"title": "Updated", "description": "edited"})
	s.Require().Equal(http.StatusOK, r.status)
	var updated types.PostUpdatedResponse
	s.decode(r, &updated)
	s.Equal("Updated", updated.Post.Title)
	s.Equal("edited", updated.Post.Description)

	r = s.do(http.MethodDelete, postPath, bob.Token, nil)
	s.Equal(http.StatusForbidden, r.status)

	r = s.do(http.MethodDelete, postPath, alice.Token, nil)
	s.Require().Equal(http.StatusOK, r.status)
	var deleted types.PostDeletedResponse
	s.decode(r, &deleted)
	s.Equal(created.ID, deleted.DeletedID)

	s.Equal(http.StatusNotFound, s.do(http.MethodGet, postPath, "", nil).status)
	s.Equal(http.StatusNotFound, s.do(http.MethodPut, postPath, alice.Token, map[string]any{"title": "x"}).status)
}

func (s *E2ETestSuite) TestPostMutationCheckOrder() {
	alice := s.signup("alice@x.com", "secret123", "")

	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/api/posts", "", map[string]any{"title": "t"}).status)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPut, "/api/posts/"+uuid.NewString(), alice.Token, map[string]any{}).status)
	s.Equal(http.StatusBadRequest, s.do(http.MethodPut, "/api/posts/not-a-uuid", alice.Token, map[string]any{"title": "t"}).status)
	s.Equal(http.StatusBadRequest, s.do(http.MethodDelete, "/api/posts/not-a-uuid", alice.Token, nil).status)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/api/posts/"+uuid.NewString(), alice.Token, nil).status)

	r := s.do(http.MethodPost, "/api/posts", alice.Token, map[string]any{"title": "t", "description": "d"})
	s.Equal(http.StatusBadRequest, r.status)

	var list []types.Post
	r = s.do(http.MethodGet, "/api/posts", "", nil)
	s.Require().Equal(http.StatusOK, r.status)
	s.decode(r, &list)
	s.Empty(list)
}

func (s *E2ETestSuite) TestProfileUpdate() {
	created := s.signup("a@x.com", "secret123", "")

	r := s.do(http.MethodPut, "/api/auth/profile", created.Token, map[string]any{"bio": "gopher", "username": "ag"})
	s.Require().Equal(http.StatusOK, r.status)
	var resp types.ProfileUpdatedResponse
	s.decode(r, &resp)
	s.Equal("gopher", resp.User.Bio)
	s.Equal("ag", resp.User.Username)

	r = s.do(http.MethodPut, "/api/auth/profile", created.Token, map[string]any{"role": "admin"})
	s.Equal(http.StatusBadRequest, r.status)
}

func (s *E2ETestSuite) TestAdminRoute() {
	member := s.signup("member@x.com", "pw", types.RoleUser)
	admin := s.signup("admin@x.com", "pw", types.RoleAdmin)

	r := s.do(http.MethodGet, "/api/admin/users", member.Token, nil)
	s.Equal(http.StatusForbidden, r.status)
	s.Equal(auth.MsgRoleNotPermitted, s.errorOf(r))

	r = s.do(http.MethodGet, "/api/admin/users", admin.Token, nil)
	s.Require().Equal(http.StatusOK, r.status)
	var users []types.User
	s.decode(r, &users)
	s.Len(users, 2)
	s.NotContains(string(r.body), "$2a$")
}

func (s *E2ETestSuite) TestLogout() {
	created := s.signup("a@x.com", "secret123", "")

	r := s.do(http.MethodPost, "/api/auth/logout", created.Token, nil)
	s.Require().Equal(http.StatusOK, r.status)

	after := s.do(http.MethodGet, "/api/auth/profile", created.Token, nil)
	if s.revocation {
		s.Equal(http.StatusUnauthorized, after.status)
		s.Equal(auth.MsgInvalidToken, s.errorOf(after))
	} else {
		s.Equal(http.StatusOK, after.status)
	}
}

func (s *E2ETestSuite) TestPing() {
	r := s.do(http.MethodGet, "/ping", "", nil)
	s.Equal(http.StatusOK, r.status)
	s.Equal("pong", string(r.body))
}

func (s *E2ETestSuite) TestSwaggerDocument() {
	r := s.do(http.MethodGet, "/swagger/doc.json", "", nil)
	s.Require().Equal(http.StatusOK, r.status)

	var doc struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	s.decode(r, &doc)
	s.Equal("/api", doc.BasePath)
	s.Contains(doc.Paths, "/posts/{id}")
	s.Contains(doc.Paths["/posts/{id}"], "delete")
	s.Contains(doc.Paths, "/auth/login")
}

func TestE2E(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}

func TestE2EWithRevocation(t *testing.T) {
	suite.Run(t, &E2ETestSuite{revocation: true})
}

func TestBuildRejectsMissingSecret(t *testing.T) {
	cfg := testConfig(false)
	cfg.JWT.SecretKey = ""
	_, err := container.Build(cfg, container.Repositories{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("expected configuration error")
	}
}
