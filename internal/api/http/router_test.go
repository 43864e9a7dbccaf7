package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/member-registry/internal/api/http/handlers"
	"github.com/spec-kit/member-registry/internal/auth"
	"github.com/spec-kit/member-registry/internal/config"
	"github.com/spec-kit/member-registry/internal/domain"
	"github.com/spec-kit/member-registry/internal/events"
	"github.com/spec-kit/member-registry/internal/observability"
	"github.com/spec-kit/member-registry/internal/persistence"
	"github.com/spec-kit/member-registry/internal/service"
)

type fakeUserRepo struct {
	byEmail map[string]*domain.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = "u" + user.Email
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

type fakeMemberRepo struct {
	byID map[string]*domain.Member
}

func (r *fakeMemberRepo) Create(ctx context.Context, member *domain.Member) error {
	member.ID = "0190cafe-0000-7000-8000-00000000000" + string(rune('0'+len(r.byID)))
	r.byID[member.ID] = member
	return nil
}

func (r *fakeMemberRepo) Update(ctx context.Context, member *domain.Member) error {
	if _, ok := r.byID[member.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.byID[member.ID] = member
	return nil
}

func (r *fakeMemberRepo) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	member, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return member, nil
}

func (r *fakeMemberRepo) GetByEmail(ctx context.Context, email string) (*domain.Member, error) {
	for _, member := range r.byID {
		if member.Email == email {
			return member, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeMemberRepo) ListOrderedByName(ctx context.Context) ([]*domain.Member, error) {
	members := make([]*domain.Member, 0, len(r.byID))
	for _, member := range r.byID {
		if !member.Deleted {
			members = append(members, member)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}

type testEnv struct {
	app      *fiber.App
	tokenMgr *auth.TokenManager
	key      auth.SigningKey
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	key, err := auth.GenerateSigningKey()
	require.NoError(t, err)
	tokenMgr := auth.NewTokenManager(key)

	hash, err := auth.HashPassword("S3cret!pass", bcrypt.MinCost)
	require.NoError(t, err)
	users := &fakeUserRepo{byEmail: map[string]*domain.User{
		"john@doe.com": {ID: "u1", Email: "john@doe.com", PasswordHash: hash, Enabled: true},
	}}
	members := &fakeMemberRepo{byID: make(map[string]*domain.Member)}

	cfg := config.Config{Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost}}
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   users,
		TokenMgr:   tokenMgr,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	memberService := service.NewMemberService(members, nil, dispatcher, logger)
	registrationService := service.NewMemberRegistrationService(members, nil, dispatcher, logger)

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService, logger),
		Users:          handlers.NewUsersHandler(authService),
		Members:        handlers.NewMembersHandler(memberService, registrationService),
		AuthMiddleware: auth.NewAuthMiddleware(tokenMgr, users, logger, metrics),
	})

	return &testEnv{app: app, tokenMgr: tokenMgr, key: key}
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (e *testEnv) accessToken(t *testing.T) string {
	t.Helper()
	token, err := e.tokenMgr.IssueAccessToken("john@doe.com", nil)
	require.NoError(t, err)
	return token
}

func requireAuthFailureEnvelope(t *testing.T, resp *http.Response, body []byte, path string) {
	t.Helper()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var envelope struct {
		Status  int    `json:"status"`
		Error   string `json:"error"`
		Message string `json:"message"`
		Path    string `json:"path"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Equal(t, http.StatusUnauthorized, envelope.Status)
	require.Equal(t, "Authentication Failed", envelope.Error)
	require.Equal(t, "Full authentication is required to access this resource", envelope.Message)
	require.Equal(t, path, envelope.Path)
}

func TestLoginSucceeds(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"username": "john@doe.com",
		"password": "S3cret!pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pair domain.TokenPair
	require.NoError(t, json.Unmarshal(body, &pair))
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"username": "john@doe.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Bad Credentials", string(body))
}

func TestLoginValidationFailure(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"username": "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var envelope struct {
		Status  int            `json:"status"`
		Error   string         `json:"error"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Equal(t, http.StatusBadRequest, envelope.Status)
	require.Equal(t, "Validation Failed", envelope.Error)
	require.Contains(t, envelope.Details, "username")
	require.Contains(t, envelope.Details, "password")
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/v1/members", "", nil)
	requireAuthFailureEnvelope(t, resp, body, "/api/v1/members")
}

func TestProtectedRouteWithExpiredToken(t *testing.T) {
	env := newTestEnv(t)

	// A well-formed access token whose lifetime has already passed.
	claims := jwt.MapClaims{
		"sub": "john@doe.com",
		"iat": jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		"exp": jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["typ"] = string(domain.TokenTypeAccess)
	expired, err := token.SignedString([]byte(env.key))
	require.NoError(t, err)

	resp, body := env.do(t, http.MethodGet, "/api/v1/members", expired, nil)
	requireAuthFailureEnvelope(t, resp, body, "/api/v1/members")
}

func TestProtectedRouteWithRefreshToken(t *testing.T) {
	env := newTestEnv(t)

	refresh, err := env.tokenMgr.IssueRefreshToken("john@doe.com", nil)
	require.NoError(t, err)

	resp, body := env.do(t, http.MethodGet, "/api/v1/members", refresh, nil)
	requireAuthFailureEnvelope(t, resp, body, "/api/v1/members")
}

func TestProtectedRouteWithValidToken(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/api/v1/members", env.accessToken(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Status int               `json:"status"`
		Data   []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Equal(t, http.StatusOK, envelope.Status)
}

func TestMemberLifecycleOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := env.accessToken(t)

	resp, body := env.do(t, http.MethodPost, "/api/v1/members", token, map[string]string{
		"name":         "Jane Doe",
		"email":        "jane@doe.com",
		"phone_number": "0123456789",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Data domain.Member `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.Data.ID)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/members/"+created.Data.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPatch, "/api/v1/members/status/"+created.Data.ID+"?status=INACTIVE", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/members/"+created.Data.ID, token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/v1/members/not-a-uuid", token, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserRegistration(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/users/register", "", map[string]string{
		"email":    "jane@doe.com",
		"password": "S3cret!pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/users/register", "", map[string]string{
		"email":    "jane@doe.com",
		"password": "S3cret!pass",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var envelope struct {
		Status int    `json:"status"`
		Error  string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Equal(t, http.StatusConflict, envelope.Status)
	require.Equal(t, "Conflict", envelope.Error)
}

func TestUpdatePasswordOverHTTP(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPut, "/users/update-password", "", map[string]string{
		"email":             "john@doe.com",
		"existing_password": "S3cret!pass",
		"password":          "New!Secret9",
		"confirm_password":  "New!Secret9",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The old password no longer authenticates.
	resp, body := env.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"username": "john@doe.com",
		"password": "S3cret!pass",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Bad Credentials", string(body))

	resp, _ = env.do(t, http.MethodPost, "/auth/token", "", map[string]string{
		"username": "john@doe.com",
		"password": "New!Secret9",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
