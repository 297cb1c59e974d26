package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendora/marketplace-api/internal/domain/entity"
	"github.com/vendora/marketplace-api/internal/domain/repository"
	"github.com/vendora/marketplace-api/internal/interface/middleware"
	"github.com/vendora/marketplace-api/pkg/helpers"
)

type stubRepo struct {
	users map[string]*entity.User
}

func (r *stubRepo) Create(context.Context, *entity.User) error { return nil }
func (r *stubRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}
func (r *stubRepo) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (r *stubRepo) Update(context.Context, *entity.User) error { return nil }

func setup(t *testing.T) (*gin.Engine, *stubRepo, *helpers.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := &stubRepo{users: map[string]*entity.User{}}
	jwt := helpers.NewJWTManager("access", "refresh", time.Hour, time.Hour)
	return gin.New(), repo, jwt
}

func addUser(repo *stubRepo, id string, role entity.Role, status entity.Status) *entity.User {
	u := &entity.User{ID: id, Email: id + "@example.com", Role: role, Status: status}
	repo.users[id] = u
	return u
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	r, repo, jwt := setup(t)
	addUser(repo, "u1", entity.RoleBuyer, entity.StatusApproved)
	addUser(repo, "u2", entity.RoleBuyer, entity.StatusSuspended)

	r.GET("/me", middleware.Authenticate(repo, jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString(middleware.CtxUserIDKey)})
	})

	t.Run("missing token", func(t *testing.T) {
		w := get(r, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		w := get(r, "/me", "garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid access token")
	})

	t.Run("expired token", func(t *testing.T) {
		expired := helpers.NewJWTManager("access", "refresh", -time.Minute, time.Hour)
		token, _, err := expired.IssueAccessToken("u1", "u1@example.com", "buyer")
		require.NoError(t, err)
		w := get(r, "/me", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		token, _, err := jwt.IssueAccessToken("gone", "gone@example.com", "buyer")
		require.NoError(t, err)
		w := get(r, "/me", token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("suspended user", func(t *testing.T) {
		token, _, err := jwt.IssueAccessToken("u2", "u2@example.com", "buyer")
		require.NoError(t, err)
		w := get(r, "/me", token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, _, err := jwt.IssueAccessToken("u1", "u1@example.com", "buyer")
		require.NoError(t, err)
		w := get(r, "/me", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "u1")
	})
}

func TestAuthorize(t *testing.T) {
	r, repo, jwt := setup(t)
	addUser(repo, "buyer1", entity.RoleBuyer, entity.StatusApproved)
	addUser(repo, "seller1", entity.RoleSeller, entity.StatusApproved)

	r.GET("/seller-only",
		middleware.Authenticate(repo, jwt),
		middleware.Authorize(entity.RoleSeller, entity.RoleAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	buyerToken, _, err := jwt.IssueAccessToken("buyer1", "buyer1@example.com", "buyer")
	require.NoError(t, err)
	sellerToken, _, err := jwt.IssueAccessToken("seller1", "seller1@example.com", "seller")
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, "/seller-only", buyerToken).Code)
	assert.Equal(t, http.StatusOK, get(r, "/seller-only", sellerToken).Code)
}

func TestOptionalAuth(t *testing.T) {
	r, repo, jwt := setup(t)
	addUser(repo, "u1", entity.RoleBuyer, entity.StatusApproved)

	r.GET("/feed", middleware.OptionalAuth(repo, jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(middleware.CtxUserIDKey)})
	})

	t.Run("anonymous passes through", func(t *testing.T) {
		w := get(r, "/feed", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user":""`)
	})

	t.Run("bad token degrades to anonymous", func(t *testing.T) {
		w := get(r, "/feed", "garbage")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user":""`)
	})

	t.Run("valid token attaches the identity", func(t *testing.T) {
		token, _, err := jwt.IssueAccessToken("u1", "u1@example.com", "buyer")
		require.NoError(t, err)
		w := get(r, "/feed", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user":"u1"`)
	})
}

func TestRequireApprovedBuyer(t *testing.T) {
	r, repo, jwt := setup(t)
	addUser(repo, "pendingbuyer", entity.RoleBuyer, entity.StatusPending)
	addUser(repo, "okbuyer", entity.RoleBuyer, entity.StatusApproved)
	addUser(repo, "admin1", entity.RoleAdmin, entity.StatusApproved)

	r.GET("/order",
		middleware.Authenticate(repo, jwt),
		middleware.RequireApprovedBuyer(),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	token := func(id, role string) string {
		s, _, err := jwt.IssueAccessToken(id, id+"@example.com", role)
		require.NoError(t, err)
		return s
	}

	assert.Equal(t, http.StatusForbidden, get(r, "/order", token("pendingbuyer", "buyer")).Code)
	assert.Equal(t, http.StatusOK, get(r, "/order", token("okbuyer", "buyer")).Code)
	assert.Equal(t, http.StatusOK, get(r, "/order", token("admin1", "admin")).Code)
}
