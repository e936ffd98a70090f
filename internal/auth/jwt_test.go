package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Centralink87/centralinkxyz/internal/ledger"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, *JWTIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "auth-test-secret")
	t.Setenv("JWT_ISS", "")
	t.Setenv("JWT_AUD", "")

	issuer, err := NewJWTIssuerFromEnv()
	require.NoError(t, err)

	r := gin.New()
	r.GET("/whoami", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"roles":   c.GetStringSlice("roles"),
		})
	})
	r.GET("/admin", RequireAuth(), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, issuer
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

func TestRequireAuthAcceptsIssuedToken(t *testing.T) {
	r, issuer := setupAuthRouter(t)

	uid := uuid.New().String()
	token, exp, err := issuer.Issue(uid, []string{ledger.RoleUser})
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	w := get(r, "/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), uid)
	assert.Contains(t, w.Body.String(), ledger.RoleUser)
}

func TestRequireAuthRejectsMissingOrGarbageToken(t *testing.T) {
	r, _ := setupAuthRouter(t)

	w := get(r, "/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/whoami", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsWrongSecret(t *testing.T) {
	r, _ := setupAuthRouter(t)

	forged := &JWTIssuer{secret: []byte("other-secret"), ttl: time.Minute}
	token, _, err := forged.Issue(uuid.New().String(), nil)
	require.NoError(t, err)

	w := get(r, "/whoami", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIssueOmitsAudienceWhenUnconfigured(t *testing.T) {
	t.Setenv("JWT_SECRET", "auth-test-secret")
	t.Setenv("JWT_AUD", "")

	issuer, err := NewJWTIssuerFromEnv()
	require.NoError(t, err)
	token, _, err := issuer.Issue(uuid.New().String(), []string{ledger.RoleUser})
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte("auth-test-secret"), nil
	})
	require.NoError(t, err)
	assert.Empty(t, claims.Audience)
}

func TestAudienceEnforcedWhenConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "auth-test-secret")
	t.Setenv("JWT_ISS", "")
	t.Setenv("JWT_AUD", "centralink-clients")

	issuer, err := NewJWTIssuerFromEnv()
	require.NoError(t, err)

	r := gin.New()
	r.GET("/whoami", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})

	good, _, err := issuer.Issue(uuid.New().String(), []string{ledger.RoleUser})
	require.NoError(t, err)
	w := get(r, "/whoami", good)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Same secret, wrong audience.
	other := &JWTIssuer{secret: []byte("auth-test-secret"), audience: "someone-else", ttl: time.Minute}
	bad, _, err := other.Issue(uuid.New().String(), nil)
	require.NoError(t, err)
	w = get(r, "/whoami", bad)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Same secret, no audience claim at all.
	none := &JWTIssuer{secret: []byte("auth-test-secret"), ttl: time.Minute}
	missing, _, err := none.Issue(uuid.New().String(), nil)
	require.NoError(t, err)
	w = get(r, "/whoami", missing)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	r, issuer := setupAuthRouter(t)

	userToken, _, err := issuer.Issue(uuid.New().String(), []string{ledger.RoleUser})
	require.NoError(t, err)
	w := get(r, "/admin", userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken, _, err := issuer.Issue(uuid.New().String(), []string{ledger.RoleUser, ledger.RoleAdmin})
	require.NoError(t, err)
	w = get(r, "/admin", adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}
