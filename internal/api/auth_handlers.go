package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Centralink87/centralinkxyz/internal/ledger"
	"github.com/Centralink87/centralinkxyz/internal/storage"
	"github.com/Centralink87/centralinkxyz/telemetry"
)

// TokenIssuer abstracts JWT emission.
type TokenIssuer interface {
	Issue(userID string, roles []string) (string, time.Time, error)
}

// AuthHandlers handles register/login.
type AuthHandlers struct {
	Log    *zap.Logger
	Users  storage.UserRepo
	V      *validator.Validate
	Tokens TokenIssuer

	// Emails that receive ROLE_ADMIN at registration.
	AdminEmails []string
}

func (h *AuthHandlers) isAdminEmail(email string) bool {
	for _, e := range h.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

// Register godoc
// @Summary      Register a new user
// @Description  Creates a user account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      RegisterRequest  true  "Register payload"
// @Success      201      {object}  map[string]any
// @Failure      400      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		telemetry.IncUsersCreateFailed("validation")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.V.Struct(req); err != nil {
		telemetry.IncUsersCreateFailed("validation")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	roles := []string{ledger.RoleUser}
	if h.isAdminEmail(email) {
		roles = append(roles, ledger.RoleAdmin)
	}

	u := ledger.User{
		ID:           uuid.New(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(pwHash),
		Roles:        roles,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Users.CreateUser(c.Request.Context(), u); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			telemetry.IncUsersCreateFailed("conflict")
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
			return
		}
		telemetry.IncUsersCreateFailed("db")
		h.Log.Error("register failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist"})
		return
	}

	telemetry.IncUsersCreated()
	c.JSON(http.StatusCreated, gin.H{
		"id":         u.ID.String(),
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"roles":      u.Roles,
	})
}

// Login godoc
// @Summary      Login with email and password
// @Description  Returns a short-lived JWT access token carrying the account roles.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      LoginRequest  true  "Login payload"
// @Success      200      {object}  map[string]any
// @Failure      400      {object}  map[string]string
// @Failure      401      {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.V.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	u, err := h.Users.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		telemetry.IncLogins(false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		telemetry.IncLogins(false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, exp, err := h.Tokens.Issue(u.ID.String(), u.Roles)
	if err != nil {
		h.Log.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	telemetry.IncLogins(true)
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(time.Until(exp).Seconds()),
		"user": gin.H{
			"id":    u.ID.String(),
			"name":  u.FullName(),
			"email": u.Email,
			"roles": u.Roles,
		},
	})
}
