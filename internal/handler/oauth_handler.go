package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskrelay/taskrelay-api/internal/models"
	"github.com/taskrelay/taskrelay-api/internal/service"
	appErrors "github.com/taskrelay/taskrelay-api/pkg/errors"
	"github.com/taskrelay/taskrelay-api/pkg/response"
)

const (
	stateCookieName = "oauth_state"
	stateCookieTTL  = 600 // seconds
)

// OAuthHandler serves the Google login flows. Two sets of endpoints exist:
// one resolving into the users table, one into the admins table.
type OAuthHandler struct {
	oauth  *service.OAuthService
	logger *zap.Logger
}

// NewOAuthHandler creates a new handler.
func NewOAuthHandler(oauth *service.OAuthService, logger *zap.Logger) *OAuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OAuthHandler{oauth: oauth, logger: logger}
}

// UserLogin handles GET /auth/google.
func (h *OAuthHandler) UserLogin(c *gin.Context) { h.login(c, models.RoleUser) }

// AdminLogin handles GET /auth/admin/google.
func (h *OAuthHandler) AdminLogin(c *gin.Context) { h.login(c, models.RoleAdmin) }

// UserCallback handles GET /auth/google/callback.
func (h *OAuthHandler) UserCallback(c *gin.Context) { h.callback(c, models.RoleUser, "user") }

// AdminCallback handles GET /auth/admin/google/callback.
func (h *OAuthHandler) AdminCallback(c *gin.Context) { h.callback(c, models.RoleAdmin, "admin") }

func (h *OAuthHandler) login(c *gin.Context, kind models.Role) {
	if !h.oauth.IsConfigured() {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "google oauth is not configured"))
		return
	}

	state, err := generateState()
	if err != nil {
		h.logger.Error("failed to generate oauth state", zap.Error(err))
		response.Error(c, appErrors.ErrInternal)
		return
	}

	c.SetCookie(stateCookieName, state, stateCookieTTL, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(kind, state))
}

func (h *OAuthHandler) callback(c *gin.Context, kind models.Role, field string) {
	stored, err := c.Cookie(stateCookieName)
	if err != nil || stored == "" || stored != c.Query("state") {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthenticated, "Login failed"))
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthenticated, "Login failed"))
		return
	}

	res, err := h.oauth.HandleCallback(c.Request.Context(), kind, code)
	if err != nil {
		h.logger.Warn("oauth callback failed", zap.String("kind", string(kind)), zap.Error(err))
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", gin.H{
		"token": res.Token,
		field:   res.Principal.Info(),
	})
}

func generateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
