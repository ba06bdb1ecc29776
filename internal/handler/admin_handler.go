package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskrelay/taskrelay-api/internal/models"
	"github.com/taskrelay/taskrelay-api/internal/service"
	appErrors "github.com/taskrelay/taskrelay-api/pkg/errors"
	"github.com/taskrelay/taskrelay-api/pkg/response"
)

// AdminHandler wires the admin-facing HTTP endpoints.
type AdminHandler struct {
	auth        *service.AuthService
	assignments *service.AssignmentService
	directory   *service.DirectoryService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(auth *service.AuthService, assignments *service.AssignmentService, directory *service.DirectoryService) *AdminHandler {
	return &AdminHandler{auth: auth, assignments: assignments, directory: directory}
}

// Register handles POST /admins/register.
func (h *AdminHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "please provide username, email, and password"))
		return
	}

	res, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	// A new admin invalidates the cached directory listing.
	h.directory.InvalidateAdminDirectory(c.Request.Context())

	response.Created(c, "Admin registered successfully", gin.H{
		"token": res.Token,
		"admin": res.Principal.Info(),
	})
}

// Login handles POST /admins/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "email and password are required"))
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", gin.H{
		"token": res.Token,
		"admin": res.Principal.Info(),
	})
}

// Assignments handles GET /admins/assignments. The response body is a bare
// array; no assignments at all is a 404, not an empty list.
func (h *AdminHandler) Assignments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	assignments, err := h.assignments.ListForAdmin(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Raw(c, http.StatusOK, assignments)
}

// Accept handles POST /admins/assignments/:id/accept.
func (h *AdminHandler) Accept(c *gin.Context) {
	assignment, err := h.assignments.Accept(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Raw(c, http.StatusOK, gin.H{"message": "Assignment accepted", "assignment": assignment})
}

// Reject handles POST /admins/assignments/:id/reject.
func (h *AdminHandler) Reject(c *gin.Context) {
	assignment, err := h.assignments.Reject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Raw(c, http.StatusOK, gin.H{"message": "Assignment rejected", "assignment": assignment})
}
