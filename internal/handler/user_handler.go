package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskrelay/taskrelay-api/internal/models"
	"github.com/taskrelay/taskrelay-api/internal/service"
	appErrors "github.com/taskrelay/taskrelay-api/pkg/errors"
	"github.com/taskrelay/taskrelay-api/pkg/response"
)

// UserHandler wires the user-facing HTTP endpoints.
type UserHandler struct {
	auth        *service.AuthService
	assignments *service.AssignmentService
	directory   *service.DirectoryService
}

// NewUserHandler creates a new handler.
func NewUserHandler(auth *service.AuthService, assignments *service.AssignmentService, directory *service.DirectoryService) *UserHandler {
	return &UserHandler{auth: auth, assignments: assignments, directory: directory}
}

// Register handles POST /users/register.
func (h *UserHandler) Register(c *gin.Context) {
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

	response.Created(c, "User registered successfully", gin.H{
		"token": res.Token,
		"user":  res.Principal.Info(),
	})
}

// Login handles POST /users/login.
func (h *UserHandler) Login(c *gin.Context) {
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
		"user":  res.Principal.Info(),
	})
}

// Upload handles POST /users/upload. The userId and adminId fields carry
// usernames.
func (h *UserHandler) Upload(c *gin.Context) {
	var req models.UploadAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "user ID, task, and admin ID are required"))
		return
	}

	assignment, err := h.assignments.Upload(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Assignment uploaded successfully", gin.H{"assignment": assignment})
}

// ListAdmins handles GET /users/admins.
func (h *UserHandler) ListAdmins(c *gin.Context) {
	admins, err := h.directory.ListAdmins(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Admins fetched successfully", gin.H{"admins": admins})
}

// MyAssignments handles GET /users/assignments, returning the caller's
// uploads via the assignment back-references.
func (h *UserHandler) MyAssignments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	assignments, err := h.assignments.ListForUser(c.Request.Context(), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Assignments fetched successfully", gin.H{"assignments": assignments})
}
