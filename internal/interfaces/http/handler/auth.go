package handler

import (
	identityapp "github.com/aquagest/backend/internal/application/identity"
	"github.com/aquagest/backend/internal/domain/identity"
	"github.com/aquagest/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler exposes authentication and staff account management over HTTP.
type AuthHandler struct {
	BaseHandler
	service *identityapp.Service
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service *identityapp.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "invalid user identity")
		return
	}

	resp, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ChangePassword handles POST /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "invalid user identity")
		return
	}

	var req identityapp.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UpdatePreferences handles PUT /api/v1/auth/preferences
func (h *AuthHandler) UpdatePreferences(c *gin.Context) {
	userID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "invalid user identity")
		return
	}

	var req identityapp.UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.UpdatePreferences(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateUser handles POST /api/v1/users
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req identityapp.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetUser handles GET /api/v1/users/:id
func (h *AuthHandler) GetUser(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid user id")
		return
	}

	resp, err := h.service.GetUser(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByRole handles GET /api/v1/users
func (h *AuthHandler) ListByRole(c *gin.Context) {
	role := identity.Role(c.Query("role"))
	if !role.IsValid() {
		h.BadRequest(c, "role must be one of admin, salesperson, deliverer")
		return
	}

	items, err := h.service.ListByRole(c.Request.Context(), role)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// DeactivateUser handles POST /api/v1/users/:id/deactivate
func (h *AuthHandler) DeactivateUser(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid user id")
		return
	}

	if err := h.service.DeactivateUser(c.Request.Context(), uuid.MustParse(uri.ID)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
