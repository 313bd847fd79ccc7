package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskdesk/taskdesk-api/internal/dto"
	apierrors "github.com/taskdesk/taskdesk-api/internal/errors"
	"github.com/taskdesk/taskdesk-api/internal/middleware"
	"github.com/taskdesk/taskdesk-api/internal/services"
	"github.com/taskdesk/taskdesk-api/internal/utils"
)

type ClientHandler struct {
	clientService *services.ClientService
}

func NewClientHandler(clientService *services.ClientService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
	}
}

// CreateClient registers a new client owned by the current user.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateClientRequest struct {
		Name    string `json:"name" binding:"required"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clientService.CreateClient(services.CreateClientInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		CreatorID: user.ID,
	})
	if err != nil {
		respondClientError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToClientDTO(*client))
}

// ListClients lists the current user's clients with pagination.
func (h *ClientHandler) ListClients(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	clients, total, err := h.clientService.ListClients(user.ID, params.Page, params.Limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch clients")
		return
	}

	c.JSON(http.StatusOK, dto.ToClientListResponse(clients, params.Page, params.Limit, total))
}

// GetClient returns a single client owned by the current user.
func (h *ClientHandler) GetClient(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	clientID, ok := parseClientID(c)
	if !ok {
		return
	}

	client, err := h.clientService.GetClient(clientID, user)
	if err != nil {
		respondClientError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToClientDTO(*client))
}

// UpdateClient applies a partial update to a client.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	clientID, ok := parseClientID(c)
	if !ok {
		return
	}

	type UpdateClientRequest struct {
		Name    *string `json:"name"`
		Email   *string `json:"email"`
		Phone   *string `json:"phone"`
		Address *string `json:"address"`
		Active  *bool   `json:"active"`
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	client, err := h.clientService.UpdateClient(clientID, user, services.UpdateClientInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Active:  req.Active,
	})
	if err != nil {
		respondClientError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToClientDTO(*client))
}

// DeleteClient removes a client unless tasks still reference it.
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	clientID, ok := parseClientID(c)
	if !ok {
		return
	}

	if err := h.clientService.DeleteClient(clientID, user); err != nil {
		respondClientError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseClientID(c *gin.Context) (uint64, bool) {
	clientID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid client ID")
		return 0, false
	}
	return clientID, true
}

func respondClientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrClientNameRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrClientNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotClientOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrClientHasTasks):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
