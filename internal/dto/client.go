package dto

import (
	"time"

	"github.com/taskdesk/taskdesk-api/internal/models"
)

// ClientDTO represents a client in API responses
type ClientDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatorID uint64    `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientListResponse represents a paginated list of clients
type ClientListResponse struct {
	Clients    []ClientDTO `json:"clients"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalCount int64       `json:"total_count"`
}

// ToClientDTO converts a Client model to ClientDTO
func ToClientDTO(client models.Client) ClientDTO {
	return ClientDTO{
		ID:        client.ID,
		Name:      client.Name,
		Email:     client.Email,
		Phone:     client.Phone,
		Address:   client.Address,
		Active:    client.Active,
		CreatorID: client.CreatorID,
		CreatedAt: client.CreatedAt,
		UpdatedAt: client.UpdatedAt,
	}
}

// ToClientListResponse converts a slice of clients to ClientListResponse
func ToClientListResponse(clients []models.Client, page, pageSize int, totalCount int64) ClientListResponse {
	items := make([]ClientDTO, len(clients))
	for i, client := range clients {
		items[i] = ToClientDTO(client)
	}

	return ClientListResponse{
		Clients:    items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}
