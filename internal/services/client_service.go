package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrClientNameRequired = errors.New("client name is required")
	ErrNotClientOwner     = errors.New("only the owner can access this client")
	ErrClientHasTasks     = errors.New("client is referenced by existing tasks")
)

// ClientService handles client registry business logic.
type ClientService struct {
	clientRepo repository.ClientRepository
	taskRepo   repository.TaskRepository
}

// NewClientService creates a new ClientService.
func NewClientService(clientRepo repository.ClientRepository, taskRepo repository.TaskRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		taskRepo:   taskRepo,
	}
}

// CreateClientInput represents input for creating a client.
type CreateClientInput struct {
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatorID uint64
}

// UpdateClientInput represents a partial client update.
type UpdateClientInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Active  *bool
}

// CreateClient creates a client owned by the requesting user.
func (s *ClientService) CreateClient(input CreateClientInput) (*models.Client, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrClientNameRequired
	}

	client := &models.Client{
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		Active:    true,
		CreatorID: input.CreatorID,
	}

	if err := s.clientRepo.Create(client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// GetClient returns a client if the actor owns it.
func (s *ClientService) GetClient(clientID uint64, actor *models.User) (*models.Client, error) {
	client, err := s.clientRepo.FindByID(clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}

	if client.CreatorID != actor.ID && !actor.IsAdmin() {
		return nil, ErrNotClientOwner
	}

	return client, nil
}

// ListClients lists the actor's clients with pagination.
func (s *ClientService) ListClients(actorID uint64, page, pageSize int) ([]models.Client, int64, error) {
	clients, total, err := s.clientRepo.ListByCreatorID(actorID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, total, nil
}

// UpdateClient applies a partial update if the actor owns the client.
func (s *ClientService) UpdateClient(clientID uint64, actor *models.User, input UpdateClientInput) (*models.Client, error) {
	client, err := s.GetClient(clientID, actor)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrClientNameRequired
		}
		client.Name = *input.Name
	}
	if input.Email != nil {
		client.Email = *input.Email
	}
	if input.Phone != nil {
		client.Phone = *input.Phone
	}
	if input.Address != nil {
		client.Address = *input.Address
	}
	if input.Active != nil {
		client.Active = *input.Active
	}

	if err := s.clientRepo.Update(client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return client, nil
}

// DeleteClient removes a client unless tasks still reference it.
func (s *ClientService) DeleteClient(clientID uint64, actor *models.User) error {
	client, err := s.GetClient(clientID, actor)
	if err != nil {
		return err
	}

	count, err := s.taskRepo.CountByClientID(client.ID)
	if err != nil {
		return fmt.Errorf("failed to count client tasks: %w", err)
	}
	if count > 0 {
		return ErrClientHasTasks
	}

	if err := s.clientRepo.Delete(client.ID); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	return nil
}
