package repository

import (
	"github.com/taskdesk/taskdesk-api/internal/database"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/utils"
	"gorm.io/gorm"
)

// GormClientRepository is a GORM implementation of ClientRepository
type GormClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &GormClientRepository{db: db}
}

// Create creates a new client
func (r *GormClientRepository) Create(client *models.Client) error {
	return r.db.Create(client).Error
}

// FindByID finds a client by ID
func (r *GormClientRepository) FindByID(id uint64) (*models.Client, error) {
	var client models.Client
	if err := r.db.First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

// ListByCreatorID lists clients owned by a user with pagination
func (r *GormClientRepository) ListByCreatorID(creatorID uint64, page, pageSize int) ([]models.Client, int64, error) {
	var clients []models.Client

	query := r.db.Model(&models.Client{}).Where("creator_id = ?", creatorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if page > 0 && pageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   page,
			Limit:  pageSize,
			Offset: (page - 1) * pageSize,
		}))
	}

	if err := listQuery.Find(&clients).Error; err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

// Update updates a client
func (r *GormClientRepository) Update(client *models.Client) error {
	return r.db.Save(client).Error
}

// Delete soft deletes a client
func (r *GormClientRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Client{}, id).Error
}
