package repository

import (
	"github.com/taskdesk/taskdesk-api/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateWithAssignees atomically generates the next task code, validates
	// the assignee ids against the users table, and inserts the task along
	// with its assignment rows. The whole unit of work is rolled back when
	// any assignee id does not resolve.
	CreateWithAssignees(task *models.Task, assigneeIDs []uint64) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// UpdateStatus persists only the status column of a task
	UpdateStatus(id uint64, status models.TaskStatus) error

	// Delete soft deletes a task and its assignment rows
	Delete(id uint64) error

	// ReplaceAssignees swaps the assignment rows of a task
	ReplaceAssignees(taskID uint64, userIDs []uint64) error

	// AggregateByStatus groups all tasks by status with count and average
	// priority score, ordered by status name
	AggregateByStatus() ([]StatusStat, error)

	// MarkOverdue flips stale unfinished tasks to the overdue status and
	// returns how many rows changed
	MarkOverdue(filter OverdueFilter) (int64, error)

	// CountByClientID counts tasks referencing a client
	CountByClientID(clientID uint64) (int64, error)

	// CountByUserID counts tasks referencing a user as creator or assignee
	CountByUserID(userID uint64) (int64, error)
}

// StatusStat is one row of the status aggregation.
type StatusStat struct {
	Status      models.TaskStatus
	Count       int64
	AvgPriority float64
}

// ClientRepository defines the interface for client data access
type ClientRepository interface {
	// Create creates a new client
	Create(client *models.Client) error

	// FindByID finds a client by ID
	FindByID(id uint64) (*models.Client, error)

	// ListByCreatorID lists clients owned by a user with pagination
	ListByCreatorID(creatorID uint64, page, pageSize int) ([]models.Client, int64, error)

	// Update updates a client
	Update(client *models.Client) error

	// Delete soft deletes a client
	Delete(id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByIDs finds all users matching the given ids in one query
	FindByIDs(ids []uint64) ([]models.User, error)

	// List lists users with pagination
	List(page, pageSize int) ([]models.User, int64, error)

	// Update updates a user
	Update(user *models.User) error

	// Delete soft deletes a user
	Delete(id uint64) error
}
