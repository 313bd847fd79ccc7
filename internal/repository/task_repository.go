package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/constants"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	// UserID scopes the listing to tasks the user created or is assigned to.
	UserID   uint64
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	// OrderBy holds pre-validated ORDER BY clauses.
	OrderBy []string
	// SelectColumns holds pre-validated columns for partial selection.
	SelectColumns []string
	Page          int
	PageSize      int
}

// OverdueFilter bounds the overdue sweep.
type OverdueFilter struct {
	Now time.Time
}

// MissingAssigneesError reports assignee ids that did not resolve to users.
type MissingAssigneesError struct {
	MissingIDs []uint64
}

func (e *MissingAssigneesError) Error() string {
	parts := make([]string, len(e.MissingIDs))
	for i, id := range e.MissingIDs {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return fmt.Sprintf("assignees not found: %s", strings.Join(parts, ", "))
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithAssignees atomically generates the task code, validates the
// assignees, and inserts the task with its assignment rows.
func (r *GormTaskRepository) CreateWithAssignees(task *models.Task, assigneeIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		code, err := nextTaskCode(tx)
		if err != nil {
			return fmt.Errorf("failed to generate task code: %w", err)
		}
		task.Code = code

		var users []models.User
		if err := tx.Where("id IN ?", assigneeIDs).Find(&users).Error; err != nil {
			return fmt.Errorf("failed to resolve assignees: %w", err)
		}
		if len(users) != len(assigneeIDs) {
			found := make(map[uint64]struct{}, len(users))
			for _, u := range users {
				found[u.ID] = struct{}{}
			}
			var missing []uint64
			for _, id := range assigneeIDs {
				if _, ok := found[id]; !ok {
					missing = append(missing, id)
				}
			}
			return &MissingAssigneesError{MissingIDs: missing}
		}

		if err := tx.Create(task).Error; err != nil {
			return err
		}

		assignments := make([]models.TaskAssignment, len(assigneeIDs))
		for i, userID := range assigneeIDs {
			assignments[i] = models.TaskAssignment{
				TaskID: task.ID,
				UserID: userID,
			}
		}
		return tx.Create(&assignments).Error
	})
}

// nextTaskCode derives the next sequential code from the latest task. The
// read takes a row lock so concurrent creators serialize instead of racing
// into the unique index on code. SQLite has no FOR UPDATE; its single-writer
// transaction lock already serializes creators there.
func nextTaskCode(tx *gorm.DB) (string, error) {
	query := tx.Order("created_at DESC, id DESC")
	if tx.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	sequence := 0
	var last models.Task
	err := query.First(&last).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// First task ever: sequence starts at zero.
	case err != nil:
		return "", err
	default:
		suffix := strings.TrimPrefix(last.Code, constants.TaskCodePrefix)
		if n, parseErr := strconv.Atoi(suffix); parseErr == nil {
			sequence = n
		}
	}

	return fmt.Sprintf("%s%0*d", constants.TaskCodePrefix, constants.TaskCodeWidth, sequence+1), nil
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination. The total count is
// computed before pagination limits are applied.
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
		Select("1").
		Where("task_assignments.task_id = tasks.id").
		Where("task_assignments.user_id = ?", filter.UserID).
		Where("task_assignments.deleted_at IS NULL")

	query := r.db.Model(&models.Task{}).
		Where(r.db.Where("tasks.creator_id = ?", filter.UserID).
			Or("EXISTS (?)", assignmentSubQuery))

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if len(filter.SelectColumns) > 0 {
		listQuery = listQuery.Select(filter.SelectColumns)
	}
	for _, order := range filter.OrderBy {
		listQuery = listQuery.Order(order)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.
		Preload("Creator").
		Preload("Assignments").
		Preload("Assignments.User").
		Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// UpdateStatus persists only the status column, skipping full-record hooks
// and validation on purpose.
func (r *GormTaskRepository) UpdateStatus(id uint64, status models.TaskStatus) error {
	return r.db.Model(&models.Task{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete soft deletes a task and its assignment rows
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// ReplaceAssignees swaps the assignment rows of a task
func (r *GormTaskRepository) ReplaceAssignees(taskID uint64, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		assignments := make([]models.TaskAssignment, len(userIDs))
		for i, userID := range userIDs {
			assignments[i] = models.TaskAssignment{
				TaskID: taskID,
				UserID: userID,
			}
		}

		return tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"deleted_at": gorm.Expr("NULL")}),
			}).
			Create(&assignments).Error
	})
}

// AggregateByStatus groups all tasks by status, ordered by status name.
func (r *GormTaskRepository) AggregateByStatus() ([]StatusStat, error) {
	var stats []StatusStat

	err := r.db.Model(&models.Task{}).
		Select(`status,
			COUNT(*) AS count,
			AVG(CASE priority
				WHEN 'high' THEN 3
				WHEN 'medium' THEN 2
				WHEN 'low' THEN 1
				ELSE 0
			END) AS avg_priority`).
		Group("status").
		Order("status ASC").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// MarkOverdue flips unfinished tasks with a stale due date to overdue.
func (r *GormTaskRepository) MarkOverdue(filter OverdueFilter) (int64, error) {
	result := r.db.Model(&models.Task{}).
		Where("due_date IS NOT NULL AND due_date < ?", filter.Now).
		Where("status IN ?", []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusInProgress}).
		Update("status", models.TaskStatusOverdue)

	return result.RowsAffected, result.Error
}

// CountByClientID counts tasks referencing a client
func (r *GormTaskRepository) CountByClientID(clientID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	return count, err
}

// CountByUserID counts tasks referencing a user as creator or assignee
func (r *GormTaskRepository) CountByUserID(userID uint64) (int64, error) {
	assignmentSubQuery := r.db.Model(&models.TaskAssignment{}).
		Select("1").
		Where("task_assignments.task_id = tasks.id").
		Where("task_assignments.user_id = ?", userID).
		Where("task_assignments.deleted_at IS NULL")

	var count int64
	err := r.db.Model(&models.Task{}).
		Where(r.db.Where("tasks.creator_id = ?", userID).
			Or("EXISTS (?)", assignmentSubQuery)).
		Count(&count).Error
	return count, err
}
