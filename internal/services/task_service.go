package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrClientNotFound       = errors.New("client not found")
	ErrTitleRequired        = errors.New("title is required")
	ErrTitleEmpty           = errors.New("title cannot be empty")
	ErrNoAssignees          = errors.New("at least one assignee is required")
	ErrInvalidStatus        = errors.New("status must be one of todo, in-progress, completed")
	ErrInvalidPriority      = errors.New("priority must be one of low, medium, high")
	ErrTaskViewDenied       = errors.New("user does not have permission to view this task")
	ErrTaskEditDenied       = errors.New("only the task creator can perform this action")
	ErrTaskStatusDenied     = errors.New("only the creator or an assignee can change the status")
	ErrAIServiceUnavailable = errors.New("AI service is not configured")
	ErrAINoTasksGenerated   = errors.New("AI did not generate any tasks")
)

// taskPreloads are the relations expanded on every single-task response.
var taskPreloads = []string{"Creator", "Client", "Assignments", "Assignments.User"}

// Notifier publishes task lifecycle events to connected clients.
type Notifier interface {
	Publish(event string, payload interface{})
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo   repository.TaskRepository
	userRepo   repository.UserRepository
	clientRepo repository.ClientRepository
	notifier   Notifier
	aiService  *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	notifier Notifier,
	aiService *AIService,
) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		userRepo:   userRepo,
		clientRepo: clientRepo,
		notifier:   notifier,
		aiService:  aiService,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	DueDate     *time.Time
	ClientID    uint64
	AssigneeIDs []uint64
	Labels      []string
	CreatorID   uint64
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	AssigneeIDs  *[]uint64
	Labels       *[]string
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID        uint64
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	OrderBy       []string
	SelectColumns []string
	Page          int
	PageSize      int
}

// CreateTask creates a new task atomically: the code generation, the batched
// assignee validation, and the insert share one transaction.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if len(input.AssigneeIDs) == 0 {
		return nil, ErrNoAssignees
	}

	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !models.ValidPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	if _, err := s.clientRepo.FindByID(input.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to verify client: %w", err)
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      models.TaskStatusTodo,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		ClientID:    input.ClientID,
		CreatorID:   input.CreatorID,
		Labels:      input.Labels,
	}

	if err := s.taskRepo.CreateWithAssignees(task, uniqueUint64(input.AssigneeIDs)); err != nil {
		var missing *repository.MissingAssigneesError
		if errors.As(err, &missing) {
			return nil, missing
		}
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	created, err := s.taskRepo.FindByID(task.ID, taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish("task.created", created)
	return created, nil
}

// GetTask returns a task with related data, enforcing the view predicate.
func (s *TaskService) GetTask(taskID uint64, actor *models.User) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, taskPreloads...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !CanViewTask(task, actor) {
		return nil, ErrTaskViewDenied
	}

	return task, nil
}

// ListTasks returns the page of tasks the user created or is assigned to,
// along with the total count independent of pagination.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		UserID:        input.UserID,
		Status:        input.Status,
		Priority:      input.Priority,
		OrderBy:       input.OrderBy,
		SelectColumns: input.SelectColumns,
		Page:          input.Page,
		PageSize:      input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// UpdateTask applies a partial update. A single assignee value has already
// been normalized into a list at the request boundary; assignee existence is
// not re-validated on this path.
func (s *TaskService) UpdateTask(taskID uint64, actor *models.User, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !CanEditTask(task, actor) {
		return nil, ErrTaskEditDenied
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !models.ValidWriteStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !models.ValidPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Labels != nil {
		task.Labels = *input.Labels
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if input.AssigneeIDs != nil && len(*input.AssigneeIDs) > 0 {
		if err := s.taskRepo.ReplaceAssignees(task.ID, uniqueUint64(*input.AssigneeIDs)); err != nil {
			return nil, fmt.Errorf("failed to update assignees: %w", err)
		}
	}

	updated, err := s.taskRepo.FindByID(task.ID, taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish("task.updated", updated)
	return updated, nil
}

// UpdateTaskStatus persists a new status only, without re-running the full
// update path. The requester must be the creator or an assignee.
func (s *TaskService) UpdateTaskStatus(taskID uint64, actor *models.User, status models.TaskStatus) (*models.Task, error) {
	if !models.ValidWriteStatus(status) {
		return nil, ErrInvalidStatus
	}

	task, err := s.taskRepo.FindByID(taskID, "Assignments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if !CanChangeTaskStatus(task, actor) {
		return nil, ErrTaskStatusDenied
	}

	if err := s.taskRepo.UpdateStatus(task.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	updated, err := s.taskRepo.FindByID(task.ID, taskPreloads...)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.publish("task.updated", updated)
	return updated, nil
}

// DeleteTask deletes a task if the actor is the creator.
func (s *TaskService) DeleteTask(taskID uint64, actor *models.User) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if !CanEditTask(task, actor) {
		return ErrTaskEditDenied
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.publish("task.deleted", task)
	return nil
}

// StatusStatistics groups all tasks by status. Role enforcement happens at
// the route level; the aggregation itself is tenant-wide.
func (s *TaskService) StatusStatistics() ([]repository.StatusStat, error) {
	stats, err := s.taskRepo.AggregateByStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tasks: %w", err)
	}
	return stats, nil
}

// MarkOverdueTasks flips unfinished tasks with a stale due date to the
// overdue status. This is the only writer of that status.
func (s *TaskService) MarkOverdueTasks(now time.Time) (int64, error) {
	changed, err := s.taskRepo.MarkOverdue(repository.OverdueFilter{Now: now})
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue tasks: %w", err)
	}
	return changed, nil
}

// GenerateTaskDrafts uses AI to extract task drafts from free text. Drafts
// are returned to the caller, never persisted.
func (s *TaskService) GenerateTaskDrafts(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceUnavailable
	}

	drafts, err := s.aiService.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}
	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	valid := make([]GeneratedTask, 0, len(drafts))
	for _, draft := range drafts {
		if strings.TrimSpace(draft.Title) == "" {
			continue
		}
		valid = append(valid, draft)
	}
	if len(valid) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	return valid, nil
}

func (s *TaskService) publish(event string, task *models.Task) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(event, task)
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
