package dto

import (
	"time"

	"github.com/taskdesk/taskdesk-api/internal/models"
)

// UserSummaryDTO is the display-friendly projection of a referenced user.
type UserSummaryDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Code        string              `json:"code"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	Labels      []string            `json:"labels"`
	CreatorID   uint64              `json:"creator_id"`
	ClientID    uint64              `json:"client_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Creator     *UserSummaryDTO     `json:"creator,omitempty"`
	Client      *ClientDTO          `json:"client,omitempty"`
	Assignees   []UserSummaryDTO    `json:"assignees,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}

// StatusStatDTO is one status group in the statistics response.
type StatusStatDTO struct {
	Status      models.TaskStatus `json:"status"`
	Count       int64             `json:"count"`
	AvgPriority float64           `json:"avg_priority"`
}

// ToUserSummaryDTO converts a User model to UserSummaryDTO
func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Code:        task.Code,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		Labels:      task.Labels,
		CreatorID:   task.CreatorID,
		ClientID:    task.ClientID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include creator if preloaded
	if task.Creator.ID != 0 {
		creator := ToUserSummaryDTO(task.Creator)
		dto.Creator = &creator
	}

	// Include client if preloaded
	if task.Client.ID != 0 {
		client := ToClientDTO(task.Client)
		dto.Client = &client
	}

	// Include assignees if preloaded
	if len(task.Assignments) > 0 {
		dto.Assignees = make([]UserSummaryDTO, len(task.Assignments))
		for i, assignment := range task.Assignments {
			dto.Assignees[i] = ToUserSummaryDTO(assignment.User)
		}
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}
}
