package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	// TaskStatusOverdue is assigned only by the overdue sweep, never through
	// the status-update API.
	TaskStatusOverdue TaskStatus = "overdue"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Code        string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	Priority    TaskPriority   `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	DueDate     *time.Time     `json:"due_date"`
	CreatorID   uint64         `gorm:"not null" json:"creator_id"`
	ClientID    uint64         `gorm:"not null" json:"client_id"`
	Labels      []string       `gorm:"serializer:json;type:text" json:"labels"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator     User             `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Client      Client           `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
}

// ValidWriteStatus reports whether a status may be submitted through the API.
func ValidWriteStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether a priority value is one of the known levels.
func ValidPriority(p TaskPriority) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// PriorityScore maps a priority to its numeric weight used by the
// status-group statistics.
func PriorityScore(p TaskPriority) int {
	switch p {
	case TaskPriorityHigh:
		return 3
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 1
	}
	return 0
}

// IsAssignee reports whether the given user appears in the task's loaded
// assignment rows.
func (t *Task) IsAssignee(userID uint64) bool {
	for _, assignment := range t.Assignments {
		if assignment.UserID == userID {
			return true
		}
	}
	return false
}
