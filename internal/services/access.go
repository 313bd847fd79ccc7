package services

import "github.com/taskdesk/taskdesk-api/internal/models"

// Capability predicates shared by every handler and service path. Task
// authorization lives here and nowhere else, so read and write endpoints
// cannot drift apart.

// CanViewTask reports whether a user may read a task: admins, the creator,
// and any assignee.
func CanViewTask(task *models.Task, user *models.User) bool {
	if user.IsAdmin() {
		return true
	}
	return task.CreatorID == user.ID || task.IsAssignee(user.ID)
}

// CanChangeTaskStatus reports whether a user may change a task's status:
// the creator and any assignee.
func CanChangeTaskStatus(task *models.Task, user *models.User) bool {
	return task.CreatorID == user.ID || task.IsAssignee(user.ID)
}

// CanEditTask reports whether a user may perform a full edit or delete:
// the creator only, plus admins.
func CanEditTask(task *models.Task, user *models.User) bool {
	if user.IsAdmin() {
		return true
	}
	return task.CreatorID == user.ID
}
