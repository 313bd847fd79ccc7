package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskdesk/taskdesk-api/internal/dto"
	apierrors "github.com/taskdesk/taskdesk-api/internal/errors"
	"github.com/taskdesk/taskdesk-api/internal/middleware"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
	"github.com/taskdesk/taskdesk-api/internal/services"
	"github.com/taskdesk/taskdesk-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the page of tasks the current user created or is
// assigned to, with optional status/priority filters, sort and field
// selection.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		UserID:        user.ID,
		OrderBy:       utils.ParseSortSpec(c.Query("sort")),
		SelectColumns: utils.ParseFieldSelection(c.Query("fields")),
		Page:          params.Page,
		PageSize:      params.Limit,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		input.Status = &status
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		priority := models.TaskPriority(priorityStr)
		input.Priority = &priority
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a single task when the current user may view it.
func (h *TaskHandler) GetTask(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID, user)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task. A scalar assigned_to value is accepted and
// normalized into a one-element list by the request type.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Priority    string     `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
		ClientID    uint64     `json:"client_id" binding:"required"`
		AssignedTo  dto.IDList `json:"assigned_to" binding:"required"`
		Labels      []string   `json:"labels"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		ClientID:    req.ClientID,
		AssigneeIDs: req.AssignedTo,
		Labels:      req.Labels,
		CreatorID:   user.ID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial edit to a task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title        *string     `json:"title"`
		Description  *string     `json:"description"`
		Status       *string     `json:"status"`
		Priority     *string     `json:"priority"`
		DueDate      *time.Time  `json:"due_date"`
		ClearDueDate bool        `json:"clear_due_date"`
		AssignedTo   *dto.IDList `json:"assigned_to"`
		Labels       *[]string   `json:"labels"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		Labels:       req.Labels,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		input.Priority = &priority
	}
	if req.AssignedTo != nil {
		ids := []uint64(*req.AssignedTo)
		input.AssigneeIDs = &ids
	}

	task, err := h.taskService.UpdateTask(taskID, user, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTaskStatus changes only the status of a task.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "status is required")
		return
	}

	task, err := h.taskService.UpdateTaskStatus(taskID, user, models.TaskStatus(req.Status))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, exists := middleware.GetCurrentUser(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID, user); err != nil {
		respondTaskError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// TaskStatistics returns tasks grouped by status with count and average
// priority score. The route is admin-only.
func (h *TaskHandler) TaskStatistics(c *gin.Context) {
	stats, err := h.taskService.StatusStatistics()
	if err != nil {
		apierrors.InternalError(c, "Failed to aggregate tasks")
		return
	}

	result := make([]dto.StatusStatDTO, len(stats))
	for i, stat := range stats {
		result[i] = dto.StatusStatDTO{
			Status:      stat.Status,
			Count:       stat.Count,
			AvgPriority: stat.AvgPriority,
		}
	}

	c.JSON(http.StatusOK, gin.H{"stats": result})
}

// GenerateTasks extracts task drafts from free text via the AI service.
// Drafts are returned to the caller, never persisted.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	type GenerateRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "text is required")
		return
	}

	drafts, err := h.taskService.GenerateTaskDrafts(c.Request.Context(), req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": drafts})
}

func parseTaskID(c *gin.Context) (uint64, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return taskID, true
}

func respondTaskError(c *gin.Context, err error) {
	var missing *repository.MissingAssigneesError

	switch {
	case errors.As(err, &missing):
		apierrors.BadRequestWithDetails(c, missing.Error(), gin.H{"missing_ids": missing.MissingIDs})
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTaskViewDenied),
		errors.Is(err, services.ErrTaskEditDenied),
		errors.Is(err, services.ErrTaskStatusDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrNoAssignees),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrClientNotFound):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceUnavailable):
		apierrors.RespondWithError(c, http.StatusServiceUnavailable,
			apierrors.NewAPIError(apierrors.ErrCodeInternalError, err.Error()))
	case errors.Is(err, services.ErrAINoTasksGenerated):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
