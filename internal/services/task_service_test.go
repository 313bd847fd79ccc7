package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/taskdesk/taskdesk-api/internal/models"
	"github.com/taskdesk/taskdesk-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskServiceTestSuite exercises the task lifecycle against an in-memory
// database with real repositories.
type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *TaskService
}

func (suite *TaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Task{},
		&models.TaskAssignment{},
	)
	suite.Require().NoError(err)

	taskRepo := repository.NewTaskRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	clientRepo := repository.NewClientRepository(suite.db)
	suite.service = NewTaskService(taskRepo, userRepo, clientRepo, nil, nil)
}

func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskServiceTestSuite) createTestUser(email string, role models.UserRole) *models.User {
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskServiceTestSuite) createTestClient(name string, creatorID uint64) *models.Client {
	client := &models.Client{
		Name:      name,
		Active:    true,
		CreatorID: creatorID,
	}
	suite.Require().NoError(suite.db.Create(client).Error)
	return client
}

func (suite *TaskServiceTestSuite) createTask(creator *models.User, client *models.Client, assignees ...uint64) *models.Task {
	task, err := suite.service.CreateTask(CreateTaskInput{
		Title:       "Test Task",
		ClientID:    client.ID,
		AssigneeIDs: assignees,
		CreatorID:   creator.ID,
	})
	suite.Require().NoError(err)
	return task
}

func (suite *TaskServiceTestSuite) TestCreateTask_FirstCodeIsT0001() {
	user := suite.createTestUser("a@example.com", models.RoleUser)
	client := suite.createTestClient("Acme", user.ID)

	task := suite.createTask(user, client, user.ID)

	suite.Equal("T0001", task.Code)
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(models.TaskPriorityMedium, task.Priority)
}

func (suite *TaskServiceTestSuite) TestCreateTask_SequentialCodesAreMonotonic() {
	user := suite.createTestUser("a@example.com", models.RoleUser)
	client := suite.createTestClient("Acme", user.ID)

	first := suite.createTask(user, client, user.ID)
	second := suite.createTask(user, client, user.ID)
	third := suite.createTask(user, client, user.ID)

	suite.Equal("T0001", first.Code)
	suite.Equal("T0002", second.Code)
	suite.Equal("T0003", third.Code)
}

func (suite *TaskServiceTestSuite) TestCreateTask_MissingAssigneeRollsBackEverything() {
	user := suite.createTestUser("a@example.com", models.RoleUser)
	client := suite.createTestClient("Acme", user.ID)

	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:       "Half valid",
		ClientID:    client.ID,
		AssigneeIDs: []uint64{user.ID, 9999},
		CreatorID:   user.ID,
	})

	var missing *repository.MissingAssigneesError
	suite.Require().ErrorAs(err, &missing)
	suite.Equal([]uint64{9999}, missing.MissingIDs)

	// Nothing may survive the rolled-back unit of work.
	var taskCount, assignmentCount int64
	suite.db.Model(&models.Task{}).Count(&taskCount)
	suite.db.Model(&models.TaskAssignment{}).Count(&assignmentCount)
	suite.Zero(taskCount)
	suite.Zero(assignmentCount)
}

func (suite *TaskServiceTestSuite) TestCreateTask_RequiresAssignees() {
	user := suite.createTestUser("a@example.com", models.RoleUser)
	client := suite.createTestClient("Acme", user.ID)

	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:     "No assignees",
		ClientID:  client.ID,
		CreatorID: user.ID,
	})

	suite.ErrorIs(err, ErrNoAssignees)
}

func (suite *TaskServiceTestSuite) TestCreateTask_UnknownClient() {
	user := suite.createTestUser("a@example.com", models.RoleUser)

	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:       "Orphan",
		ClientID:    4242,
		AssigneeIDs: []uint64{user.ID},
		CreatorID:   user.ID,
	})

	suite.ErrorIs(err, ErrClientNotFound)
}

func (suite *TaskServiceTestSuite) TestUpdateTaskStatus_OutsiderIsDenied() {
	creator := suite.createTestUser("a@example.com", models.RoleUser)
	outsider := suite.createTestUser("b@example.com", models.RoleUser)
	client := suite.createTestClient("Acme", creator.ID)
	task := suite.createTask(creator, client, creator.ID)

	_, err := suite.service.UpdateTaskStatus(task.ID, outsider, models.TaskStatusInProgress)
	suite.ErrorIs(err, ErrTaskStatusDenied)

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, task.ID).Error)
	suite.Equal(models.TaskStatusTodo, stored.Status)
}

func (suite *TaskServiceTestSuite) TestUpdateTaskStatus_RejectsUnknownValue() {
	creator := suite.createTestUser("a@example.com", models.RoleUser)
	client := suite.createTestClient("Acme", creator.ID)
	task := suite.createTask(creator, client, creator.ID)

	_, err := suite.service.UpdateTaskStatus(task.ID, creator, models.TaskStatus("archived"))
	suite.ErrorIs(err, ErrInvalidStatus)

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, task.ID).Error)
	suite.Equal(models.TaskStatusTodo, stored.Status)
}

func (suite *TaskServiceTestSuite) TestUpdateTaskStatus_RejectsOverdue() {
	creator := suite.createTestUser("a@example.com", models.RoleUser)
	client := suite.createTestClient("Acme", creator.ID)
	task := suite.createTask(creator, client, creator.ID)

	_, err := suite.service.UpdateTaskStatus(task.ID, creator, models.TaskStatusOverdue)
	suite.ErrorIs(err, ErrInvalidStatus)
}

func (suite *TaskServiceTestSuite) TestUpdateTaskStatus_AssigneeMayChange() {
	creator := suite.createTestUser("a@example.com", models.RoleUser)
	assignee := suite.createTestUser("b@example.com", models.RoleUser)
	client := suite.createTestClient("Acme", creator.ID)
	task := suite.createTask(creator, client, assignee.ID)

	updated, err := suite.service.UpdateTaskStatus(task.ID, assignee, models.TaskStatusCompleted)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, updated.Status)
	suite.Equal(task.Code, updated.Code)
}

func (suite *TaskServiceTestSuite) TestGetTask_ViewPredicate() {
	creator := suite.createTestUser("a@example.com", models.RoleUser)
	assignee := suite.createTestUser("b@example.com", models.RoleUser)
	outsider := suite.createTestUser("c@example.com", models.RoleUser)
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	client := suite.createTestClient("Acme", creator.ID)
	task := suite.createTask(creator, client, assignee.ID)

	_, err := suite.service.GetTask(task.ID, creator)
	suite.NoError(err)
	_, err = suite.service.GetTask(task.ID, assignee)
	suite.NoError(err)
	_, err = suite.service.GetTask(task.ID, admin)
	suite.NoError(err)
	_, err = suite.service.GetTask(task.ID, outsider)
	suite.ErrorIs(err, ErrTaskViewDenied)
}

func (suite *TaskServiceTestSuite) TestUpdateTask_ReplacesAssignees() {
	creator := suite.createTestUser("a@example.com", models.RoleUser)
	next := suite.createTestUser("b@example.com", models.RoleUser)
	client := suite.createTestClient("Acme", creator.ID)
	task := suite.createTask(creator, client, creator.ID)

	ids := []uint64{next.ID}
	updated, err := suite.service.UpdateTask(task.ID, creator, UpdateTaskInput{
		AssigneeIDs: &ids,
	})
	suite.Require().NoError(err)

	suite.Require().Len(updated.Assignments, 1)
	suite.Equal(next.ID, updated.Assignments[0].UserID)
}

func (suite *TaskServiceTestSuite) TestDeleteTask_CreatorOnly() {
	creator := suite.createTestUser("a@example.com", models.RoleUser)
	assignee := suite.createTestUser("b@example.com", models.RoleUser)
	client := suite.createTestClient("Acme", creator.ID)
	task := suite.createTask(creator, client, assignee.ID)

	suite.ErrorIs(suite.service.DeleteTask(task.ID, assignee), ErrTaskEditDenied)
	suite.NoError(suite.service.DeleteTask(task.ID, creator))

	_, err := suite.service.GetTask(task.ID, creator)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestStatusStatistics() {
	creator := suite.createTestUser("a@example.com", models.RoleUser)
	client := suite.createTestClient("Acme", creator.ID)

	inputs := []CreateTaskInput{
		{Title: "one", Priority: models.TaskPriorityHigh, ClientID: client.ID, AssigneeIDs: []uint64{creator.ID}, CreatorID: creator.ID},
		{Title: "two", Priority: models.TaskPriorityLow, ClientID: client.ID, AssigneeIDs: []uint64{creator.ID}, CreatorID: creator.ID},
		{Title: "three", Priority: models.TaskPriorityMedium, ClientID: client.ID, AssigneeIDs: []uint64{creator.ID}, CreatorID: creator.ID},
	}
	var created []*models.Task
	for _, input := range inputs {
		task, err := suite.service.CreateTask(input)
		suite.Require().NoError(err)
		created = append(created, task)
	}

	_, err := suite.service.UpdateTaskStatus(created[2].ID, creator, models.TaskStatusCompleted)
	suite.Require().NoError(err)

	stats, err := suite.service.StatusStatistics()
	suite.Require().NoError(err)
	suite.Require().Len(stats, 2)

	// Groups come back ordered by status name.
	suite.Equal(models.TaskStatusCompleted, stats[0].Status)
	suite.Equal(int64(1), stats[0].Count)
	suite.InDelta(2.0, stats[0].AvgPriority, 0.001)

	suite.Equal(models.TaskStatusTodo, stats[1].Status)
	suite.Equal(int64(2), stats[1].Count)
	suite.InDelta(2.0, stats[1].AvgPriority, 0.001)
}

func (suite *TaskServiceTestSuite) TestMarkOverdueTasks() {
	creator := suite.createTestUser("a@example.com", models.RoleUser)
	client := suite.createTestClient("Acme", creator.ID)

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	stale, err := suite.service.CreateTask(CreateTaskInput{
		Title: "stale", DueDate: &past,
		ClientID: client.ID, AssigneeIDs: []uint64{creator.ID}, CreatorID: creator.ID,
	})
	suite.Require().NoError(err)

	fresh, err := suite.service.CreateTask(CreateTaskInput{
		Title: "fresh", DueDate: &future,
		ClientID: client.ID, AssigneeIDs: []uint64{creator.ID}, CreatorID: creator.ID,
	})
	suite.Require().NoError(err)

	finished, err := suite.service.CreateTask(CreateTaskInput{
		Title: "finished", DueDate: &past,
		ClientID: client.ID, AssigneeIDs: []uint64{creator.ID}, CreatorID: creator.ID,
	})
	suite.Require().NoError(err)
	_, err = suite.service.UpdateTaskStatus(finished.ID, creator, models.TaskStatusCompleted)
	suite.Require().NoError(err)

	changed, err := suite.service.MarkOverdueTasks(time.Now())
	suite.Require().NoError(err)
	suite.Equal(int64(1), changed)

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, stale.ID).Error)
	suite.Equal(models.TaskStatusOverdue, stored.Status)

	stored = models.Task{}
	suite.Require().NoError(suite.db.First(&stored, fresh.ID).Error)
	suite.Equal(models.TaskStatusTodo, stored.Status)

	stored = models.Task{}
	suite.Require().NoError(suite.db.First(&stored, finished.ID).Error)
	suite.Equal(models.TaskStatusCompleted, stored.Status)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
