package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Ekram2004/task-manager-saas-collaborative/logging"
	"github.com/Ekram2004/task-manager-saas-collaborative/models"
)

// TaskService manages tasks scoped to the requester's organization. Every
// query filters by organization id, so a task outside the requester's scope
// is indistinguishable from one that does not exist.
type TaskService struct {
	TasksCollection *mongo.Collection
	UsersCollection *mongo.Collection
	Organizations   *OrganizationService
	Notifier        *NotificationService
}

func NewTaskService(tasksCollection, usersCollection *mongo.Collection, organizations *OrganizationService, notifier *NotificationService) *TaskService {
	return &TaskService{
		TasksCollection: tasksCollection,
		UsersCollection: usersCollection,
		Organizations:   organizations,
		Notifier:        notifier,
	}
}

// CreateTaskInput carries the client-supplied task fields. Zero values fall
// back to the model defaults.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	AssignedTo  string
}

// TaskUpdate carries a partial update. Nil pointers mean "leave unchanged";
// Unassign clears the assignee (the client sent an explicit null).
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	DueDate     *time.Time
	AssignedTo  *string
	Unassign    bool
}

// ListTasks returns the requester's organization tasks, newest first, with
// assignee and creator expanded.
func (s *TaskService) ListTasks(ctx context.Context, requester models.User) ([]models.TaskView, *models.AppError) {
	orgID, appErr := requesterOrganization(requester)
	if appErr != nil {
		return nil, appErr
	}

	findOptions := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.TasksCollection.Find(ctx, bson.M{"organization": orgID}, findOptions)
	if err != nil {
		return nil, models.InternalError("Failed to fetch tasks", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, models.InternalError("Failed to decode tasks", err)
	}

	views, err := s.expandTasks(ctx, tasks)
	if err != nil {
		return nil, models.InternalError("Failed to expand task references", err)
	}
	return views, nil
}

// GetTask returns a single task scoped to the requester's organization.
func (s *TaskService) GetTask(ctx context.Context, requester models.User, taskID string) (*models.TaskView, *models.AppError) {
	orgID, appErr := requesterOrganization(requester)
	if appErr != nil {
		return nil, appErr
	}

	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, models.NewAppError(models.ErrNotFound, "Task not found or you do not have access")
	}

	var task models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": id, "organization": orgID}).Decode(&task); err != nil {
		return nil, models.NewAppError(models.ErrNotFound, "Task not found or you do not have access")
	}

	views, err := s.expandTasks(ctx, []models.Task{task})
	if err != nil {
		return nil, models.InternalError("Failed to expand task references", err)
	}
	return &views[0], nil
}

// CreateTask creates a task in the requester's organization. An assignee must
// be a current member; no task record is written when validation fails.
func (s *TaskService) CreateTask(ctx context.Context, requester models.User, input CreateTaskInput) (*models.Task, *models.AppError) {
	orgID, appErr := requesterOrganization(requester)
	if appErr != nil {
		return nil, appErr
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, models.NewAppError(models.ErrValidation, "Task title is required")
	}
	if len(input.Title) > models.MaxTaskTitleLength {
		return nil, models.NewAppError(models.ErrValidation, fmt.Sprintf("Title can not be more than %d characters", models.MaxTaskTitleLength))
	}
	if len(input.Description) > models.MaxTaskDescriptionLength {
		return nil, models.NewAppError(models.ErrValidation, fmt.Sprintf("Description can not be more than %d characters", models.MaxTaskDescriptionLength))
	}

	if input.Status == "" {
		input.Status = models.StatusToDo
	}
	if !input.Status.IsValid() {
		return nil, models.NewAppError(models.ErrValidation, fmt.Sprintf("Invalid task status: %s", input.Status))
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if !input.Priority.IsValid() {
		return nil, models.NewAppError(models.ErrValidation, fmt.Sprintf("Invalid task priority: %s", input.Priority))
	}

	var assignedTo *primitive.ObjectID
	if input.AssignedTo != "" {
		assigneeID, appErr := s.checkAssignee(ctx, orgID, input.AssignedTo)
		if appErr != nil {
			return nil, appErr
		}
		assignedTo = assigneeID
	}

	now := time.Now()
	task := &models.Task{
		ID:           primitive.NewObjectID(),
		Title:        input.Title,
		Description:  input.Description,
		Status:       input.Status,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
		Organization: orgID,
		AssignedTo:   assignedTo,
		CreatedBy:    requester.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.TasksCollection.InsertOne(ctx, task); err != nil {
		return nil, models.InternalError("Failed to create task", err)
	}

	if task.AssignedTo != nil {
		s.Notifier.Publish(NotificationEvent{
			Type:           EventTaskAssigned,
			OrganizationID: orgID.Hex(),
			UserID:         task.AssignedTo.Hex(),
			Message:        fmt.Sprintf("Task '%s' was assigned", task.Title),
		})
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task '%s' created in organization %s", task.Title, orgID.Hex())
	return task, nil
}

// UpdateTask applies a partial update to a task in the requester's
// organization. Assignee membership is re-checked only when the assignee
// changes, and updatedAt is bumped on every successful mutation.
func (s *TaskService) UpdateTask(ctx context.Context, requester models.User, taskID string, update TaskUpdate) (*models.Task, *models.AppError) {
	orgID, appErr := requesterOrganization(requester)
	if appErr != nil {
		return nil, appErr
	}

	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, models.NewAppError(models.ErrNotFound, "Task not found or you do not have access")
	}

	var task models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": id, "organization": orgID}).Decode(&task); err != nil {
		return nil, models.NewAppError(models.ErrNotFound, "Task not found or you do not have access")
	}

	set := bson.M{"updatedAt": time.Now()}
	unset := bson.M{}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, models.NewAppError(models.ErrValidation, "Task title is required")
		}
		if len(title) > models.MaxTaskTitleLength {
			return nil, models.NewAppError(models.ErrValidation, fmt.Sprintf("Title can not be more than %d characters", models.MaxTaskTitleLength))
		}
		set["title"] = title
	}
	if update.Description != nil {
		if len(*update.Description) > models.MaxTaskDescriptionLength {
			return nil, models.NewAppError(models.ErrValidation, fmt.Sprintf("Description can not be more than %d characters", models.MaxTaskDescriptionLength))
		}
		set["description"] = *update.Description
	}
	if update.Status != nil {
		if !update.Status.IsValid() {
			return nil, models.NewAppError(models.ErrValidation, fmt.Sprintf("Invalid task status: %s", *update.Status))
		}
		set["status"] = *update.Status
	}
	if update.Priority != nil {
		if !update.Priority.IsValid() {
			return nil, models.NewAppError(models.ErrValidation, fmt.Sprintf("Invalid task priority: %s", *update.Priority))
		}
		set["priority"] = *update.Priority
	}
	if update.DueDate != nil {
		set["dueDate"] = *update.DueDate
	}

	var newAssignee *primitive.ObjectID
	if update.Unassign {
		unset["assignedTo"] = ""
	} else if update.AssignedTo != nil {
		assigneeID, appErr := s.checkAssignee(ctx, orgID, *update.AssignedTo)
		if appErr != nil {
			return nil, appErr
		}
		if task.AssignedTo == nil || *task.AssignedTo != *assigneeID {
			newAssignee = assigneeID
		}
		set["assignedTo"] = *assigneeID
	}

	updateDoc := bson.M{"$set": set}
	if len(unset) > 0 {
		updateDoc["$unset"] = unset
	}

	result := s.TasksCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "organization": orgID},
		updateDoc,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Task
	if err := result.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NewAppError(models.ErrNotFound, "Task not found or you do not have access")
		}
		return nil, models.InternalError("Failed to update task", err)
	}

	if newAssignee != nil {
		s.Notifier.Publish(NotificationEvent{
			Type:           EventTaskAssigned,
			OrganizationID: orgID.Hex(),
			UserID:         newAssignee.Hex(),
			Message:        fmt.Sprintf("Task '%s' was assigned", updated.Title),
		})
	}

	return &updated, nil
}

// DeleteTask removes a task from the requester's organization.
func (s *TaskService) DeleteTask(ctx context.Context, requester models.User, taskID string) *models.AppError {
	orgID, appErr := requesterOrganization(requester)
	if appErr != nil {
		return appErr
	}

	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return models.NewAppError(models.ErrNotFound, "Task not found or you do not have access")
	}

	result := s.TasksCollection.FindOneAndDelete(ctx, bson.M{"_id": id, "organization": orgID})
	if err := result.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.NewAppError(models.ErrNotFound, "Task not found or you do not have access")
		}
		return models.InternalError("Failed to delete task", err)
	}

	return nil
}

// checkAssignee validates the assignee id and its membership in the
// organization. Assignment to a non-member is a validation error.
func (s *TaskService) checkAssignee(ctx context.Context, orgID primitive.ObjectID, assignee string) (*primitive.ObjectID, *models.AppError) {
	assigneeID, err := primitive.ObjectIDFromHex(assignee)
	if err != nil {
		return nil, models.NewAppError(models.ErrValidation, "Invalid assignee ID")
	}

	isMember, err := s.Organizations.IsMember(ctx, orgID, assigneeID)
	if err != nil {
		return nil, models.InternalError("Failed to check organization membership", err)
	}
	if !isMember {
		return nil, models.NewAppError(models.ErrValidation, "Assigned user is not a member of this organization")
	}
	return &assigneeID, nil
}

func requesterOrganization(requester models.User) (primitive.ObjectID, *models.AppError) {
	if requester.Organization == nil {
		return primitive.NilObjectID, models.NewAppError(models.ErrValidation, "User is not associated with an organization")
	}
	return *requester.Organization, nil
}

// expandTasks resolves assignee and creator references across a batch of
// tasks with a single users query.
func (s *TaskService) expandTasks(ctx context.Context, tasks []models.Task) ([]models.TaskView, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, task := range tasks {
		idSet[task.CreatedBy] = struct{}{}
		if task.AssignedTo != nil {
			idSet[*task.AssignedTo] = struct{}{}
		}
	}

	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	byID := make(map[primitive.ObjectID]models.UserRef, len(ids))
	if len(ids) > 0 {
		cursor, err := s.UsersCollection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, err
		}
		defer cursor.Close(ctx)

		var refs []models.UserRef
		if err := cursor.All(ctx, &refs); err != nil {
			return nil, err
		}
		for _, ref := range refs {
			byID[ref.ID] = ref
		}
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, task := range tasks {
		view := models.TaskView{
			ID:           task.ID,
			Title:        task.Title,
			Description:  task.Description,
			Status:       task.Status,
			Priority:     task.Priority,
			DueDate:      task.DueDate,
			Organization: task.Organization,
			CreatedBy:    byID[task.CreatedBy],
			CreatedAt:    task.CreatedAt,
			UpdatedAt:    task.UpdatedAt,
		}
		if task.AssignedTo != nil {
			if ref, ok := byID[*task.AssignedTo]; ok {
				view.AssignedTo = &ref
			}
		}
		views = append(views, view)
	}
	return views, nil
}
