package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ekram2004/task-manager-saas-collaborative/models"
)

func setupOrgWithMember(t *testing.T) (*testEnv, models.User, models.User) {
	t.Helper()
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.register(t, "Alice", "alice@example.com")
	member := env.register(t, "Bob", "bob@example.com")

	org, appErr := env.organizations.CreateOrganization(ctx, owner, "Acme")
	require.Nil(t, appErr)

	owner = env.reload(t, owner)
	_, appErr = env.organizations.AddMember(ctx, owner, org.ID.Hex(), "bob@example.com")
	require.Nil(t, appErr)
	member = env.reload(t, member)

	return env, owner, member
}

func TestTaskLifecycle(t *testing.T) {
	env, owner, member := setupOrgWithMember(t)
	ctx := context.Background()

	due := time.Now().Add(48 * time.Hour).Truncate(time.Millisecond)
	task, appErr := env.tasks.CreateTask(ctx, owner, CreateTaskInput{
		Title:       "Write the launch post",
		Description: "Draft and review",
		Priority:    models.PriorityHigh,
		DueDate:     &due,
		AssignedTo:  member.ID.Hex(),
	})
	require.Nil(t, appErr)
	assert.Equal(t, models.StatusToDo, task.Status)
	assert.False(t, task.CreatedAt.IsZero())
	assert.Equal(t, owner.ID, task.CreatedBy)

	// Members see the task too, expanded and newest first.
	time.Sleep(10 * time.Millisecond)
	_, appErr = env.tasks.CreateTask(ctx, owner, CreateTaskInput{Title: "Second task"})
	require.Nil(t, appErr)

	views, appErr := env.tasks.ListTasks(ctx, member)
	require.Nil(t, appErr)
	require.Len(t, views, 2)
	assert.Equal(t, "Second task", views[0].Title)
	require.NotNil(t, views[1].AssignedTo)
	assert.Equal(t, "bob@example.com", views[1].AssignedTo.Email)
	assert.Equal(t, "alice@example.com", views[1].CreatedBy.Email)

	// Partial update: status change only, updatedAt bumped. Stored times
	// are millisecond precision, so leave a visible gap.
	time.Sleep(10 * time.Millisecond)
	inProgress := models.StatusInProgress
	updated, appErr := env.tasks.UpdateTask(ctx, member, task.ID.Hex(), TaskUpdate{Status: &inProgress})
	require.Nil(t, appErr)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Equal(t, "Write the launch post", updated.Title)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt))

	// Explicit unassign clears the assignee.
	updated, appErr = env.tasks.UpdateTask(ctx, member, task.ID.Hex(), TaskUpdate{Unassign: true})
	require.Nil(t, appErr)
	assert.Nil(t, updated.AssignedTo)

	// Reassigning to a non-member is rejected.
	outsider := env.register(t, "Carol", "carol@example.com")
	outsiderID := outsider.ID.Hex()
	_, appErr = env.tasks.UpdateTask(ctx, member, task.ID.Hex(), TaskUpdate{AssignedTo: &outsiderID})
	require.NotNil(t, appErr)
	assert.Equal(t, models.ErrValidation, appErr.Kind)

	// Delete, then the task is gone.
	appErr = env.tasks.DeleteTask(ctx, member, task.ID.Hex())
	require.Nil(t, appErr)

	_, appErr = env.tasks.GetTask(ctx, member, task.ID.Hex())
	require.NotNil(t, appErr)
	assert.Equal(t, models.ErrNotFound, appErr.Kind)
}

func TestTasksAreScopedToOrganization(t *testing.T) {
	env, owner, _ := setupOrgWithMember(t)
	ctx := context.Background()

	task, appErr := env.tasks.CreateTask(ctx, owner, CreateTaskInput{Title: "Internal task"})
	require.Nil(t, appErr)

	// A user from a different organization sees neither the task nor any
	// hint that it exists.
	other := env.register(t, "Eve", "eve@example.com")
	_, appErr = env.organizations.CreateOrganization(ctx, other, "Globex")
	require.Nil(t, appErr)
	other = env.reload(t, other)

	_, appErr = env.tasks.GetTask(ctx, other, task.ID.Hex())
	require.NotNil(t, appErr)
	assert.Equal(t, models.ErrNotFound, appErr.Kind)

	appErr = env.tasks.DeleteTask(ctx, other, task.ID.Hex())
	require.NotNil(t, appErr)
	assert.Equal(t, models.ErrNotFound, appErr.Kind)

	views, appErr := env.tasks.ListTasks(ctx, other)
	require.Nil(t, appErr)
	assert.Empty(t, views)

	// The task is still there for its own organization.
	_, appErr = env.tasks.GetTask(ctx, owner, task.ID.Hex())
	assert.Nil(t, appErr)
}

func TestCreateTaskValidation(t *testing.T) {
	env, owner, _ := setupOrgWithMember(t)
	ctx := context.Background()

	_, appErr := env.tasks.CreateTask(ctx, owner, CreateTaskInput{Title: "   "})
	require.NotNil(t, appErr)
	assert.Equal(t, models.ErrValidation, appErr.Kind)

	_, appErr = env.tasks.CreateTask(ctx, owner, CreateTaskInput{Title: "ok", Status: "Pending"})
	require.NotNil(t, appErr)
	assert.Equal(t, models.ErrValidation, appErr.Kind)

	_, appErr = env.tasks.CreateTask(ctx, owner, CreateTaskInput{Title: "ok", Priority: "Urgent"})
	require.NotNil(t, appErr)
	assert.Equal(t, models.ErrValidation, appErr.Kind)

	_, appErr = env.tasks.CreateTask(ctx, owner, CreateTaskInput{Title: "ok", AssignedTo: "not-an-id"})
	require.NotNil(t, appErr)
	assert.Equal(t, models.ErrValidation, appErr.Kind)
}

func TestUserLifecycleAuth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, token, appErr := env.users.Register(ctx, "Alice", "alice@example.com", "password123")
	require.Nil(t, appErr)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Nil(t, user.Organization)
	assert.NotEmpty(t, token)

	// Duplicate registration is rejected.
	_, _, appErr = env.users.Register(ctx, "Imposter", "alice@example.com", "password456")
	require.NotNil(t, appErr)
	assert.Equal(t, models.ErrValidation, appErr.Kind)

	_, _, appErr = env.users.Login(ctx, "alice@example.com", "wrong-password")
	require.NotNil(t, appErr)
	assert.Equal(t, models.ErrValidation, appErr.Kind)

	logged, token, appErr := env.users.Login(ctx, "alice@example.com", "password123")
	require.Nil(t, appErr)
	assert.Equal(t, user.ID, logged.ID)

	claims, err := env.users.JWTService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
}
