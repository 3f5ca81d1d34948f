package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"tasktracker/internal/domain"
	"tasktracker/internal/repository"
)

// mongoURIEnv names a reachable server; the tests below are skipped without it.
const mongoURIEnv = "TASKTRACKER_TEST_MONGO_URI"

func openTestDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv(mongoURIEnv)
	if uri == "" {
		t.Skipf("%s not set", mongoURIEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	name := fmt.Sprintf("tasktracker_test_%s", bson.NewObjectID().Hex())
	client, db, err := Open(ctx, uri, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func newTestRepositories(t *testing.T) (repository.UserRepository, repository.TaskRepository) {
	t.Helper()
	db := openTestDatabase(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)
	require.NoError(t, users.Init(context.Background()))
	require.NoError(t, tasks.Init(context.Background()))
	return users, tasks
}

func createUser(t *testing.T, users repository.UserRepository, email string) domain.User {
	t.Helper()
	u := domain.User{Name: "A", Email: email, Role: domain.RoleStudent}
	_, err := users.Create(context.Background(), &u)
	require.NoError(t, err)
	return u
}

func TestMongoUsers_DuplicateEmailIsConflict(t *testing.T) {
	users, _ := newTestRepositories(t)
	ctx := context.Background()

	first := createUser(t, users, "a@x.com")
	assert.NotEmpty(t, first.ID)

	dup := domain.User{Name: "B", Email: "a@x.com", Role: domain.RoleStudent}
	_, err := users.Create(ctx, &dup)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "User already exists", err.Error())

	list, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
}

func TestMongoUsers_Lookups(t *testing.T) {
	users, _ := newTestRepositories(t)
	ctx := context.Background()
	u := createUser(t, users, "a@x.com")

	got, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	got, err = users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = users.GetByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = users.GetByID(ctx, "not-an-object-id")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "User not found", err.Error())

	_, err = users.GetByID(ctx, bson.NewObjectID().Hex())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMongoTasks_NewestFirst(t *testing.T) {
	users, tasks := newTestRepositories(t)
	ctx := context.Background()
	owner := createUser(t, users, "a@x.com")
	other := createUser(t, users, "b@x.com")

	for _, title := range []string{"first", "second", "third"} {
		task := domain.Task{Title: title, Status: domain.TaskStatusPending, Priority: domain.PriorityMedium, UserID: owner.ID}
		_, err := tasks.Create(ctx, &task)
		require.NoError(t, err)
	}
	foreign := domain.Task{Title: "foreign", Status: domain.TaskStatusPending, Priority: domain.PriorityLow, UserID: other.ID}
	_, err := tasks.Create(ctx, &foreign)
	require.NoError(t, err)

	list, err := tasks.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "second", list[1].Title)
	assert.Equal(t, "first", list[2].Title)

	list, err = tasks.ListByUser(ctx, "not-an-object-id")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMongoTasks_BadIdentifiers(t *testing.T) {
	_, tasks := newTestRepositories(t)
	ctx := context.Background()

	task := domain.Task{Title: "t", Status: domain.TaskStatusPending, Priority: domain.PriorityMedium, UserID: "nope"}
	_, err := tasks.Create(ctx, &task)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "User not found", err.Error())

	title := "x"
	for _, id := range []string{"nope", bson.NewObjectID().Hex()} {
		_, err = tasks.Get(ctx, id)
		require.ErrorIs(t, err, domain.ErrNotFound, id)

		_, err = tasks.Update(ctx, id, domain.TaskPatch{Title: &title})
		require.ErrorIs(t, err, domain.ErrNotFound, id)
		assert.Equal(t, "Task not found", err.Error())

		err = tasks.Delete(ctx, id)
		require.ErrorIs(t, err, domain.ErrNotFound, id)
	}
}

func TestMongoTasks_UpdateAndDelete(t *testing.T) {
	users, tasks := newTestRepositories(t)
	ctx := context.Background()
	owner := createUser(t, users, "a@x.com")

	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	task := domain.Task{Title: "t", Description: "keep", Status: domain.TaskStatusPending, Priority: domain.PriorityMedium, DueDate: &due, UserID: owner.ID}
	_, err := tasks.Create(ctx, &task)
	require.NoError(t, err)

	status := domain.TaskStatusCompleted
	updated, err := tasks.Update(ctx, task.ID, domain.TaskPatch{Status: &status, DueDate: domain.OptionalTime{Set: true}})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, updated.Status)
	assert.Equal(t, "keep", updated.Description)
	assert.Nil(t, updated.DueDate)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	same, err := tasks.Update(ctx, task.ID, domain.TaskPatch{})
	require.NoError(t, err)
	assert.Equal(t, updated.UpdatedAt, same.UpdatedAt)

	require.NoError(t, tasks.Delete(ctx, task.ID))
	err = tasks.Delete(ctx, task.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = tasks.Get(ctx, task.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
