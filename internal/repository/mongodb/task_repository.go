package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"tasktracker/internal/domain"
	"tasktracker/internal/repository"
)

type taskDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Title       string        `bson:"title"`
	Description string        `bson:"description"`
	Status      string        `bson:"status"`
	Priority    string        `bson:"priority"`
	DueDate     *time.Time    `bson:"dueDate"`
	User        bson.ObjectID `bson:"user"`
	CreatedAt   time.Time     `bson:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt"`
}

func (d taskDocument) toDomain() domain.Task {
	task := domain.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TaskStatus(d.Status),
		Priority:    domain.Priority(d.Priority),
		UserID:      d.User.Hex(),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		t := d.DueDate.UTC()
		task.DueDate = &t
	}
	return task
}

type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) repository.TaskRepository {
	return &TaskRepository{coll: db.Collection(tasksCollection)}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create tasks user index: %w", err)
	}
	return nil
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (string, error) {
	owner, err := bson.ObjectIDFromHex(task.UserID)
	if err != nil {
		return "", domain.Validation("User not found")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := taskDocument{
		ID:          bson.NewObjectID(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		User:        owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}

	*task = doc.toDomain()
	return task.ID, nil
}

func (r *TaskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NotFound("Task not found")
	}

	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("Task not found")
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	task := doc.toDomain()
	return &task, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	owner, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return []domain.Task{}, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "user", Value: owner}}, opts)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toDomain())
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.IsEmpty() {
		return r.Get(ctx, id)
	}

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.NotFound("Task not found")
	}

	var doc taskDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		buildTaskUpdate(patch, time.Now().UTC()),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFound("Task not found")
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	task := doc.toDomain()
	return &task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.NotFound("Task not found")
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("Task not found")
	}
	return nil
}

// buildTaskUpdate turns the present patch fields into a single $set document.
// An explicitly cleared due date is stored as null.
func buildTaskUpdate(patch domain.TaskPatch, now time.Time) bson.D {
	set := bson.D{}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *patch.Title})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*patch.Status)})
	}
	if patch.Priority != nil {
		set = append(set, bson.E{Key: "priority", Value: string(*patch.Priority)})
	}
	if patch.DueDate.Set {
		if patch.DueDate.Value == nil {
			set = append(set, bson.E{Key: "dueDate", Value: nil})
		} else {
			set = append(set, bson.E{Key: "dueDate", Value: patch.DueDate.Value.UTC()})
		}
	}
	set = append(set, bson.E{Key: "updatedAt", Value: now})
	return bson.D{{Key: "$set", Value: set}}
}
