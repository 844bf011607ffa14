package store

import (
	"context"
	"errors"
	"time"

	"github.com/schedulr/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	tasksCollection = "tasks"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d userDocument) toUser() types.User {
	return types.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
	}
}

type taskDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text"`
	Completed bool               `bson:"completed"`
	DueDate   *time.Time         `bson:"dueDate"`
	Priority  string             `bson:"priority"`
	CreatedAt time.Time          `bson:"createdAt"`
	User      primitive.ObjectID `bson:"user"`
}

func (d taskDocument) toTask() types.Task {
	task := types.Task{
		ID:        d.ID.Hex(),
		Text:      d.Text,
		Completed: d.Completed,
		Priority:  types.Priority(d.Priority),
		CreatedAt: d.CreatedAt,
		UserID:    d.User.Hex(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		task.DueDate = &due
	}
	return task
}

// MongoUserRepository handles persistence for users in MongoDB. Username
// uniqueness relies on the username_unique index created by migrations.
type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return types.User{}, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Username:  user.Username,
		Password:  user.PasswordHash,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrDuplicate
		}
		return types.User{}, err
	}
	return doc.toUser(), nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (types.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return doc.toUser(), nil
}

// MongoTaskRepository handles persistence for tasks in MongoDB. Every
// filter includes the owner.
type MongoTaskRepository struct {
	coll *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{coll: db.Collection(tasksCollection)}
}

func (r *MongoTaskRepository) List(ctx context.Context, ownerID string) ([]types.Task, error) {
	tasks := make([]types.Task, 0)
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return tasks, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		tasks = append(tasks, doc.toTask())
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *MongoTaskRepository) FindOwned(ctx context.Context, id, ownerID string) (types.Task, error) {
	filter, ok := ownedFilter(id, ownerID)
	if !ok {
		return types.Task{}, ErrNotFound
	}

	var doc taskDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	return doc.toTask(), nil
}

func (r *MongoTaskRepository) Create(ctx context.Context, task types.Task) (types.Task, error) {
	owner, err := primitive.ObjectIDFromHex(task.UserID)
	if err != nil {
		return types.Task{}, err
	}

	doc := taskDocument{
		ID:        primitive.NewObjectID(),
		Text:      task.Text,
		Completed: task.Completed,
		DueDate:   task.DueDate,
		Priority:  string(task.Priority),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		User:      owner,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return types.Task{}, err
	}
	return doc.toTask(), nil
}

func (r *MongoTaskRepository) Update(ctx context.Context, task types.Task) (types.Task, error) {
	filter, ok := ownedFilter(task.ID, task.UserID)
	if !ok {
		return types.Task{}, ErrNotFound
	}

	update := bson.M{"$set": bson.M{
		"text":      task.Text,
		"completed": task.Completed,
		"dueDate":   task.DueDate,
		"priority":  string(task.Priority),
	}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return types.Task{}, err
	}
	if result.MatchedCount == 0 {
		return types.Task{}, ErrNotFound
	}
	return task, nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id, ownerID string) error {
	filter, ok := ownedFilter(id, ownerID)
	if !ok {
		return ErrNotFound
	}

	result, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func ownedFilter(id, ownerID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, false
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "user": owner}, true
}
