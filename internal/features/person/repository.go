package person

import (
	"context"
	"errors"
	"time"

	"go-org/internal/database"
	"go-org/internal/errs"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PersonRepository interface {
	Create(ctx context.Context, person *Person) error
	FindByID(ctx context.Context, id string) (*Person, error)
	FindByIDs(ctx context.Context, ids []string) ([]Person, error)
	FindAlive(ctx context.Context) ([]Person, error)
	FindUpdatedBetween(ctx context.Context, from, to time.Time) ([]Person, error)
	UpdateFields(ctx context.Context, id string, fields bson.M) error
	SetDirectGroup(ctx context.Context, id string, groupID *primitive.ObjectID) error
	DetachAll(ctx context.Context, ids []string) error
	Delete(ctx context.Context, id string) (matched, deleted int64, err error)
}

type PersonRepositoryImpl struct {
	collection *mongo.Collection
}

func NewPersonRepository(db *database.MongodbDB) PersonRepository {
	return &PersonRepositoryImpl{
		collection: db.DB.Collection("persons"),
	}
}

func (r *PersonRepositoryImpl) Create(ctx context.Context, person *Person) error {
	person.CreatedAt = time.Now()
	person.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, person)
	if mongo.IsDuplicateKeyError(err) {
		return errs.Conflict("person", person.ID)
	}
	return err
}

func (r *PersonRepositoryImpl) FindByID(ctx context.Context, id string) (*Person, error) {
	var person Person
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&person)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &person, nil
}

func (r *PersonRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]Person, error) {
	if len(ids) == 0 {
		return []Person{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var persons []Person
	if err := cursor.All(ctx, &persons); err != nil {
		return nil, err
	}
	return persons, nil
}

func (r *PersonRepositoryImpl) FindAlive(ctx context.Context) ([]Person, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"alive": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var persons []Person
	if err := cursor.All(ctx, &persons); err != nil {
		return nil, err
	}
	return persons, nil
}

// FindUpdatedBetween returns persons with updatedAt in (from, to]: strict
// lower bound, inclusive upper, ordered by creation.
func (r *PersonRepositoryImpl) FindUpdatedBetween(ctx context.Context, from, to time.Time) ([]Person, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	filter := bson.M{
		"updatedAt": bson.M{"$gt": from, "$lte": to},
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var persons []Person
	if err := cursor.All(ctx, &persons); err != nil {
		return nil, err
	}
	return persons, nil
}

func (r *PersonRepositoryImpl) UpdateFields(ctx context.Context, id string, fields bson.M) error {
	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

func (r *PersonRepositoryImpl) SetDirectGroup(ctx context.Context, id string, groupID *primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"updatedAt": time.Now()}}
	if groupID == nil {
		update["$unset"] = bson.M{"directGroup": ""}
	} else {
		update["$set"].(bson.M)["directGroup"] = *groupID
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// DetachAll clears directGroup for every listed person in one write, used
// when their group is removed.
func (r *PersonRepositoryImpl) DetachAll(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	update := bson.M{
		"$unset": bson.M{"directGroup": ""},
		"$set":   bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, update)
	return err
}

func (r *PersonRepositoryImpl) Delete(ctx context.Context, id string) (int64, int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, 0, err
	}
	return result.DeletedCount, result.DeletedCount, nil
}
