package group

import (
	"context"
	"errors"
	"time"

	"go-org/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*Group, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Group, error)
	FindAll(ctx context.Context) ([]Group, error)
	FindParent(ctx context.Context, childID primitive.ObjectID) (*Group, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	UpdateLineage(ctx context.Context, id primitive.ObjectID, ancestors []primitive.ObjectID, hierarchy []string) error
	AttachChild(ctx context.Context, parentID, childID primitive.ObjectID) error
	DetachChild(ctx context.Context, parentID, childID primitive.ObjectID) error
	AddMember(ctx context.Context, groupID primitive.ObjectID, personID string) error
	RemoveMember(ctx context.Context, groupID primitive.ObjectID, personID string) error
	AddAdmin(ctx context.Context, groupID primitive.ObjectID, personID string) error
	RemoveAdmin(ctx context.Context, groupID primitive.ObjectID, personID string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type GroupRepositoryImpl struct {
	collection *mongo.Collection
}

func NewGroupRepository(db *database.MongodbDB) GroupRepository {
	return &GroupRepositoryImpl{
		collection: db.DB.Collection("groups"),
	}
}

func (r *GroupRepositoryImpl) Create(ctx context.Context, group *Group) error {
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()

	if group.Admins == nil {
		group.Admins = []string{}
	}
	if group.Members == nil {
		group.Members = []string{}
	}
	if group.Children == nil {
		group.Children = []primitive.ObjectID{}
	}
	if group.Ancestors == nil {
		group.Ancestors = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, group)
	if err != nil {
		return err
	}

	group.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *GroupRepositoryImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*Group, error) {
	var group Group
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepositoryImpl) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Group, error) {
	if len(ids) == 0 {
		return []Group{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []Group
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GroupRepositoryImpl) FindAll(ctx context.Context) ([]Group, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []Group
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// FindParent resolves the group holding childID in its children list.
// Returns nil when the child is a root; the forest invariant guarantees at
// most one match.
func (r *GroupRepositoryImpl) FindParent(ctx context.Context, childID primitive.ObjectID) (*Group, error) {
	var group Group
	err := r.collection.FindOne(ctx, bson.M{"children": childID}).Decode(&group)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepositoryImpl) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

func (r *GroupRepositoryImpl) UpdateLineage(ctx context.Context, id primitive.ObjectID, ancestors []primitive.ObjectID, hierarchy []string) error {
	return r.UpdateFields(ctx, id, bson.M{
		"ancestors": ancestors,
		"hierarchy": hierarchy,
	})
}

func (r *GroupRepositoryImpl) AttachChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"children": childID},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": parentID}, update)
	return err
}

func (r *GroupRepositoryImpl) DetachChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"children": childID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": parentID}, update)
	return err
}

func (r *GroupRepositoryImpl) AddMember(ctx context.Context, groupID primitive.ObjectID, personID string) error {
	update := bson.M{
		"$addToSet": bson.M{"members": personID},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": groupID}, update)
	return err
}

func (r *GroupRepositoryImpl) RemoveMember(ctx context.Context, groupID primitive.ObjectID, personID string) error {
	// Admins are a subset of members, so leaving the admin entry behind
	// would break the subset invariant.
	update := bson.M{
		"$pull": bson.M{"members": personID, "admins": personID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": groupID}, update)
	return err
}

func (r *GroupRepositoryImpl) AddAdmin(ctx context.Context, groupID primitive.ObjectID, personID string) error {
	update := bson.M{
		"$addToSet": bson.M{"admins": personID},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": groupID}, update)
	return err
}

func (r *GroupRepositoryImpl) RemoveAdmin(ctx context.Context, groupID primitive.ObjectID, personID string) error {
	update := bson.M{
		"$pull": bson.M{"admins": personID},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": groupID}, update)
	return err
}

func (r *GroupRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
