package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/SARVESHVARADKAR123/profile-service/internal/database"
	"github.com/SARVESHVARADKAR123/profile-service/internal/model"
)

// CollectionName is the collection holding profile documents.
const CollectionName = "users"

// DatabaseProvider hands out the current database handle.
type DatabaseProvider interface {
	Database() (*mongo.Database, error)
}

type ProfileRepo struct{ DB DatabaseProvider }

func NewProfileRepo(db DatabaseProvider) *ProfileRepo { return &ProfileRepo{DB: db} }

// EnsureIndexes creates the unique email index. It is safe to call repeatedly.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	return nil
}

func (r *ProfileRepo) collection() (*mongo.Collection, error) {
	db, err := r.DB.Database()
	if err != nil {
		return nil, err
	}
	return db.Collection(CollectionName), nil
}

func (r *ProfileRepo) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	var p model.Profile
	err = coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.ErrProfileNotFound
	}
	if err != nil {
		return nil, wrap("failed to fetch profile", err)
	}
	return &p, nil
}

// Create inserts p and sets its ID.
func (r *ProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}

	res, err := coll.InsertOne(ctx, p)
	if err != nil {
		return wrap("failed to create profile", err)
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		p.ID = id
	}
	return nil
}

// UpsertByEmail updates the profile matching u.Email or inserts a new one,
// returning the document as stored after the write.
func (r *ProfileRepo) UpsertByEmail(ctx context.Context, u model.ProfileUpdate, now time.Time) (*model.Profile, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	var p model.Profile
	err = coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "email", Value: u.Email}},
		upsertDocument(u, now),
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, wrap("failed to upsert profile", err)
	}
	return &p, nil
}

func (r *ProfileRepo) List(ctx context.Context) ([]model.Profile, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, wrap("failed to list profiles", err)
	}

	profiles := []model.Profile{}
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, wrap("failed to decode profiles", err)
	}
	return profiles, nil
}

// upsertDocument builds the update: supplied fields are $set, missing ones
// only receive their defaults when the document is inserted.
func upsertDocument(u model.ProfileUpdate, now time.Time) bson.D {
	set := bson.D{{Key: "updatedAt", Value: now}}
	onInsert := bson.D{{Key: "createdAt", Value: now}}

	if u.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *u.Name})
	} else {
		onInsert = append(onInsert, bson.E{Key: "name", Value: ""})
	}

	if u.Bio != nil {
		set = append(set, bson.E{Key: "bio", Value: *u.Bio})
	} else {
		onInsert = append(onInsert, bson.E{Key: "bio", Value: ""})
	}

	return bson.D{
		{Key: "$set", Value: set},
		{Key: "$setOnInsert", Value: onInsert},
	}
}

func wrap(msg string, err error) error {
	switch {
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w: %w", msg, model.ErrDuplicateEmail, err)
	case database.IsUnavailable(err):
		return fmt.Errorf("%s: %w: %w", msg, model.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}
