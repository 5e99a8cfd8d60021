// Package repo wraps the MongoDB users collection behind a small interface so
// the service layer can be exercised against an in-memory fake.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidtube/vidtube-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("username or email already taken")
	// ErrStaleSession is returned when a conditional session rotation matched
	// no document: the stored session changed (or was revoked) since the
	// incoming token was issued.
	ErrStaleSession = errors.New("session is stale")
)

// ProfilePatch is a sparse profile update. String fields are applied only when
// non-empty; asset fields only when the replacement upload already succeeded.
type ProfilePatch struct {
	FullName   string
	Email      string
	Avatar     *models.AssetRef
	Cover      *models.AssetRef
	ClearCover bool
}

func (p ProfilePatch) IsEmpty() bool {
	return p.FullName == "" && p.Email == "" && p.Avatar == nil && p.Cover == nil && !p.ClearCover
}

type UserRepo interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	Exists(ctx context.Context, username, email string) (bool, error)

	// SetSession overwrites any existing session unconditionally (login).
	SetSession(ctx context.Context, id primitive.ObjectID, sess models.Session) error
	// RotateSession replaces the session only if the stored refresh-token hash
	// still equals oldHash; otherwise it returns ErrStaleSession. This is the
	// compare-and-swap that makes refresh rotation single-use under
	// concurrency.
	RotateSession(ctx context.Context, id primitive.ObjectID, oldHash string, sess models.Session) error
	ClearSession(ctx context.Context, id primitive.ObjectID) error

	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	// ApplyProfilePatch applies the patch as one atomic update and returns the
	// post-image.
	ApplyProfilePatch(ctx context.Context, id primitive.ObjectID, patch ProfilePatch) (*models.User, error)
}

type mongoUserRepo struct {
	col *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) UserRepo {
	return &mongoUserRepo{col: db.Collection("users")}
}

func (r *mongoUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, errors.New("unexpected inserted id type")
	}

	// Read-after-write so the caller gets exactly what was persisted.
	return r.FindByID(ctx, id)
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepo) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	// Usernames are stored lowercased; emails are matched as given.
	filter := bson.M{"$or": bson.A{
		bson.M{"username": strings.ToLower(identifier)},
		bson.M{"email": identifier},
	}}

	var user models.User
	err := r.col.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *mongoUserRepo) Exists(ctx context.Context, username, email string) (bool, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *mongoUserRepo) SetSession(ctx context.Context, id primitive.ObjectID, sess models.Session) error {
	update := bson.M{"$set": bson.M{
		"session":    sess,
		"updated_at": time.Now().UTC(),
	}}

	res, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepo) RotateSession(ctx context.Context, id primitive.ObjectID, oldHash string, sess models.Session) error {
	filter := bson.M{
		"_id":                        id,
		"session.refresh_token_hash": oldHash,
	}
	update := bson.M{"$set": bson.M{
		"session":    sess,
		"updated_at": time.Now().UTC(),
	}}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStaleSession
	}
	return nil
}

func (r *mongoUserRepo) ClearSession(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$unset": bson.M{"session": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	update := bson.M{"$set": bson.M{
		"password":   passwordHash,
		"updated_at": time.Now().UTC(),
	}}

	res, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepo) ApplyProfilePatch(ctx context.Context, id primitive.ObjectID, patch ProfilePatch) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}

	if patch.FullName != "" {
		set["full_name"] = patch.FullName
	}
	if patch.Email != "" {
		set["email"] = patch.Email
	}
	if patch.Avatar != nil {
		set["avatar"] = patch.Avatar.URL
		set["avatar_id"] = patch.Avatar.PublicID
	}
	// ClearCover wins over a simultaneous replacement; callers are not
	// expected to set both.
	if patch.ClearCover {
		unset["cover_image"] = ""
		unset["cover_image_id"] = ""
	} else if patch.Cover != nil {
		set["cover_image"] = patch.Cover.URL
		set["cover_image_id"] = patch.Cover.PublicID
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &user, nil
}
