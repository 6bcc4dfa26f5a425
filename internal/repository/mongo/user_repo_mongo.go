package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/ports"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	ImageURL     *string   `bson:"image_url,omitempty"`
	PasswordHash []byte    `bson:"password_hash,omitempty"`
	PasswordSalt []byte    `bson:"password_salt,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (d userDocument) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		ImageURL:     d.ImageURL,
		PasswordHash: d.PasswordHash,
		PasswordSalt: d.PasswordSalt,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}, nil
}

type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepo(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection), now: time.Now}
}

func (r *UserRepository) CreateEmailUser(ctx context.Context, name, email string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	now := r.now().UTC().Truncate(time.Millisecond)
	doc := userDocument{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		PasswordSalt: passwordSalt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, translate(err)
	}
	return doc.toDomain()
}

func (r *UserRepository) UpsertGoogleUser(ctx context.Context, name, email string, imageURL *string) (*domain.User, error) {
	now := r.now().UTC().Truncate(time.Millisecond)
	set := bson.M{"updated_at": now}
	if name != "" {
		set["name"] = name
	}
	if imageURL != nil {
		set["image_url"] = *imageURL
	}
	setOnInsert := bson.M{"_id": uuid.NewString(), "created_at": now}
	if name == "" {
		setOnInsert["name"] = ""
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	update := bson.M{"$set": set, "$setOnInsert": setOnInsert}

	var doc userDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"email": email}, update, opts).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toDomain()
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toDomain()
}

var _ ports.UserRepository = (*UserRepository)(nil)
