package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/ports"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/util"
)

type sessionDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	TokenHash string    `bson:"token_hash"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
	IsActive  bool      `bson:"is_active"`
}

func (d sessionDocument) toDomain() (*domain.Session, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		ID:        id,
		UserID:    userID,
		TokenHash: d.TokenHash,
		CreatedAt: d.CreatedAt.UTC(),
		ExpiresAt: d.ExpiresAt.UTC(),
		IsActive:  d.IsActive,
	}, nil
}

type SessionRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewSessionRepo(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: db.Collection(sessionsCollection), now: time.Now}
}

func (r *SessionRepository) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	doc := sessionDocument{
		ID:        uuid.NewString(),
		UserID:    userID.String(),
		TokenHash: util.TokenDigest(token),
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
		ExpiresAt: expiresAt.UTC().Truncate(time.Millisecond),
		IsActive:  true,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, translate(err)
	}
	return doc.toDomain()
}

func (r *SessionRepository) DeactivateSession(ctx context.Context, token string) error {
	now := r.now().UTC()
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"token_hash": util.TokenDigest(token), "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "expires_at": now}},
	)
	return err
}

func (r *SessionRepository) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	filter := bson.M{
		"token_hash": util.TokenDigest(token),
		"is_active":  true,
		"expires_at": bson.M{"$gt": r.now().UTC()},
	}
	var doc sessionDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toDomain()
}

var _ ports.SessionRepository = (*SessionRepository)(nil)
