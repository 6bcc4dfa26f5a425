package mongo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/ports"
)

type tripDocument struct {
	ID            string    `bson:"_id"`
	OwnerID       string    `bson:"owner_id"`
	Title         string    `bson:"title"`
	Location      string    `bson:"location"`
	Date          time.Time `bson:"trip_date"`
	Distance      *float64  `bson:"distance,omitempty"`
	ElevationGain *float64  `bson:"elevation_gain,omitempty"`
	Difficulty    *string   `bson:"difficulty,omitempty"`
	Weather       *string   `bson:"weather,omitempty"`
	Notes         *string   `bson:"notes,omitempty"`
	ImageURL      *string   `bson:"image_url,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func tripToDocument(t domain.Trip) tripDocument {
	return tripDocument{
		ID:            t.ID.String(),
		OwnerID:       t.OwnerID.String(),
		Title:         t.Title,
		Location:      t.Location,
		Date:          t.Date.UTC(),
		Distance:      t.Distance,
		ElevationGain: t.ElevationGain,
		Difficulty:    optionalText(t.Difficulty),
		Weather:       optionalText(t.Weather),
		Notes:         optionalText(t.Notes),
		ImageURL:      optionalText(t.ImageURL),
		CreatedAt:     t.CreatedAt.UTC(),
		UpdatedAt:     t.UpdatedAt.UTC(),
	}
}

func (d tripDocument) toDomain() (domain.Trip, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.Trip{}, err
	}
	owner, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return domain.Trip{}, err
	}
	return domain.Trip{
		ID:            id,
		OwnerID:       owner,
		Title:         d.Title,
		Location:      d.Location,
		Date:          d.Date.UTC(),
		Distance:      d.Distance,
		ElevationGain: d.ElevationGain,
		Difficulty:    d.Difficulty,
		Weather:       d.Weather,
		Notes:         d.Notes,
		ImageURL:      d.ImageURL,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}, nil
}

// optionalText trims v and reports nil for a blank value so optional text
// fields are stored absent, as the postgres store keeps them NULL.
func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// patchToUpdate renders the present patch fields as an update document.
// Blank optional text fields are removed with $unset.
func patchToUpdate(patch domain.TripPatch, now time.Time) bson.M {
	set := bson.M{"updated_at": now.UTC()}
	unset := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.Date != nil {
		set["trip_date"] = patch.Date.UTC()
	}
	if patch.Distance != nil {
		set["distance"] = *patch.Distance
	}
	if patch.ElevationGain != nil {
		set["elevation_gain"] = *patch.ElevationGain
	}
	for field, value := range map[string]*string{
		"difficulty": patch.Difficulty,
		"weather":    patch.Weather,
		"notes":      patch.Notes,
		"image_url":  patch.ImageURL,
	} {
		if value == nil {
			continue
		}
		if text := optionalText(value); text != nil {
			set[field] = *text
		} else {
			unset[field] = ""
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

type TripRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewTripRepo(db *mongo.Database) *TripRepository {
	return &TripRepository{coll: db.Collection(tripsCollection), now: time.Now}
}

func ownedFilter(ownerID, id uuid.UUID) bson.M {
	return bson.M{"_id": id.String(), "owner_id": ownerID.String()}
}

func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	created := *trip
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	now := r.now().UTC().Truncate(time.Millisecond)
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, tripToDocument(created)); err != nil {
		return nil, translate(err)
	}
	return &created, nil
}

func (r *TripRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "trip_date", Value: -1}, {Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"owner_id": ownerID.String()}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	trips := []domain.Trip{}
	for cur.Next(ctx) {
		var doc tripDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		trip, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, cur.Err()
}

func (r *TripRepository) GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*domain.Trip, error) {
	var doc tripDocument
	if err := r.coll.FindOne(ctx, ownedFilter(ownerID, id)).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	trip, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) UpdateByOwner(ctx context.Context, ownerID, id uuid.UUID, patch domain.TripPatch) (*domain.Trip, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := patchToUpdate(patch, r.now())

	var doc tripDocument
	if err := r.coll.FindOneAndUpdate(ctx, ownedFilter(ownerID, id), update, opts).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	trip, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) DeleteByOwner(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, ownedFilter(ownerID, id))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ports.ErrNotFound
	}
	return nil
}

var _ ports.TripRepository = (*TripRepository)(nil)
