package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/BorzykhIvan/Mountain-Logbook/internal/domain"
	"github.com/BorzykhIvan/Mountain-Logbook/internal/repository/ports"
)

func ptr[T any](v T) *T { return &v }

func TestTripDocumentRoundTrip(t *testing.T) {
	trip := domain.Trip{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		Title:      "Rysy",
		Location:   "Tatry",
		Date:       time.Date(2024, 7, 14, 0, 0, 0, 0, time.UTC),
		Distance:   ptr(14.2),
		Difficulty: ptr("hard"),
		CreatedAt:  time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC),
	}
	got, err := tripToDocument(trip).toDomain()
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}
	if got.ID != trip.ID || got.OwnerID != trip.OwnerID || got.Title != "Rysy" || *got.Distance != 14.2 {
		t.Fatalf("unexpected trip %+v", got)
	}
	if got.ElevationGain != nil {
		t.Fatalf("expected elevation gain to stay unset")
	}
}

func TestPatchToUpdateOnlyPresentFields(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	update := patchToUpdate(domain.TripPatch{Notes: ptr("windy"), Distance: ptr(0.0)}, now)
	set, ok := update["$set"].(bson.M)
	if !ok || len(set) != 3 {
		t.Fatalf("expected updated_at, notes and distance, got %v", update)
	}
	if set["notes"] != "windy" || set["distance"] != 0.0 || set["updated_at"] != now {
		t.Fatalf("unexpected set document %v", set)
	}
	if _, ok := update["$unset"]; ok {
		t.Fatalf("expected no $unset, got %v", update)
	}
}

func TestPatchToUpdateUnsetsBlankText(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	update := patchToUpdate(domain.TripPatch{Difficulty: ptr(""), Notes: ptr("  "), Weather: ptr(""), Title: ptr("Rysy")}, now)

	unset, ok := update["$unset"].(bson.M)
	if !ok || len(unset) != 3 {
		t.Fatalf("expected difficulty, notes and weather unset, got %v", update)
	}
	for _, field := range []string{"difficulty", "notes", "weather"} {
		if _, ok := unset[field]; !ok {
			t.Fatalf("expected %s in $unset, got %v", field, unset)
		}
	}
	set := update["$set"].(bson.M)
	if _, ok := set["difficulty"]; ok || set["title"] != "Rysy" {
		t.Fatalf("unexpected set document %v", set)
	}
}

func TestTripDocumentDropsBlankText(t *testing.T) {
	doc := tripToDocument(domain.Trip{ID: uuid.New(), OwnerID: uuid.New(), Difficulty: ptr(" "), Notes: ptr(" windy ")})
	if doc.Difficulty != nil {
		t.Fatalf("expected blank difficulty to be dropped, got %q", *doc.Difficulty)
	}
	if doc.Notes == nil || *doc.Notes != "windy" {
		t.Fatalf("expected trimmed notes, got %v", doc.Notes)
	}
}

func TestTripRepositoryWithMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	owner := uuid.New()
	id := uuid.New()

	mt.Run("get missing trip is not found", func(mt *mtest.T) {
		repo := &TripRepository{coll: mt.Coll, now: time.Now}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "logbook.trips", mtest.FirstBatch))

		if _, err := repo.GetByOwner(context.Background(), owner, id); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("delete of foreign trip is not found", func(mt *mtest.T) {
		repo := &TripRepository{coll: mt.Coll, now: time.Now}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		if err := repo.DeleteByOwner(context.Background(), owner, id); !errors.Is(err, ports.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("list decodes documents", func(mt *mtest.T) {
		repo := &TripRepository{coll: mt.Coll, now: time.Now}
		first := mtest.CreateCursorResponse(1, "logbook.trips", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id.String()},
			{Key: "owner_id", Value: owner.String()},
			{Key: "title", Value: "Giewont"},
			{Key: "location", Value: "Tatry"},
			{Key: "trip_date", Value: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
			{Key: "difficulty", Value: "medium"},
		})
		end := mtest.CreateCursorResponse(0, "logbook.trips", mtest.NextBatch)
		mt.AddMockResponses(first, end)

		trips, err := repo.ListByOwner(context.Background(), owner)
		if err != nil {
			t.Fatalf("ListByOwner: %v", err)
		}
		if len(trips) != 1 || trips[0].Title != "Giewont" || trips[0].DifficultyText() != "medium" {
			t.Fatalf("unexpected trips %+v", trips)
		}
	})
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key maps to ErrDuplicate", func(mt *mtest.T) {
		repo := &UserRepository{coll: mt.Coll, now: time.Now}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: logbook.users index: email_1",
		}))

		_, err := repo.CreateEmailUser(context.Background(), "Hiker", "hiker@example.com", []byte("h"), []byte("s"))
		if !errors.Is(err, ports.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})
}
