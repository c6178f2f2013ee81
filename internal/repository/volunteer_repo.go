package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/helpmesh/helpmesh/internal/domain"
)

// VolunteerRepository implements volunteer.ApplicationStore on the
// volunteer_applications collection.
type VolunteerRepository struct {
	coll *mongo.Collection
}

func NewVolunteerRepository(db *mongo.Database) *VolunteerRepository {
	return &VolunteerRepository{coll: db.Collection("volunteer_applications")}
}

type applicationDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId"`
	Name      string             `bson:"name"`
	City      string             `bson:"city"`
	Location  string             `bson:"location"`
	Expertise string             `bson:"expertise"`
	Reason    string             `bson:"reason"`
	Image     string             `bson:"image,omitempty"`
	CNIC      string             `bson:"cnic"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *applicationDoc) toDomain() domain.Application {
	return domain.Application{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Name:      d.Name,
		City:      d.City,
		Location:  d.Location,
		Expertise: d.Expertise,
		Reason:    d.Reason,
		Image:     d.Image,
		CNIC:      d.CNIC,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
	}
}

func (r *VolunteerRepository) Insert(ctx context.Context, app *domain.Application) (*domain.Application, error) {
	uid, err := primitive.ObjectIDFromHex(app.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user id %q", domain.ErrInvalidApplication, app.UserID)
	}

	doc := applicationDoc{
		UserID:    uid,
		Name:      app.Name,
		City:      app.City,
		Location:  app.Location,
		Expertise: app.Expertise,
		Reason:    app.Reason,
		Image:     app.Image,
		CNIC:      app.CNIC,
		Status:    app.Status,
		CreatedAt: time.Now().UTC(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert application: %w", err)
	}

	out := *app
	out.ID = res.InsertedID.(primitive.ObjectID).Hex()
	out.CreatedAt = doc.CreatedAt
	return &out, nil
}

func (r *VolunteerRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Application, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrApplicationNotFound
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("find applications: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []applicationDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}

	apps := make([]*domain.Application, 0, len(docs))
	for i := range docs {
		a := docs[i].toDomain()
		apps = append(apps, &a)
	}
	return apps, nil
}

type applicationWithUserDoc struct {
	applicationDoc `bson:",inline"`
	Applicant      struct {
		ID       primitive.ObjectID `bson:"_id"`
		Username string             `bson:"username"`
		Email    string             `bson:"email"`
	} `bson:"applicant"`
}

func (d *applicationWithUserDoc) toDomain() *domain.ApplicationWithUser {
	return &domain.ApplicationWithUser{
		Application: d.applicationDoc.toDomain(),
		Applicant: domain.UserSummary{
			ID:       d.Applicant.ID.Hex(),
			Username: d.Applicant.Username,
			Email:    d.Applicant.Email,
		},
	}
}

func (r *VolunteerRepository) aggregate(ctx context.Context, match bson.M) ([]*domain.ApplicationWithUser, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "userId",
			"foreignField": "_id",
			"as":           "applicant",
		}}},
		{{Key: "$unwind", Value: "$applicant"}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate applications: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []applicationWithUserDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}

	apps := make([]*domain.ApplicationWithUser, 0, len(docs))
	for i := range docs {
		apps = append(apps, docs[i].toDomain())
	}
	return apps, nil
}

// List returns applications with applicant identity. An empty status means
// no filter.
func (r *VolunteerRepository) List(ctx context.Context, status string) ([]*domain.ApplicationWithUser, error) {
	match := bson.M{}
	if status != "" {
		match["status"] = status
	}
	return r.aggregate(ctx, match)
}

func (r *VolunteerRepository) GetByID(ctx context.Context, id string) (*domain.ApplicationWithUser, error) {
	aid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrApplicationNotFound
	}

	apps, err := r.aggregate(ctx, bson.M{"_id": aid})
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, domain.ErrApplicationNotFound
	}
	return apps[0], nil
}

func (r *VolunteerRepository) UpdateStatus(ctx context.Context, id, status string) error {
	aid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrApplicationNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": aid}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}
