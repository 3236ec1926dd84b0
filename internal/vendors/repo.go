package vendors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrVendorNotFound = errors.New("vendor not found")
)

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{coll: db.Collection("vendors")}
}

func (r *Repo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "name", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "is_active", Value: 1}},
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create vendor indexes: %w", err)
	}
	return nil
}

// Insert creates a new vendor.
func (r *Repo) Insert(ctx context.Context, v *Vendor) error {
	v.ID = primitive.NewObjectID()
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt

	_, err := r.coll.InsertOne(ctx, v)
	if err != nil {
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

// FindByID retrieves a vendor by its ID.
func (r *Repo) FindByID(ctx context.Context, id primitive.ObjectID) (*Vendor, error) {
	var vendor Vendor
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&vendor)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find vendor %s: %w", id.Hex(), err)
	}
	return &vendor, nil
}

// FindByName retrieves the first vendor matching the exact name.
func (r *Repo) FindByName(ctx context.Context, name string) (*Vendor, error) {
	var vendor Vendor
	err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&vendor)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find vendor %q: %w", name, err)
	}
	return &vendor, nil
}

// List retrieves vendors sorted by name.
func (r *Repo) List(ctx context.Context, q ListQuery) ([]*Vendor, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	if q.Limit > 500 {
		q.Limit = 500
	}

	opts := options.Find().
		SetLimit(int64(q.Limit)).
		SetSkip(int64(q.Skip)).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer cursor.Close(ctx)

	var vendors []*Vendor
	if err := cursor.All(ctx, &vendors); err != nil {
		return nil, fmt.Errorf("decode vendors: %w", err)
	}
	return vendors, nil
}
