package invoices

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
	ErrInvoiceNotFound = errors.New("invoice not found")
)

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{coll: db.Collection("invoices")}
}

// EnsureIndexes creates the indexes the query paths rely on.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "ocr_raw_text", Value: "text"}},
		},
		{
			Keys: bson.D{{Key: "invoice_number", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "status", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "received_date", Value: -1}},
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create invoice indexes: %w", err)
	}
	return nil
}

// Insert creates a new invoice.
func (r *Repo) Insert(ctx context.Context, inv *Invoice) error {
	inv.ID = primitive.NewObjectID()
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt

	_, err := r.coll.InsertOne(ctx, inv)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// FindByID retrieves an invoice, scoped to its owner when userID is nonzero.
func (r *Repo) FindByID(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) (*Invoice, error) {
	filter := bson.M{"_id": id}
	if !userID.IsZero() {
		filter["user_id"] = userID
	}

	var inv Invoice
	err := r.coll.FindOne(ctx, filter).Decode(&inv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find invoice %s: %w", id.Hex(), err)
	}
	return &inv, nil
}

// List retrieves invoices newest first with optional owner and status
// filters.
func (r *Repo) List(ctx context.Context, q ListQuery) ([]*Invoice, error) {
	filter := bson.M{}
	if !q.UserID.IsZero() {
		filter["user_id"] = q.UserID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}

	if q.Limit <= 0 {
		q.Limit = 100
	}
	if q.Limit > 500 {
		q.Limit = 500
	}

	opts := options.Find().
		SetLimit(int64(q.Limit)).
		SetSkip(int64(q.Skip)).
		SetSort(bson.D{{Key: "received_date", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer cursor.Close(ctx)

	var invoices []*Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("decode invoices: %w", err)
	}
	return invoices, nil
}

// Search performs full-text search over OCR text with optional filters.
func (r *Repo) Search(ctx context.Context, q SearchQuery) ([]*Invoice, error) {
	filter := bson.M{}

	if q.Query != "" {
		filter["$text"] = bson.M{"$search": q.Query}
	}
	if !q.UserID.IsZero() {
		filter["user_id"] = q.UserID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}

	if q.Since != nil || q.Until != nil {
		dateFilter := bson.M{}
		if q.Since != nil {
			dateFilter["$gte"] = *q.Since
		}
		if q.Until != nil {
			dateFilter["$lte"] = *q.Until
		}
		filter["received_date"] = dateFilter
	}

	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Limit > 200 {
		q.Limit = 200
	}

	opts := options.Find().
		SetLimit(int64(q.Limit)).
		SetSkip(int64(q.Offset)).
		SetSort(bson.D{{Key: "received_date", Value: -1}})

	if q.Query != "" {
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
		opts.SetSort(bson.D{
			{Key: "score", Value: bson.M{"$meta": "textScore"}},
			{Key: "received_date", Value: -1},
		})
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search invoices: %w", err)
	}
	defer cursor.Close(ctx)

	var invoices []*Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return invoices, nil
}

// Update replaces the stored invoice document.
func (r *Repo) Update(ctx context.Context, inv *Invoice) error {
	inv.UpdatedAt = time.Now()

	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": inv.ID}, inv)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

// DashboardStats aggregates status counts, mean OCR confidence and mean
// processing seconds for a user.
func (r *Repo) DashboardStats(ctx context.Context, userID primitive.ObjectID) (*DashboardStats, error) {
	match := bson.M{}
	if !userID.IsZero() {
		match["user_id"] = userID
	}

	pipeline := []bson.M{
		{"$match": match},
		{
			"$group": bson.M{
				"_id":   nil,
				"total": bson.M{"$sum": 1},
				"pending": bson.M{"$sum": bson.M{
					"$cond": bson.A{bson.M{"$eq": bson.A{"$status", StatusPending}}, 1, 0},
				}},
				"approved": bson.M{"$sum": bson.M{
					"$cond": bson.A{bson.M{"$eq": bson.A{"$status", StatusApproved}}, 1, 0},
				}},
				"avg_confidence": bson.M{"$avg": "$ocr_confidence_score"},
				"avg_processing": bson.M{"$avg": "$processing_seconds"},
			},
		},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate dashboard stats: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total         int64   `bson:"total"`
		Pending       int64   `bson:"pending"`
		Approved      int64   `bson:"approved"`
		AvgConfidence float64 `bson:"avg_confidence"`
		AvgProcessing float64 `bson:"avg_processing"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode dashboard stats: %w", err)
	}

	stats := &DashboardStats{}
	if len(rows) > 0 {
		stats.TotalInvoices = rows[0].Total
		stats.PendingReview = rows[0].Pending
		stats.ApprovedInvoices = rows[0].Approved
		stats.ProcessingAccuracy = rows[0].AvgConfidence * 100
		stats.AvgProcessingTime = rows[0].AvgProcessing
	}
	return stats, nil
}
