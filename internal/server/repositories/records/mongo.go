package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
	"github.com/dmitrijs2005/valuationdesk/internal/server/models"
)

// recordDoc is the stored shape of a record. One Mongo collection holds one
// records collection; _id is "<clientId>:<uniqueId>".
type recordDoc struct {
	ID             string    `bson:"_id"`
	UniqueID       string    `bson:"uniqueId"`
	ClientID       string    `bson:"clientId"`
	Username       string    `bson:"username"`
	Status         string    `bson:"status"`
	ReworkComments string    `bson:"reworkComments,omitempty"`
	Data           bson.M    `bson:"data"`
	CreatedAt      time.Time `bson:"createdAt"`
	LastUpdatedAt  time.Time `bson:"lastUpdatedAt"`
}

func docID(clientID, uniqueID string) string {
	return clientID + ":" + uniqueID
}

func (d *recordDoc) record(collection string) *models.Record {
	data := map[string]any{}
	for k, v := range d.Data {
		data[k] = normalizeBSON(v)
	}
	return &models.Record{
		Collection:     collection,
		UniqueID:       d.UniqueID,
		ClientID:       d.ClientID,
		Username:       d.Username,
		Status:         d.Status,
		ReworkComments: d.ReworkComments,
		Data:           data,
		CreatedAt:      d.CreatedAt.UTC(),
		LastUpdatedAt:  d.LastUpdatedAt.UTC(),
	}
}

// normalizeBSON turns nested documents and arrays back into plain maps and
// slices so records read from Mongo encode like records read from Postgres.
func normalizeBSON(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeBSON(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalizeBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeBSON(e)
		}
		return out
	}
	return v
}

type MongoRepository struct {
	db *mongo.Database
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{db: db}
}

func (r *MongoRepository) coll(name string) *mongo.Collection {
	return r.db.Collection(name)
}

func (r *MongoRepository) List(ctx context.Context, f models.RecordFilter) ([]*models.Record, int64, error) {
	filter := bson.M{"clientId": f.ClientID}
	if f.Username != "" {
		filter["username"] = f.Username
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	coll := r.coll(f.Collection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "lastUpdatedAt", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit)).SetSkip(int64(f.Offset))
	}

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find records: %w", err)
	}
	defer cur.Close(ctx)

	var out []*models.Record
	for cur.Next(ctx) {
		var d recordDoc
		if err := cur.Decode(&d); err != nil {
			return nil, 0, fmt.Errorf("failed to decode record: %w", err)
		}
		out = append(out, d.record(f.Collection))
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate records: %w", err)
	}
	return out, total, nil
}

func (r *MongoRepository) Get(ctx context.Context, key models.RecordKey) (*models.Record, error) {
	var d recordDoc
	err := r.coll(key.Collection).FindOne(ctx, bson.M{"_id": docID(key.ClientID, key.UniqueID)}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return d.record(key.Collection), nil
}

func (r *MongoRepository) Upsert(ctx context.Context, rec *models.Record) (*models.Record, error) {
	update := bson.M{
		"$set": bson.M{
			"data":          rec.Data,
			"lastUpdatedAt": rec.LastUpdatedAt.UTC(),
		},
		"$setOnInsert": bson.M{
			"uniqueId":  rec.UniqueID,
			"clientId":  rec.ClientID,
			"username":  rec.Username,
			"status":    rec.Status,
			"createdAt": rec.CreatedAt.UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var d recordDoc
	err := r.coll(rec.Collection).FindOneAndUpdate(ctx, bson.M{"_id": docID(rec.ClientID, rec.UniqueID)}, update, opts).Decode(&d)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert record: %w", err)
	}
	return d.record(rec.Collection), nil
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, key models.RecordKey, status string, comments *string, at time.Time) (*models.Record, error) {
	set := bson.M{"status": status, "lastUpdatedAt": at.UTC()}
	if comments != nil {
		set["reworkComments"] = *comments
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d recordDoc
	err := r.coll(key.Collection).FindOneAndUpdate(ctx, bson.M{"_id": docID(key.ClientID, key.UniqueID)}, bson.M{"$set": set}, opts).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to update record status: %w", err)
	}
	return d.record(key.Collection), nil
}

// EnsureIndexes creates the listing index of every records collection.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	for _, name := range models.Collections {
		_, err := r.coll(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "username", Value: 1}, {Key: "lastUpdatedAt", Value: -1}},
		})
		if err != nil {
			return fmt.Errorf("failed to create index on %s: %w", name, err)
		}
	}
	return nil
}
