package repository

import (
	"context"
	"fmt"

	"storefront/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

// counter - документ {_id: <имя>, seq: <последнее выданное значение>}
type counter struct {
	Name string `bson:"_id"`
	Seq  int64  `bson:"seq"`
}

type sequenceRepository struct {
	collection *mongo.Collection
}

func NewSequenceRepository(db *mongo.Database) SequenceRepository {
	return &sequenceRepository{
		collection: db.Collection(countersCollection),
	}
}

// Next выполняет findOneAndUpdate($inc) с upsert: два параллельных вызова
// никогда не получат одно и то же значение
func (r *sequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, countersCollection)

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&c)
	timer.Done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence %s: %w", name, err)
	}

	return c.Seq, nil
}

// EnsureAtLeast поднимает seq до value через $max (значение никогда не уменьшается)
func (r *sequenceRepository) EnsureAtLeast(ctx context.Context, name string, value int64) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, countersCollection)

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$max": bson.M{"seq": value}},
		options.Update().SetUpsert(true),
	)
	timer.Done(err)
	if err != nil {
		return fmt.Errorf("failed to seed sequence %s: %w", name, err)
	}

	return nil
}
