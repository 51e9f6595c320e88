package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/energycompany/energy-registry/internal/core/domain"
)

const collectionEnergyObjects = "energy_objects"

type EnergyObjectRepository struct {
	col *mongo.Collection
	seq *sequence
}

func NewEnergyObjectRepository(db *mongo.Database) *EnergyObjectRepository {
	return &EnergyObjectRepository{
		col: db.Collection(collectionEnergyObjects),
		seq: newSequence(db, collectionEnergyObjects),
	}
}

// sortKeys maps sort fields to document keys.
var sortKeys = map[domain.SortField]string{
	domain.SortByID:                "_id",
	domain.SortByName:              "name",
	domain.SortByType:              "type",
	domain.SortByPower:             "power",
	domain.SortByCommissioningYear: "commissioning_year",
	domain.SortByEfficiency:        "efficiency",
}

// Create assigns the next id from the counters collection and inserts the document.
func (r *EnergyObjectRepository) Create(ctx context.Context, o *domain.EnergyObject) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx)
	if err != nil {
		return err
	}
	o.ID = id

	if _, err := r.col.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert energy object: %w", err)
	}
	return nil
}

func (r *EnergyObjectRepository) FindByID(ctx context.Context, id int64) (*domain.EnergyObject, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var o domain.EnergyObject
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEnergyObjectNotFound
		}
		return nil, fmt.Errorf("find energy object: %w", err)
	}
	return &o, nil
}

// Update replaces the whole document in a single write.
func (r *EnergyObjectRepository) Update(ctx context.Context, o *domain.EnergyObject) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return fmt.Errorf("update energy object: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrEnergyObjectNotFound
	}
	return nil
}

func (r *EnergyObjectRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete energy object: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrEnergyObjectNotFound
	}
	return nil
}

// List runs the keyword filter server-side. Ties on the sort key are broken by
// ascending _id.
func (r *EnergyObjectRepository) List(ctx context.Context, q domain.ObjectQuery) ([]*domain.EnergyObject, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := keywordFilter(q.Keyword)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count energy objects: %w", err)
	}
	if int64(q.Offset()) >= total {
		return []*domain.EnergyObject{}, total, nil
	}

	opts := options.Find().
		SetSort(sortSpec(q)).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.PageSize))

	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *EnergyObjectRepository) All(ctx context.Context) ([]*domain.EnergyObject, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *EnergyObjectRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count energy objects: %w", err)
	}
	return n, nil
}

func (r *EnergyObjectRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*domain.EnergyObject, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find energy objects: %w", err)
	}
	defer cur.Close(ctx)

	items := []*domain.EnergyObject{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode energy objects: %w", err)
	}
	return items, nil
}

// EnsureIndexes creates the indexes backing the sortable columns.
func (r *EnergyObjectRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "power", Value: 1}}},
		{Keys: bson.D{{Key: "commissioning_year", Value: 1}}},
		{Keys: bson.D{{Key: "efficiency", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func keywordFilter(keyword string) bson.M {
	if keyword == "" {
		return bson.M{}
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"name": re},
		bson.M{"location": re},
		bson.M{"type": re},
	}}
}

func sortSpec(q domain.ObjectQuery) bson.D {
	dir := 1
	if q.Direction == domain.SortDesc {
		dir = -1
	}
	key, ok := sortKeys[q.SortField]
	if !ok {
		key = "_id"
	}
	spec := bson.D{{Key: key, Value: dir}}
	if key != "_id" {
		spec = append(spec, bson.E{Key: "_id", Value: 1})
	}
	return spec
}
