// Package mongo implements animal.Store on MongoDB.
package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/pedigree/pkg/animal"
	"github.com/matzehuels/pedigree/pkg/errors"
)

// DefaultDatabase is used when Open is given an empty database name.
const DefaultDatabase = "pedigree"

// Store implements animal.Store on two collections, animals and
// animal_types.
type Store struct {
	client  *mongo.Client
	animals *mongo.Collection
	types   *mongo.Collection
}

var _ animal.Store = (*Store)(nil)

type animalDoc struct {
	ID          string    `bson:"_id"`
	Identifier  string    `bson:"identifier"`
	Name        string    `bson:"name,omitempty"`
	Gender      string    `bson:"gender"`
	BirthDate   string    `bson:"birth_date,omitempty"`
	TypeID      string    `bson:"type_id"`
	TypeName    string    `bson:"type_name,omitempty"`
	MotherID    string    `bson:"mother_id,omitempty"`
	FatherID    string    `bson:"father_id,omitempty"`
	Active      bool      `bson:"is_active"`
	Description string    `bson:"description,omitempty"`
	Notes       string    `bson:"notes,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type typeDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

// Open connects to uri, pings the server and ensures indexes exist.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	s := &Store{client: client, animals: db.Collection("animals"), types: db.Collection("animal_types")}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.animals.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "type_id", Value: 1}, {Key: "identifier", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "mother_id", Value: 1}}},
		{Keys: bson.D{{Key: "father_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create animal indexes: %w", err)
	}
	_, err = s.types.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create type indexes: %w", err)
	}
	return nil
}

// Drop removes both collections. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.animals.Drop(ctx); err != nil {
		return err
	}
	if err := s.types.Drop(ctx); err != nil {
		return err
	}
	return s.ensureIndexes(ctx)
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) GetAnimal(ctx context.Context, id string) (*animal.Record, error) {
	var doc animalDoc
	err := s.animals.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, animal.NotFound("animal", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find animal: %w", err)
	}
	return doc.record()
}

func (s *Store) GetAnimals(ctx context.Context, ids []string) ([]*animal.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.findAnimals(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

func (s *Store) ListAnimals(ctx context.Context, f animal.Filter) ([]*animal.Record, error) {
	filter := bson.M{}
	if f.TypeID != "" {
		filter["type_id"] = f.TypeID
	}
	if f.Active != nil {
		filter["is_active"] = *f.Active
	}
	if f.Search != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		filter["$or"] = bson.A{bson.M{"name": re}, bson.M{"identifier": re}}
	}
	return s.findAnimals(ctx, filter, options.Find().SetSort(bson.D{{Key: "identifier", Value: 1}}))
}

func (s *Store) Children(ctx context.Context, id string) ([]*animal.Record, error) {
	return s.findAnimals(ctx, bson.M{"$or": bson.A{bson.M{"mother_id": id}, bson.M{"father_id": id}}}, nil)
}

func (s *Store) InsertAnimal(ctx context.Context, r *animal.Record) error {
	_, err := s.animals.InsertOne(ctx, docOf(r))
	return writeErr(err, r)
}

func (s *Store) ReplaceAnimal(ctx context.Context, r *animal.Record) error {
	res, err := s.animals.ReplaceOne(ctx, bson.M{"_id": r.ID}, docOf(r))
	if err != nil {
		return writeErr(err, r)
	}
	if res.MatchedCount == 0 {
		return animal.NotFound("animal", r.ID)
	}
	return nil
}

func (s *Store) RemoveAnimal(ctx context.Context, id string) error {
	res, err := s.animals.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete animal: %w", err)
	}
	if res.DeletedCount == 0 {
		return animal.NotFound("animal", id)
	}
	return nil
}

func (s *Store) InsertType(ctx context.Context, t *animal.Type) error {
	_, err := s.types.InsertOne(ctx, typeDoc{ID: t.ID, Name: t.Name, Description: t.Description, CreatedAt: t.CreatedAt.UTC()})
	if mongo.IsDuplicateKeyError(err) {
		return errors.New(errors.ErrCodeConflict, "animal type %q already exists", t.Name)
	}
	if err != nil {
		return fmt.Errorf("insert animal type: %w", err)
	}
	return nil
}

func (s *Store) GetType(ctx context.Context, id string) (*animal.Type, error) {
	var doc typeDoc
	err := s.types.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, animal.NotFound("animal type", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find animal type: %w", err)
	}
	return doc.typ(), nil
}

func (s *Store) ListTypes(ctx context.Context) ([]*animal.Type, error) {
	cur, err := s.types.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list animal types: %w", err)
	}
	var docs []typeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode animal types: %w", err)
	}
	out := make([]*animal.Type, len(docs))
	for i := range docs {
		out[i] = docs[i].typ()
	}
	return out, nil
}

func (s *Store) findAnimals(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*animal.Record, error) {
	var findOpts []*options.FindOptions
	if opts != nil {
		findOpts = append(findOpts, opts)
	}
	cur, err := s.animals.Find(ctx, filter, findOpts...)
	if err != nil {
		return nil, fmt.Errorf("find animals: %w", err)
	}
	var docs []animalDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode animals: %w", err)
	}
	out := make([]*animal.Record, 0, len(docs))
	for i := range docs {
		r, err := docs[i].record()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func writeErr(err error, r *animal.Record) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return errors.New(errors.ErrCodeConflict, "identifier %q is already used by another %s", r.Identifier, r.TypeName)
	}
	return fmt.Errorf("write animal: %w", err)
}

func docOf(r *animal.Record) animalDoc {
	d := animalDoc{
		ID: r.ID, Identifier: r.Identifier, Name: r.Name, Gender: string(r.Gender),
		TypeID: r.TypeID, TypeName: r.TypeName, MotherID: r.MotherID, FatherID: r.FatherID,
		Active: r.Active, Description: r.Description, Notes: r.Notes,
		CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.BirthDate != nil {
		d.BirthDate = r.BirthDate.String()
	}
	return d
}

func (d *animalDoc) record() (*animal.Record, error) {
	r := &animal.Record{
		ID: d.ID, Identifier: d.Identifier, Name: d.Name, Gender: animal.Gender(d.Gender),
		TypeID: d.TypeID, TypeName: d.TypeName, MotherID: d.MotherID, FatherID: d.FatherID,
		Active: d.Active, Description: d.Description, Notes: d.Notes,
		CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.BirthDate != "" {
		bd, err := animal.ParseDate(d.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("animal %s: %w", d.ID, err)
		}
		r.BirthDate = &bd
	}
	return r, nil
}

func (d *typeDoc) typ() *animal.Type {
	return &animal.Type{ID: d.ID, Name: d.Name, Description: d.Description, CreatedAt: d.CreatedAt.UTC()}
}
