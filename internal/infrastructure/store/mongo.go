package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/laxmi8801/data-extractor/internal/domain"
)

// mongoCollection is the part of *mongo.Collection the store uses
type mongoCollection interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
}

// mongoProduct is the stored document shape
type mongoProduct struct {
	ID                   bson.ObjectID `bson:"_id"`
	domain.ProductRecord `bson:",inline"`
}

// MongoStore keeps each product record as one document in a collection
type MongoStore struct {
	client *mongo.Client
	coll   mongoCollection
}

// NewMongo connects to uri and verifies the primary is reachable.
func NewMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, eris.Wrapf(domain.ErrStoreUnavailable, "mongo: connect: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, eris.Wrapf(domain.ErrStoreUnavailable, "mongo: ping: %v", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Insert appends the record as a new document and returns its ObjectID in hex.
func (s *MongoStore) Insert(ctx context.Context, record *domain.ProductRecord) (string, error) {
	res, err := s.coll.InsertOne(ctx, record)
	if err != nil {
		return "", eris.Wrapf(domain.ErrStoreUnavailable, "mongo: insert: %v", err)
	}

	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

// FindByID looks a product up by its hex ObjectID. Ids that are not valid
// ObjectIDs cannot match and report domain.ErrProductNotFound.
func (s *MongoStore) FindByID(ctx context.Context, id string) (*domain.StoredProduct, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, eris.Wrapf(domain.ErrProductNotFound, "mongo: id %q", id)
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

// FindByName returns the first product whose productName matches exactly.
func (s *MongoStore) FindByName(ctx context.Context, name string) (*domain.StoredProduct, error) {
	return s.findOne(ctx, bson.M{"productName": name})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*domain.StoredProduct, error) {
	var doc mongoProduct
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(domain.ErrStoreUnavailable, "mongo: find: %v", err)
	}
	return &domain.StoredProduct{ID: doc.ID.Hex(), ProductRecord: doc.ProductRecord}, nil
}

// Ping checks the primary is reachable
func (s *MongoStore) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return eris.Wrapf(domain.ErrStoreUnavailable, "mongo: ping: %v", err)
	}
	return nil
}

// Close disconnects the client
func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
