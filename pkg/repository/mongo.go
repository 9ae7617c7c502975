package repository

import (
	"context"
	"time"

	"github.com/example/storefront/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepository struct {
	client   *mongo.Client
	database *mongo.Database
	config   *config.MongoDBConfig
}

func NewMongoRepository(cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	return &MongoRepository{
		client:   client,
		database: client.Database(cfg.Database),
		config:   cfg,
	}, nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// CheckoutEvent is one entry in the checkout audit trail: intent created,
// order created, order rolled back, profile attached.
type CheckoutEvent struct {
	ID        string    `bson:"_id,omitempty"`
	Action    string    `bson:"action"`
	EntityID  string    `bson:"entity_id"`
	Data      bson.M    `bson:"data"`
	CreatedAt time.Time `bson:"created_at"`
}

// RecordEvent implements checkout.Auditor.
func (m *MongoRepository) RecordEvent(ctx context.Context, action, entityID string, data map[string]interface{}) error {
	collection := m.database.Collection(m.config.Collection)
	event := &CheckoutEvent{
		Action:    action,
		EntityID:  entityID,
		Data:      bson.M(data),
		CreatedAt: time.Now(),
	}
	_, err := collection.InsertOne(ctx, event)
	return err
}

// EventsForEntity returns the newest audit entries for an order or intent.
func (m *MongoRepository) EventsForEntity(ctx context.Context, entityID string, limit int64) ([]*CheckoutEvent, error) {
	collection := m.database.Collection(m.config.Collection)

	filter := bson.M{"entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*CheckoutEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}
