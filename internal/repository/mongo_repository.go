package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/webshop/cart-service/internal/domain"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoRepository) FindByOwner(ctx context.Context, ownerID int64) (*domain.Cart, error) {
	var doc cartDocument

	filter := bson.M{"owner_id": ownerID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}

	return doc.toDomain(), nil
}

func (m *mongoRepository) Save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	now := time.Now()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	doc := toDocument(cart)

	filter := bson.M{"owner_id": cart.OwnerID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	result, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	saved := cart.Clone()
	if cart.ID == "" {
		if oid, ok := result.UpsertedID.(primitive.ObjectID); ok {
			saved.ID = oid.Hex()
		}
	}

	return saved, nil
}

// EnsureIndexes creates the carts collection indexes: the unique owner
// key and a 90-day TTL on abandoned carts.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := db.Collection("carts").Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// cartDocument keeps the stored _id an ObjectID while the domain carries
// its hex form.
type cartDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     int64              `bson:"owner_id"`
	Items       []domain.CartItem  `bson:"items"`
	TotalAmount float64            `bson:"total_amount"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (d *cartDocument) toDomain() *domain.Cart {
	items := d.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return &domain.Cart{
		ID:          d.ID.Hex(),
		OwnerID:     d.OwnerID,
		Items:       items,
		TotalAmount: d.TotalAmount,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toDocument(c *domain.Cart) bson.M {
	return bson.M{
		"owner_id":     c.OwnerID,
		"items":        c.Items,
		"total_amount": c.TotalAmount,
		"created_at":   c.CreatedAt,
		"updated_at":   c.UpdatedAt,
	}
}
