package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gw-payment-engine/internal/models"
)

var ErrTransferNotFound = errors.New("transfer record not found")

// TransferRecord is the audit document stored per terminal transaction.
type TransferRecord struct {
	ID                   string `bson:"_id,omitempty"`
	models.TransferEvent `bson:",inline"`
	RecordedAt           time.Time `bson:"recorded_at"`
}

func newTransferRecord(event models.TransferEvent, now time.Time) *TransferRecord {
	return &TransferRecord{
		TransferEvent: event,
		RecordedAt:    now,
	}
}

// AuditStorage keeps one document per transaction outcome. Re-delivery of an
// event is absorbed by the unique transaction_id index.
type AuditStorage struct {
	client     *mongo.Client
	database   *mongo.Database
	collection *mongo.Collection
}

func NewAuditStorage(ctx context.Context, uri, database, collection string, timeout time.Duration) (*AuditStorage, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(ctxPing, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	coll := db.Collection(collection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "origin.bank_id", Value: 1}, {Key: "status", Value: 1}},
		},
	}

	ctxIndex, cancelIndex := context.WithTimeout(ctx, timeout)
	defer cancelIndex()

	if _, err := coll.Indexes().CreateMany(ctxIndex, indexes); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &AuditStorage{
		client:     client,
		database:   db,
		collection: coll,
	}, nil
}

func (s *AuditStorage) Publish(ctx context.Context, event models.TransferEvent) error {
	_, err := s.collection.InsertOne(ctx, newTransferRecord(event, time.Now()))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to save transfer record: %w", err)
	}

	return nil
}

func (s *AuditStorage) GetByTransactionID(ctx context.Context, transactionID string) (*TransferRecord, error) {
	var record TransferRecord

	filter := bson.M{"transaction_id": transactionID}
	err := s.collection.FindOne(ctx, filter).Decode(&record)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer record: %w", err)
	}

	return &record, nil
}

func (s *AuditStorage) Close() error {
	if s.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.client.Disconnect(ctx)
}
