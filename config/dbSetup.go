package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dcode-github/six_cities/backend/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DBConnectMaxRetries = 10
	DBConnectRetryDelay = time.Second
)

var (
	UserCollection     *mongo.Collection
	OfferCollection    *mongo.Collection
	CommentCollection  *mongo.Collection
	FavoriteCollection *mongo.Collection
)

// ConnectDB dials MongoDB, retrying until a ping succeeds or attempts run out.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= DBConnectMaxRetries; attempt++ {
		client, err := connectOnce(ctx, uri)
		if err == nil {
			slog.Info("Connected to MongoDB", "attempt", attempt)
			return client, nil
		}
		lastErr = err
		slog.Error("Failed to connect to MongoDB", "attempt", attempt, "max", DBConnectMaxRetries, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(DBConnectRetryDelay):
		}
	}
	return nil, fmt.Errorf("MongoDB unreachable after %d attempts: %w", DBConnectMaxRetries, lastErr)
}

func connectOnce(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB ping failed: %w", err)
	}
	return client, nil
}

func InitCollections(client *mongo.Client, dbName string) {
	db := client.Database(dbName)
	UserCollection = db.Collection(repository.UsersCollection)
	OfferCollection = db.Collection(repository.OffersCollection)
	CommentCollection = db.Collection(repository.CommentsCollection)
	FavoriteCollection = db.Collection(repository.FavoritesCollection)
}

func CloseDBConnection(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("error closing database connection: %w", err)
	}
	slog.Info("MongoDB connection closed")
	return nil
}
