package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/zap"
)

const defaultDatabase = "pinvent"

// Mongo holds the connected client and the application database.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect dials MongoDB and pings it. dbName overrides the database named
// in the URI; when both are empty "pinvent" is used.
func Connect(ctx context.Context, mongoURI, dbName string, log *zap.Logger) (*Mongo, error) {
	// Atlas clusters can take a while to answer the first handshake
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	log.Info("Connecting to MongoDB", zap.String("uri", MaskURI(mongoURI)))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	if dbName == "" {
		dbName = DatabaseFromURI(mongoURI)
	}

	log.Info("Connected to MongoDB", zap.String("database", dbName))
	return &Mongo{Client: client, DB: client.Database(dbName)}, nil
}

func (m *Mongo) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// DatabaseFromURI returns the database path segment of uri, or "pinvent".
func DatabaseFromURI(uri string) string {
	cs, err := connstring.Parse(uri)
	if err != nil || cs.Database == "" {
		return defaultDatabase
	}
	return cs.Database
}

// MaskURI hides the password in a connection string for logging.
func MaskURI(uri string) string {
	cs, err := connstring.Parse(uri)
	if err != nil || cs.Password == "" {
		return uri
	}
	return strings.Replace(uri, ":"+cs.Password+"@", ":***@", 1)
}
