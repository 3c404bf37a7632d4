package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultMongoConnectTimeout = 10 * time.Second

// MongoOptions configures the pass store connection
type MongoOptions struct {
	URI      string
	Database string
	Username string
	Password string
	// AppName is reported to the server and shows up in its logs and currentOp
	AppName        string
	ConnectTimeout time.Duration
}

// ConnectMongo opens a client, waits for the primary to answer and returns the pass database.
// The client is disconnected again when the primary cannot be reached.
func ConnectMongo(ctx context.Context, opts MongoOptions) (*mongo.Client, *mongo.Database, error) {
	if opts.URI == "" {
		return nil, nil, errors.New("MongoDB URI is required")
	}
	if opts.Database == "" {
		return nil, nil, errors.New("MongoDB database name is required")
	}

	clientOptions := mongoClientOptions(opts)

	ctx, cancel := context.WithTimeout(ctx, *clientOptions.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB primary: %w", err)
	}

	return client, client.Database(opts.Database), nil
}

func mongoClientOptions(opts MongoOptions) *options.ClientOptions {
	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultMongoConnectTimeout
	}

	clientOptions := options.Client().
		ApplyURI(opts.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	if opts.AppName != "" {
		clientOptions.SetAppName(opts.AppName)
	}

	// Credentials in the URI win unless both are given explicitly
	if opts.Username != "" && opts.Password != "" {
		clientOptions.SetAuth(options.Credential{
			Username: opts.Username,
			Password: opts.Password,
		})
	}

	return clientOptions
}
