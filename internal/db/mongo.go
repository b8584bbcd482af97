package db

import (
	"context"
	"fmt"
	"net/url"

	"github.com/student-records/apiserver/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// OpenMongo connects to the configured deployment and verifies the
// connection against the primary.
func OpenMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return client, nil
}

// MongoURL returns cfg.URI with the database name as its path, which is
// how the migrator selects the database. Credentials in the URI keep
// authenticating against admin unless an authSource is given.
func MongoURL(cfg config.MongoConfig) (string, error) {
	u, err := url.Parse(cfg.URI)
	if err != nil {
		return "", fmt.Errorf("parse MONGODB_URI: %w", err)
	}

	q := u.Query()
	if u.User != nil && q.Get("authSource") == "" {
		q.Set("authSource", "admin")
	}
	u.Path = "/" + cfg.Database
	u.RawQuery = q.Encode()

	return u.String(), nil
}
