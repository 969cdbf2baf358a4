package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"crop-recommendation/crop"
)

const (
	DefaultDatabase   = "krishimart"
	DefaultCollection = "predictions"
)

// Store is a crop.Store that owns a connection.
type Store interface {
	crop.Store
	Close(ctx context.Context) error
}

// Open picks a backend from the scheme of dbURL:
//
//	mongodb://, mongodb+srv://  MongoDB collection <database>.<collection>
//	sqlite://<path>             SQLite table <collection>
//	file://<path>               append-only JSON file
func Open(ctx context.Context, dbURL, database, collection string) (Store, error) {
	if strings.TrimSpace(dbURL) == "" {
		return nil, fmt.Errorf("database url is empty")
	}
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "mongodb", "mongodb+srv":
		return NewMongoStore(ctx, dbURL, database, collection)
	case "sqlite", "sqlite3":
		return NewSQLiteStore(pathFromURL(dbURL), collection)
	case "file":
		return NewFileStore(pathFromURL(dbURL))
	default:
		return nil, fmt.Errorf("unsupported database scheme %q", parsed.Scheme)
	}
}

// pathFromURL strips the scheme, keeping relative paths relative
// ("sqlite://data/p.db" -> "data/p.db", "sqlite:///var/p.db" -> "/var/p.db").
func pathFromURL(dbURL string) string {
	if idx := strings.Index(dbURL, "://"); idx != -1 {
		return dbURL[idx+3:]
	}
	return dbURL
}
