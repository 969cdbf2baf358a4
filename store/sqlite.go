package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"crop-recommendation/crop"
	"crop-recommendation/utils"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteStore appends prediction rows to a single table.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

func NewSQLiteStore(dataSourceName, table string) (*SQLiteStore, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	// Extract the file path before query parameters
	dbPath := dataSourceName
	if idx := strings.Index(dataSourceName, "?"); idx != -1 {
		dbPath = dataSourceName[:idx]
	}

	dbDir := filepath.Dir(dbPath)
	if dbDir != "." && dbDir != "" {
		if err := utils.CreateFolder(dbDir); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	// Add busy timeout param to DSN (milliseconds)
	if !strings.Contains(dataSourceName, "_busy_timeout") {
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&_busy_timeout=5000"
		} else {
			dataSourceName += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to SQLite: %w", err)
	}

	if err := createTable(db, table); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	return &SQLiteStore{db: db, table: table}, nil
}

func createTable(db *sql.DB, table string) error {
	_, err := db.Exec(fmt.Sprintf(`
    CREATE TABLE IF NOT EXISTS %[1]s (
        id TEXT PRIMARY KEY,
        created_at DATETIME NOT NULL,
        nitrogen REAL NOT NULL,
        phosphorus REAL NOT NULL,
        potassium REAL NOT NULL,
        temperature REAL NOT NULL,
        humidity REAL NOT NULL,
        ph REAL NOT NULL,
        rainfall REAL NOT NULL,
        prediction TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s(created_at);
    `, table))
	return err
}

func (s *SQLiteStore) InsertOne(ctx context.Context, record crop.PredictionRecord) error {
	in := record.Input
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			id, created_at, nitrogen, phosphorus, potassium,
			temperature, humidity, ph, rainfall, prediction
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table),
		record.ID,
		record.CreatedAt,
		in.Nitrogen,
		in.Phosphorus,
		in.Potassium,
		in.Temperature,
		in.Humidity,
		in.Ph,
		in.Rainfall,
		record.Prediction,
	)
	if err != nil {
		return fmt.Errorf("error storing prediction: %w", err)
	}
	return nil
}

// Count returns the number of stored predictions.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting predictions: %w", err)
	}
	return count, nil
}

func (s *SQLiteStore) Close(context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
