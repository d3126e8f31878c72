package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"SlideLab/server/internal/pkg/encryption"
	"SlideLab/server/internal/pkg/slide"
	"SlideLab/server/internal/protocol"
)

// DB wraps the database connection and provides query methods
type DB struct {
	conn *sql.DB
}

// Config contains database connection configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN renders the lib/pq connection string
func (cfg Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)
}

// New creates a new database connection
func New(cfg Config) (*DB, error) {
	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates all database tables
func (db *DB) InitSchema() error {
	schema := `
	-- Corpora: one row per set of observations made under one cipher
	CREATE TABLE IF NOT EXISTS corpora (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		rounds INTEGER NOT NULL CHECK (rounds >= 0),
		sbox INTEGER[] NOT NULL,
		created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
	);

	-- Observations belong to a corpus and keep their order
	CREATE TABLE IF NOT EXISTS observations (
		id BIGSERIAL PRIMARY KEY,
		corpus_id BIGINT NOT NULL REFERENCES corpora(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		plaintext SMALLINT NOT NULL CHECK (plaintext BETWEEN 0 AND 255),
		ciphertext SMALLINT NOT NULL CHECK (ciphertext BETWEEN 0 AND 255),
		UNIQUE(corpus_id, position)
	);

	-- Confirmed key pairs
	CREATE TABLE IF NOT EXISTS recoveries (
		id BIGSERIAL PRIMARY KEY,
		corpus_id BIGINT NOT NULL REFERENCES corpora(id) ON DELETE CASCADE,
		k0 SMALLINT NOT NULL CHECK (k0 BETWEEN 0 AND 255),
		k1 SMALLINT NOT NULL CHECK (k1 BETWEEN 0 AND 255),
		created_at BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
		UNIQUE(corpus_id, k0, k1)
	);

	CREATE INDEX IF NOT EXISTS idx_observations_corpus_id ON observations(corpus_id);
	CREATE INDEX IF NOT EXISTS idx_recoveries_corpus_id ON recoveries(corpus_id);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Corpus operations

// SaveCorpus stores a corpus and its observations in one transaction
func (db *DB) SaveCorpus(ctx context.Context, rec *protocol.CorpusRecord) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		"INSERT INTO corpora (name, rounds, sbox) VALUES ($1, $2, $3) RETURNING id, created_at",
		rec.Name, rec.Rounds, pq.Array(rec.SBox),
	).Scan(&id, &rec.CreatedAt)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO observations (corpus_id, position, plaintext, ciphertext) VALUES ($1, $2, $3, $4)",
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, o := range rec.Observations {
		if _, err := stmt.ExecContext(ctx, id, i, int(o.Plaintext), int(o.Ciphertext)); err != nil {
			return 0, fmt.Errorf("observation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	rec.ID = id
	return id, nil
}

// GetCorpus retrieves a corpus with its observations in insertion order
func (db *DB) GetCorpus(ctx context.Context, corpusID int64) (*protocol.CorpusRecord, error) {
	rec := &protocol.CorpusRecord{}
	var sbox pq.Int64Array
	err := db.conn.QueryRowContext(ctx,
		"SELECT id, name, rounds, sbox, created_at FROM corpora WHERE id = $1",
		corpusID,
	).Scan(&rec.ID, &rec.Name, &rec.Rounds, &sbox, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.SBox = make([]int, len(sbox))
	for i, v := range sbox {
		rec.SBox[i] = int(v)
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT plaintext, ciphertext FROM observations WHERE corpus_id = $1 ORDER BY position",
		corpusID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p, c int
		if err := rows.Scan(&p, &c); err != nil {
			return nil, err
		}
		rec.Observations = append(rec.Observations, slide.Observation{
			Plaintext:  encryption.Block(p),
			Ciphertext: encryption.Block(c),
		})
	}

	return rec, rows.Err()
}

// Recovery operations

// SaveRecovery records a confirmed key pair; saving the same pair twice is a no-op
func (db *DB) SaveRecovery(ctx context.Context, corpusID int64, cand slide.Candidate) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO recoveries (corpus_id, k0, k1) VALUES ($1, $2, $3)
		ON CONFLICT (corpus_id, k0, k1) DO UPDATE SET k0 = EXCLUDED.k0
		RETURNING id`,
		corpusID, int(cand.K0), int(cand.K1),
	).Scan(&id)
	return id, err
}

// ListRecoveries lists the key pairs confirmed for a corpus, oldest first
func (db *DB) ListRecoveries(ctx context.Context, corpusID int64) ([]*protocol.RecoveryRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT id, corpus_id, k0, k1, created_at FROM recoveries WHERE corpus_id = $1 ORDER BY id",
		corpusID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*protocol.RecoveryRecord
	for rows.Next() {
		r := &protocol.RecoveryRecord{}
		if err := rows.Scan(&r.ID, &r.CorpusID, &r.K0, &r.K1, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
