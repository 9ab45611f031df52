package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

const transcriptSchema = `
CREATE TABLE IF NOT EXISTS transcripts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL UNIQUE,
	transcript TEXT NOT NULL,
	crc INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// TranscriptStore keeps raw transcripts in a local SQLite database.
type TranscriptStore struct {
	db *sql.DB
}

func NewTranscriptStore(path string) (*TranscriptStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open transcripts database: %w", err)
	}

	if _, err := db.Exec(transcriptSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create transcripts schema: %w", err)
	}

	return &TranscriptStore{db: db}, nil
}

func (s *TranscriptStore) Close() error {
	return s.db.Close()
}

// Upsert inserts a transcript, replacing the text and crc of an existing row
// with the same source. Returns the stored transcript with its ID set.
func (s *TranscriptStore) Upsert(ctx context.Context, t Transcript) (Transcript, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO transcripts (source, transcript, crc)
		VALUES (?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			transcript = excluded.transcript,
			crc = excluded.crc
		RETURNING id
	`, t.Source, t.Text, t.Crc)

	if err := row.Scan(&t.ID); err != nil {
		return Transcript{}, fmt.Errorf("%w: failed to upsert transcript %s: %w", ErrWrite, t.Source, err)
	}

	return t, nil
}

// List returns every stored transcript, oldest first.
func (s *TranscriptStore) List(ctx context.Context) ([]Transcript, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, transcript, crc, created_at
		FROM transcripts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list transcripts: %w", ErrRead, err)
	}
	defer rows.Close()

	var transcripts []Transcript
	for rows.Next() {
		var t Transcript
		if err := rows.Scan(&t.ID, &t.Source, &t.Text, &t.Crc, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan transcript: %w", ErrRead, err)
		}
		transcripts = append(transcripts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to list transcripts: %w", ErrRead, err)
	}

	return transcripts, nil
}

// GetBySource looks a transcript up by its source (file path or video URL).
// Returns ErrNotFound when the source was never ingested.
func (s *TranscriptStore) GetBySource(ctx context.Context, source string) (Transcript, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, transcript, crc, created_at
		FROM transcripts WHERE source = ?
	`, source)

	var t Transcript
	err := row.Scan(&t.ID, &t.Source, &t.Text, &t.Crc, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Transcript{}, ErrNotFound
	}
	if err != nil {
		return Transcript{}, fmt.Errorf("%w: failed to get transcript %s: %w", ErrRead, source, err)
	}

	return t, nil
}

func (s *TranscriptStore) DeleteBySource(ctx context.Context, source string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE source = ?`, source); err != nil {
		return fmt.Errorf("%w: failed to delete transcript %s: %w", ErrWrite, source, err)
	}

	return nil
}
