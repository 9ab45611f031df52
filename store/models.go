package store

import "time"

// Transcript is one ingested source: the full text plus where it came from
// (a video URL or a file path). Immutable once stored; re-fetching the same
// source replaces it as a whole.
type Transcript struct {
	ID        int64
	Source    string
	Text      string
	Crc       uint32
	CreatedAt time.Time
}

// Chunk is one embedded window of a transcript. Seq is the window's position
// within its transcript, contiguous from 0.
type Chunk struct {
	TranscriptID int64
	Seq          int
	Text         string
	Vector       []float32
}

// Match is a retrieval hit. Similarity is in [0, 1], higher is better.
type Match struct {
	TranscriptID int64
	Text         string
	Similarity   float64
}
