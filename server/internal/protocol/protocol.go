package protocol

import (
	"SlideLab/server/internal/pkg/slide"
)

// Event types pushed over the WebSocket feed
const (
	EventCorpusCreated  = "corpus_created"
	EventAttackFinished = "attack_finished"
	EventKeyConfirmed   = "key_confirmed"
)

// CorpusRecord is a stored corpus together with its observations
type CorpusRecord struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	Rounds       int                 `json:"rounds"`
	SBox         []int               `json:"sbox"`
	Observations []slide.Observation `json:"observations"`
	CreatedAt    int64               `json:"created_at"`
}

// Corpus returns the observations as an attack corpus
func (r *CorpusRecord) Corpus() slide.Corpus {
	return slide.NewCorpus(r.Observations)
}

// RecoveryRecord is a key pair confirmed against a stored corpus
type RecoveryRecord struct {
	ID        int64 `json:"id"`
	CorpusID  int64 `json:"corpus_id"`
	K0        int   `json:"k0"`
	K1        int   `json:"k1"`
	CreatedAt int64 `json:"created_at"`
}

// RecoveryReport is the answer to an attack request
type RecoveryReport struct {
	CorpusID int64 `json:"corpus_id"`
	slide.Result
}

// EncryptRequest asks for one block to be processed under the configured cipher
type EncryptRequest struct {
	Block int `json:"block"`
}

// EncryptResponse carries the processed block
type EncryptResponse struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Rounds int `json:"rounds"`
}

// CorpusCreateRequest creates a corpus from chosen plaintexts, or from
// Random plaintexts drawn with Seed when Plaintexts is empty
type CorpusCreateRequest struct {
	Name       string `json:"name"`
	Plaintexts []int  `json:"plaintexts,omitempty"`
	Random     int    `json:"random,omitempty"`
	Seed       *int64 `json:"seed,omitempty"` // nil picks a fresh seed
}

// ConfirmRequest checks a key pair against a stored corpus
type ConfirmRequest struct {
	CorpusID int64 `json:"corpus_id"`
	K0       int   `json:"k0"`
	K1       int   `json:"k1"`
}

// ConfirmResponse reports the oracle verdict
type ConfirmResponse struct {
	CorpusID  int64 `json:"corpus_id"`
	K0        int   `json:"k0"`
	K1        int   `json:"k1"`
	Confirmed bool  `json:"confirmed"`
}

// TokenRequest exchanges the operator password for a token
type TokenRequest struct {
	Operator string `json:"operator"`
	Password string `json:"password"`
}

// WebSocketEvent represents a real-time event sent over WebSocket
type WebSocketEvent struct {
	Type      string      `json:"type"` // "corpus_created", "attack_finished", "key_confirmed"
	CorpusID  int64       `json:"corpus_id"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// AttackFinishedEvent data
type AttackFinishedEvent struct {
	Candidates int `json:"candidates"`
	Confirmed  int `json:"confirmed"`
	Trials     int `json:"trials"`
}

// KeyConfirmedEvent data
type KeyConfirmedEvent struct {
	K0 int `json:"k0"`
	K1 int `json:"k1"`
}
