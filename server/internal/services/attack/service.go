package attack

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"SlideLab/server/internal/pkg/encryption"
	"SlideLab/server/internal/pkg/helpers"
	"SlideLab/server/internal/pkg/slide"
	"SlideLab/server/internal/protocol"
)

var ErrCorpusNotFound = errors.New("corpus not found")

// Store defines the persistence interface
type Store interface {
	SaveCorpus(ctx context.Context, rec *protocol.CorpusRecord) (int64, error)
	GetCorpus(ctx context.Context, corpusID int64) (*protocol.CorpusRecord, error)
	SaveRecovery(ctx context.Context, corpusID int64, cand slide.Candidate) (int64, error)
	ListRecoveries(ctx context.Context, corpusID int64) ([]*protocol.RecoveryRecord, error)
}

// Service builds corpora under the configured cipher and runs key recovery on them
type Service struct {
	store            Store
	cipher           *encryption.Cipher
	confirmLimit     int
	log              *helpers.Logger
	broadcastHandler func(event interface{})
}

func NewService(store Store, cipher *encryption.Cipher, confirmLimit int) *Service {
	return &Service{
		store:        store,
		cipher:       cipher,
		confirmLimit: confirmLimit,
		log:          helpers.NewLogger("AttackService"),
	}
}

// SetBroadcastHandler sets the callback for broadcasting events
func (s *Service) SetBroadcastHandler(handler func(event interface{})) {
	s.broadcastHandler = handler
}

// Cipher returns the configured cipher
func (s *Service) Cipher() *encryption.Cipher {
	return s.cipher
}

// CreateCorpus encrypts the plaintexts under the configured cipher and stores the result
func (s *Service) CreateCorpus(ctx context.Context, name string, plaintexts []encryption.Block) (*protocol.CorpusRecord, error) {
	corpus := slide.GenerateCorpus(s.cipher, plaintexts)
	if name == "" {
		name = fmt.Sprintf("corpus-%d", time.Now().Unix())
	}

	rec := &protocol.CorpusRecord{
		Name:         name,
		Rounds:       s.cipher.Rounds(),
		SBox:         s.cipher.SBox().Ints(),
		Observations: corpus.Observations(),
	}

	if _, err := s.store.SaveCorpus(ctx, rec); err != nil {
		s.log.Error("Failed to save corpus", err)
		return nil, err
	}
	s.log.Info("Corpus created", "id", rec.ID, "observations", len(rec.Observations))

	s.broadcast(protocol.EventCorpusCreated, rec.ID, rec)
	return rec, nil
}

// CreateRandomCorpus encrypts n plaintexts drawn from seed, repeats allowed
func (s *Service) CreateRandomCorpus(ctx context.Context, name string, n int, seed int64) (*protocol.CorpusRecord, error) {
	if err := helpers.ValidateRandomCount(n); err != nil {
		return nil, err
	}
	s.log.Debug("Drawing random plaintexts", "count", n, "seed", seed)
	plaintexts := encryption.RandomPlaintexts(rand.New(rand.NewSource(seed)), n)
	return s.CreateCorpus(ctx, name, plaintexts)
}

// GetCorpus loads a stored corpus
func (s *Service) GetCorpus(ctx context.Context, corpusID int64) (*protocol.CorpusRecord, error) {
	rec, err := s.store.GetCorpus(ctx, corpusID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %d", ErrCorpusNotFound, corpusID)
	}
	return rec, nil
}

// RunAttack recovers key candidates for a stored corpus and saves the confirmed ones.
// Only the S-box and round count recorded with the corpus are used, never the
// configured keys.
func (s *Service) RunAttack(ctx context.Context, corpusID int64) (*protocol.RecoveryReport, error) {
	rec, err := s.GetCorpus(ctx, corpusID)
	if err != nil {
		return nil, err
	}

	sbox, err := encryption.NewSBox(rec.SBox)
	if err != nil {
		return nil, fmt.Errorf("corpus %d: %w", corpusID, err)
	}

	start := time.Now()
	result, err := slide.Recover(rec.Corpus(), sbox, rec.Rounds, s.confirmLimit)
	if err != nil {
		s.log.Warn("Attack aborted", "corpus", corpusID, "reason", err)
		return nil, err
	}
	s.log.Info("Attack finished", "corpus", corpusID, "pairs", result.SlidePairs,
		"candidates", len(result.Candidates), "confirmed", len(result.Confirmed), "elapsed", time.Since(start))

	for _, cand := range result.Confirmed {
		if _, err := s.store.SaveRecovery(ctx, corpusID, cand); err != nil {
			s.log.Error("Failed to save recovery", err, "corpus", corpusID, "key", cand)
			return nil, err
		}
	}

	s.broadcast(protocol.EventAttackFinished, corpusID, protocol.AttackFinishedEvent{
		Candidates: len(result.Candidates),
		Confirmed:  len(result.Confirmed),
		Trials:     result.Trials,
	})
	for _, cand := range result.Confirmed {
		s.broadcast(protocol.EventKeyConfirmed, corpusID, protocol.KeyConfirmedEvent{
			K0: int(cand.K0),
			K1: int(cand.K1),
		})
	}

	return &protocol.RecoveryReport{CorpusID: corpusID, Result: *result}, nil
}

// Confirm checks a key pair against every observation of a stored corpus
func (s *Service) Confirm(ctx context.Context, corpusID int64, k0, k1 encryption.Block) (bool, error) {
	rec, err := s.GetCorpus(ctx, corpusID)
	if err != nil {
		return false, err
	}

	sbox, err := encryption.NewSBox(rec.SBox)
	if err != nil {
		return false, fmt.Errorf("corpus %d: %w", corpusID, err)
	}

	ok := slide.Confirms(k0, k1, rec.Corpus(), sbox, rec.Rounds)
	s.log.Debug("Confirm", "corpus", corpusID, "k0", k0, "k1", k1, "confirmed", ok)
	return ok, nil
}

// ListRecoveries returns the keys confirmed so far for a corpus
func (s *Service) ListRecoveries(ctx context.Context, corpusID int64) ([]*protocol.RecoveryRecord, error) {
	if _, err := s.GetCorpus(ctx, corpusID); err != nil {
		return nil, err
	}
	recs, err := s.store.ListRecoveries(ctx, corpusID)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []*protocol.RecoveryRecord{}
	}
	return recs, nil
}

func (s *Service) broadcast(eventType string, corpusID int64, data interface{}) {
	if s.broadcastHandler == nil {
		return
	}
	s.broadcastHandler(&protocol.WebSocketEvent{
		Type:      eventType,
		CorpusID:  corpusID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}
