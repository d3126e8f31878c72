package storage

import (
	"context"
	"sync"
	"time"

	"SlideLab/server/internal/pkg/slide"
	"SlideLab/server/internal/protocol"
)

// Memory is an in-process store with the same behaviour as DB.
// It is used when no database is configured and in tests.
type Memory struct {
	mu         sync.RWMutex
	nextID     int64
	corpora    map[int64]*protocol.CorpusRecord
	recoveries map[int64][]*protocol.RecoveryRecord
}

func NewMemory() *Memory {
	return &Memory{
		corpora:    make(map[int64]*protocol.CorpusRecord),
		recoveries: make(map[int64][]*protocol.RecoveryRecord),
	}
}

func (m *Memory) SaveCorpus(ctx context.Context, rec *protocol.CorpusRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	rec.ID = m.nextID
	rec.CreatedAt = time.Now().Unix()

	stored := *rec
	stored.SBox = append([]int(nil), rec.SBox...)
	stored.Observations = append([]slide.Observation(nil), rec.Observations...)
	m.corpora[rec.ID] = &stored
	return rec.ID, nil
}

func (m *Memory) GetCorpus(ctx context.Context, corpusID int64) (*protocol.CorpusRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.corpora[corpusID]
	if !ok {
		return nil, nil
	}
	out := *stored
	out.SBox = append([]int(nil), stored.SBox...)
	out.Observations = append([]slide.Observation(nil), stored.Observations...)
	return &out, nil
}

func (m *Memory) SaveRecovery(ctx context.Context, corpusID int64, cand slide.Candidate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.recoveries[corpusID] {
		if r.K0 == int(cand.K0) && r.K1 == int(cand.K1) {
			return r.ID, nil
		}
	}

	m.nextID++
	r := &protocol.RecoveryRecord{
		ID:        m.nextID,
		CorpusID:  corpusID,
		K0:        int(cand.K0),
		K1:        int(cand.K1),
		CreatedAt: time.Now().Unix(),
	}
	m.recoveries[corpusID] = append(m.recoveries[corpusID], r)
	return r.ID, nil
}

func (m *Memory) ListRecoveries(ctx context.Context, corpusID int64) ([]*protocol.RecoveryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*protocol.RecoveryRecord, 0, len(m.recoveries[corpusID]))
	for _, r := range m.recoveries[corpusID] {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}
