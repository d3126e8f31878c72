package slide

import (
	"fmt"

	"SlideLab/server/internal/pkg/encryption"
)

// DefaultConfirmLimit caps ConfirmsPrefix in the probabilistic mode
const DefaultConfirmLimit = 10

// Confirms re-encrypts every plaintext under [k0, k1] for rounds rounds and
// reports whether all ciphertexts match. An empty corpus confirms nothing.
func Confirms(k0, k1 encryption.Block, corpus Corpus, sbox encryption.SBox, rounds int) bool {
	return ConfirmsPrefix(k0, k1, corpus, sbox, rounds, 0)
}

// ConfirmsPrefix is Confirms restricted to the first limit observations
// (limit <= 0 checks all of them). Passing a prefix is evidence, not proof:
// a wrong key may agree with the first entries and disagree later.
func ConfirmsPrefix(k0, k1 encryption.Block, corpus Corpus, sbox encryption.SBox, rounds, limit int) bool {
	if limit > 0 {
		corpus = corpus.Prefix(limit)
	}
	if corpus.Len() == 0 {
		return false
	}

	keys := encryption.KeySchedule{k0, k1}
	for _, o := range corpus.obs {
		if encryption.Encrypt(o.Plaintext, keys, sbox, rounds) != o.Ciphertext {
			return false
		}
	}
	return true
}

// Result is the outcome of a full key recovery run
type Result struct {
	Candidates []Candidate `json:"candidates"` // passed the slide filter
	Confirmed  []Candidate `json:"confirmed"`  // also reproduce the corpus
	SlidePairs int         `json:"slide_pairs"`
	Trials     int         `json:"trials"`
}

// Found reports whether at least one candidate was confirmed
func (r *Result) Found() bool {
	return len(r.Confirmed) > 0
}

// Recover runs Attack over corpus and promotes the candidates that reproduce it.
// confirmLimit is passed to ConfirmsPrefix; zero checks the whole corpus.
func Recover(corpus Corpus, sbox encryption.SBox, rounds, confirmLimit int) (*Result, error) {
	inv, err := encryption.Invert(sbox)
	if err != nil {
		return nil, err
	}
	if rounds < 0 {
		return nil, fmt.Errorf("%w: %d", encryption.ErrInvalidRounds, rounds)
	}

	candidates, pairs, err := attack(corpus, sbox, inv)
	if err != nil {
		return nil, err
	}

	if candidates == nil {
		candidates = []Candidate{}
	}

	result := &Result{
		Candidates: candidates,
		Confirmed:  []Candidate{},
		SlidePairs: pairs,
		Trials:     pairs * KeyTrials,
	}
	for _, cand := range candidates {
		if ConfirmsPrefix(cand.K0, cand.K1, corpus, sbox, rounds, confirmLimit) {
			result.Confirmed = append(result.Confirmed, cand)
		}
	}
	return result, nil
}
