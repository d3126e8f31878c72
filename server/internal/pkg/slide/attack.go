// Package slide recovers the two round keys of a period-2 substitution cipher
// from known plaintext/ciphertext pairs with a slide attack.
//
// With keys (k0, k1) repeating every two rounds, a 2r-round encryption is the
// two-round map T(x) = S(S(x^k0)^k1) applied r times. If p2 = T(p1) then also
// c2 = T(c1), whatever the round count. Guessing k0 fixes k1 through the
// plaintext side and the ciphertext side filters the guess, so the search
// costs 256 trials instead of a walk over the full key space.
package slide

import (
	"errors"
	"fmt"

	"SlideLab/server/internal/pkg/encryption"
)

// KeyTrials is the number of k0 guesses per slide pair. XOR with a full-width
// key couples both nibbles before substitution, so the search cannot be split
// into two 16-value nibble searches.
const KeyTrials = encryption.BlockSpace

var ErrInsufficientData = errors.New("slide attack needs at least two distinct observations")

// Candidate is a hypothesised key pair
type Candidate struct {
	K0 encryption.Block `json:"k0"`
	K1 encryption.Block `json:"k1"`
}

// Keys returns the candidate as a key schedule
func (c Candidate) Keys() encryption.KeySchedule {
	return encryption.KeySchedule{c.K0, c.K1}
}

func (c Candidate) String() string {
	return fmt.Sprintf("(%d, %d)", c.K0, c.K1)
}

// EnumerateCandidates derives k1 for every k0 assuming p2 is the two-round image of p1.
// The result always has KeyTrials entries indexed by k0.
func EnumerateCandidates(p1, p2 encryption.Block, sbox encryption.SBox, inv encryption.InverseSBox) []Candidate {
	// undoing the last substitution of p2 does not depend on the guess
	pp := encryption.Substitute(p2, inv)

	candidates := make([]Candidate, 0, KeyTrials)
	for k := 0; k < KeyTrials; k++ {
		k0 := encryption.Block(k)
		p := encryption.Substitute(p1^k0, sbox)
		candidates = append(candidates, Candidate{K0: k0, K1: p ^ pp})
	}
	return candidates
}

// RecoverCandidates treats (p1,c1) -> (p2,c2) as a slide pair and returns the
// candidates that also map c1 onto c2 in two rounds. Survivors still need
// Confirms; false positives are expected. A pair with p1 == p2 is one
// observation seen twice and fails with ErrInsufficientData.
func RecoverCandidates(p1, c1, p2, c2 encryption.Block, sbox encryption.SBox, inv encryption.InverseSBox) ([]Candidate, error) {
	if p1 == p2 {
		return nil, fmt.Errorf("%w: both observations have plaintext %d", ErrInsufficientData, p1)
	}

	var survivors []Candidate
	for _, cand := range EnumerateCandidates(p1, p2, sbox, inv) {
		if twoRounds(c1, cand, sbox) == c2 {
			survivors = append(survivors, cand)
		}
	}
	return survivors, nil
}

// Attack tries every ordered pair of observations with distinct plaintexts as a
// slide pair and returns the union of the surviving candidates in first-seen order.
func Attack(corpus Corpus, sbox encryption.SBox, inv encryption.InverseSBox) ([]Candidate, error) {
	candidates, _, err := attack(corpus, sbox, inv)
	return candidates, err
}

func attack(corpus Corpus, sbox encryption.SBox, inv encryption.InverseSBox) ([]Candidate, int, error) {
	if corpus.Distinct() < 2 {
		return nil, 0, fmt.Errorf("%w: got %d", ErrInsufficientData, corpus.Distinct())
	}

	seen := make(map[Candidate]bool)
	var out []Candidate
	pairs := 0

	for i := 0; i < corpus.Len(); i++ {
		a := corpus.At(i)
		for j := 0; j < corpus.Len(); j++ {
			b := corpus.At(j)
			if i == j || a.Plaintext == b.Plaintext {
				continue
			}
			pairs++
			survivors, err := RecoverCandidates(a.Plaintext, a.Ciphertext, b.Plaintext, b.Ciphertext, sbox, inv)
			if err != nil {
				return nil, 0, err
			}
			for _, cand := range survivors {
				if !seen[cand] {
					seen[cand] = true
					out = append(out, cand)
				}
			}
		}
	}
	return out, pairs, nil
}

func twoRounds(x encryption.Block, cand Candidate, sbox encryption.SBox) encryption.Block {
	x = encryption.Substitute(x^cand.K0, sbox)
	return encryption.Substitute(x^cand.K1, sbox)
}
