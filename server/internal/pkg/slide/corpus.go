package slide

import "SlideLab/server/internal/pkg/encryption"

// Observation is one known plaintext/ciphertext pair
type Observation struct {
	Plaintext  encryption.Block `json:"plaintext"`
	Ciphertext encryption.Block `json:"ciphertext"`
}

// Corpus is an ordered, read-only list of observations made under one cipher
type Corpus struct {
	obs []Observation
}

// NewCorpus copies obs into a corpus
func NewCorpus(obs []Observation) Corpus {
	return Corpus{obs: append([]Observation(nil), obs...)}
}

// GenerateCorpus encrypts every plaintext with cipher
func GenerateCorpus(cipher encryption.BlockCipher, plaintexts []encryption.Block) Corpus {
	obs := make([]Observation, len(plaintexts))
	for i, p := range plaintexts {
		obs[i] = Observation{Plaintext: p, Ciphertext: cipher.EncryptBlock(p)}
	}
	return Corpus{obs: obs}
}

func (c Corpus) Len() int {
	return len(c.obs)
}

func (c Corpus) At(i int) Observation {
	return c.obs[i]
}

// Observations returns a copy of the corpus entries
func (c Corpus) Observations() []Observation {
	return append([]Observation(nil), c.obs...)
}

// Prefix returns the first n observations, or the whole corpus if it is shorter
func (c Corpus) Prefix(n int) Corpus {
	if n < 0 || n >= len(c.obs) {
		return c
	}
	return Corpus{obs: c.obs[:n:n]}
}

// Distinct counts observations with distinct plaintexts
func (c Corpus) Distinct() int {
	var seen [encryption.BlockSpace]bool
	n := 0
	for _, o := range c.obs {
		if !seen[o.Plaintext] {
			seen[o.Plaintext] = true
			n++
		}
	}
	return n
}
