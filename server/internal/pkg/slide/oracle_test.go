package slide

import (
	"math/rand"
	"testing"

	"SlideLab/server/internal/pkg/encryption"
)

func TestConfirmsTrueKey(t *testing.T) {
	sbox := encryption.BuildSBox()
	corpus := referenceCorpus(wideCorpusPlaintexts...)

	if !Confirms(70, 8, corpus, sbox, encryption.ReferenceRounds) {
		t.Fatal("(70, 8) must confirm its own corpus")
	}
}

func TestConfirmsRejectsWrongKeys(t *testing.T) {
	sbox := encryption.BuildSBox()
	corpus := referenceCorpus(wideCorpusPlaintexts...)

	var confirmed []Candidate
	for k0 := 0; k0 < encryption.BlockSpace; k0++ {
		for k1 := 0; k1 < encryption.BlockSpace; k1++ {
			if Confirms(encryption.Block(k0), encryption.Block(k1), corpus, sbox, encryption.ReferenceRounds) {
				confirmed = append(confirmed, Candidate{K0: encryption.Block(k0), K1: encryption.Block(k1)})
			}
		}
	}

	if len(confirmed) != 1 || confirmed[0] != (Candidate{K0: 70, K1: 8}) {
		t.Fatalf("Expected (70, 8) to be the only key reproducing the corpus, got %v", confirmed)
	}
}

// Two observations do not pin the key down: (150, 8) and (230, 120) also
// reproduce the (0, 81) corpus. Only the wider corpus rejects them.
func TestConfirmsSmallCorpusAmbiguity(t *testing.T) {
	sbox := encryption.BuildSBox()
	corpus := referenceCorpus(0, 81)

	for _, c := range []Candidate{{70, 8}, {150, 8}, {230, 120}} {
		if !Confirms(c.K0, c.K1, corpus, sbox, encryption.ReferenceRounds) {
			t.Errorf("%v should reproduce the two-entry corpus", c)
		}
	}
	for _, c := range []Candidate{{71, 8}, {70, 9}, {8, 70}} {
		if Confirms(c.K0, c.K1, corpus, sbox, encryption.ReferenceRounds) {
			t.Errorf("%v should not reproduce the two-entry corpus", c)
		}
	}
}

func TestConfirmsPrefixIsOnlyEvidence(t *testing.T) {
	sbox := encryption.BuildSBox()
	corpus := referenceCorpus(wideCorpusPlaintexts...)

	if !ConfirmsPrefix(150, 8, corpus, sbox, encryption.ReferenceRounds, 2) {
		t.Fatal("(150, 8) should pass a two-entry prefix check")
	}
	if ConfirmsPrefix(150, 8, corpus, sbox, encryption.ReferenceRounds, DefaultConfirmLimit) {
		t.Fatal("(150, 8) should fail once all eight entries are checked")
	}
}

func TestConfirmsEmptyCorpus(t *testing.T) {
	if Confirms(70, 8, NewCorpus(nil), encryption.BuildSBox(), encryption.ReferenceRounds) {
		t.Fatal("an empty corpus must not confirm anything")
	}
}

func TestCorpusCopies(t *testing.T) {
	obs := []Observation{{Plaintext: 1, Ciphertext: 2}, {Plaintext: 3, Ciphertext: 4}}
	corpus := NewCorpus(obs)
	obs[0].Ciphertext = 99

	got := corpus.Observations()
	got[1].Ciphertext = 99

	if corpus.At(0).Ciphertext != 2 || corpus.At(1).Ciphertext != 4 {
		t.Fatalf("corpus was mutated through a caller slice: %v", corpus.Observations())
	}
	if corpus.Prefix(1).Len() != 1 || corpus.Prefix(5).Len() != 2 {
		t.Fatalf("unexpected prefix lengths")
	}
}

func TestRecoverSeededRandomCipher(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		cipher, err := encryption.NewRandomCipher(rng, encryption.ReferenceRounds)
		if err != nil {
			t.Fatalf("seed %d: NewRandomCipher failed: %v", seed, err)
		}

		// random corpus with one planted slide pair; fixed points of the
		// two-round map cannot pair with themselves
		plaintexts := encryption.RandomPlaintexts(rng, 64)
		for _, p := range plaintexts {
			if q := cipher.EncryptShort(p); q != p {
				plaintexts = append(plaintexts, q)
				break
			}
		}

		result, err := Recover(GenerateCorpus(cipher, plaintexts), cipher.SBox(), cipher.Rounds(), 0)
		if err != nil {
			t.Fatalf("seed %d: Recover failed: %v", seed, err)
		}

		keys := cipher.Keys()
		want := Candidate{K0: keys[0], K1: keys[1]}
		found := false
		for _, c := range result.Confirmed {
			if c == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("seed %d: true keys %v not confirmed, got %v", seed, want, result.Confirmed)
		}
	}
}
