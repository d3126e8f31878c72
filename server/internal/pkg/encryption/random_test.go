package encryption

import (
	"math/rand"
	"testing"
)

func TestRandomSBoxIsBijective(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		sbox := RandomSBox(rand.New(rand.NewSource(seed)))
		if err := sbox.Validate(); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
	}
}

func TestRandomCipherIsReproducible(t *testing.T) {
	a, err := NewRandomCipher(rand.New(rand.NewSource(789)), ReferenceRounds)
	if err != nil {
		t.Fatalf("NewRandomCipher failed: %v", err)
	}
	b, err := NewRandomCipher(rand.New(rand.NewSource(789)), ReferenceRounds)
	if err != nil {
		t.Fatalf("NewRandomCipher failed: %v", err)
	}

	if a.SBox() != b.SBox() {
		t.Fatalf("same seed gave different s-boxes: %v vs %v", a.SBox(), b.SBox())
	}
	ka, kb := a.Keys(), b.Keys()
	if len(ka) != 2 || ka[0] != kb[0] || ka[1] != kb[1] {
		t.Fatalf("same seed gave different keys: %v vs %v", ka, kb)
	}
	for v := 0; v < BlockSpace; v++ {
		if a.EncryptBlock(Block(v)) != b.EncryptBlock(Block(v)) {
			t.Fatalf("ciphers disagree on %d", v)
		}
	}
}

func TestRandomPlaintexts(t *testing.T) {
	pts := RandomPlaintexts(rand.New(rand.NewSource(1)), 256)
	if len(pts) != 256 {
		t.Fatalf("Expected 256 plaintexts, got %d", len(pts))
	}

	again := RandomPlaintexts(rand.New(rand.NewSource(1)), 256)
	for i := range pts {
		if pts[i] != again[i] {
			t.Fatalf("entry %d differs between runs with the same seed", i)
		}
	}
}

func TestAllBlocks(t *testing.T) {
	blocks := AllBlocks()
	if len(blocks) != BlockSpace || blocks[0] != 0 || blocks[255] != 255 {
		t.Fatalf("Unexpected block list of length %d", len(blocks))
	}
}
