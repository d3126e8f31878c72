package encryption

import "math/rand"

// RandomSBox shuffles the identity table with rng. The result is always a bijection.
func RandomSBox(rng *rand.Rand) SBox {
	var sbox SBox
	for i := range sbox {
		sbox[i] = Nibble(i)
	}
	rng.Shuffle(len(sbox), func(i, j int) {
		sbox[i], sbox[j] = sbox[j], sbox[i]
	})
	return sbox
}

// RandomKeySchedule draws one 16-bit master key and splits it into two
// round keys, low byte first
func RandomKeySchedule(rng *rand.Rand) KeySchedule {
	master := uint16(rng.Uint32())
	return KeySchedule{Block(master), Block(master >> 8)}
}

// NewRandomCipher builds a cipher with a shuffled S-box and a random period-2 schedule
func NewRandomCipher(rng *rand.Rand, rounds int) (*Cipher, error) {
	sbox := RandomSBox(rng)
	keys := RandomKeySchedule(rng)
	return NewCipher(sbox, keys, rounds)
}

// RandomPlaintexts draws n blocks uniformly, repeats allowed
func RandomPlaintexts(rng *rand.Rand, n int) []Block {
	out := make([]Block, n)
	for i := range out {
		out[i] = Block(rng.Intn(BlockSpace))
	}
	return out
}

// AllBlocks returns every block in ascending order
func AllBlocks() []Block {
	out := make([]Block, BlockSpace)
	for i := range out {
		out[i] = Block(i)
	}
	return out
}
