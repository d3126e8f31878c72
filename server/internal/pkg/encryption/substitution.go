package encryption

import "fmt"

// NewCipher validates the parameters and builds an immutable cipher
func NewCipher(sbox SBox, keys KeySchedule, rounds int) (*Cipher, error) {
	inv, err := Invert(sbox)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrInvalidKeySchedule
	}
	if rounds < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRounds, rounds)
	}

	cipher := &Cipher{
		sbox:   sbox,
		inv:    inv,
		keys:   append(KeySchedule(nil), keys...),
		rounds: rounds,
	}
	return cipher, nil
}

// NewReferenceCipher returns the 100-round cipher with the reference S-box and keys
func NewReferenceCipher() *Cipher {
	cipher, err := NewCipher(BuildSBox(), ReferenceKeys, ReferenceRounds)
	if err != nil {
		panic(err)
	}
	return cipher
}

// Encrypt runs rounds iterations of key addition followed by substitution
func Encrypt(plaintext Block, keys KeySchedule, sbox SBox, rounds int) Block {
	block := plaintext
	for i := 0; i < rounds; i++ {
		block ^= keys[i%len(keys)]
		block = Substitute(block, sbox)
	}
	return block
}

// EncryptShort is Encrypt fixed at two rounds, exposing one full key period
func EncryptShort(plaintext Block, keys KeySchedule, sbox SBox) Block {
	return Encrypt(plaintext, keys, sbox, ShortRounds)
}

// Decrypt undoes Encrypt by walking the rounds backwards
func Decrypt(ciphertext Block, keys KeySchedule, inv InverseSBox, rounds int) Block {
	block := ciphertext
	for i := rounds - 1; i >= 0; i-- {
		block = Substitute(block, inv)
		block ^= keys[i%len(keys)]
	}
	return block
}

// EncryptBlock encrypts one block with the cipher's key schedule
func (c *Cipher) EncryptBlock(plaintext Block) Block {
	return Encrypt(plaintext, c.keys, c.sbox, c.rounds)
}

// EncryptShort encrypts one block for two rounds only
func (c *Cipher) EncryptShort(plaintext Block) Block {
	return EncryptShort(plaintext, c.keys, c.sbox)
}

// DecryptBlock decrypts one block with the cipher's key schedule
func (c *Cipher) DecryptBlock(ciphertext Block) Block {
	return Decrypt(ciphertext, c.keys, c.inv, c.rounds)
}

// WithKeys returns a cipher sharing the tables and round count but using keys
func (c *Cipher) WithKeys(keys KeySchedule) (*Cipher, error) {
	return NewCipher(c.sbox, keys, c.rounds)
}

func (c *Cipher) SBox() SBox {
	return c.sbox
}

func (c *Cipher) InverseSBox() InverseSBox {
	return c.inv
}

// Ints converts the schedule for JSON and config output
func (k KeySchedule) Ints() []int {
	out := make([]int, len(k))
	for i, v := range k {
		out[i] = int(v)
	}
	return out
}

// Keys returns a copy of the key schedule
func (c *Cipher) Keys() KeySchedule {
	return append(KeySchedule(nil), c.keys...)
}

func (c *Cipher) Rounds() int {
	return c.rounds
}

// BlockSize returns the block size in bits
func (c *Cipher) BlockSize() int {
	return BlockBits
}

// Name returns the cipher name
func (c *Cipher) Name() string {
	return fmt.Sprintf("SPN8-%dr", c.rounds)
}
