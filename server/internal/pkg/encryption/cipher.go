package encryption

// BlockCipher is the interface the single-block ciphers in this package implement
type BlockCipher interface {
	// EncryptBlock encrypts one block under the cipher's own key schedule
	EncryptBlock(plaintext Block) Block

	// DecryptBlock reverses EncryptBlock
	DecryptBlock(ciphertext Block) Block

	// BlockSize returns the block size in bits
	BlockSize() int

	// Name returns the algorithm name
	Name() string
}

const (
	BlockBits  = 8  // 8-bit blocks
	NibbleBits = 4  // S-box input/output width
	SBoxSize   = 16 // 1 << NibbleBits entries

	// BlockSpace is the number of distinct blocks (and of distinct round keys)
	BlockSpace = 1 << BlockBits

	// ShortRounds is the fixed round count of EncryptShort
	ShortRounds = 2

	ReferenceRounds = 100
)

// Block is one 8-bit cipher block: high nibble in bits 4-7, low nibble in bits 0-3
type Block uint8

// Nibble is a 4-bit value in [0,15]
type Nibble uint8

// SBox is a bijective 4-bit substitution table
type SBox [SBoxSize]Nibble

// InverseSBox satisfies InverseSBox[SBox[x]] == x for every x
type InverseSBox [SBoxSize]Nibble

// KeySchedule holds the round keys; round i uses keys[i % len(keys)]
type KeySchedule []Block

// ReferenceKeys is the period-2 schedule of the demonstration configuration
var ReferenceKeys = KeySchedule{70, 8}

// Cipher bundles the substitution tables, key schedule and round count.
// It is immutable once built by NewCipher.
type Cipher struct {
	sbox   SBox
	inv    InverseSBox
	keys   KeySchedule
	rounds int
}
