package helpers

import (
	"errors"
	"fmt"

	"SlideLab/server/internal/pkg/encryption"
)

// MaxCorpusSize bounds a single corpus; there are only 256 distinct plaintexts
const MaxCorpusSize = encryption.BlockSpace

// ValidatePlaintexts converts request plaintexts into blocks
func ValidatePlaintexts(values []int) ([]encryption.Block, error) {
	if len(values) == 0 {
		return nil, errors.New("no plaintexts given")
	}
	if len(values) > MaxCorpusSize {
		return nil, fmt.Errorf("at most %d plaintexts per corpus, got %d", MaxCorpusSize, len(values))
	}
	return encryption.ParseBlocks(values)
}

// ValidateRandomCount checks the size of a random corpus request
func ValidateRandomCount(n int) error {
	if n <= 0 || n > MaxCorpusSize {
		return fmt.Errorf("random corpus size must be in [1, %d], got %d", MaxCorpusSize, n)
	}
	return nil
}

// ValidateKeyPair converts a request key pair into blocks
func ValidateKeyPair(k0, k1 int) (encryption.Block, encryption.Block, error) {
	b0, err := encryption.ParseBlock(k0)
	if err != nil {
		return 0, 0, fmt.Errorf("k0: %w", err)
	}
	b1, err := encryption.ParseBlock(k1)
	if err != nil {
		return 0, 0, fmt.Errorf("k1: %w", err)
	}
	return b0, b1, nil
}

// ValidateCorpusID checks an identifier taken from a URL
func ValidateCorpusID(id int64) error {
	if id <= 0 {
		return errors.New("invalid corpus ID")
	}
	return nil
}
