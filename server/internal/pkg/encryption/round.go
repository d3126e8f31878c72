package encryption

import "fmt"

// Substitute applies table to both nibbles of block.
// There is no permutation layer: the two nibbles never mix inside a round.
func Substitute(block Block, table [SBoxSize]Nibble) Block {
	h := block >> NibbleBits
	l := block & 0xF
	return Block(table[h])<<NibbleBits | Block(table[l])
}

// SubstituteNibble looks a single nibble up in table
func SubstituteNibble(n Nibble, table [SBoxSize]Nibble) (Nibble, error) {
	if int(n) >= SBoxSize {
		return 0, fmt.Errorf("%w: nibble %d", ErrDomain, n)
	}
	return table[n], nil
}

// High returns bits 4-7 of b
func (b Block) High() Nibble {
	return Nibble(b >> NibbleBits)
}

// Low returns bits 0-3 of b
func (b Block) Low() Nibble {
	return Nibble(b & 0xF)
}

// ParseBlock converts an int coming from outside the package into a Block
func ParseBlock(v int) (Block, error) {
	if v < 0 || v >= BlockSpace {
		return 0, fmt.Errorf("%w: block %d not in [0,%d]", ErrDomain, v, BlockSpace-1)
	}
	return Block(v), nil
}

// ParseNibble converts an int coming from outside the package into a Nibble
func ParseNibble(v int) (Nibble, error) {
	if v < 0 || v >= SBoxSize {
		return 0, fmt.Errorf("%w: nibble %d not in [0,%d]", ErrDomain, v, SBoxSize-1)
	}
	return Nibble(v), nil
}

// ParseBlocks converts a list of ints, failing on the first out-of-range entry
func ParseBlocks(values []int) ([]Block, error) {
	blocks := make([]Block, len(values))
	for i, v := range values {
		b, err := ParseBlock(v)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		blocks[i] = b
	}
	return blocks, nil
}
