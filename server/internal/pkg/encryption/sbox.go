package encryption

import "fmt"

var referenceSBox = SBox{13, 5, 8, 3, 1, 9, 12, 11, 6, 14, 15, 10, 2, 7, 4, 0}

// BuildSBox returns the fixed reference substitution table
func BuildSBox() SBox {
	return referenceSBox
}

// NewSBox builds an S-box from caller supplied values and validates it
func NewSBox(values []int) (SBox, error) {
	var sbox SBox
	if len(values) != SBoxSize {
		return sbox, fmt.Errorf("%w: s-box needs %d entries, got %d", ErrDomain, SBoxSize, len(values))
	}

	for i, v := range values {
		n, err := ParseNibble(v)
		if err != nil {
			return sbox, fmt.Errorf("s-box entry %d: %w", i, err)
		}
		sbox[i] = n
	}

	if err := sbox.Validate(); err != nil {
		return sbox, err
	}
	return sbox, nil
}

// Validate reports ErrInvalidSBox if some output value is missing or repeated
func (s SBox) Validate() error {
	var seen [SBoxSize]bool
	for i, v := range s {
		if int(v) >= SBoxSize {
			return fmt.Errorf("%w: entry %d is %d", ErrInvalidSBox, i, v)
		}
		if seen[v] {
			return fmt.Errorf("%w: value %d appears more than once", ErrInvalidSBox, v)
		}
		seen[v] = true
	}
	return nil
}

// Invert computes the inverse table of sbox
func Invert(sbox SBox) (InverseSBox, error) {
	var inv InverseSBox
	if err := sbox.Validate(); err != nil {
		return inv, err
	}

	for i, v := range sbox {
		inv[v] = Nibble(i)
	}
	return inv, nil
}

// Ints converts the table for JSON and config output
func (s SBox) Ints() []int {
	out := make([]int, SBoxSize)
	for i, v := range s {
		out[i] = int(v)
	}
	return out
}
