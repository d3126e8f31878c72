package encryption

import "errors"

var (
	ErrInvalidSBox        = errors.New("s-box is not a bijection over [0,15]")
	ErrDomain             = errors.New("value outside its valid range")
	ErrInvalidKeySchedule = errors.New("key schedule must not be empty")
	ErrInvalidRounds      = errors.New("round count must not be negative")
)
