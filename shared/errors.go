package shared

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidItemSize = errors.New("item size must be greater than 0")
)

type ItemLengthError struct {
	ItemBitSize uint
	Expected    int
	Given       int
}

func (err ItemLengthError) Error() string {
	return fmt.Sprintf("item length mismatch for %d-bit items; expected: %d bytes, given: %d",
		err.ItemBitSize, err.Expected, err.Given)
}
