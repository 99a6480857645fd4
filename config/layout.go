package config

// ItemsLayout describes how a sequence of fixed-width items is packed into
// whole bytes.
type ItemsLayout struct {
	NumItems    uint64
	NumBits     uint64
	NumBytes    uint64
	PaddingBits uint
}

func DeriveItemsLayout(itemBitSize uint, numItems uint64) ItemsLayout {
	numBits := uint64(itemBitSize) * numItems
	numBytes := (numBits + 7) / 8

	return ItemsLayout{
		NumItems:    numItems,
		NumBits:     numBits,
		NumBytes:    numBytes,
		PaddingBits: uint(numBytes*8 - numBits),
	}
}

// NumItemsIn returns the number of whole items held by numBits bits.
func NumItemsIn(itemBitSize uint, numBits uint64) uint64 {
	if itemBitSize == 0 {
		return 0
	}
	return numBits / uint64(itemBitSize)
}
