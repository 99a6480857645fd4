package bitstream

// cursor is a bit position split into a byte index and a bit offset within
// that byte. bitOff is always kept in [0, 8).
type cursor struct {
	byteIdx uint64
	bitOff  uint
}

func (c *cursor) tell() uint64 {
	return c.byteIdx<<3 + uint64(c.bitOff)
}

func (c *cursor) set(pos uint64) {
	c.byteIdx = pos >> 3
	c.bitOff = uint(pos & 7)
}

func (c *cursor) advance(n uint) {
	c.bitOff += n
	c.byteIdx += uint64(c.bitOff >> 3)
	c.bitOff &= 7
}

func (c *cursor) aligned() bool {
	return c.bitOff == 0
}

// seek moves the cursor to origin+offset, which must land in [0, length].
func (c *cursor) seek(offset int64, origin Origin, length uint64) error {
	var base int64
	switch origin {
	case Begin:
	case Current:
		base = int64(c.tell())
	case End:
		base = int64(length)
	default:
		return newError(ErrSeek, "invalid seek origin %d", int(origin))
	}

	pos := base + offset
	if pos < 0 {
		return newError(ErrSeek, "seek to negative position %d", pos)
	}
	if uint64(pos) > length {
		return newError(ErrSeek, "seek to %d out of range; expected: <= %d", pos, length)
	}

	c.set(uint64(pos))
	return nil
}
