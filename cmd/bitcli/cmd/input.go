package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spacemeshos/bitbuffer/bitstream"
	"github.com/spacemeshos/bitbuffer/persistence"
	"github.com/spacemeshos/bitbuffer/shared"
)

// openInput returns a Reader over a hex string, or over a snapshot file when
// arg starts with '@'. nofValidBits applies to hex input only.
func openInput(arg string, nofValidBits uint64) (*bitstream.Reader, error) {
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		s, err := persistence.Load(path)
		if err != nil {
			return nil, err
		}
		return s.Reader()
	}

	data, err := decodeHex(arg)
	if err != nil {
		return nil, err
	}
	return bitstream.NewReaderBits(data, nofValidBits)
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	s = strings.ReplaceAll(s, "_", "")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return data, nil
}

// field is a value with the number of bits it is written with.
type field struct {
	value uint64
	width uint
}

// parseField parses "value:width". The value may be decimal, 0x-prefixed hex,
// 0b-prefixed binary or negative, in which case its two's complement is used.
func parseField(s string) (field, error) {
	valStr, widthStr, ok := strings.Cut(s, ":")
	if !ok {
		return field{}, fmt.Errorf("invalid field %q; expected: value:width", s)
	}

	width, err := parseWidth(widthStr)
	if err != nil {
		return field{}, err
	}

	var value uint64
	if strings.HasPrefix(valStr, "-") {
		var v int64
		v, err = strconv.ParseInt(valStr, 0, 64)
		value = uint64(v)
	} else {
		value, err = strconv.ParseUint(valStr, 0, 64)
	}
	if err != nil {
		return field{}, fmt.Errorf("invalid field value %q: %w", valStr, err)
	}

	return field{value: value, width: width}, nil
}

func parseWidth(s string) (uint, error) {
	width, err := strconv.ParseUint(s, 10, 8)
	if err != nil || width > 64 {
		return 0, fmt.Errorf("invalid width; expected: 0..64, given: %q", s)
	}
	return uint(width), nil
}

// warnTruncated logs when writing f drops significant bits of its value.
// Negative values sign-extended beyond the width are not truncated.
func warnTruncated(f field) {
	if f.width >= 64 || f.value == 0 {
		return
	}
	if f.width > 0 && f.value>>(f.width-1) == ^uint64(0)>>(f.width-1) {
		return
	}

	if shared.NumBits(f.value) > f.width {
		logger.Warn("cli: value truncated",
			zap.Uint64("value", f.value),
			zap.Uint("width", f.width),
		)
	}
}

// groupBits splits a bit dump into space-separated groups of size bits.
func groupBits(dump string, size uint) string {
	if size == 0 || uint(len(dump)) <= size {
		return dump
	}

	var sb strings.Builder
	sb.Grow(len(dump) + len(dump)/int(size))
	for i := 0; i < len(dump); i += int(size) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(dump[i:min(i+int(size), len(dump))])
	}
	return sb.String()
}
