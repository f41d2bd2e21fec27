// Package conv formats numbers into caller-owned buffers. It exists so MCU
// builds can log register values without pulling in fmt or strconv.
package conv

import "isrcell-go/x/mathx"

const hexDigits = "0123456789abcdef"

// AppendUint appends the decimal form of n to dst.
func AppendUint(dst []byte, n uint64) []byte {
	var tmp [20]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(dst, tmp[i:]...)
}

// AppendHex appends n in lowercase hex, without a prefix, zero-padded
// to at least digits places (clamped to 1..8).
func AppendHex(dst []byte, n uint32, digits int) []byte {
	digits = mathx.Clamp(digits, 1, 8)
	width := 8
	for width > digits && n>>(4*uint(width-1)) == 0 {
		width--
	}
	for s := width - 1; s >= 0; s-- {
		dst = append(dst, hexDigits[(n>>(4*uint(s)))&0xF])
	}
	return dst
}
