// Package lzwin implements DEFLATE's LZ77-style back-reference expansion:
// the length/distance base-plus-extra-bits tables from RFC 1951 §3.2.5,
// and a sliding-window copy that is correct for overlapping references
// (length > distance). The token shape (literal / end-of-block / copy)
// mirrors the teacher's PixOrCopy abstraction in
// internal/lossless/pixorcopy.go, adapted from VP8L's ARGB-pixel tokens
// to DEFLATE's byte tokens.
package lzwin

import "github.com/pkg/errors"

// ErrInvalidDistance is returned when a back-reference's distance exceeds
// the number of bytes produced so far in the current stream.
var ErrInvalidDistance = errors.New("lzwin: back-reference distance exceeds bytes produced so far")

// lengthBase and lengthExtraBits implement the literal/length alphabet's
// symbols 257..285 per RFC 1951 §3.2.5. Index 0 corresponds to symbol 257.
var lengthBase = [29]int{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13,
	15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
	67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtraBits = [29]int{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1,
	1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distanceBase and distanceExtraBits implement the distance alphabet's
// 30 symbols per RFC 1951 §3.2.5.
var distanceBase = [30]int{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
	33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
	1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}

var distanceExtraBits = [30]int{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
	9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// extraBitsReader is the minimal bit source Length/Distance need: reading
// extra bits LSB-first as an unsigned integer (DEFLATE's ReadBits
// convention — see internal/bitio.Reader).
type extraBitsReader interface {
	ReadBits(n int) (uint32, error)
}

// Length decodes a literal/length symbol S in [257, 285] into a copy
// length by reading S's extra bits (0..5) from r.
func Length(r extraBitsReader, symbol int) (int, error) {
	if symbol < 257 || symbol > 285 {
		return 0, errors.Errorf("lzwin: length symbol out of range: %d", symbol)
	}
	idx := symbol - 257
	extra, err := r.ReadBits(lengthExtraBits[idx])
	if err != nil {
		return 0, err
	}
	return lengthBase[idx] + int(extra), nil
}

// Distance decodes a distance-alphabet symbol D in [0, 29] into a copy
// distance by reading D's extra bits (0..13) from r.
func Distance(r extraBitsReader, symbol int) (int, error) {
	if symbol < 0 || symbol > 29 {
		return 0, errors.Errorf("lzwin: distance symbol out of range: %d", symbol)
	}
	extra, err := r.ReadBits(distanceExtraBits[symbol])
	if err != nil {
		return 0, err
	}
	return distanceBase[symbol] + int(extra), nil
}

// Copy appends length bytes to out, each read from position
// len(out)-distance+(i mod distance), and returns the extended slice.
// This is correct for overlapping references (length > distance) because
// each source byte is read from out as it grows, never from a
// pre-snapshot — exactly the invariant the teacher's predictor/backward
// reference code also depends on.
func Copy(out []byte, length, distance int) ([]byte, error) {
	if distance <= 0 || distance > len(out) {
		return nil, ErrInvalidDistance
	}
	start := len(out) - distance
	for i := 0; i < length; i++ {
		out = append(out, out[start+i])
	}
	return out, nil
}
