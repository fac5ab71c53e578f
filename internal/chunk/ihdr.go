package chunk

import "github.com/pkg/errors"

// ColorType is the PNG IHDR color type byte (RFC 2083 §11.2.2).
type ColorType uint8

const (
	ColorGray           ColorType = 0
	ColorTrueColor       ColorType = 2
	ColorIndexed        ColorType = 3
	ColorGrayAlpha      ColorType = 4
	ColorTrueColorAlpha ColorType = 6
)

// Errors returned while validating an IHDR chunk.
var (
	ErrBadBitDepth       = errors.New("chunk: bit depth not one of {1,2,4,8,16}")
	ErrUnsupportedDepth  = errors.New("chunk: bit depth other than 8 is unsupported by this core")
	ErrBadColorType      = errors.New("chunk: color type not one of {0,2,3,4,6}")
	ErrBadInterlace      = errors.New("chunk: interlace method not 0 or 1")
	ErrUnsupportedInterlace = errors.New("chunk: Adam7 interlacing is unsupported by this core")
	ErrBadCompression    = errors.New("chunk: compression method must be 0")
	ErrBadFilterMethod   = errors.New("chunk: filter method must be 0")
	ErrZeroDimension     = errors.New("chunk: width or height is zero")
)

// IHDR holds the validated contents of the mandatory IHDR chunk.
type IHDR struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         ColorType
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8
}

// ParseIHDR decodes and validates a 13-byte IHDR payload per spec.md §4.H.
// A bit depth outside {1,2,4,8,16} or a color type outside {0,2,3,4,6} is
// rejected as malformed; a bit depth other than 8, or interlace = 1, is
// legal PNG but unsupported by this core and reported distinctly so
// callers can tell "not a PNG" from "a PNG we don't handle".
func ParseIHDR(payload []byte) (*IHDR, error) {
	if len(payload) != 13 {
		return nil, errors.Errorf("chunk: IHDR payload must be 13 bytes, got %d", len(payload))
	}

	h := &IHDR{
		Width:             be32(payload[0:4]),
		Height:            be32(payload[4:8]),
		BitDepth:          payload[8],
		ColorType:         ColorType(payload[9]),
		CompressionMethod: payload[10],
		FilterMethod:      payload[11],
		InterlaceMethod:   payload[12],
	}

	if h.Width == 0 || h.Height == 0 {
		return nil, ErrZeroDimension
	}

	switch h.BitDepth {
	case 1, 2, 4, 8, 16:
	default:
		return nil, ErrBadBitDepth
	}
	if h.BitDepth != 8 {
		return nil, ErrUnsupportedDepth
	}

	switch h.ColorType {
	case ColorGray, ColorTrueColor, ColorIndexed, ColorGrayAlpha, ColorTrueColorAlpha:
	default:
		return nil, ErrBadColorType
	}

	if h.InterlaceMethod != 0 && h.InterlaceMethod != 1 {
		return nil, ErrBadInterlace
	}
	if h.InterlaceMethod == 1 {
		return nil, ErrUnsupportedInterlace
	}
	if h.CompressionMethod != 0 {
		return nil, ErrBadCompression
	}
	if h.FilterMethod != 0 {
		return nil, ErrBadFilterMethod
	}

	return h, nil
}

// Components reports the number of components per pixel for h's color
// type (spec.md §4.H): Gray=1, GrayAlpha=2, TrueColor=3, TrueColorAlpha=4,
// Indexed=1 (a palette index, not an RGB triple, until color conversion).
func (h *IHDR) Components() int {
	switch h.ColorType {
	case ColorGray, ColorIndexed:
		return 1
	case ColorGrayAlpha:
		return 2
	case ColorTrueColor:
		return 3
	case ColorTrueColorAlpha:
		return 4
	default:
		return 0
	}
}

// BytesPerPixel is the byte stride used by scanline-filter reconstruction
// (component I), equal to Components() at the bit depth 8 this core
// requires.
func (h *IHDR) BytesPerPixel() int {
	return h.Components()
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
