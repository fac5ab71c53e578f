// Package raster implements the two PNG-specific pixel-pipeline stages
// that run after DEFLATE decompression: scanline filter reconstruction
// (RFC 2083 §6) and color-type-to-RGB conversion (RFC 2083 §11.2.2,
// §11.3.2). Both operate on the already-inflated byte stream; neither
// touches the DEFLATE or zlib machinery in internal/flate.
package raster

import (
	"github.com/pkg/errors"

	"github.com/hollowcore/pngflate/internal/pool"
)

// Filter is a PNG scanline filter type byte.
type Filter uint8

const (
	FilterNone    Filter = 0
	FilterSub     Filter = 1
	FilterUp      Filter = 2
	FilterAverage Filter = 3
	FilterPaeth   Filter = 4
)

// ErrInvalidFilter is returned when a scanline's leading filter-type byte
// is not one of {0,1,2,3,4}.
var ErrInvalidFilter = errors.New("raster: scanline filter type out of range")

// Reconstruct undoes PNG's per-scanline filtering (spec.md §4.I). data
// must have length exactly height*(1+width*bpp): each row is a 1-byte
// filter type followed by width*bpp filtered bytes. The returned buffer
// holds the reconstructed (unfiltered) pixel bytes only, width*height*bpp
// long, with the filter-type bytes stripped.
//
// The returned buffer is drawn from the shared size-bucketed byte pool;
// callers that are done with it (raster.Convert reads it but does not
// retain it) should return it with pool.PutPixelBuffer once finished, so
// repeated decodes in a long-lived process reuse the allocation.
func Reconstruct(data []byte, width, height, bpp int) ([]byte, error) {
	rowBytes := width * bpp
	wantLen := height * (1 + rowBytes)
	if len(data) != wantLen {
		return nil, errors.Errorf("raster: expected %d filtered bytes, got %d", wantLen, len(data))
	}

	out := pool.GetPixelBuffer(width, height, bpp)
	var prevRow []byte // reconstructed previous row; nil for the first row

	for y := 0; y < height; y++ {
		rowStart := y * (1 + rowBytes)
		ftype := Filter(data[rowStart])
		raw := data[rowStart+1 : rowStart+1+rowBytes]
		cur := out[y*rowBytes : (y+1)*rowBytes]

		switch ftype {
		case FilterNone:
			copy(cur, raw)
		case FilterSub:
			for i := 0; i < rowBytes; i++ {
				cur[i] = raw[i] + left(cur, i, bpp)
			}
		case FilterUp:
			for i := 0; i < rowBytes; i++ {
				cur[i] = raw[i] + up(prevRow, i)
			}
		case FilterAverage:
			for i := 0; i < rowBytes; i++ {
				sum := int(left(cur, i, bpp)) + int(up(prevRow, i))
				cur[i] = raw[i] + byte(sum/2)
			}
		case FilterPaeth:
			for i := 0; i < rowBytes; i++ {
				a := left(cur, i, bpp)
				b := up(prevRow, i)
				c := upLeft(prevRow, i, bpp)
				cur[i] = raw[i] + paeth(a, b, c)
			}
		default:
			return nil, ErrInvalidFilter
		}

		prevRow = cur
	}

	return out, nil
}

// left returns the reconstructed byte at i-bpp in the row under
// construction, or 0 if i < bpp.
func left(row []byte, i, bpp int) byte {
	if i < bpp {
		return 0
	}
	return row[i-bpp]
}

// up returns the reconstructed byte at i in the previous row, or 0 if
// this is the first row.
func up(prevRow []byte, i int) byte {
	if prevRow == nil {
		return 0
	}
	return prevRow[i]
}

// upLeft returns the reconstructed byte at i-bpp in the previous row, or
// 0 if this is the first row or i < bpp.
func upLeft(prevRow []byte, i, bpp int) byte {
	if prevRow == nil || i < bpp {
		return 0
	}
	return prevRow[i-bpp]
}

// paeth is the PNG Paeth predictor (RFC 2083 §6.6): it picks whichever
// of a (left), b (up), c (upper-left) is closest to a+b-c, breaking ties
// in favor of a, then b, then c.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
