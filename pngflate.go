// Package pngflate implements a from-scratch PNG decoder: DEFLATE
// decompression (RFC 1951), zlib framing (RFC 1950), and PNG scanline
// reconstruction and color conversion (RFC 2083). It registers itself
// with the standard image package so image.Decode can read PNG files
// through this implementation.
package pngflate

import (
	"encoding/binary"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/pkg/errors"

	"github.com/hollowcore/pngflate/internal/bitio"
	"github.com/hollowcore/pngflate/internal/checksum"
	"github.com/hollowcore/pngflate/internal/chunk"
	"github.com/hollowcore/pngflate/internal/flate"
	"github.com/hollowcore/pngflate/internal/huffman"
	"github.com/hollowcore/pngflate/internal/lzwin"
	"github.com/hollowcore/pngflate/internal/pool"
	"github.com/hollowcore/pngflate/internal/raster"
)

func init() {
	image.RegisterFormat("png", "\x89PNG\r\n\x1a\n", decodeImage, decodeConfigImage)
}

// Limits bounds the resources a decode is allowed to consume, to let
// callers defend against decompression-bomb PNGs (an enormous advertised
// width/height, or a compressed stream that inflates far beyond what the
// IHDR dimensions justify) without changing core decode semantics.
// Decode applies DefaultLimits; DecodeWithLimits lets a caller tighten or
// loosen them.
type Limits struct {
	MaxWidth    int
	MaxHeight   int
	MaxInflated int64 // maximum bytes the DEFLATE stream may expand to
}

// DefaultLimits is effectively unbounded, so Decode behaves exactly as
// spec.md describes with no resource ceiling of its own.
var DefaultLimits = Limits{
	MaxWidth:    math.MaxInt32,
	MaxHeight:   math.MaxInt32,
	MaxInflated: math.MaxInt64,
}

// Image is the decoded result: a tightly packed row-major RGB byte
// buffer, satisfying image.Image via At/ColorModel/Bounds.
type Image struct {
	Width, Height int
	Pix           []byte // len == Width*Height*3
}

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

// At implements image.Image.
func (img *Image) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return color.RGBA{}
	}
	i := (y*img.Width + x) * 3
	return color.RGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2], A: 255}
}

// readAll reads all of r. If r implements Len() int (e.g. *bytes.Reader),
// a single exact-sized allocation replaces io.ReadAll's repeated
// doublings, matching the teacher's own readAll helper in webp.go.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		if n := lr.Len(); n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// Decode reads a PNG image from r with DefaultLimits.
func Decode(r io.Reader) (*Image, error) {
	return DecodeWithLimits(r, DefaultLimits)
}

// DecodeBytes decodes a PNG image already held in memory.
func DecodeBytes(data []byte) (*Image, error) {
	return decode(data, DefaultLimits)
}

// DecodeWithLimits reads and decodes a PNG image from r, rejecting
// streams whose declared or actual size exceeds limits.
func DecodeWithLimits(r io.Reader, limits Limits) (*Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "pngflate: reading input")
	}
	return decode(data, limits)
}

func decodeImage(r io.Reader) (image.Image, error) {
	return Decode(r)
}

// DecodeConfig returns the color model and dimensions of a PNG image
// without decoding or inflating its pixel data — it reads just the
// signature and the first (mandatory) IHDR chunk.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, errors.Wrap(err, "pngflate: reading input")
	}

	const ihdrChunkLen = 8 + 13 + 4 // length+name header, 13-byte payload, CRC
	if len(data) < len(chunk.Signature)+ihdrChunkLen {
		return image.Config{}, wrapError(chunk.ErrTruncated, "", -1)
	}
	for i, b := range chunk.Signature {
		if data[i] != b {
			return image.Config{}, wrapError(chunk.ErrBadSignature, "", -1)
		}
	}

	pos := len(chunk.Signature)
	length := binary.BigEndian.Uint32(data[pos : pos+4])
	name := string(data[pos+4 : pos+8])
	if name != "IHDR" || length != 13 {
		return image.Config{}, wrapError(chunk.ErrMissingIHDR, "", int64(pos))
	}
	payload := data[pos+8 : pos+8+13]
	storedCRC := binary.BigEndian.Uint32(data[pos+8+13 : pos+8+13+4])
	if checksum.CRC32Of(data[pos+4:pos+8], payload) != storedCRC {
		return image.Config{}, wrapError(chunk.ErrCrcMismatch, "IHDR", int64(pos))
	}

	h, err := chunk.ParseIHDR(payload)
	if err != nil {
		return image.Config{}, wrapError(err, "IHDR", int64(pos))
	}
	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

func decodeConfigImage(r io.Reader) (image.Config, error) {
	return DecodeConfig(r)
}

func decode(data []byte, limits Limits) (*Image, error) {
	log := currentLogger()

	res, err := chunk.Parse(data, log)
	if err != nil {
		return nil, wrapError(err, "", -1)
	}

	h := res.IHDR
	if int(h.Width) > limits.MaxWidth || int(h.Height) > limits.MaxHeight {
		return nil, newError(KindLimitExceeded, "", -1, errors.Errorf(
			"pngflate: image %dx%d exceeds limits %dx%d", h.Width, h.Height, limits.MaxWidth, limits.MaxHeight))
	}

	inflated, err := flate.DecodeZlib(res.IDAT)
	if err != nil {
		return nil, wrapError(err, "IDAT", -1)
	}
	if int64(len(inflated)) > limits.MaxInflated {
		return nil, newError(KindLimitExceeded, "IDAT", -1, errors.Errorf(
			"pngflate: inflated size %d exceeds limit %d", len(inflated), limits.MaxInflated))
	}
	log.Debug("inflated IDAT", "bytes", len(inflated))

	bpp := h.BytesPerPixel()
	pix, err := raster.Reconstruct(inflated, int(h.Width), int(h.Height), bpp)
	if err != nil {
		return nil, wrapError(err, "", -1)
	}

	rgb, err := raster.Convert(pix, int(h.Width), int(h.Height), h.ColorType, res.Palette, res.Background, res.Transparency)
	pool.PutPixelBuffer(pix)
	if err != nil {
		return nil, wrapError(err, "", -1)
	}

	return &Image{Width: int(h.Width), Height: int(h.Height), Pix: rgb}, nil
}

// wrapError maps an internal sentinel error to a *Error with the
// matching Kind. Unknown errors default to MalformedHeader, the
// broadest "this PNG is not well-formed" bucket.
func wrapError(err error, chunkName string, offset int64) *Error {
	if perr, ok := errors.Cause(err).(*Error); ok {
		return perr
	}

	kind := KindMalformedHeader
	switch {
	case errors.Is(err, bitio.ErrUnexpectedEnd):
		kind = KindInputTruncated
	case errors.Is(err, chunk.ErrTruncated):
		kind = KindInputTruncated
	case errors.Is(err, flate.ErrZlibTooShort):
		kind = KindInputTruncated
	case errors.Is(err, chunk.ErrBadSignature):
		kind = KindBadSignature
	case errors.Is(err, chunk.ErrCrcMismatch):
		kind = KindChunkCrcMismatch
	case errors.Is(err, chunk.ErrUnknownCritical):
		kind = KindUnknownCriticalChunk
	case errors.Is(err, chunk.ErrUnsupportedDepth), errors.Is(err, chunk.ErrUnsupportedInterlace):
		kind = KindUnsupported
	case errors.Is(err, chunk.ErrBadBitDepth),
		errors.Is(err, chunk.ErrBadColorType),
		errors.Is(err, chunk.ErrBadInterlace),
		errors.Is(err, chunk.ErrBadCompression),
		errors.Is(err, chunk.ErrBadFilterMethod),
		errors.Is(err, chunk.ErrZeroDimension),
		errors.Is(err, chunk.ErrMissingIHDR),
		errors.Is(err, chunk.ErrDuplicateIHDR),
		errors.Is(err, chunk.ErrMissingPalette),
		errors.Is(err, chunk.ErrPaletteAfterIDAT),
		errors.Is(err, chunk.ErrIDATBeforeIHDR),
		errors.Is(err, chunk.ErrNonContiguousIDAT),
		errors.Is(err, chunk.ErrNoIDAT),
		errors.Is(err, chunk.ErrNoIEND),
		errors.Is(err, chunk.ErrDataAfterIEND),
		errors.Is(err, raster.ErrBadPaletteIndex):
		kind = KindMalformedHeader
	case errors.Is(err, flate.ErrZlibAdlerMismatch):
		kind = KindAdlerMismatch
	case errors.Is(err, flate.ErrZlibBadMethod),
		errors.Is(err, flate.ErrZlibBadWindow),
		errors.Is(err, flate.ErrZlibCheckBits),
		errors.Is(err, flate.ErrZlibPresetDict):
		kind = KindZlibFraming
	case errors.Is(err, flate.ErrInvalidBlockType):
		kind = KindInvalidBlockType
	case errors.Is(err, flate.ErrInvalidStoredLen):
		kind = KindInvalidStoredLength
	case errors.Is(err, flate.ErrInvalidCodeLength),
		errors.Is(err, huffman.ErrEmptyCodeLengths),
		errors.Is(err, huffman.ErrOversubscribed),
		errors.Is(err, huffman.ErrIncompleteCode),
		errors.Is(err, huffman.ErrCodeLengthTooLong):
		kind = KindInvalidHuffmanTable
	case errors.Is(err, huffman.ErrInvalidCode):
		kind = KindInvalidCode
	case errors.Is(err, lzwin.ErrInvalidDistance):
		kind = KindInvalidDistance
	case errors.Is(err, raster.ErrInvalidFilter):
		kind = KindInvalidFilter
	}

	return newError(kind, chunkName, offset, err)
}
