// Package chunk implements the PNG container framing (RFC 2083 §5): the
// 8-byte signature, the length/name/payload/CRC chunk structure, and
// dispatch on the critical and recognized ancillary chunk names. The
// chunk-loop shape — read a fixed header, validate, append payload,
// repeat until a terminator — mirrors the teacher's RIFF chunk loop in
// internal/container/parser.go, generalized from WebP's FourCC chunks to
// PNG's chunk names.
package chunk

import (
	"encoding/binary"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/hollowcore/pngflate/internal/checksum"
)

// Signature is the 8 magic bytes every PNG stream must begin with.
var Signature = [8]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

const headerSize = 8 // 4-byte length + 4-byte name, CRC is a trailing 4 bytes

// Errors returned while parsing chunk framing.
var (
	ErrBadSignature      = errors.New("chunk: PNG signature mismatch")
	ErrTruncated         = errors.New("chunk: chunk framing runs past end of input")
	ErrCrcMismatch       = errors.New("chunk: stored CRC does not match computed CRC")
	ErrUnknownCritical   = errors.New("chunk: unknown critical chunk")
	ErrMissingIHDR       = errors.New("chunk: first chunk is not IHDR")
	ErrDuplicateIHDR     = errors.New("chunk: IHDR appears more than once")
	ErrMissingPalette    = errors.New("chunk: color type 3 requires a PLTE chunk")
	ErrPaletteAfterIDAT  = errors.New("chunk: PLTE chunk follows IDAT")
	ErrIDATBeforeIHDR    = errors.New("chunk: IDAT chunk precedes IHDR")
	ErrNonContiguousIDAT = errors.New("chunk: IDAT chunks are not contiguous")
	ErrNoIDAT            = errors.New("chunk: no IDAT chunk present")
	ErrNoIEND            = errors.New("chunk: stream ends without an IEND chunk")
	ErrDataAfterIEND     = errors.New("chunk: chunk data follows IEND")
)

// Palette is the RGB lookup table a PLTE chunk carries, one entry per
// indexed color.
type Palette [][3]byte

// Background is a bKGD chunk's default-background color. Its
// interpretation depends on color type: for Indexed, Index is a palette
// entry; for Gray/GrayAlpha, Gray is the sample value; for
// TrueColor/TrueColorAlpha, R/G/B are populated.
type Background struct {
	Index   uint8
	Gray    uint16
	R, G, B uint16
}

// Transparency is a tRNS chunk's transparency key: for Indexed, Alpha
// holds one alpha value per palette entry (missing entries are fully
// opaque); for Gray/TrueColor, the given sample value(s) denote the one
// fully-transparent color key.
type Transparency struct {
	Alpha   []uint8 // indexed: per-palette-entry alpha
	Gray    uint16  // color type 0 transparent key
	R, G, B uint16  // color type 2 transparent key
}

// Result is everything the chunk parser extracts from a PNG stream.
type Result struct {
	IHDR        *IHDR
	Palette     Palette
	Background  *Background
	Transparency *Transparency
	IDAT        []byte
}

// Parse validates the PNG signature, walks every chunk, and returns the
// accumulated result. logger may be nil (diagnostics are then
// discarded).
func Parse(data []byte, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if len(data) < len(Signature) {
		return nil, ErrBadSignature
	}
	for i, b := range Signature {
		if data[i] != b {
			return nil, ErrBadSignature
		}
	}

	res := &Result{}
	pos := len(Signature)
	var idatOpen bool   // true while the current run of IDAT chunks hasn't been broken by another chunk
	var sawIDAT bool
	var sawIEND bool
	var idatBuf []byte

	for pos < len(data) {
		if sawIEND {
			return nil, ErrDataAfterIEND
		}
		if len(data)-pos < headerSize {
			return nil, ErrTruncated
		}
		length := binary.BigEndian.Uint32(data[pos : pos+4])
		name := string(data[pos+4 : pos+8])
		bodyStart := pos + headerSize
		bodyEnd := bodyStart + int(length)
		if length > uint32(len(data)) || bodyEnd+4 > len(data) || bodyEnd < bodyStart {
			return nil, ErrTruncated
		}
		payload := data[bodyStart:bodyEnd]
		storedCRC := binary.BigEndian.Uint32(data[bodyEnd : bodyEnd+4])

		gotCRC := checksum.CRC32Of(data[pos+4:bodyStart], payload)
		if gotCRC != storedCRC {
			return nil, ErrCrcMismatch
		}

		logger.Debug("chunk", "name", name, "length", length)

		if name != "IDAT" {
			idatOpen = false
		}

		switch name {
		case "IHDR":
			if res.IHDR != nil {
				return nil, ErrDuplicateIHDR
			}
			if pos != len(Signature) {
				return nil, ErrMissingIHDR
			}
			ihdr, err := ParseIHDR(payload)
			if err != nil {
				return nil, err
			}
			res.IHDR = ihdr

		case "PLTE":
			if res.IHDR == nil {
				return nil, ErrMissingIHDR
			}
			if sawIDAT {
				return nil, ErrPaletteAfterIDAT
			}
			if len(payload)%3 != 0 {
				return nil, errors.New("chunk: PLTE payload length not a multiple of 3")
			}
			pal := make(Palette, len(payload)/3)
			for i := range pal {
				pal[i] = [3]byte{payload[i*3], payload[i*3+1], payload[i*3+2]}
			}
			res.Palette = pal

		case "IDAT":
			if res.IHDR == nil {
				return nil, ErrIDATBeforeIHDR
			}
			if sawIDAT && !idatOpen {
				return nil, ErrNonContiguousIDAT
			}
			idatBuf = append(idatBuf, payload...)
			sawIDAT = true
			idatOpen = true

		case "IEND":
			if len(payload) != 0 {
				return nil, errors.New("chunk: IEND payload must be empty")
			}
			sawIEND = true

		case "bKGD":
			bg, err := parseBackground(payload, res.IHDR)
			if err != nil {
				return nil, err
			}
			res.Background = bg

		case "tRNS":
			tr, err := parseTransparency(payload, res.IHDR)
			if err != nil {
				return nil, err
			}
			res.Transparency = tr

		case "tEXt", "zTXt", "pHYs", "tIME", "gAMA", "cHRM":
			logger.Debug("ancillary chunk recognized", "name", name, "length", length)

		default:
			if isUppercaseASCII(name[0]) {
				return nil, errors.Wrapf(ErrUnknownCritical, "chunk %q", name)
			}
			logger.Warn("skipping unknown ancillary chunk", "name", name)
		}

		pos = bodyEnd + 4
	}

	if !sawIEND {
		return nil, ErrNoIEND
	}
	if res.IHDR == nil {
		return nil, ErrMissingIHDR
	}
	if res.IHDR.ColorType == ColorIndexed && res.Palette == nil {
		return nil, ErrMissingPalette
	}
	if !sawIDAT {
		return nil, ErrNoIDAT
	}

	res.IDAT = idatBuf
	return res, nil
}

func isUppercaseASCII(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

func parseBackground(payload []byte, h *IHDR) (*Background, error) {
	if h == nil {
		return nil, ErrMissingIHDR
	}
	switch h.ColorType {
	case ColorIndexed:
		if len(payload) != 1 {
			return nil, errors.New("chunk: bKGD payload for indexed color must be 1 byte")
		}
		return &Background{Index: payload[0]}, nil
	case ColorGray, ColorGrayAlpha:
		if len(payload) != 2 {
			return nil, errors.New("chunk: bKGD payload for gray color must be 2 bytes")
		}
		return &Background{Gray: binary.BigEndian.Uint16(payload)}, nil
	case ColorTrueColor, ColorTrueColorAlpha:
		if len(payload) != 6 {
			return nil, errors.New("chunk: bKGD payload for truecolor must be 6 bytes")
		}
		return &Background{
			R: binary.BigEndian.Uint16(payload[0:2]),
			G: binary.BigEndian.Uint16(payload[2:4]),
			B: binary.BigEndian.Uint16(payload[4:6]),
		}, nil
	default:
		return nil, ErrBadColorType
	}
}

func parseTransparency(payload []byte, h *IHDR) (*Transparency, error) {
	if h == nil {
		return nil, ErrMissingIHDR
	}
	switch h.ColorType {
	case ColorIndexed:
		alpha := make([]uint8, len(payload))
		copy(alpha, payload)
		return &Transparency{Alpha: alpha}, nil
	case ColorGray:
		if len(payload) != 2 {
			return nil, errors.New("chunk: tRNS payload for gray color must be 2 bytes")
		}
		return &Transparency{Gray: binary.BigEndian.Uint16(payload)}, nil
	case ColorTrueColor:
		if len(payload) != 6 {
			return nil, errors.New("chunk: tRNS payload for truecolor must be 6 bytes")
		}
		return &Transparency{
			R: binary.BigEndian.Uint16(payload[0:2]),
			G: binary.BigEndian.Uint16(payload[2:4]),
			B: binary.BigEndian.Uint16(payload[4:6]),
		}, nil
	default:
		return nil, errors.New("chunk: tRNS is not valid for this color type")
	}
}
