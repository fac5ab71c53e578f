package flate

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/hollowcore/pngflate/internal/checksum"
)

// Errors for the RFC 1950 zlib frame wrapping a DEFLATE stream.
var (
	ErrZlibTooShort     = errors.New("flate: zlib stream shorter than header+trailer")
	ErrZlibBadMethod    = errors.New("flate: zlib CMF does not specify the deflate method")
	ErrZlibBadWindow    = errors.New("flate: zlib CMF window size exponent out of range")
	ErrZlibCheckBits    = errors.New("flate: zlib CMF/FLG check bits invalid")
	ErrZlibPresetDict   = errors.New("flate: zlib stream uses an unsupported preset dictionary")
	ErrZlibAdlerMismatch = errors.New("flate: zlib trailer Adler-32 does not match decompressed data")
)

// DecodeZlib validates the 2-byte zlib header and 4-byte Adler-32 trailer
// around a DEFLATE stream (RFC 1950) and returns the decompressed payload.
func DecodeZlib(data []byte) ([]byte, error) {
	if len(data) < 6 {
		return nil, ErrZlibTooShort
	}
	cmf, flg := data[0], data[1]

	if cmf&0x0F != 8 {
		return nil, ErrZlibBadMethod
	}
	if cmf>>4 > 7 {
		return nil, ErrZlibBadWindow
	}
	if (uint16(cmf)<<8|uint16(flg))%31 != 0 {
		return nil, ErrZlibCheckBits
	}
	if flg>>5&1 != 0 {
		return nil, ErrZlibPresetDict
	}

	body := data[2 : len(data)-4]
	out, err := Decode(body)
	if err != nil {
		return nil, err
	}

	wantAdler := binary.BigEndian.Uint32(data[len(data)-4:])
	gotAdler := checksum.Adler32Of(out)
	if wantAdler != gotAdler {
		return nil, ErrZlibAdlerMismatch
	}
	return out, nil
}
