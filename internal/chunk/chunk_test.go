package chunk

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hollowcore/pngflate/internal/checksum"
)

// buildChunk assembles one length/name/payload/CRC chunk record, computing
// a correct CRC via the same checksum package Parse itself verifies
// against.
func buildChunk(name string, payload []byte) []byte {
	var buf []byte
	lenField := make([]byte, 4)
	binary.BigEndian.PutUint32(lenField, uint32(len(payload)))
	buf = append(buf, lenField...)
	buf = append(buf, []byte(name)...)
	buf = append(buf, payload...)
	crc := checksum.CRC32Of([]byte(name), payload)
	crcField := make([]byte, 4)
	binary.BigEndian.PutUint32(crcField, crc)
	buf = append(buf, crcField...)
	return buf
}

func ihdrPayload(width, height uint32, bitDepth byte, colorType ColorType) []byte {
	p := make([]byte, 13)
	binary.BigEndian.PutUint32(p[0:4], width)
	binary.BigEndian.PutUint32(p[4:8], height)
	p[8] = bitDepth
	p[9] = byte(colorType)
	p[10], p[11], p[12] = 0, 0, 0
	return p
}

func buildPNG(chunks ...[]byte) []byte {
	var out []byte
	out = append(out, Signature[:]...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func TestParseRejectsBadSignature(t *testing.T) {
	_, err := Parse([]byte("not a png"), nil)
	if err != ErrBadSignature {
		t.Fatalf("got %v, want ErrBadSignature", err)
	}
}

func TestParseRejectsBadCRC(t *testing.T) {
	ihdr := buildChunk("IHDR", ihdrPayload(1, 1, 8, ColorTrueColor))
	ihdr[len(ihdr)-1] ^= 0xFF // corrupt the stored CRC
	data := buildPNG(ihdr)
	_, err := Parse(data, nil)
	if err != ErrCrcMismatch {
		t.Fatalf("got %v, want ErrCrcMismatch", err)
	}
}

func TestParseRejectsZeroDimensionIHDR(t *testing.T) {
	// spec.md §8 scenario 4's known CRC value: CRC-32(IHDR || 13 zero bytes).
	payload := make([]byte, 13)
	ihdr := buildChunk("IHDR", payload)
	if binary.BigEndian.Uint32(ihdr[len(ihdr)-4:]) != 0x253D8D5A {
		t.Fatalf("test fixture CRC mismatch: CRC32Of(IHDR, zeros) changed")
	}
	data := buildPNG(ihdr)
	_, err := Parse(data, nil)
	if err != ErrZeroDimension {
		t.Fatalf("got %v, want ErrZeroDimension", err)
	}
}

func TestParseFullMinimalStream(t *testing.T) {
	ihdr := buildChunk("IHDR", ihdrPayload(1, 1, 8, ColorTrueColor))
	idat := buildChunk("IDAT", []byte{0xDE, 0xAD, 0xBE, 0xEF}) // opaque payload; framing only
	iend := buildChunk("IEND", nil)
	data := buildPNG(ihdr, idat, iend)

	res, err := Parse(data, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := &IHDR{Width: 1, Height: 1, BitDepth: 8, ColorType: ColorTrueColor}
	if diff := cmp.Diff(want, res.IHDR); diff != "" {
		t.Errorf("IHDR mismatch (-want +got):\n%s", diff)
	}
	if len(res.IDAT) != 4 {
		t.Errorf("IDAT length = %d, want 4", len(res.IDAT))
	}
}

func TestParseConcatenatesMultipleIDAT(t *testing.T) {
	ihdr := buildChunk("IHDR", ihdrPayload(1, 1, 8, ColorTrueColor))
	idat1 := buildChunk("IDAT", []byte{0x01, 0x02})
	idat2 := buildChunk("IDAT", []byte{0x03, 0x04})
	iend := buildChunk("IEND", nil)
	data := buildPNG(ihdr, idat1, idat2, iend)

	res, err := Parse(data, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04}
	if string(res.IDAT) != string(want) {
		t.Errorf("IDAT = %v, want %v", res.IDAT, want)
	}
}

func TestParseRejectsNonContiguousIDAT(t *testing.T) {
	ihdr := buildChunk("IHDR", ihdrPayload(1, 1, 8, ColorTrueColor))
	idat1 := buildChunk("IDAT", []byte{0x01})
	text := buildChunk("tEXt", []byte("hi"))
	idat2 := buildChunk("IDAT", []byte{0x02})
	iend := buildChunk("IEND", nil)
	data := buildPNG(ihdr, idat1, text, idat2, iend)

	_, err := Parse(data, nil)
	if err != ErrNonContiguousIDAT {
		t.Fatalf("got %v, want ErrNonContiguousIDAT", err)
	}
}

func TestParseRejectsUnknownCriticalChunk(t *testing.T) {
	ihdr := buildChunk("IHDR", ihdrPayload(1, 1, 8, ColorTrueColor))
	bogus := buildChunk("FooX", []byte{1, 2, 3})
	data := buildPNG(ihdr, bogus)

	_, err := Parse(data, nil)
	if err == nil {
		t.Fatal("expected an error for unknown critical chunk")
	}
}

func TestParseSkipsUnknownAncillaryChunk(t *testing.T) {
	ihdr := buildChunk("IHDR", ihdrPayload(1, 1, 8, ColorTrueColor))
	ancillary := buildChunk("foOx", []byte{1, 2, 3})
	idat := buildChunk("IDAT", []byte{0x01})
	iend := buildChunk("IEND", nil)
	data := buildPNG(ihdr, ancillary, idat, iend)

	res, err := Parse(data, nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.IHDR == nil {
		t.Fatal("expected IHDR to be parsed")
	}
}

func TestParseRequiresPaletteForIndexed(t *testing.T) {
	ihdr := buildChunk("IHDR", ihdrPayload(1, 1, 8, ColorIndexed))
	idat := buildChunk("IDAT", []byte{0x01})
	iend := buildChunk("IEND", nil)
	data := buildPNG(ihdr, idat, iend)

	_, err := Parse(data, nil)
	if err != ErrMissingPalette {
		t.Fatalf("got %v, want ErrMissingPalette", err)
	}
}
