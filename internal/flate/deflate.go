// Package flate implements RFC 1951 DEFLATE decompression: the stored /
// fixed-Huffman / dynamic-Huffman block loop, the code-lengths alphabet
// used to transmit dynamic Huffman tables, and the zlib (RFC 1950) framing
// that wraps a DEFLATE stream inside a PNG IDAT payload. The block loop's
// overall shape — a state machine that keeps decoding blocks until one
// with BFINAL set — mirrors the teacher's own level-0/sub-image decode
// loop in internal/lossless/decode.go, generalized from VP8L's transform
// stream to RFC 1951's block stream.
package flate

import (
	"github.com/pkg/errors"

	"github.com/hollowcore/pngflate/internal/bitio"
	"github.com/hollowcore/pngflate/internal/huffman"
	"github.com/hollowcore/pngflate/internal/lzwin"
)

// Errors specific to the DEFLATE block loop. Errors from collaborating
// packages (huffman.ErrInvalidCode, lzwin.ErrInvalidDistance,
// bitio.ErrUnexpectedEnd) surface wrapped with block context (use
// errors.Cause or errors.Is to recover the original sentinel).
var (
	ErrInvalidBlockType  = errors.New("flate: invalid block type (BTYPE=3)")
	ErrInvalidStoredLen  = errors.New("flate: stored block LEN does not match ~NLEN")
	ErrInvalidCodeLength = errors.New("flate: invalid dynamic Huffman code-lengths sequence")
)

// codeLengthOrder is the fixed permutation RFC 1951 §3.2.7 uses to
// transmit the 19-symbol code-lengths alphabet's own code lengths.
var codeLengthOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// Decode inflates a complete DEFLATE stream (as produced by concatenating
// a PNG's IDAT payloads after stripping the 2-byte zlib header and 4-byte
// trailer) and returns the decompressed bytes.
func Decode(data []byte) ([]byte, error) {
	r := bitio.NewReader(data)
	var out []byte

	for blockIndex := 0; ; blockIndex++ {
		bfinal, err := r.ReadBits(1)
		if err != nil {
			return nil, errors.Wrapf(err, "flate: block %d: reading BFINAL", blockIndex)
		}
		btype, err := r.ReadBits(2)
		if err != nil {
			return nil, errors.Wrapf(err, "flate: block %d: reading BTYPE", blockIndex)
		}

		switch btype {
		case 0:
			out, err = decodeStored(r, out)
		case 1:
			out, err = decodeHuffmanBlock(r, out, fixedLiteralTable, fixedDistanceTable)
		case 2:
			out, err = decodeDynamicBlock(r, out)
		default:
			err = ErrInvalidBlockType
		}
		if err != nil {
			return nil, errors.Wrapf(err, "flate: block %d", blockIndex)
		}

		if bfinal == 1 {
			return out, nil
		}
	}
}

// decodeStored handles BTYPE=0: byte-align, read LEN/NLEN, copy LEN raw
// bytes verbatim.
func decodeStored(r *bitio.Reader, out []byte) ([]byte, error) {
	r.AlignByte()
	length, err := r.ReadBits(16)
	if err != nil {
		return nil, errors.Wrap(err, "reading LEN")
	}
	nlength, err := r.ReadBits(16)
	if err != nil {
		return nil, errors.Wrap(err, "reading NLEN")
	}
	if nlength != (^length)&0xFFFF {
		return nil, ErrInvalidStoredLen
	}
	raw, err := r.ReadAlignedBytes(int(length))
	if err != nil {
		return nil, errors.Wrap(err, "reading stored block payload")
	}
	return append(out, raw...), nil
}

// decodeHuffmanBlock decodes a Huffman-coded block body (fixed or
// dynamic; the only difference between the two is which tables are
// passed in) until the end-of-block symbol (256) is read.
func decodeHuffmanBlock(r *bitio.Reader, out []byte, litTable, distTable *huffman.Table) ([]byte, error) {
	for {
		sym, err := litTable.Decode(r)
		if err != nil {
			return nil, errors.Wrap(err, "decoding literal/length symbol")
		}
		switch {
		case sym < 256:
			out = append(out, byte(sym))
		case sym == 256:
			return out, nil
		default:
			length, err := lzwin.Length(r, int(sym))
			if err != nil {
				return nil, errors.Wrap(err, "decoding back-reference length")
			}
			distSym, err := distTable.Decode(r)
			if err != nil {
				return nil, errors.Wrap(err, "decoding distance symbol")
			}
			distance, err := lzwin.Distance(r, int(distSym))
			if err != nil {
				return nil, errors.Wrap(err, "decoding back-reference distance")
			}
			out, err = lzwin.Copy(out, length, distance)
			if err != nil {
				return nil, err
			}
		}
	}
}

// decodeDynamicBlock handles BTYPE=2: reads HLIT/HDIST/HCLEN, the
// code-lengths alphabet's own lengths, then the literal/length and
// distance tables' lengths via that alphabet (with its run-length
// symbols 16/17/18), and finally decodes the block body.
func decodeDynamicBlock(r *bitio.Reader, out []byte) ([]byte, error) {
	hlitBits, err := r.ReadBits(5)
	if err != nil {
		return nil, errors.Wrap(err, "reading HLIT")
	}
	hdistBits, err := r.ReadBits(5)
	if err != nil {
		return nil, errors.Wrap(err, "reading HDIST")
	}
	hclenBits, err := r.ReadBits(4)
	if err != nil {
		return nil, errors.Wrap(err, "reading HCLEN")
	}
	hlit := int(hlitBits) + 257
	hdist := int(hdistBits) + 1
	hclen := int(hclenBits) + 4

	clLengths := make([]int, 19)
	for i := 0; i < hclen; i++ {
		v, err := r.ReadBits(3)
		if err != nil {
			return nil, errors.Wrap(err, "reading code-lengths alphabet lengths")
		}
		clLengths[codeLengthOrder[i]] = int(v)
	}
	clTable, err := huffman.Build(clLengths)
	if err != nil {
		return nil, errors.Wrap(err, "building code-lengths Huffman table")
	}

	allLengths := make([]int, hlit+hdist)
	var prev int
	havePrev := false
	for i := 0; i < len(allLengths); {
		sym, err := clTable.Decode(r)
		if err != nil {
			return nil, errors.Wrap(err, "decoding code-length symbol")
		}
		switch {
		case sym <= 15:
			allLengths[i] = int(sym)
			prev = int(sym)
			havePrev = true
			i++
		case sym == 16:
			if !havePrev {
				return nil, ErrInvalidCodeLength
			}
			extra, err := r.ReadBits(2)
			if err != nil {
				return nil, errors.Wrap(err, "reading repeat-previous extra bits")
			}
			repeat := int(extra) + 3
			if i+repeat > len(allLengths) {
				return nil, ErrInvalidCodeLength
			}
			for j := 0; j < repeat; j++ {
				allLengths[i] = prev
				i++
			}
		case sym == 17:
			extra, err := r.ReadBits(3)
			if err != nil {
				return nil, errors.Wrap(err, "reading repeat-zero (short) extra bits")
			}
			repeat := int(extra) + 3
			if i+repeat > len(allLengths) {
				return nil, ErrInvalidCodeLength
			}
			i += repeat
			prev = 0
			havePrev = true
		case sym == 18:
			extra, err := r.ReadBits(7)
			if err != nil {
				return nil, errors.Wrap(err, "reading repeat-zero (long) extra bits")
			}
			repeat := int(extra) + 11
			if i+repeat > len(allLengths) {
				return nil, ErrInvalidCodeLength
			}
			i += repeat
			prev = 0
			havePrev = true
		default:
			return nil, ErrInvalidCodeLength
		}
	}

	litLengths := allLengths[:hlit]
	distLengths := allLengths[hlit:]

	litTable, err := huffman.Build(litLengths)
	if err != nil {
		return nil, errors.Wrap(err, "building literal/length Huffman table")
	}
	distTable, err := huffman.Build(distLengths)
	if err != nil {
		return nil, errors.Wrap(err, "building distance Huffman table")
	}

	return decodeHuffmanBlock(r, out, litTable, distTable)
}
