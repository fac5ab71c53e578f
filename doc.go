// Package pngflate provides a pure Go decoder for the PNG image format,
// implemented from the ground up: DEFLATE decompression (RFC 1951),
// zlib framing (RFC 1950), and PNG's chunk container, scanline filters,
// and color conversion (RFC 2083). It has no dependency on
// compress/flate, hash/crc32, or image/png.
//
// The package supports:
//   - Bit-depth-8 PNGs in Gray, TrueColor, Indexed, GrayAlpha, and
//     TrueColorAlpha color types
//   - bKGD/tRNS-aware alpha compositing down to a flat RGB buffer
//   - Decompression-bomb defense via DecodeWithLimits
//
// Adam7-interlaced and non-8-bit-depth PNGs are recognized but rejected
// as unsupported; see Error.Kind.
//
// Basic usage for decoding:
//
//	img, err := pngflate.Decode(reader)
package pngflate
