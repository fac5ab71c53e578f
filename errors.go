package pngflate

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a decode failure into the taxonomy this package's
// callers are expected to switch on, independent of the wrapped message
// text.
type Kind int

const (
	// KindUnknown is the zero value; never returned by this package.
	KindUnknown Kind = iota
	KindInputTruncated
	KindBadSignature
	KindChunkCrcMismatch
	KindUnknownCriticalChunk
	KindMalformedHeader
	KindUnsupported
	KindZlibFraming
	KindAdlerMismatch
	KindInvalidBlockType
	KindInvalidStoredLength
	KindInvalidHuffmanTable
	KindInvalidCode
	KindInvalidDistance
	KindInvalidFilter
	KindLimitExceeded
)

func (k Kind) String() string {
	switch k {
	case KindInputTruncated:
		return "InputTruncated"
	case KindBadSignature:
		return "BadSignature"
	case KindChunkCrcMismatch:
		return "ChunkCrcMismatch"
	case KindUnknownCriticalChunk:
		return "UnknownCriticalChunk"
	case KindMalformedHeader:
		return "MalformedHeader"
	case KindUnsupported:
		return "Unsupported"
	case KindZlibFraming:
		return "ZlibFraming"
	case KindAdlerMismatch:
		return "AdlerMismatch"
	case KindInvalidBlockType:
		return "InvalidBlockType"
	case KindInvalidStoredLength:
		return "InvalidStoredLength"
	case KindInvalidHuffmanTable:
		return "InvalidHuffmanTable"
	case KindInvalidCode:
		return "InvalidCode"
	case KindInvalidDistance:
		return "InvalidDistance"
	case KindInvalidFilter:
		return "InvalidFilter"
	case KindLimitExceeded:
		return "LimitExceeded"
	default:
		return "Unknown"
	}
}

// Sentinel errors, one per Kind, so callers can use errors.Is without
// parsing message strings.
var (
	ErrInputTruncated       = errors.New("pngflate: input truncated")
	ErrBadSignature         = errors.New("pngflate: bad PNG signature")
	ErrChunkCrcMismatch     = errors.New("pngflate: chunk CRC mismatch")
	ErrUnknownCriticalChunk = errors.New("pngflate: unknown critical chunk")
	ErrMalformedHeader      = errors.New("pngflate: malformed IHDR")
	ErrUnsupported          = errors.New("pngflate: unsupported PNG feature")
	ErrZlibFraming          = errors.New("pngflate: invalid zlib framing")
	ErrAdlerMismatch        = errors.New("pngflate: Adler-32 mismatch")
	ErrInvalidBlockType     = errors.New("pngflate: invalid DEFLATE block type")
	ErrInvalidStoredLength  = errors.New("pngflate: invalid stored block length")
	ErrInvalidHuffmanTable  = errors.New("pngflate: invalid Huffman table")
	ErrInvalidCode          = errors.New("pngflate: invalid Huffman code")
	ErrInvalidDistance      = errors.New("pngflate: invalid back-reference distance")
	ErrInvalidFilter        = errors.New("pngflate: invalid scanline filter type")
	ErrLimitExceeded        = errors.New("pngflate: decode limits exceeded")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindInputTruncated:
		return ErrInputTruncated
	case KindBadSignature:
		return ErrBadSignature
	case KindChunkCrcMismatch:
		return ErrChunkCrcMismatch
	case KindUnknownCriticalChunk:
		return ErrUnknownCriticalChunk
	case KindMalformedHeader:
		return ErrMalformedHeader
	case KindUnsupported:
		return ErrUnsupported
	case KindZlibFraming:
		return ErrZlibFraming
	case KindAdlerMismatch:
		return ErrAdlerMismatch
	case KindInvalidBlockType:
		return ErrInvalidBlockType
	case KindInvalidStoredLength:
		return ErrInvalidStoredLength
	case KindInvalidHuffmanTable:
		return ErrInvalidHuffmanTable
	case KindInvalidCode:
		return ErrInvalidCode
	case KindInvalidDistance:
		return ErrInvalidDistance
	case KindInvalidFilter:
		return ErrInvalidFilter
	case KindLimitExceeded:
		return ErrLimitExceeded
	default:
		return errors.New("pngflate: unknown error")
	}
}

// Error is the structured error type every decode failure crossing a
// package boundary is wrapped into. It carries enough context (chunk
// name, byte offset) to diagnose without parsing the message.
type Error struct {
	kind  Kind
	chunk string
	off   int64
	cause error
}

// newError builds an Error of the given kind, wrapping cause (which may
// be nil, in which case the kind's own sentinel becomes the cause).
func newError(kind Kind, chunk string, off int64, cause error) *Error {
	if cause == nil {
		cause = sentinelFor(kind)
	}
	return &Error{kind: kind, chunk: chunk, off: off, cause: cause}
}

// Kind reports the error's taxonomy classification.
func (e *Error) Kind() Kind { return e.kind }

// Chunk returns the PNG chunk name the error occurred within, or "" if
// not chunk-scoped.
func (e *Error) Chunk() string { return e.chunk }

// Offset returns the byte offset into the original input the error
// occurred at, or -1 if not known.
func (e *Error) Offset() int64 { return e.off }

func (e *Error) Error() string {
	if e.chunk != "" {
		return fmt.Sprintf("pngflate: %s: chunk %s: %v", e.kind, e.chunk, e.cause)
	}
	if e.off >= 0 {
		return fmt.Sprintf("pngflate: %s: offset %d: %v", e.kind, e.off, e.cause)
	}
	return fmt.Sprintf("pngflate: %s: %v", e.kind, e.cause)
}

// Unwrap lets errors.Is/errors.As reach the sentinel and underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// Format supports "%+v" to print the pkg/errors stack trace captured at
// the point the underlying cause was created, for development use.
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s", e.Error())
		if st, ok := e.cause.(interface{ Format(fmt.State, rune) }); ok {
			st.Format(s, verb)
		}
		return
	}
	fmt.Fprint(s, e.Error())
}
