package lzwin

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/hollowcore/pngflate/internal/bitio"
)

func TestLengthBaseNoExtraBits(t *testing.T) {
	r := bitio.NewReader(nil)
	got, err := Length(r, 257)
	if err != nil {
		t.Fatal(err)
	}
	if got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestLengthMaxSymbol(t *testing.T) {
	r := bitio.NewReader(nil)
	got, err := Length(r, 285)
	if err != nil {
		t.Fatal(err)
	}
	if got != 258 {
		t.Errorf("got %d, want 258", got)
	}
}

func TestLengthWithExtraBits(t *testing.T) {
	// symbol 265 -> base 11, 1 extra bit; extra bit = 1 -> length 12.
	r := bitio.NewReader([]byte{0x01})
	got, err := Length(r, 265)
	if err != nil {
		t.Fatal(err)
	}
	if got != 12 {
		t.Errorf("got %d, want 12", got)
	}
}

func TestDistanceMaxSymbol32768(t *testing.T) {
	// symbol 29 -> base 24577, 13 extra bits; all-ones extra = 8191 -> 32768.
	r := bitio.NewReader([]byte{0xFF, 0x1F})
	got, err := Distance(r, 29)
	if err != nil {
		t.Fatal(err)
	}
	if got != 32768 {
		t.Errorf("got %d, want 32768", got)
	}
}

func TestCopyOverlapping(t *testing.T) {
	// spec.md §8 boundary behavior: length=5, distance=1 over 0x41 -> "AAAAA".
	out := []byte{0x41}
	out, err := Copy(out, 5, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := "AAAAAA" // the original byte plus 5 copies
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestCopyDistanceExceedsOutput(t *testing.T) {
	out := []byte{0x41, 0x42}
	_, err := Copy(out, 3, 3)
	if err != ErrInvalidDistance {
		t.Fatalf("got %v, want ErrInvalidDistance", err)
	}
}

func TestCopyNonOverlapping(t *testing.T) {
	c := qt.New(t)
	out := []byte("AB")
	out, err := Copy(out, 2, 2)
	c.Assert(err, qt.IsNil)
	c.Assert(string(out), qt.Equals, "ABAB")
}

func TestDistanceRejectsOutOfRangeSymbol(t *testing.T) {
	c := qt.New(t)
	r := bitio.NewReader(nil)
	_, err := Distance(r, 30)
	c.Assert(err, qt.IsNotNil)
}
