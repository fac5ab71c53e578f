package bitio

import "testing"

func TestReadBitsLSBFirst(t *testing.T) {
	// byte 0b1011_0010 read LSB-first: bits are 0,1,0,0,1,1,0,1
	r := NewReader([]byte{0xB2})
	want := []uint32{0, 1, 0, 0, 1, 1, 0, 1}
	for i, w := range want {
		got, err := r.ReadBit()
		if err != nil {
			t.Fatalf("bit %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("bit %d: got %d, want %d", i, got, w)
		}
	}
}

func TestReadBitsAssemblesLSBFirst(t *testing.T) {
	// 0x05 = 0b0000_0101; reading 3 bits should yield 0b101 = 5 (bit0 is LSB of result).
	r := NewReader([]byte{0x05})
	v, err := r.ReadBits(3)
	if err != nil {
		t.Fatal(err)
	}
	if v != 5 {
		t.Errorf("got %d, want 5", v)
	}
}

func TestReadBitsSpanningBytes(t *testing.T) {
	r := NewReader([]byte{0xFF, 0x01})
	v, err := r.ReadBits(9)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x1FF {
		t.Errorf("got %#x, want 0x1ff", v)
	}
}

func TestAlignByteAndReadAlignedBytes(t *testing.T) {
	r := NewReader([]byte{0xFF, 0xAA, 0xBB})
	if _, err := r.ReadBits(3); err != nil {
		t.Fatal(err)
	}
	r.AlignByte()
	got, err := r.ReadAlignedBytes(2)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != 0xAA || got[1] != 0xBB {
		t.Errorf("got %x, want aa bb", got)
	}
}

func TestReadAlignedBytesRequiresAlignment(t *testing.T) {
	r := NewReader([]byte{0xFF, 0xAA})
	if _, err := r.ReadBits(3); err != nil {
		t.Fatal(err)
	}
	if _, err := r.ReadAlignedBytes(1); err == nil {
		t.Fatal("expected error reading unaligned")
	}
}

func TestUnexpectedEnd(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.ReadBits(16); err != ErrUnexpectedEnd {
		t.Fatalf("got %v, want ErrUnexpectedEnd", err)
	}
}

func TestPeekBitsDoesNotAdvance(t *testing.T) {
	r := NewReader([]byte{0x05})
	before := r.BitOffset()
	v, ok := r.PeekBits(3)
	if !ok || v != 5 {
		t.Fatalf("got (%d,%v), want (5,true)", v, ok)
	}
	if r.BitOffset() != before {
		t.Errorf("PeekBits advanced the reader: %d -> %d", before, r.BitOffset())
	}
	v2, err := r.ReadBits(3)
	if err != nil || v2 != 5 {
		t.Fatalf("ReadBits after Peek got (%d,%v), want (5,nil)", v2, err)
	}
}

func TestAdvanceConsumesBits(t *testing.T) {
	r := NewReader([]byte{0xFF})
	if err := r.Advance(4); err != nil {
		t.Fatal(err)
	}
	if r.BitOffset() != 4 {
		t.Errorf("BitOffset = %d, want 4", r.BitOffset())
	}
}

func TestSkip(t *testing.T) {
	r := NewReader([]byte{0x00, 0x00, 0x00})
	if err := r.Skip(10); err != nil {
		t.Fatal(err)
	}
	if r.BitOffset() != 10 {
		t.Errorf("BitOffset = %d, want 10", r.BitOffset())
	}
}
