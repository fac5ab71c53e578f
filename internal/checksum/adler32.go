package checksum

// adlerMod is the modulus RFC 1950 specifies for both 16-bit running sums.
const adlerMod = 65521

// Adler32 is an RFC 1950 Adler-32 accumulator: two 16-bit sums mod 65521,
// updated one byte at a time, combined as (s2<<16)|s1.
type Adler32 struct {
	s1, s2 uint32
}

// NewAdler32 returns an accumulator matching the checksum of the empty
// string (s1=1, s2=0), per RFC 1950.
func NewAdler32() *Adler32 {
	return &Adler32{s1: 1, s2: 0}
}

// Write folds p into the running sums. Large inputs are processed in
// chunks bounded so s1/s2 cannot overflow uint32 between reductions mod
// adlerMod (NMAX in zlib's own implementation; 5552 bytes keeps s1 within
// range for a full byte value of 255 each step).
func (a *Adler32) Write(p []byte) (int, error) {
	const nmax = 5552
	s1, s2 := a.s1, a.s2
	for len(p) > 0 {
		n := len(p)
		if n > nmax {
			n = nmax
		}
		for _, b := range p[:n] {
			s1 += uint32(b)
			s2 += s1
		}
		s1 %= adlerMod
		s2 %= adlerMod
		p = p[n:]
	}
	a.s1, a.s2 = s1, s2
	return len(p), nil
}

// Sum32 returns the combined Adler-32 value (s2<<16)|s1.
func (a *Adler32) Sum32() uint32 {
	return (a.s2 << 16) | a.s1
}

// Adler32Of computes the Adler-32 checksum of a single byte slice in one
// call.
func Adler32Of(data []byte) uint32 {
	a := NewAdler32()
	_, _ = a.Write(data)
	return a.Sum32()
}
