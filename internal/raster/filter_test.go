package raster

import "testing"

func TestReconstructNoneFilterIsIdentity(t *testing.T) {
	// spec.md §8: "For all rows, None-filter reconstruction is the identity."
	width, bpp := 3, 1
	raw := []byte{10, 20, 30}
	data := append([]byte{byte(FilterNone)}, raw...)
	got, err := Reconstruct(data, width, 1, bpp)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(raw) {
		t.Errorf("got %v, want %v", got, raw)
	}
}

func TestReconstructSubFilter(t *testing.T) {
	width, bpp := 3, 1
	// raw[0]=10 (left=0 -> 10), raw[1]=5 (left=10 -> 15), raw[2]=5 (left=15 -> 20)
	raw := []byte{10, 5, 5}
	data := append([]byte{byte(FilterSub)}, raw...)
	got, err := Reconstruct(data, width, 1, bpp)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{10, 15, 20}
	if string(got) != string(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReconstructUpFilter(t *testing.T) {
	width, bpp := 2, 1
	row0 := append([]byte{byte(FilterNone)}, 10, 20)
	row1 := append([]byte{byte(FilterUp)}, 5, 5)
	data := append(append([]byte{}, row0...), row1...)
	got, err := Reconstruct(data, width, 2, bpp)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{10, 20, 15, 25}
	if string(got) != string(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReconstructAverageFilter(t *testing.T) {
	width, bpp := 2, 1
	// first row None: [10, 20]
	// second row Average: left(0)=0,up(0)=10 -> avg=5 -> out=raw+5
	//                      left(1)=out[0],up(1)=20
	row0 := append([]byte{byte(FilterNone)}, 10, 20)
	row1 := append([]byte{byte(FilterAverage)}, 0, 0)
	data := append(append([]byte{}, row0...), row1...)
	got, err := Reconstruct(data, width, 2, bpp)
	if err != nil {
		t.Fatal(err)
	}
	// row1[0] = 0 + floor((0+10)/2) = 5
	// row1[1] = 0 + floor((5+20)/2) = 12
	want := []byte{10, 20, 5, 12}
	if string(got) != string(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReconstructPaethFilter(t *testing.T) {
	width, bpp := 2, 1
	row0 := append([]byte{byte(FilterNone)}, 10, 20)
	row1 := append([]byte{byte(FilterPaeth)}, 0, 0)
	data := append(append([]byte{}, row0...), row1...)
	got, err := Reconstruct(data, width, 2, bpp)
	if err != nil {
		t.Fatal(err)
	}
	// row1[0]: a=0,b=10,c=0 -> paeth predicts b=10 -> out=0+10=10
	// row1[1]: a=out[0]=10,b=20,c=10 -> p=10+20-10=20; pa=|20-10|=10,pb=0,pc=10 -> picks b=20 -> out=0+20=20
	want := []byte{10, 20, 10, 20}
	if string(got) != string(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestReconstructRejectsInvalidFilter(t *testing.T) {
	data := []byte{5, 0, 0, 0}
	_, err := Reconstruct(data, 3, 1, 1)
	if err != ErrInvalidFilter {
		t.Fatalf("got %v, want ErrInvalidFilter", err)
	}
}

func TestReconstructRejectsWrongLength(t *testing.T) {
	_, err := Reconstruct([]byte{0, 1, 2}, 3, 1, 1)
	if err == nil {
		t.Fatal("expected a length-mismatch error")
	}
}

func TestPaethReturnsOneOfInputs(t *testing.T) {
	// spec.md §8: "For any Paeth input (a,b,c), the predictor returns one
	// of {a,b,c}."
	for a := 0; a <= 255; a += 17 {
		for b := 0; b <= 255; b += 17 {
			for c := 0; c <= 255; c += 17 {
				got := paeth(byte(a), byte(b), byte(c))
				if got != byte(a) && got != byte(b) && got != byte(c) {
					t.Fatalf("paeth(%d,%d,%d) = %d, not one of the inputs", a, b, c, got)
				}
			}
		}
	}
}
