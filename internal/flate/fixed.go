package flate

import "github.com/hollowcore/pngflate/internal/huffman"

// fixedLiteralLengths and fixedDistanceLengths are the two built-in
// length vectors RFC 1951 §3.2.6 defines for BTYPE=1 (fixed Huffman)
// blocks.
func fixedLiteralLengths() []int {
	lengths := make([]int, 288)
	for i := 0; i <= 143; i++ {
		lengths[i] = 8
	}
	for i := 144; i <= 255; i++ {
		lengths[i] = 9
	}
	for i := 256; i <= 279; i++ {
		lengths[i] = 7
	}
	for i := 280; i <= 287; i++ {
		lengths[i] = 8
	}
	return lengths
}

func fixedDistanceLengths() []int {
	lengths := make([]int, 30)
	for i := range lengths {
		lengths[i] = 5
	}
	return lengths
}

var (
	fixedLiteralTable  *huffman.Table
	fixedDistanceTable *huffman.Table
)

func init() {
	var err error
	fixedLiteralTable, err = huffman.Build(fixedLiteralLengths())
	if err != nil {
		panic("flate: built-in fixed literal/length table is invalid: " + err.Error())
	}
	fixedDistanceTable, err = huffman.Build(fixedDistanceLengths())
	if err != nil {
		panic("flate: built-in fixed distance table is invalid: " + err.Error())
	}
}
