package raster

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/hollowcore/pngflate/internal/chunk"
)

// ErrBadPaletteIndex is returned when an Indexed pixel references a
// palette entry beyond the palette's length.
var ErrBadPaletteIndex = errors.New("raster: palette index out of range")

// minParallelRows is the row count below which Convert runs on a single
// goroutine; sharding tiny images across workers only adds overhead.
const minParallelRows = 256

// Convert turns a reconstructed pixel buffer (row-major with each pixel's
// components interleaved, one row per scanline, no filter bytes) into a tightly packed width*height*3
// RGB buffer (spec.md §4.J). palette is required (and indexed) only for
// ColorIndexed; bg and trns are optional alpha-compositing inputs.
func Convert(pix []byte, width, height int, ct chunk.ColorType, palette chunk.Palette, bg *chunk.Background, trns *chunk.Transparency) ([]byte, error) {
	comps := componentsFor(ct)
	if comps == 0 {
		return nil, errors.Errorf("raster: unsupported color type %d", ct)
	}
	if len(pix) != width*height*comps {
		return nil, errors.Errorf("raster: expected %d pixel bytes, got %d", width*height*comps, len(pix))
	}

	out := make([]byte, width*height*3)

	convertRows := func(rowStart, rowEnd int) error {
		for y := rowStart; y < rowEnd; y++ {
			srcRow := pix[y*width*comps : (y+1)*width*comps]
			dstRow := out[y*width*3 : (y+1)*width*3]
			if err := convertRow(srcRow, dstRow, width, ct, palette, bg, trns); err != nil {
				return err
			}
		}
		return nil
	}

	if height < minParallelRows {
		if err := convertRows(0, height); err != nil {
			return nil, err
		}
		return out, nil
	}

	// Row-shard across GOMAXPROCS workers, mirroring the teacher's
	// argbToNRGBARows row-sharding for large-image pixel conversion.
	workers := runtime.GOMAXPROCS(0)
	if workers > height {
		workers = height
	}
	rowsPer := (height + workers - 1) / workers

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		start := w * rowsPer
		end := start + rowsPer
		if end > height {
			end = height
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			errs[w] = convertRows(start, end)
		}(w, start, end)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

func componentsFor(ct chunk.ColorType) int {
	switch ct {
	case chunk.ColorGray, chunk.ColorIndexed:
		return 1
	case chunk.ColorGrayAlpha:
		return 2
	case chunk.ColorTrueColor:
		return 3
	case chunk.ColorTrueColorAlpha:
		return 4
	default:
		return 0
	}
}

func convertRow(src, dst []byte, width int, ct chunk.ColorType, palette chunk.Palette, bg *chunk.Background, trns *chunk.Transparency) error {
	switch ct {
	case chunk.ColorTrueColor:
		copy(dst, src)
		if trns != nil {
			bgR, bgG, bgB := backgroundRGB(ct, bg, palette)
			for x := 0; x < width; x++ {
				r, g, b := src[x*3], src[x*3+1], src[x*3+2]
				if uint16(r) == trns.R && uint16(g) == trns.G && uint16(b) == trns.B {
					dst[x*3], dst[x*3+1], dst[x*3+2] = bgR, bgG, bgB
				}
			}
		}

	case chunk.ColorTrueColorAlpha:
		bgR, bgG, bgB := backgroundRGB(ct, bg, palette)
		for x := 0; x < width; x++ {
			r, g, b, a := src[x*4], src[x*4+1], src[x*4+2], src[x*4+3]
			if a == 255 {
				dst[x*3], dst[x*3+1], dst[x*3+2] = r, g, b
			} else {
				dst[x*3] = compositeChannel(r, bgR, a)
				dst[x*3+1] = compositeChannel(g, bgG, a)
				dst[x*3+2] = compositeChannel(b, bgB, a)
			}
		}

	case chunk.ColorGray:
		bgR, bgG, bgB := backgroundRGB(ct, bg, palette)
		for x := 0; x < width; x++ {
			gray := src[x]
			if trns != nil && uint16(gray) == trns.Gray {
				dst[x*3], dst[x*3+1], dst[x*3+2] = bgR, bgG, bgB
				continue
			}
			dst[x*3], dst[x*3+1], dst[x*3+2] = gray, gray, gray
		}

	case chunk.ColorGrayAlpha:
		bgR, bgG, bgB := backgroundRGB(ct, bg, palette)
		for x := 0; x < width; x++ {
			gray, a := src[x*2], src[x*2+1]
			if a == 255 {
				dst[x*3], dst[x*3+1], dst[x*3+2] = gray, gray, gray
			} else {
				dst[x*3] = compositeChannel(gray, bgR, a)
				dst[x*3+1] = compositeChannel(gray, bgG, a)
				dst[x*3+2] = compositeChannel(gray, bgB, a)
			}
		}

	case chunk.ColorIndexed:
		for x := 0; x < width; x++ {
			idx := int(src[x])
			if idx >= len(palette) {
				return ErrBadPaletteIndex
			}
			entry := palette[idx]
			rgb := [3]byte{entry[0], entry[1], entry[2]}
			if trns != nil && idx < len(trns.Alpha) && trns.Alpha[idx] != 255 {
				bgR, bgG, bgB := backgroundRGB(ct, bg, palette)
				a := trns.Alpha[idx]
				rgb = [3]byte{
					compositeChannel(entry[0], bgR, a),
					compositeChannel(entry[1], bgG, a),
					compositeChannel(entry[2], bgB, a),
				}
			}
			dst[x*3], dst[x*3+1], dst[x*3+2] = rgb[0], rgb[1], rgb[2]
		}

	default:
		return errors.Errorf("raster: unsupported color type %d", ct)
	}
	return nil
}

// backgroundRGB resolves the default compositing background, spec.md
// §4.J's (255,255,255) unless a bKGD chunk supplied one. Which of bg's
// fields applies is determined by ct, the same way chunk.parseBackground
// populated them, so a legitimately black/zero bKGD value is not
// mistaken for "absent".
func backgroundRGB(ct chunk.ColorType, bg *chunk.Background, palette chunk.Palette) (byte, byte, byte) {
	if bg == nil {
		return 255, 255, 255
	}
	switch ct {
	case chunk.ColorIndexed:
		if int(bg.Index) < len(palette) {
			entry := palette[bg.Index]
			return entry[0], entry[1], entry[2]
		}
		return 255, 255, 255
	case chunk.ColorGray, chunk.ColorGrayAlpha:
		g := byte(bg.Gray)
		return g, g, g
	case chunk.ColorTrueColor, chunk.ColorTrueColorAlpha:
		return byte(bg.R), byte(bg.G), byte(bg.B)
	default:
		return 255, 255, 255
	}
}

// compositeChannel alpha-blends a foreground sample fg (alpha a, 0..255)
// over background sample bg, per spec.md §4.J:
// out = floor((a/255)*fg + (1-a/255)*bg).
func compositeChannel(fg, bg, a byte) byte {
	af := int(a)
	v := (af*int(fg) + (255-af)*int(bg)) / 255
	return byte(v)
}
