// Command pngdump decodes a PNG file and writes it out as a binary PPM
// (P6) image.
//
// Usage:
//
//	pngdump [-log level] <input.png> <output.ppm>
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hollowcore/pngflate"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "pngdump: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("pngdump", flag.ContinueOnError)
	logLevel := fs.String("log", envOr("PNGFLATE_LOG", "warn"), "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: pngdump [-log level] <input.png> <output.ppm>")
	}

	pngflate.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	})))

	inputPath, outputPath := fs.Arg(0), fs.Arg(1)

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	img, err := pngflate.Decode(in)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", inputPath, err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	return writePPM(out, img)
}

// writePPM writes img as a binary P6 PPM: "P6\n<width> <height>\n255\n"
// followed by the raw row-major RGB bytes, per spec.md §6.
func writePPM(w *os.File, img *pngflate.Image) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", img.Width, img.Height); err != nil {
		return err
	}
	if _, err := bw.Write(img.Pix); err != nil {
		return err
	}
	return bw.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
