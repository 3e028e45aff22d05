package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// CompressedExt marks output paths that are written zstd-compressed.
const CompressedExt = ".zst"

type zstdFile struct {
	enc *zstd.Encoder
	f   *os.File
}

func (z *zstdFile) Write(p []byte) (int, error) { return z.enc.Write(p) }

func (z *zstdFile) Close() error {
	return errors.Join(z.enc.Close(), z.f.Close())
}

// Create opens path for writing, creating parent directories. Paths ending
// in ".zst" get a zstd encoder in front of the file.
func Create(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, CompressedExt) {
		return f, nil
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &zstdFile{enc: enc, f: f}, nil
}

type zstdReader struct {
	dec *zstd.Decoder
	f   *os.File
}

func (z *zstdReader) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReader) Close() error {
	z.dec.Close()
	return z.f.Close()
}

// Open reads a file written by Create, decompressing ".zst" paths.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, CompressedExt) {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return &zstdReader{dec: dec, f: f}, nil
}
