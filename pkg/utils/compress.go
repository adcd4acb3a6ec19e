package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ZstdCompress compresses data using zstd with default settings.
func ZstdCompress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: create encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// ZstdDecompress decompresses zstd-compressed data.
func ZstdDecompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: create decoder: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// ZstdCompressFile compresses src into src+".zst" and removes src on
// success. It returns the path of the compressed file.
func ZstdCompressFile(src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("zstd: open source: %w", err)
	}
	defer in.Close()

	dst := src + ".zst"
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("zstd: create target: %w", err)
	}

	enc, err := zstd.NewWriter(out)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("zstd: create encoder: %w", err)
	}

	if _, err := io.Copy(enc, in); err != nil {
		enc.Close()
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("zstd: compress: %w", err)
	}
	if err := enc.Close(); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("zstd: flush: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("zstd: close target: %w", err)
	}

	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("zstd: remove source: %w", err)
	}
	return dst, nil
}

type zstdReadCloser struct {
	dec *zstd.Decoder
	f   *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.dec.Close()
	return z.f.Close()
}

// OpenMaybeCompressed opens path for reading, transparently decompressing
// when the name carries a ".zst" suffix.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd: create decoder: %w", err)
	}
	return &zstdReadCloser{dec: dec, f: f}, nil
}
