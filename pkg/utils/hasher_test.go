package utils

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lukechampine.com/blake3"
)

func TestChunkSizeFor(t *testing.T) {
	const (
		kib = 1 << 10
		mib = 1 << 20
		gib = 1 << 30
	)

	cases := []struct {
		name  string
		input int64
		want  int64
	}{
		{"unknownOrZero", 0, 512 * kib},
		{"negative", -1, 512 * kib},
		{"under4MiB", 3*mib + 512*kib, 512 * kib},
		{"exact4MiB", 4 * mib, 512 * kib},
		{"justOver4MiB", 4*mib + 1, 1 * mib},
		{"exact32MiB", 32 * mib, 1 * mib},
		{"justOver32MiB", 32*mib + 1, 2 * mib},
		{"exact2GiB", 2 * gib, 2 * mib},
		{"above2GiB", 2*gib + 1, 4 * mib},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := chunkSizeFor(tc.input); got != tc.want {
				t.Fatalf("chunkSizeFor(%d) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestBlake3Hash(t *testing.T) {
	t.Parallel()

	msg := []byte(strings.Repeat("trace line payload ", 1024))
	want := blake3.Sum256(msg)

	got, err := Blake3Hash(msg)
	if err != nil {
		t.Fatalf("Blake3Hash returned error: %v", err)
	}
	if !bytes.Equal(got, want[:]) {
		t.Fatalf("hash mismatch")
	}
}

func TestBlake3HashFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := []byte(strings.Repeat("22:49:03.974237 <= Recv data, 1378 bytes (0x562)\n", 4096))
	path := filepath.Join(dir, "1M.bin_1.log")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	want := blake3.Sum256(data)

	got, err := Blake3HashFile(path)
	if err != nil {
		t.Fatalf("Blake3HashFile returned error: %v", err)
	}
	if !bytes.Equal(got, want[:]) {
		t.Fatalf("file hash mismatch")
	}

	hexGot, err := Blake3HexFile(path)
	if err != nil {
		t.Fatalf("Blake3HexFile returned error: %v", err)
	}
	if hexGot != hex.EncodeToString(want[:]) {
		t.Fatalf("hex digest mismatch: %s", hexGot)
	}
}

func TestBlake3HashFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := Blake3HashFile(filepath.Join(t.TempDir(), "absent.log")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestGetHashFromBytes(t *testing.T) {
	t.Parallel()

	sum := blake3.Sum256([]byte("1M.bin"))
	if got := GetHashFromBytes([]byte("1M.bin")); got != hex.EncodeToString(sum[:]) {
		t.Fatalf("unexpected digest %s", got)
	}
}
