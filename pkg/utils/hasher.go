package utils

import (
	"encoding/hex"
	"io"
	"os"

	"lukechampine.com/blake3"
)

// hashReaderBLAKE3 computes a BLAKE3 hash with a manual buffered read
// loop instead of io.Copy, avoiding the *os.File.WriteTo fast-path that
// limits throughput on large inputs. The chunk size adapts to the input
// size so small trace logs stay cheap and gigabyte downloads stay fast.
func hashReaderBLAKE3(r io.Reader, sizeHint int64) ([]byte, error) {
	chunk := chunkSizeFor(sizeHint)
	buf := make([]byte, chunk)

	h := blake3.New(32, nil)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if _, werr := h.Write(buf[:n]); werr != nil {
				return nil, werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, rerr
		}
	}
	return h.Sum(nil), nil
}

// chunkSizeFor returns the hashing chunk size based on total input size.
func chunkSizeFor(total int64) int64 {
	if total <= 0 {
		return 512 << 10 // 512 KiB default when total size is unknown
	}
	switch {
	case total <= 4<<20: // ≤ 4 MiB
		return 512 << 10
	case total <= 32<<20: // ≤ 32 MiB
		return 1 << 20
	case total <= 2<<30: // ≤ 2 GiB
		return 2 << 20
	default:
		return 4 << 20
	}
}

// Blake3HashFile returns the BLAKE3 hash of a file (auto-selects chunk size).
func Blake3HashFile(filePath string) ([]byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return hashReaderBLAKE3(f, fi.Size())
}

// Blake3HexFile returns the hex-encoded BLAKE3 digest of a file.
func Blake3HexFile(filePath string) (string, error) {
	sum, err := Blake3HashFile(filePath)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

// Blake3Hash returns the BLAKE3 hash of msg.
func Blake3Hash(msg []byte) ([]byte, error) {
	h := blake3.New(32, nil)
	if _, err := h.Write(msg); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// GetHashFromBytes returns the hex-encoded BLAKE3 digest of msg, or an
// empty string if hashing fails.
func GetHashFromBytes(msg []byte) string {
	sum, err := Blake3Hash(msg)
	if err != nil {
		return ""
	}
	return hex.EncodeToString(sum)
}
