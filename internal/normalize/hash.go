package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"io"
	"os"
)

// FileHash computes the hex-encoded SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// PatientHash returns the 16-char pseudonymous patient id for the n-th patient.
func PatientHash(n int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("patient_%08d", n)))
	return hex.EncodeToString(sum[:])[:16]
}

// StreamSeed derives a per-stream seed from the project seed and a stream
// name, so each table draws an independent but reproducible sequence.
func StreamSeed(seed int64, stream string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(stream))
	s := uint64(seed) ^ h.Sum64()
	if s == 0 {
		// gofakeit treats a zero seed as "seed from the clock".
		s = 1
	}
	return s
}
