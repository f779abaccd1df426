// Package hashutil wraps stdlib SHA-256 the way the teacher's pkg/crypto
// does, plus an io.Reader wrapper that hashes a stream while it is being
// read.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// SHA256Reader wraps an io.Reader, feeding every byte read through a SHA-256
// hasher so the final digest can be compared once the stream is exhausted.
type SHA256Reader struct {
	r      io.Reader
	hasher interface {
		io.Writer
		Sum([]byte) []byte
	}
}

// NewSHA256Reader wraps r so reads are simultaneously hashed.
func NewSHA256Reader(r io.Reader) *SHA256Reader {
	return &SHA256Reader{r: r, hasher: sha256.New()}
}

// Read implements io.Reader.
func (s *SHA256Reader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n > 0 {
		s.hasher.Write(p[:n])
	}

	return n, err
}

// Sum returns the lowercase hex SHA-256 digest of every byte read so far.
func (s *SHA256Reader) Sum() string {
	return hex.EncodeToString(s.hasher.Sum(nil))
}

// SHA256Hex returns the lowercase hex SHA-256 digest of r's full contents.
func SHA256Hex(r io.Reader) (string, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// VerifySHA256 reports whether r's SHA-256 digest equals the expected hex
// digest, ignoring case.
func VerifySHA256(r io.Reader, expectedHex string) (bool, string, error) {
	actual, err := SHA256Hex(r)
	if err != nil {
		return false, "", err
	}

	return equalFoldHex(actual, expectedHex), actual, nil
}

func equalFoldHex(a, b string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}

		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}

		if ca != cb {
			return false
		}
	}

	return true
}
