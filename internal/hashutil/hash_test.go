package hashutil_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heroku/deb-packages-buildpack/internal/hashutil"
)

func TestSHA256ReaderMatchesSHA256Hex(t *testing.T) {
	const body = "package body bytes"

	direct, err := hashutil.SHA256Hex(strings.NewReader(body))
	assert.NoError(t, err)

	sr := hashutil.NewSHA256Reader(strings.NewReader(body))
	buf := make([]byte, 4)

	for {
		_, readErr := sr.Read(buf)
		if readErr != nil {
			break
		}
	}

	assert.Equal(t, direct, sr.Sum())
}

func TestVerifySHA256CaseInsensitive(t *testing.T) {
	ok, actual, err := hashutil.VerifySHA256(strings.NewReader("hello"),
		strings.ToUpper("2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"))
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", actual)
}

func TestVerifySHA256Mismatch(t *testing.T) {
	ok, _, err := hashutil.VerifySHA256(strings.NewReader("hello"), strings.Repeat("0", 64))
	assert.NoError(t, err)
	assert.False(t, ok)
}
