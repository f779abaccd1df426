package debian

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/openpgp"          //nolint:staticcheck // matches paultag-go-archive's LoadInRelease idiom
	"golang.org/x/crypto/openpgp/clearsign" //nolint:staticcheck

	"github.com/heroku/deb-packages-buildpack/internal/bperrors"
)

// VerifyClearSigned checks an InRelease document's clear-sign PGP block
// against keyring and returns the signed plaintext body, matching spec.md
// §4.1 step 4: "construct a detached-signature verifier over the
// clear-signed document; verification MUST succeed or the operation fails
// with CreatePgpVerifier."
func VerifyClearSigned(document []byte, keyring []byte) ([]byte, error) {
	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(keyring))
	if err != nil {
		return nil, bperrors.Wrap(err, bperrors.KindNetwork, "loading PGP keyring").
			WithOperation("CreatePgpVerifier")
	}

	block, _ := clearsign.Decode(document)
	if block == nil {
		return nil, bperrors.New(bperrors.KindNetwork, "InRelease document is not clear-signed").
			WithOperation("CreatePgpVerifier")
	}

	if _, err := openpgp.CheckDetachedSignature(entities, bytes.NewReader(block.Bytes), block.ArmoredSignature.Body); err != nil {
		wrapped := fmt.Errorf("%w: %w", bperrors.ErrSignatureInvalid, err)

		return nil, bperrors.Wrap(wrapped, bperrors.KindNetwork, "PGP signature verification failed").
			WithOperation("CreatePgpVerifier")
	}

	return block.Plaintext, nil
}
