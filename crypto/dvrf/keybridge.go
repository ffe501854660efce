package dvrf

import (
	"errors"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/vocdoni/davinci-dvrf/crypto/frost"
)

// ErrUnknownIdentifier is returned when the public key package carries no
// verifying share for a requested signer.
var ErrUnknownIdentifier = errors.New("dvrf: unknown identifier")

// ErrZeroShare is returned when a signing share decodes to zero modulo
// the group order. A zero share can only come from a broken key package.
var ErrZeroShare = errors.New("dvrf: signing share decodes to zero")

// SecretScalar projects a key package's signing share into a native
// scalar: the 32-byte big-endian serialization reduced modulo the group
// order. The caller owns the result and must zeroize it after use.
func SecretScalar(kp *frost.KeyPackage) (*secp256k1.ModNScalar, error) {
	ser := kp.SigningShare().Serialize()
	s := new(secp256k1.ModNScalar)
	s.SetByteSlice(ser)
	for i := range ser {
		ser[i] = 0
	}
	if s.IsZero() {
		return nil, ErrZeroShare
	}
	return s, nil
}

// VerifyingSharePoint looks up the verifying share for id in the public
// key package and converts it to a native point.
func VerifyingSharePoint(pub *frost.PublicKeyPackage, id frost.Identifier) (*secp256k1.JacobianPoint, error) {
	vs := pub.VerifyingShare(id)
	if vs == nil {
		return nil, ErrUnknownIdentifier
	}
	return vs.Jacobian(), nil
}
