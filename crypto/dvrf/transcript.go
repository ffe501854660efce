package dvrf

import (
	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/vocdoni/davinci-dvrf/crypto/curve"
)

// Challenge derives the Fiat–Shamir challenge for the DDH-equality proof
// from the ordered tuple (G, PH, vk, v, com1, com2): the six compressed
// encodings are concatenated in exactly that order (198 bytes), hashed
// with Keccak256 and reduced modulo the group order. The ordering is part
// of the wire contract; no domain tag is prepended, for compatibility
// with existing verifiers.
func Challenge(g, ph, vk, v, com1, com2 *secp256k1.JacobianPoint) *secp256k1.ModNScalar {
	buf := make([]byte, 0, 6*curve.CompressedSize)
	for _, p := range []*secp256k1.JacobianPoint{g, ph, vk, v, com1, com2} {
		buf = append(buf, curve.Compress(p)...)
	}
	return curve.HashToScalar(buf)
}
