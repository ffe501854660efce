package dvrf

import (
	"crypto/rand"
	"testing"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/davinci-dvrf/crypto/curve"
	"github.com/vocdoni/davinci-dvrf/util"
)

// testKey returns a random secret scalar with its public counterpart.
func testKey(c *qt.C) (*secp256k1.ModNScalar, *secp256k1.JacobianPoint) {
	sk, err := curve.RandomScalar(rand.Reader)
	c.Assert(err, qt.IsNil)
	return sk, curve.ScalarBaseMult(sk)
}

func TestProveVerifyEq(t *testing.T) {
	c := qt.New(t)
	sk, vk := testKey(c)

	msg := []byte("hello FROST")
	v, proof, err := ProveEq(rand.Reader, msg, vk, sk)
	c.Assert(err, qt.IsNil)

	// v must be the partial evaluation sk*H(msg).
	expected := curve.ScalarMult(sk, curve.HashToCurve(msg))
	c.Assert(curve.Equal(v, expected), qt.IsTrue)

	c.Assert(VerifyEq(msg, vk, v, proof), qt.IsTrue)
}

func TestVerifyEqRejectsTampering(t *testing.T) {
	c := qt.New(t)
	sk, vk := testKey(c)

	msg := []byte("dvrfddhhello")
	v, proof, err := ProveEq(rand.Reader, msg, vk, sk)
	c.Assert(err, qt.IsNil)
	c.Assert(VerifyEq(msg, vk, v, proof), qt.IsTrue)

	g := curve.Generator()

	// Tampered message.
	c.Assert(VerifyEq([]byte("dvrfddhhellp"), vk, v, proof), qt.IsFalse)

	// Tampered verifying share.
	c.Assert(VerifyEq(msg, curve.Add(vk, g), v, proof), qt.IsFalse)

	// Tampered partial evaluation.
	c.Assert(VerifyEq(msg, vk, curve.Add(v, g), proof), qt.IsFalse)

	// Tampered challenge: ch+1.
	tampered := new(Proof)
	tampered.Ch.Set(&proof.Ch)
	tampered.Rs.Set(&proof.Rs)
	one := new(secp256k1.ModNScalar).SetInt(1)
	tampered.Ch.Add(one)
	c.Assert(VerifyEq(msg, vk, v, tampered), qt.IsFalse)

	// Tampered response: rs+1.
	tampered = new(Proof)
	tampered.Ch.Set(&proof.Ch)
	tampered.Rs.Set(&proof.Rs)
	tampered.Rs.Add(one)
	c.Assert(VerifyEq(msg, vk, v, tampered), qt.IsFalse)
}

func TestProofVariesWithNonce(t *testing.T) {
	c := qt.New(t)
	sk, vk := testKey(c)

	msg := []byte("determinism up to nonce")
	v1, proof1, err := ProveEq(rand.Reader, msg, vk, sk)
	c.Assert(err, qt.IsNil)
	v2, proof2, err := ProveEq(rand.Reader, msg, vk, sk)
	c.Assert(err, qt.IsNil)

	// The partial evaluation is deterministic, the proof is not.
	c.Assert(curve.Equal(v1, v2), qt.IsTrue)
	c.Assert(proof1.Ch.Equals(&proof2.Ch), qt.IsFalse)

	c.Assert(VerifyEq(msg, vk, v1, proof1), qt.IsTrue)
	c.Assert(VerifyEq(msg, vk, v2, proof2), qt.IsTrue)
}

func TestProofSerializeRoundTrip(t *testing.T) {
	c := qt.New(t)
	sk, vk := testKey(c)

	_, proof, err := ProveEq(rand.Reader, util.RandomBytes(64), vk, sk)
	c.Assert(err, qt.IsNil)

	enc := proof.Serialize()
	c.Assert(enc, qt.HasLen, ProofSize)

	decoded, err := ParseProof(enc)
	c.Assert(err, qt.IsNil)
	c.Assert(decoded.Ch.Equals(&proof.Ch), qt.IsTrue)
	c.Assert(decoded.Rs.Equals(&proof.Rs), qt.IsTrue)

	_, err = ParseProof(enc[:ProofSize-1])
	c.Assert(err, qt.IsNotNil)
}

func TestChallengeIsPositionBound(t *testing.T) {
	c := qt.New(t)
	sk, vk := testKey(c)

	msg := []byte("transcript order")
	g := curve.Generator()
	ph := curve.HashToCurve(msg)
	v := curve.ScalarMult(sk, ph)
	r, err := curve.RandomScalar(rand.Reader)
	c.Assert(err, qt.IsNil)
	com1 := curve.ScalarBaseMult(r)
	com2 := curve.ScalarMult(r, ph)

	canonical := Challenge(g, ph, vk, v, com1, com2)
	swapped := Challenge(g, ph, v, vk, com1, com2)
	c.Assert(canonical.Equals(swapped), qt.IsFalse)
}
