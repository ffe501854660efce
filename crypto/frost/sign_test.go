package frost

import (
	"crypto/rand"
	"testing"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/davinci-dvrf/crypto/curve"
	"github.com/vocdoni/davinci-dvrf/util"
)

func signSetup(c *qt.C, maxSigners, minSigners uint16) (*DkgOutput, []Identifier) {
	cfg, err := NewConfig(maxSigners, minSigners)
	c.Assert(err, qt.IsNil)
	out, err := RunDKG(cfg, rand.Reader)
	c.Assert(err, qt.IsNil)
	return out, out.AllIdentifiers()
}

func TestSignVerify(t *testing.T) {
	c := qt.New(t)
	out, ids := signSetup(c, 5, 3)

	msg := []byte("attestation")
	sig, err := Sign(msg, out, ids[:3], rand.Reader)
	c.Assert(err, qt.IsNil)
	c.Assert(Verify(msg, sig, out), qt.IsTrue)
}

func TestSignAnySubsetVerifies(t *testing.T) {
	c := qt.New(t)
	out, ids := signSetup(c, 5, 3)

	msg := util.RandomBytes(32)
	for _, subset := range [][]Identifier{ids[:3], ids[2:], {ids[0], ids[2], ids[4]}, ids} {
		sig, err := Sign(msg, out, subset, rand.Reader)
		c.Assert(err, qt.IsNil)
		c.Assert(Verify(msg, sig, out), qt.IsTrue, qt.Commentf("subset %v", subset))
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	c := qt.New(t)
	out, ids := signSetup(c, 3, 2)

	msg := []byte("attestation")
	sig, err := Sign(msg, out, ids[:2], rand.Reader)
	c.Assert(err, qt.IsNil)

	// Wrong message.
	c.Assert(Verify([]byte("attestatioN"), sig, out), qt.IsFalse)

	// Tampered response scalar.
	tampered := new(Signature)
	tampered.r.Set(&sig.r)
	tampered.z.Set(&sig.z)
	tampered.z.Add(new(secp256k1.ModNScalar).SetInt(1))
	c.Assert(Verify(msg, tampered, out), qt.IsFalse)
}

func TestSignatureSerializeRoundTrip(t *testing.T) {
	c := qt.New(t)
	out, ids := signSetup(c, 3, 2)

	sig, err := Sign([]byte("wire"), out, ids[:2], rand.Reader)
	c.Assert(err, qt.IsNil)

	enc := sig.Serialize()
	c.Assert(enc, qt.HasLen, 65)

	decoded, err := ParseSignature(enc)
	c.Assert(err, qt.IsNil)
	c.Assert(decoded.Serialize(), qt.DeepEquals, enc)
	c.Assert(Verify([]byte("wire"), decoded, out), qt.IsTrue)

	_, err = ParseSignature(enc[:64])
	c.Assert(err, qt.IsNotNil)
}

func TestSignBelowThreshold(t *testing.T) {
	c := qt.New(t)
	out, ids := signSetup(c, 5, 3)

	_, err := Sign([]byte("too few"), out, ids[:2], rand.Reader)
	c.Assert(err, qt.IsNotNil)
}

func TestSignUnknownSigner(t *testing.T) {
	c := qt.New(t)
	out, ids := signSetup(c, 3, 2)

	stranger, err := NewIdentifier(9)
	c.Assert(err, qt.IsNil)
	_, err = Sign([]byte("who"), out, []Identifier{ids[0], stranger}, rand.Reader)
	c.Assert(err, qt.IsNotNil)
}

func TestAggregateRejectsBadShare(t *testing.T) {
	c := qt.New(t)
	out, ids := signSetup(c, 3, 2)
	signers := ids[:2]
	msg := []byte("bad share")

	nonces := make(map[Identifier]*SigningNonces, len(signers))
	commitments := make(map[Identifier]*SigningCommitments, len(signers))
	for _, id := range signers {
		n, com, err := Commit(out.KeyPackages[id].SigningShare(), rand.Reader)
		c.Assert(err, qt.IsNil)
		nonces[id] = n
		commitments[id] = com
	}
	pkg := NewSigningPackage(commitments, msg)

	shares := make(map[Identifier]*SignatureShare, len(signers))
	for _, id := range signers {
		share, err := SignRound2(pkg, nonces[id], out.KeyPackages[id])
		c.Assert(err, qt.IsNil)
		shares[id] = share
	}

	// Corrupt one share; aggregation must identify it and fail.
	shares[signers[1]].share.Add(new(secp256k1.ModNScalar).SetInt(1))
	_, err := Aggregate(pkg, shares, out.PublicKeyPackage)
	c.Assert(err, qt.IsNotNil)
}

func TestCommitProducesDistinctNonces(t *testing.T) {
	c := qt.New(t)
	out, ids := signSetup(c, 3, 2)
	share := out.KeyPackages[ids[0]].SigningShare()

	n1, com1, err := Commit(share, rand.Reader)
	c.Assert(err, qt.IsNil)
	n2, com2, err := Commit(share, rand.Reader)
	c.Assert(err, qt.IsNil)
	defer n1.Zeroize()
	defer n2.Zeroize()

	c.Assert(n1.hiding.Equals(&n2.hiding), qt.IsFalse)
	c.Assert(n1.binding.Equals(&n2.binding), qt.IsFalse)
	c.Assert(curve.Equal(&com1.hiding, &com2.hiding), qt.IsFalse)
}
