package curve

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestKeccak256(t *testing.T) {
	c := qt.New(t)

	// Legacy Keccak256, not SHA3-256.
	digest := Keccak256([]byte("hello world"))
	c.Assert(hex.EncodeToString(digest),
		qt.Equals, "47173285a8d7341e5e972fc677286384f802f8ef42a5ec5f03bbfa254cb01fab")

	// Multi-slice input hashes the concatenation.
	c.Assert(Keccak256([]byte("hello "), []byte("world")), qt.DeepEquals, digest)
}

func TestHashToScalar(t *testing.T) {
	c := qt.New(t)

	s1 := HashToScalar([]byte("hello world"))
	s2 := HashToScalar([]byte("hello world"))
	c.Assert(s1.Equals(s2), qt.IsTrue)

	s3 := HashToScalar([]byte("hello worle"))
	c.Assert(s1.Equals(s3), qt.IsFalse)
}

func TestHashToCurveKnownDiscreteLog(t *testing.T) {
	c := qt.New(t)

	msg := []byte("hello FROST")
	p := HashToCurve(msg)
	expected := ScalarBaseMult(HashToScalar(msg))
	c.Assert(Equal(p, expected), qt.IsTrue)
	c.Assert(IsIdentity(p), qt.IsFalse)
}

func TestCompressParseRoundTrip(t *testing.T) {
	c := qt.New(t)

	for i := 0; i < 16; i++ {
		k, err := RandomScalar(rand.Reader)
		c.Assert(err, qt.IsNil)
		p := ScalarBaseMult(k)

		enc := Compress(p)
		c.Assert(enc, qt.HasLen, CompressedSize)
		c.Assert(enc[0] == 0x02 || enc[0] == 0x03, qt.IsTrue)

		decoded, err := ParsePoint(enc)
		c.Assert(err, qt.IsNil)
		c.Assert(Equal(p, decoded), qt.IsTrue)
	}
}

func TestParsePointRejectsMalformed(t *testing.T) {
	c := qt.New(t)

	_, err := ParsePoint(make([]byte, CompressedSize))
	c.Assert(err, qt.ErrorIs, ErrMalformedPoint)

	_, err = ParsePoint([]byte{0x02, 0x01})
	c.Assert(err, qt.ErrorIs, ErrMalformedPoint)
}

func TestIdentityCompresses(t *testing.T) {
	c := qt.New(t)

	enc := Compress(Identity())
	c.Assert(enc, qt.DeepEquals, make([]byte, CompressedSize))
}

func TestAddNeg(t *testing.T) {
	c := qt.New(t)

	k, err := RandomScalar(rand.Reader)
	c.Assert(err, qt.IsNil)
	p := ScalarBaseMult(k)

	sum := Add(p, Neg(p))
	c.Assert(IsIdentity(sum), qt.IsTrue)

	// Adding the identity is a no-op.
	c.Assert(Equal(Add(p, Identity()), p), qt.IsTrue)
}

func TestScalarSerializeParse(t *testing.T) {
	c := qt.New(t)

	k, err := RandomScalar(rand.Reader)
	c.Assert(err, qt.IsNil)
	enc := SerializeScalar(k)
	c.Assert(enc, qt.HasLen, ScalarSize)

	decoded, err := ParseScalar(enc)
	c.Assert(err, qt.IsNil)
	c.Assert(k.Equals(decoded), qt.IsTrue)

	// The group order itself is not canonical.
	orderBytes, err := hex.DecodeString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	c.Assert(err, qt.IsNil)
	_, err = ParseScalar(orderBytes)
	c.Assert(err, qt.IsNotNil)
}

func TestRandomScalarNonZero(t *testing.T) {
	c := qt.New(t)

	for i := 0; i < 16; i++ {
		k, err := RandomScalar(rand.Reader)
		c.Assert(err, qt.IsNil)
		c.Assert(k.IsZero(), qt.IsFalse)
	}
}
