package ethereum

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"strings"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	qt "github.com/frankban/quicktest"

	"github.com/vocdoni/davinci-dvrf/crypto/curve"
	"github.com/vocdoni/davinci-dvrf/crypto/frost"
)

func TestAddrFromPoint(t *testing.T) {
	c := qt.New(t)

	priv, err := ethcrypto.GenerateKey()
	c.Assert(err, qt.IsNil)
	expected := ethcrypto.PubkeyToAddress(priv.PublicKey)

	// Route the same key through the curve types.
	point, err := curve.ParsePoint(ethcrypto.CompressPubkey(&priv.PublicKey))
	c.Assert(err, qt.IsNil)
	addr, err := AddrFromPoint(point)
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Equals, expected)
}

func TestAddrFromPointIdentity(t *testing.T) {
	c := qt.New(t)

	_, err := AddrFromPoint(curve.Identity())
	c.Assert(err, qt.IsNotNil)
}

func TestVerificationInputJSON(t *testing.T) {
	c := qt.New(t)

	cfg, err := frost.NewConfig(3, 2)
	c.Assert(err, qt.IsNil)
	out, err := frost.RunDKG(cfg, rand.Reader)
	c.Assert(err, qt.IsNil)
	ids := out.AllIdentifiers()

	msg := []byte("attestation")
	sig, err := frost.Sign(msg, out, ids[:2], rand.Reader)
	c.Assert(err, qt.IsNil)

	payload, err := NewVerificationInput(msg, sig, out.PublicKeyPackage.VerifyingKey())
	c.Assert(err, qt.IsNil)
	c.Assert(payload.MessageHash, qt.HasLen, HashLength)
	c.Assert([]byte(payload.MessageHash), qt.DeepEquals, HashRaw(msg))
	c.Assert(payload.Signature, qt.HasLen, 65)
	c.Assert(payload.ExpectedSigner, qt.HasLen, 20)

	var buf bytes.Buffer
	c.Assert(payload.Export(&buf), qt.IsNil)
	encoded := buf.String()

	// Stable key names and "0x"-prefixed lowercase hex values.
	for _, key := range []string{"message_hash", "signature", "expected_signer"} {
		c.Assert(strings.Contains(encoded, `"`+key+`": "0x`), qt.IsTrue, qt.Commentf("missing key %q in %s", key, encoded))
	}
	c.Assert(encoded, qt.Equals, strings.ToLower(encoded))

	var decoded VerificationInput
	c.Assert(json.Unmarshal(buf.Bytes(), &decoded), qt.IsNil)
	c.Assert(decoded.MessageHash.Equal(payload.MessageHash), qt.IsTrue)
	c.Assert(decoded.Signature.Equal(payload.Signature), qt.IsTrue)
	c.Assert(decoded.ExpectedSigner.Equal(payload.ExpectedSigner), qt.IsTrue)
}
