// Package dvrf implements the threshold distributed verifiable random
// function evaluated over secp256k1: per-signer partial evaluations
// v_i = sk_i * H(m) bound to the signer's public share by a DDH-equality
// NIZK, and Lagrange combination of the partials into the group output
// V = sk * H(m).
package dvrf

import (
	"fmt"
	"io"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/vocdoni/davinci-dvrf/crypto/curve"
)

// ProofSize is the serialized proof length: ch(32) || rs(32).
const ProofSize = 2 * curve.ScalarSize

// Proof is a non-interactive proof of discrete-log equality between
// (G, vk) and (PH, v): both pairs share the exponent sk.
type Proof struct {
	Ch secp256k1.ModNScalar
	Rs secp256k1.ModNScalar
}

// Serialize returns ch(32) || rs(32).
func (p *Proof) Serialize() []byte {
	out := make([]byte, 0, ProofSize)
	out = append(out, curve.SerializeScalar(&p.Ch)...)
	out = append(out, curve.SerializeScalar(&p.Rs)...)
	return out
}

// ParseProof decodes a 64-byte ch || rs encoding, rejecting non-canonical
// scalars.
func ParseProof(data []byte) (*Proof, error) {
	if len(data) != ProofSize {
		return nil, fmt.Errorf("dvrf: proof must be %d bytes, got %d", ProofSize, len(data))
	}
	ch, err := curve.ParseScalar(data[:curve.ScalarSize])
	if err != nil {
		return nil, fmt.Errorf("dvrf: challenge: %w", err)
	}
	rs, err := curve.ParseScalar(data[curve.ScalarSize:])
	if err != nil {
		return nil, fmt.Errorf("dvrf: response: %w", err)
	}
	proof := new(Proof)
	proof.Ch.Set(ch)
	proof.Rs.Set(rs)
	return proof, nil
}

// ProveEq produces the partial evaluation v = sk*H(msg) together with a
// proof that its exponent equals the one behind vk = sk*G. The nonce is
// drawn from rng and zeroized before returning.
func ProveEq(rng io.Reader, msg []byte, vk *secp256k1.JacobianPoint, sk *secp256k1.ModNScalar,
) (*secp256k1.JacobianPoint, *Proof, error) {
	g := curve.Generator()
	ph := curve.HashToCurve(msg)

	// partial evaluation v = sk * PH
	v := curve.ScalarMult(sk, ph)

	r, err := curve.RandomScalar(rng)
	if err != nil {
		return nil, nil, fmt.Errorf("dvrf: sample nonce: %w", err)
	}
	defer r.Zero()

	com1 := curve.ScalarBaseMult(r)
	com2 := curve.ScalarMult(r, ph)

	ch := Challenge(g, ph, vk, v, com1, com2)

	// rs = sk*ch + r
	rs := new(secp256k1.ModNScalar)
	rs.Mul2(sk, ch).Add(r)

	proof := new(Proof)
	proof.Ch.Set(ch)
	proof.Rs.Set(rs)
	rs.Zero()
	return v, proof, nil
}

// VerifyEq reports whether proof demonstrates that v and vk share their
// discrete log over the bases H(msg) and G respectively. It recomputes
// the commitments as
//
//	com1' = rs*G  - ch*vk
//	com2' = rs*PH - ch*v
//
// and accepts iff the rederived challenge equals proof.Ch. The scalar
// comparison is constant time.
func VerifyEq(msg []byte, vk, v *secp256k1.JacobianPoint, proof *Proof) bool {
	g := curve.Generator()
	ph := curve.HashToCurve(msg)

	negCh := new(secp256k1.ModNScalar).NegateVal(&proof.Ch)

	com1 := curve.Add(curve.ScalarBaseMult(&proof.Rs), curve.ScalarMult(negCh, vk))
	com2 := curve.Add(curve.ScalarMult(&proof.Rs, ph), curve.ScalarMult(negCh, v))

	ch := Challenge(g, ph, vk, v, com1, com2)
	return ch.Equals(&proof.Ch)
}
