package dvrf

import (
	"encoding/binary"
	"errors"
	"fmt"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/vocdoni/davinci-dvrf/crypto/curve"
)

// IndexedPoint pairs a signer index (the u64 projection of its
// identifier) with that signer's partial evaluation point.
type IndexedPoint struct {
	Index uint64
	Point *secp256k1.JacobianPoint
}

// ErrCombineDegenerate is returned when two signer indexes collide modulo
// the group order, making a Lagrange denominator non-invertible. This
// cannot happen for well-formed identifier sets (small distinct
// integers), so hitting it means corrupted input.
var ErrCombineDegenerate = errors.New("dvrf: signer indexes collide, lagrange denominator is zero")

// Combine interpolates the polynomial-in-the-exponent behind the given
// points at x = 0: it computes lambda_i = prod_{j != i} j/(j-i) over the
// supplied index set and returns sum lambda_i * P_i. The result does not
// depend on the input order. An empty input yields the identity.
func Combine(points []IndexedPoint) (*secp256k1.JacobianPoint, error) {
	for k, p := range points {
		if p.Index == 0 {
			return nil, errors.New("dvrf: zero signer index")
		}
		for _, q := range points[:k] {
			if q.Index == p.Index {
				return nil, fmt.Errorf("%w: index %d appears twice", ErrCombineDegenerate, p.Index)
			}
		}
	}

	result := curve.Identity()
	for _, p := range points {
		si := scalarFromIndex(p.Index)
		num := new(secp256k1.ModNScalar).SetInt(1)
		den := new(secp256k1.ModNScalar).SetInt(1)
		for _, q := range points {
			if q.Index == p.Index {
				continue
			}
			sj := scalarFromIndex(q.Index)
			num.Mul(sj)
			diff := new(secp256k1.ModNScalar)
			diff.NegateVal(si).Add(sj)
			if diff.IsZero() {
				return nil, fmt.Errorf("%w: indexes %d and %d", ErrCombineDegenerate, p.Index, q.Index)
			}
			den.Mul(diff)
		}
		den.InverseNonConst()
		lambda := num.Mul(den)
		result = curve.Add(result, curve.ScalarMult(lambda, p.Point))
	}
	return result, nil
}

// scalarFromIndex loads a u64 signer index into a scalar.
func scalarFromIndex(u uint64) *secp256k1.ModNScalar {
	var buf [32]byte
	binary.BigEndian.PutUint64(buf[24:], u)
	s := new(secp256k1.ModNScalar)
	s.SetBytes(&buf)
	return s
}
