package frost

import (
	"errors"
	"fmt"
	"io"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/vocdoni/davinci-dvrf/crypto/curve"
	"github.com/vocdoni/davinci-dvrf/log"
)

// ErrInvalidConfig is returned for DKG parameters out of range.
var ErrInvalidConfig = errors.New("frost: invalid dkg config")

// Config holds the DKG parameters: n participants, threshold t.
type Config struct {
	MaxSigners uint16
	MinSigners uint16
}

// NewConfig validates and builds a DKG configuration.
func NewConfig(maxSigners, minSigners uint16) (Config, error) {
	if maxSigners < 2 {
		return Config{}, fmt.Errorf("%w: max_signers must be >= 2", ErrInvalidConfig)
	}
	if minSigners < 2 {
		return Config{}, fmt.Errorf("%w: min_signers must be >= 2", ErrInvalidConfig)
	}
	if minSigners > maxSigners {
		return Config{}, fmt.Errorf("%w: min_signers must be <= max_signers", ErrInvalidConfig)
	}
	return Config{MaxSigners: maxSigners, MinSigners: minSigners}, nil
}

// DkgOutput is the result of a completed key generation: one KeyPackage
// per participant plus the shared PublicKeyPackage.
type DkgOutput struct {
	KeyPackages      map[Identifier]*KeyPackage
	PublicKeyPackage *PublicKeyPackage
}

// AllIdentifiers returns the participant identifiers in ascending order.
func (o *DkgOutput) AllIdentifiers() []Identifier {
	ids := make([]Identifier, 0, len(o.KeyPackages))
	for id := range o.KeyPackages {
		ids = append(ids, id)
	}
	SortIdentifiers(ids)
	return ids
}

// dealer is the in-process state of one DKG participant while the
// protocol runs.
type dealer struct {
	id          Identifier
	coeffs      []*secp256k1.ModNScalar   // secret polynomial, degree t-1
	commitments []*secp256k1.JacobianPoint // coefficient commitments a_k*G
	shares      map[Identifier]*secp256k1.ModNScalar
}

// RunDKG executes the dealerless key generation for all participants in
// process, over trusted in-memory channels. Every participant deals a
// random degree t-1 polynomial, commits to its coefficients, distributes
// evaluations, and verifies every received share against the dealer's
// commitments before aggregating.
func RunDKG(cfg Config, rng io.Reader) (*DkgOutput, error) {
	n := cfg.MaxSigners
	t := cfg.MinSigners

	// Round 1: every participant deals a polynomial and broadcasts the
	// coefficient commitments.
	dealers := make([]*dealer, 0, n)
	for i := uint16(1); i <= n; i++ {
		id, err := NewIdentifier(i)
		if err != nil {
			return nil, err
		}
		d := &dealer{
			id:          id,
			coeffs:      make([]*secp256k1.ModNScalar, t),
			commitments: make([]*secp256k1.JacobianPoint, t),
			shares:      make(map[Identifier]*secp256k1.ModNScalar, n),
		}
		for k := range d.coeffs {
			coeff, err := curve.RandomScalar(rng)
			if err != nil {
				return nil, fmt.Errorf("frost: dkg round 1: %w", err)
			}
			d.coeffs[k] = coeff
			d.commitments[k] = curve.ScalarBaseMult(coeff)
		}
		dealers = append(dealers, d)
	}
	defer func() {
		for _, d := range dealers {
			for _, c := range d.coeffs {
				c.Zero()
			}
			for _, s := range d.shares {
				s.Zero()
			}
		}
	}()

	// Round 2: every dealer sends f_i(j) to participant j, who checks it
	// against the dealer's commitments.
	for _, d := range dealers {
		for _, recv := range dealers {
			share := evalPolynomial(d.coeffs, recv.id.Uint64())
			if d != recv && !verifyDealtShare(share, recv.id.Uint64(), d.commitments) {
				return nil, fmt.Errorf("frost: dkg share from participant %s failed commitment verification", d.id)
			}
			d.shares[recv.id] = share
		}
	}

	// Round 3: each participant aggregates the shares addressed to it;
	// the group key and the per-participant verifying shares come from
	// the public commitments alone.
	groupKey := curve.Identity()
	for _, d := range dealers {
		groupKey = curve.Add(groupKey, d.commitments[0])
	}
	verifyingKey := NewVerifyingKey(groupKey)

	keyPackages := make(map[Identifier]*KeyPackage, n)
	verifyingShares := make(map[Identifier]*VerifyingShare, n)
	for _, recv := range dealers {
		signingScalar := new(secp256k1.ModNScalar)
		for _, d := range dealers {
			signingScalar.Add(d.shares[recv.id])
		}

		sharePoint := curve.Identity()
		for _, d := range dealers {
			sharePoint = curve.Add(sharePoint, commitmentEval(d.commitments, recv.id.Uint64()))
		}
		vs := NewVerifyingShare(sharePoint)
		verifyingShares[recv.id] = vs

		keyPackages[recv.id] = NewKeyPackage(recv.id, NewSigningShare(signingScalar), vs, verifyingKey, t)
		signingScalar.Zero()
	}

	log.Debugw("dkg completed", "participants", int(n), "threshold", int(t))
	return &DkgOutput{
		KeyPackages:      keyPackages,
		PublicKeyPackage: NewPublicKeyPackage(verifyingShares, verifyingKey),
	}, nil
}

// evalPolynomial evaluates the polynomial with the given coefficients
// (constant term first) at x using Horner's rule.
func evalPolynomial(coeffs []*secp256k1.ModNScalar, x uint64) *secp256k1.ModNScalar {
	xs := scalarFromUint64(x)
	res := new(secp256k1.ModNScalar)
	res.Set(coeffs[len(coeffs)-1])
	for k := len(coeffs) - 2; k >= 0; k-- {
		res.Mul(xs)
		res.Add(coeffs[k])
	}
	return res
}

// commitmentEval evaluates the committed polynomial in the exponent at x:
// sum_k x^k * C_k.
func commitmentEval(commitments []*secp256k1.JacobianPoint, x uint64) *secp256k1.JacobianPoint {
	xs := scalarFromUint64(x)
	xPow := new(secp256k1.ModNScalar).SetInt(1)
	res := curve.Identity()
	for _, c := range commitments {
		res = curve.Add(res, curve.ScalarMult(xPow, c))
		xPow.Mul(xs)
	}
	return res
}

// verifyDealtShare checks share*G against the dealer's coefficient
// commitments evaluated at x.
func verifyDealtShare(share *secp256k1.ModNScalar, x uint64, commitments []*secp256k1.JacobianPoint) bool {
	return curve.Equal(curve.ScalarBaseMult(share), commitmentEval(commitments, x))
}
