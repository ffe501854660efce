package dvrf

import (
	"errors"
	"fmt"
	"io"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/vocdoni/davinci-dvrf/crypto/frost"
	"github.com/vocdoni/davinci-dvrf/log"
)

// ErrInvalidSubset is returned when the signer subset is below the
// threshold, contains duplicates, or names a participant without a key
// package.
var ErrInvalidSubset = errors.New("dvrf: invalid signer subset")

// ProofRejectedError reports that the self-check of a freshly produced
// proof failed for one signer. It aborts the round: a single undetected
// bad partial would corrupt the combined output.
type ProofRejectedError struct {
	Identifier frost.Identifier
}

func (e *ProofRejectedError) Error() string {
	return fmt.Sprintf("dvrf: proof rejected for signer %s", e.Identifier)
}

// SignerShare is one signer's public partial evaluation v_i.
type SignerShare struct {
	Identifier frost.Identifier
	Share      *secp256k1.JacobianPoint
}

// Output is the result of one DVRF evaluation: the combined value
// V = sk * H(m) plus the per-signer partials it was assembled from.
type Output struct {
	Value  *secp256k1.JacobianPoint
	Shares []SignerShare
}

// Evaluate runs a single DVRF round over msg for the given signer
// subset. Every signer in the subset produces (v_i, proof_i); each proof
// is verified before the partials are Lagrange-combined. The combined
// value depends only on the subset's key material and msg, not on the
// subset choice or iteration order.
func Evaluate(rng io.Reader, msg []byte, keyPackages map[frost.Identifier]*frost.KeyPackage,
	pub *frost.PublicKeyPackage, signers []frost.Identifier,
) (*Output, error) {
	if err := validateSubset(keyPackages, signers); err != nil {
		return nil, err
	}

	combineInput := make([]IndexedPoint, 0, len(signers))
	shares := make([]SignerShare, 0, len(signers))
	for _, id := range signers {
		kp := keyPackages[id]
		sk, err := SecretScalar(kp)
		if err != nil {
			return nil, fmt.Errorf("signer %s: %w", id, err)
		}
		vk, err := VerifyingSharePoint(pub, id)
		if err != nil {
			sk.Zero()
			return nil, fmt.Errorf("signer %s: %w", id, err)
		}

		v, proof, err := ProveEq(rng, msg, vk, sk)
		sk.Zero()
		if err != nil {
			return nil, err
		}
		if !VerifyEq(msg, vk, v, proof) {
			return nil, &ProofRejectedError{Identifier: id}
		}
		log.Debugw("dvrf partial evaluation", "signer", id.String())

		combineInput = append(combineInput, IndexedPoint{Index: id.Uint64(), Point: v})
		shares = append(shares, SignerShare{Identifier: id, Share: v})
	}

	value, err := Combine(combineInput)
	if err != nil {
		return nil, err
	}
	return &Output{Value: value, Shares: shares}, nil
}

// validateSubset enforces |S| >= t, distinct members, and membership in
// the key package map.
func validateSubset(keyPackages map[frost.Identifier]*frost.KeyPackage, signers []frost.Identifier) error {
	if len(signers) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidSubset)
	}
	seen := make(map[frost.Identifier]struct{}, len(signers))
	for _, id := range signers {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate signer %s", ErrInvalidSubset, id)
		}
		seen[id] = struct{}{}
		kp, ok := keyPackages[id]
		if !ok {
			return fmt.Errorf("%w: no key package for signer %s", ErrInvalidSubset, id)
		}
		if uint16(len(signers)) < kp.MinSigners() {
			return fmt.Errorf("%w: %d signers below threshold %d", ErrInvalidSubset, len(signers), kp.MinSigners())
		}
	}
	return nil
}
