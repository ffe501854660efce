package frost

import (
	"fmt"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/vocdoni/davinci-dvrf/crypto/curve"
)

// SigningShare is a participant's secret Shamir share of the group
// signing key. It deliberately has no String method and is skipped by the
// CBOR encoders of the public packages.
type SigningShare struct {
	scalar secp256k1.ModNScalar
}

// NewSigningShare wraps a scalar as a signing share. The scalar is copied.
func NewSigningShare(s *secp256k1.ModNScalar) *SigningShare {
	share := new(SigningShare)
	share.scalar.Set(s)
	return share
}

// Serialize returns the 32-byte big-endian encoding of the share.
func (s *SigningShare) Serialize() []byte {
	return curve.SerializeScalar(&s.scalar)
}

// Scalar returns a copy of the underlying scalar. The caller owns the
// copy and is responsible for zeroizing it.
func (s *SigningShare) Scalar() *secp256k1.ModNScalar {
	out := new(secp256k1.ModNScalar)
	out.Set(&s.scalar)
	return out
}

// Zeroize clears the share material.
func (s *SigningShare) Zeroize() {
	s.scalar.Zero()
}

// VerifyingShare is the public counterpart of a SigningShare:
// vk_i = sk_i * G.
type VerifyingShare struct {
	point secp256k1.JacobianPoint
}

// NewVerifyingShare wraps a point as a verifying share. The point is
// copied.
func NewVerifyingShare(p *secp256k1.JacobianPoint) *VerifyingShare {
	vs := new(VerifyingShare)
	vs.point.Set(p)
	return vs
}

// Jacobian returns a copy of the share point.
func (v *VerifyingShare) Jacobian() *secp256k1.JacobianPoint {
	p := new(secp256k1.JacobianPoint)
	p.Set(&v.point)
	return p
}

// Serialize returns the SEC1 compressed encoding of the share point.
func (v *VerifyingShare) Serialize() []byte {
	return curve.Compress(&v.point)
}

// VerifyingKey is the group public key PK = sk * G, where sk is the
// Shamir-reconstructed secret at x = 0.
type VerifyingKey struct {
	point secp256k1.JacobianPoint
}

// NewVerifyingKey wraps a point as the group verifying key. The point is
// copied.
func NewVerifyingKey(p *secp256k1.JacobianPoint) *VerifyingKey {
	vk := new(VerifyingKey)
	vk.point.Set(p)
	return vk
}

// Jacobian returns a copy of the key point.
func (v *VerifyingKey) Jacobian() *secp256k1.JacobianPoint {
	p := new(secp256k1.JacobianPoint)
	p.Set(&v.point)
	return p
}

// Serialize returns the SEC1 compressed encoding of the key point.
func (v *VerifyingKey) Serialize() []byte {
	return curve.Compress(&v.point)
}

// KeyPackage holds everything one participant needs to take part in a
// signing or DVRF round: its identifier, its secret share, the matching
// verifying share, the group key, and the threshold.
type KeyPackage struct {
	identifier     Identifier
	signingShare   *SigningShare
	verifyingShare *VerifyingShare
	verifyingKey   *VerifyingKey
	minSigners     uint16
}

// NewKeyPackage assembles a key package from its parts.
func NewKeyPackage(id Identifier, signingShare *SigningShare, verifyingShare *VerifyingShare,
	verifyingKey *VerifyingKey, minSigners uint16,
) *KeyPackage {
	return &KeyPackage{
		identifier:     id,
		signingShare:   signingShare,
		verifyingShare: verifyingShare,
		verifyingKey:   verifyingKey,
		minSigners:     minSigners,
	}
}

// Identifier returns the owner of the package.
func (k *KeyPackage) Identifier() Identifier { return k.identifier }

// SigningShare returns the secret share held by the package.
func (k *KeyPackage) SigningShare() *SigningShare { return k.signingShare }

// VerifyingShare returns the public share of the package owner.
func (k *KeyPackage) VerifyingShare() *VerifyingShare { return k.verifyingShare }

// VerifyingKey returns the group public key.
func (k *KeyPackage) VerifyingKey() *VerifyingKey { return k.verifyingKey }

// MinSigners returns the signing threshold t.
func (k *KeyPackage) MinSigners() uint16 { return k.minSigners }

// Zeroize clears the secret share material of the package.
func (k *KeyPackage) Zeroize() {
	if k.signingShare != nil {
		k.signingShare.Zeroize()
	}
}

// keyPackageWire is the CBOR representation of a KeyPackage.
type keyPackageWire struct {
	Identifier     []byte `cbor:"1,keyasint"`
	SigningShare   []byte `cbor:"2,keyasint"`
	VerifyingShare []byte `cbor:"3,keyasint"`
	VerifyingKey   []byte `cbor:"4,keyasint"`
	MinSigners     uint16 `cbor:"5,keyasint"`
}

// MarshalCBOR serializes the key package, including the secret share.
// Callers persisting the result are responsible for protecting it.
func (k *KeyPackage) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(&keyPackageWire{
		Identifier:     k.identifier.Serialize(),
		SigningShare:   k.signingShare.Serialize(),
		VerifyingShare: k.verifyingShare.Serialize(),
		VerifyingKey:   k.verifyingKey.Serialize(),
		MinSigners:     k.minSigners,
	})
}

// UnmarshalCBOR deserializes a key package.
func (k *KeyPackage) UnmarshalCBOR(data []byte) error {
	var wire keyPackageWire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return err
	}
	id, err := ParseIdentifier(wire.Identifier)
	if err != nil {
		return err
	}
	sk, err := curve.ParseScalar(wire.SigningShare)
	if err != nil {
		return fmt.Errorf("frost: signing share: %w", err)
	}
	defer sk.Zero()
	vsPoint, err := curve.ParsePoint(wire.VerifyingShare)
	if err != nil {
		return fmt.Errorf("frost: verifying share: %w", err)
	}
	vkPoint, err := curve.ParsePoint(wire.VerifyingKey)
	if err != nil {
		return fmt.Errorf("frost: verifying key: %w", err)
	}
	k.identifier = id
	k.signingShare = NewSigningShare(sk)
	k.verifyingShare = NewVerifyingShare(vsPoint)
	k.verifyingKey = NewVerifyingKey(vkPoint)
	k.minSigners = wire.MinSigners
	return nil
}

// PublicKeyPackage holds the public output of the DKG: the verifying
// share of every participant plus the group verifying key. It is safe to
// publish.
type PublicKeyPackage struct {
	verifyingShares map[Identifier]*VerifyingShare
	verifyingKey    *VerifyingKey
}

// NewPublicKeyPackage assembles a public key package.
func NewPublicKeyPackage(shares map[Identifier]*VerifyingShare, key *VerifyingKey) *PublicKeyPackage {
	return &PublicKeyPackage{verifyingShares: shares, verifyingKey: key}
}

// VerifyingShares returns the per-participant verifying shares.
func (p *PublicKeyPackage) VerifyingShares() map[Identifier]*VerifyingShare {
	return p.verifyingShares
}

// VerifyingShare returns the verifying share for id, or nil when absent.
func (p *PublicKeyPackage) VerifyingShare(id Identifier) *VerifyingShare {
	return p.verifyingShares[id]
}

// VerifyingKey returns the group verifying key.
func (p *PublicKeyPackage) VerifyingKey() *VerifyingKey {
	return p.verifyingKey
}

// publicKeyPackageWire is the CBOR representation of a PublicKeyPackage.
type publicKeyPackageWire struct {
	VerifyingShares map[[32]byte][]byte `cbor:"1,keyasint"`
	VerifyingKey    []byte              `cbor:"2,keyasint"`
}

// MarshalCBOR serializes the public key package.
func (p *PublicKeyPackage) MarshalCBOR() ([]byte, error) {
	shares := make(map[[32]byte][]byte, len(p.verifyingShares))
	for id, vs := range p.verifyingShares {
		shares[id] = vs.Serialize()
	}
	return cbor.Marshal(&publicKeyPackageWire{
		VerifyingShares: shares,
		VerifyingKey:    p.verifyingKey.Serialize(),
	})
}

// UnmarshalCBOR deserializes a public key package.
func (p *PublicKeyPackage) UnmarshalCBOR(data []byte) error {
	var wire publicKeyPackageWire
	if err := cbor.Unmarshal(data, &wire); err != nil {
		return err
	}
	shares := make(map[Identifier]*VerifyingShare, len(wire.VerifyingShares))
	for raw, enc := range wire.VerifyingShares {
		id, err := ParseIdentifier(raw[:])
		if err != nil {
			return err
		}
		point, err := curve.ParsePoint(enc)
		if err != nil {
			return fmt.Errorf("frost: verifying share for %s: %w", id, err)
		}
		shares[id] = NewVerifyingShare(point)
	}
	key, err := curve.ParsePoint(wire.VerifyingKey)
	if err != nil {
		return fmt.Errorf("frost: verifying key: %w", err)
	}
	p.verifyingShares = shares
	p.verifyingKey = NewVerifyingKey(key)
	return nil
}
