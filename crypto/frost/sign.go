package frost

import (
	"errors"
	"fmt"
	"io"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/vocdoni/davinci-dvrf/crypto/curve"
)

// SigningNonces holds the secret hiding and binding nonces of one
// participant for one signing round. Single use.
type SigningNonces struct {
	hiding  secp256k1.ModNScalar
	binding secp256k1.ModNScalar
}

// Zeroize clears the nonce material.
func (n *SigningNonces) Zeroize() {
	n.hiding.Zero()
	n.binding.Zero()
}

// SigningCommitments are the public commitments to a participant's
// signing nonces.
type SigningCommitments struct {
	hiding  secp256k1.JacobianPoint
	binding secp256k1.JacobianPoint
}

// genNonce derives a fresh nonce from rng output salted with the secret
// share, so a broken RNG alone does not leak a predictable nonce.
func genNonce(rng io.Reader, secret []byte) (*secp256k1.ModNScalar, error) {
	var seed [32]byte
	if _, err := io.ReadFull(rng, seed[:]); err != nil {
		return nil, fmt.Errorf("frost: read entropy: %w", err)
	}
	k := hashToScalar("nonce", seed[:], secret)
	for i := range seed {
		seed[i] = 0
	}
	if k.IsZero() {
		return nil, errors.New("frost: derived zero nonce")
	}
	return k, nil
}

// Commit is round one of the signing protocol: it generates the hiding
// and binding nonces for one participant and their public commitments.
func Commit(share *SigningShare, rng io.Reader) (*SigningNonces, *SigningCommitments, error) {
	secret := share.Serialize()
	defer func() {
		for i := range secret {
			secret[i] = 0
		}
	}()
	hiding, err := genNonce(rng, secret)
	if err != nil {
		return nil, nil, err
	}
	binding, err := genNonce(rng, secret)
	if err != nil {
		return nil, nil, err
	}
	nonces := new(SigningNonces)
	nonces.hiding.Set(hiding)
	nonces.binding.Set(binding)
	hiding.Zero()
	binding.Zero()

	commitments := new(SigningCommitments)
	commitments.hiding.Set(curve.ScalarBaseMult(&nonces.hiding))
	commitments.binding.Set(curve.ScalarBaseMult(&nonces.binding))
	return nonces, commitments, nil
}

// SigningPackage is the coordinator's bundle for round two: the sorted
// commitment list of the chosen signers plus the message.
type SigningPackage struct {
	ids         []Identifier
	commitments map[Identifier]*SigningCommitments
	message     []byte
}

// NewSigningPackage builds a signing package. The commitment list is kept
// sorted by identifier, as the binding-factor transcript requires.
func NewSigningPackage(commitments map[Identifier]*SigningCommitments, msg []byte) *SigningPackage {
	ids := make([]Identifier, 0, len(commitments))
	for id := range commitments {
		ids = append(ids, id)
	}
	SortIdentifiers(ids)
	return &SigningPackage{
		ids:         ids,
		commitments: commitments,
		message:     append([]byte(nil), msg...),
	}
}

// Identifiers returns the signer identifiers in ascending order.
func (p *SigningPackage) Identifiers() []Identifier {
	return p.ids
}

// encodeCommitments serializes the sorted commitment list for hashing.
func (p *SigningPackage) encodeCommitments() []byte {
	buf := make([]byte, 0, len(p.ids)*(32+2*curve.CompressedSize))
	for _, id := range p.ids {
		com := p.commitments[id]
		buf = append(buf, id.Serialize()...)
		buf = append(buf, curve.Compress(&com.hiding)...)
		buf = append(buf, curve.Compress(&com.binding)...)
	}
	return buf
}

// bindingFactors computes the per-signer binding factors over the
// commitment list, the message, and the group key.
func (p *SigningPackage) bindingFactors(groupKey *VerifyingKey) map[Identifier]*secp256k1.ModNScalar {
	prefix := make([]byte, 0, 3*32+curve.CompressedSize)
	prefix = append(prefix, groupKey.Serialize()...)
	prefix = append(prefix, hashMsg(p.message)...)
	prefix = append(prefix, hashCommitments(p.encodeCommitments())...)

	factors := make(map[Identifier]*secp256k1.ModNScalar, len(p.ids))
	for _, id := range p.ids {
		factors[id] = hashToScalar("rho", prefix, id.Serialize())
	}
	return factors
}

// groupCommitment folds the commitment list and binding factors into the
// group commitment R.
func (p *SigningPackage) groupCommitment(factors map[Identifier]*secp256k1.ModNScalar) *secp256k1.JacobianPoint {
	gc := curve.Identity()
	for _, id := range p.ids {
		com := p.commitments[id]
		bound := curve.ScalarMult(factors[id], &com.binding)
		gc = curve.Add(gc, curve.Add(&com.hiding, bound))
	}
	return gc
}

// indexes returns the u64 projections of the signer identifiers.
func (p *SigningPackage) indexes() []uint64 {
	xs := make([]uint64, len(p.ids))
	for i, id := range p.ids {
		xs[i] = id.Uint64()
	}
	return xs
}

// SignatureShare is one participant's round-two contribution z_i.
type SignatureShare struct {
	share secp256k1.ModNScalar
}

// Serialize returns the 32-byte big-endian encoding of the share.
func (s *SignatureShare) Serialize() []byte {
	return curve.SerializeScalar(&s.share)
}

// SignRound2 is round two of the signing protocol: with the coordinator's
// signing package and its own round-one nonces, a participant produces
// its signature share
//
//	z_i = hiding + binding*rho_i + lambda_i*sk_i*c.
func SignRound2(pkg *SigningPackage, nonces *SigningNonces, kp *KeyPackage) (*SignatureShare, error) {
	if _, ok := pkg.commitments[kp.Identifier()]; !ok {
		return nil, fmt.Errorf("frost: signer %s not in signing package", kp.Identifier())
	}
	if uint16(len(pkg.ids)) < kp.MinSigners() {
		return nil, fmt.Errorf("frost: %d signers below threshold %d", len(pkg.ids), kp.MinSigners())
	}

	factors := pkg.bindingFactors(kp.VerifyingKey())
	gc := pkg.groupCommitment(factors)
	lambda, err := deriveInterpolatingValue(kp.Identifier().Uint64(), pkg.indexes())
	if err != nil {
		return nil, err
	}
	c := challenge(gc, kp.VerifyingKey().Jacobian(), pkg.message)

	sk := kp.SigningShare().Scalar()
	defer sk.Zero()

	// z_i = hiding + binding*rho + lambda*sk*c
	z := new(secp256k1.ModNScalar)
	z.Mul2(&nonces.binding, factors[kp.Identifier()])
	lsk := new(secp256k1.ModNScalar).Mul2(lambda, sk)
	lsk.Mul(c)
	z.Add(lsk).Add(&nonces.hiding)
	lsk.Zero()

	share := new(SignatureShare)
	share.share.Set(z)
	z.Zero()
	return share, nil
}

// Signature is a group Schnorr signature (R, z).
type Signature struct {
	r secp256k1.JacobianPoint
	z secp256k1.ModNScalar
}

// R returns a copy of the signature commitment point.
func (s *Signature) R() *secp256k1.JacobianPoint {
	p := new(secp256k1.JacobianPoint)
	p.Set(&s.r)
	return p
}

// Z returns a copy of the signature response scalar.
func (s *Signature) Z() *secp256k1.ModNScalar {
	z := new(secp256k1.ModNScalar)
	z.Set(&s.z)
	return z
}

// Serialize returns compress(R) || z, 65 bytes.
func (s *Signature) Serialize() []byte {
	out := make([]byte, 0, curve.CompressedSize+curve.ScalarSize)
	out = append(out, curve.Compress(&s.r)...)
	out = append(out, curve.SerializeScalar(&s.z)...)
	return out
}

// ParseSignature decodes a 65-byte compress(R) || z encoding.
func ParseSignature(data []byte) (*Signature, error) {
	if len(data) != curve.CompressedSize+curve.ScalarSize {
		return nil, fmt.Errorf("frost: signature must be %d bytes, got %d",
			curve.CompressedSize+curve.ScalarSize, len(data))
	}
	r, err := curve.ParsePoint(data[:curve.CompressedSize])
	if err != nil {
		return nil, err
	}
	z, err := curve.ParseScalar(data[curve.CompressedSize:])
	if err != nil {
		return nil, err
	}
	sig := new(Signature)
	sig.r.Set(r)
	sig.z.Set(z)
	return sig, nil
}

// verifyShare checks one signature share against the signer's verifying
// share: z_i*G == commitment_share + lambda_i*c*vk_i.
func verifyShare(pkg *SigningPackage, id Identifier, share *SignatureShare,
	factors map[Identifier]*secp256k1.ModNScalar, c *secp256k1.ModNScalar,
	pub *PublicKeyPackage,
) error {
	vs := pub.VerifyingShare(id)
	if vs == nil {
		return fmt.Errorf("frost: no verifying share for signer %s", id)
	}
	com := pkg.commitments[id]
	commitmentShare := curve.Add(&com.hiding, curve.ScalarMult(factors[id], &com.binding))
	lambda, err := deriveInterpolatingValue(id.Uint64(), pkg.indexes())
	if err != nil {
		return err
	}
	cl := new(secp256k1.ModNScalar).Mul2(c, lambda)
	rhs := curve.Add(commitmentShare, curve.ScalarMult(cl, vs.Jacobian()))
	if !curve.Equal(curve.ScalarBaseMult(&share.share), rhs) {
		return fmt.Errorf("frost: invalid signature share from signer %s", id)
	}
	return nil
}

// Aggregate verifies and sums the signature shares into the final group
// signature.
func Aggregate(pkg *SigningPackage, shares map[Identifier]*SignatureShare, pub *PublicKeyPackage) (*Signature, error) {
	if len(shares) != len(pkg.ids) {
		return nil, fmt.Errorf("frost: got %d shares for %d signers", len(shares), len(pkg.ids))
	}
	factors := pkg.bindingFactors(pub.VerifyingKey())
	gc := pkg.groupCommitment(factors)
	c := challenge(gc, pub.VerifyingKey().Jacobian(), pkg.message)

	z := new(secp256k1.ModNScalar)
	for _, id := range pkg.ids {
		share, ok := shares[id]
		if !ok {
			return nil, fmt.Errorf("frost: missing signature share from signer %s", id)
		}
		if err := verifyShare(pkg, id, share, factors, c, pub); err != nil {
			return nil, err
		}
		z.Add(&share.share)
	}

	sig := new(Signature)
	sig.r.Set(gc)
	sig.z.Set(z)
	return sig, nil
}

// VerifySignature reports whether sig is a valid group signature over msg
// under the group verifying key: z*G - c*PK == R.
func VerifySignature(msg []byte, sig *Signature, key *VerifyingKey) bool {
	c := challenge(&sig.r, key.Jacobian(), msg)
	negC := new(secp256k1.ModNScalar).NegateVal(c)
	recomputed := curve.Add(curve.ScalarBaseMult(&sig.z), curve.ScalarMult(negC, key.Jacobian()))
	return curve.Equal(recomputed, &sig.r)
}

// Sign runs both signing rounds in process for the given signer subset
// over the DKG output, mirroring a coordinator collecting commitments and
// shares over trusted channels.
func Sign(msg []byte, out *DkgOutput, signers []Identifier, rng io.Reader) (*Signature, error) {
	if len(signers) == 0 {
		return nil, errors.New("frost: empty signer set")
	}

	nonces := make(map[Identifier]*SigningNonces, len(signers))
	commitments := make(map[Identifier]*SigningCommitments, len(signers))
	defer func() {
		for _, n := range nonces {
			n.Zeroize()
		}
	}()
	for _, id := range signers {
		kp, ok := out.KeyPackages[id]
		if !ok {
			return nil, fmt.Errorf("frost: no key package for signer %s", id)
		}
		if _, dup := nonces[id]; dup {
			return nil, fmt.Errorf("frost: duplicate signer %s", id)
		}
		n, com, err := Commit(kp.SigningShare(), rng)
		if err != nil {
			return nil, err
		}
		nonces[id] = n
		commitments[id] = com
	}

	pkg := NewSigningPackage(commitments, msg)

	shares := make(map[Identifier]*SignatureShare, len(signers))
	for id, n := range nonces {
		share, err := SignRound2(pkg, n, out.KeyPackages[id])
		if err != nil {
			return nil, err
		}
		shares[id] = share
	}

	return Aggregate(pkg, shares, out.PublicKeyPackage)
}

// Verify reports whether sig is a valid group signature over msg for the
// DKG output's group key.
func Verify(msg []byte, sig *Signature, out *DkgOutput) bool {
	return VerifySignature(msg, sig, out.PublicKeyPackage.VerifyingKey())
}
