// Package ethereum provides the Ethereum-facing side of the DVRF node:
// Keccak hashing, address derivation for the group key, and the JSON
// verification payload consumed by on-chain verifiers.
package ethereum

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/vocdoni/davinci-dvrf/crypto/curve"
	"github.com/vocdoni/davinci-dvrf/crypto/frost"
	"github.com/vocdoni/davinci-dvrf/types"
)

// HashLength is the size of a keccak256 hash.
const HashLength = 32

// HashRaw hashes data with Keccak256.
func HashRaw(data []byte) []byte {
	return ethcrypto.Keccak256(data)
}

// AddrFromPoint derives the Ethereum address of a curve point: the
// rightmost 20 bytes of keccak256 over the uncompressed encoding without
// the 0x04 prefix.
func AddrFromPoint(p *secp256k1.JacobianPoint) (ethcommon.Address, error) {
	if curve.IsIdentity(p) {
		return ethcommon.Address{}, errors.New("ethereum: cannot derive address of the identity point")
	}
	a := *p
	a.ToAffine()
	uncompressed := secp256k1.NewPublicKey(&a.X, &a.Y).SerializeUncompressed()
	return ethcommon.BytesToAddress(HashRaw(uncompressed[1:])[12:]), nil
}

// VerificationInput is the payload an on-chain consumer needs to check a
// group signature: the message hash, the serialized signature, and the
// expected signer address derived from the group key. All fields encode
// as "0x"-prefixed lowercase hex.
type VerificationInput struct {
	MessageHash    types.HexBytes `json:"message_hash"`
	Signature      types.HexBytes `json:"signature"`
	ExpectedSigner types.HexBytes `json:"expected_signer"`
}

// NewVerificationInput assembles the verification payload for msg signed
// with sig under the group key.
func NewVerificationInput(msg []byte, sig *frost.Signature, key *frost.VerifyingKey) (*VerificationInput, error) {
	addr, err := AddrFromPoint(key.Jacobian())
	if err != nil {
		return nil, err
	}
	return &VerificationInput{
		MessageHash:    HashRaw(msg),
		Signature:      sig.Serialize(),
		ExpectedSigner: addr.Bytes(),
	}, nil
}

// Export writes the payload as indented JSON.
func (vi *VerificationInput) Export(w io.Writer) error {
	data, err := json.MarshalIndent(vi, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ExportFile writes the payload to a JSON file at path.
func (vi *VerificationInput) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ethereum: create payload file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return vi.Export(f)
}
