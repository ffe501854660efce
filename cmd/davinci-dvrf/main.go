package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/vocdoni/davinci-dvrf/crypto/curve"
	"github.com/vocdoni/davinci-dvrf/crypto/dvrf"
	"github.com/vocdoni/davinci-dvrf/crypto/ethereum"
	"github.com/vocdoni/davinci-dvrf/crypto/frost"
	"github.com/vocdoni/davinci-dvrf/log"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log.Level, cfg.Log.Output)

	if err := run(cfg); err != nil {
		log.Errorf("davinci-dvrf failed: %v", err)
		os.Exit(1)
	}
}

func run(cfg *Config) error {
	roundID := uuid.New()
	log.Infow("starting davinci-dvrf", "round", roundID.String(),
		"maxSigners", int(cfg.MaxSigners), "minSigners", int(cfg.MinSigners))

	dkgCfg, err := frost.NewConfig(cfg.MaxSigners, cfg.MinSigners)
	if err != nil {
		return err
	}
	out, err := frost.RunDKG(dkgCfg, rand.Reader)
	if err != nil {
		return err
	}
	allIDs := out.AllIdentifiers()
	signers := allIDs[:dkgCfg.MinSigners]
	log.Infow("dkg completed", "threshold", fmt.Sprintf("%d of %d", dkgCfg.MinSigners, dkgCfg.MaxSigners))

	// DVRF evaluation
	msg := []byte(cfg.DvrfMessage)
	result, err := dvrf.Evaluate(rand.Reader, msg, out.KeyPackages, out.PublicKeyPackage, signers)
	if err != nil {
		return err
	}

	fmt.Println("─── DVRF evaluation ───")
	fmt.Printf("PH(msg) compressed: 0x%x\n", curve.Compress(curve.HashToCurve(msg)))
	fmt.Printf("V (combined) compressed: 0x%x\n", curve.Compress(result.Value))
	for _, share := range result.Shares {
		fmt.Printf("id=%s  v_%s: 0x%x\n", share.Identifier, share.Identifier, curve.Compress(share.Share))
	}

	// FROST signing
	signMsg := []byte(cfg.SignMessage)
	fmt.Printf("─── FROST signing on message: %q ───\n", cfg.SignMessage)
	sig, err := frost.Sign(signMsg, out, signers, rand.Reader)
	if err != nil {
		return err
	}
	if !frost.Verify(signMsg, sig, out) {
		return fmt.Errorf("group signature failed verification")
	}
	fmt.Printf("signature: 0x%x\n", sig.Serialize())
	fmt.Println("FROST signature valid: true")

	if cfg.Payload != "" {
		payload, err := ethereum.NewVerificationInput(signMsg, sig, out.PublicKeyPackage.VerifyingKey())
		if err != nil {
			return err
		}
		if err := payload.ExportFile(cfg.Payload); err != nil {
			return err
		}
		log.Infow("verification payload exported", "path", cfg.Payload,
			"expectedSigner", payload.ExpectedSigner.String())
	}

	log.Infow("round completed", "round", roundID.String())
	return nil
}
