package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/utils"
)

// Signer produces and checks detached armored signatures. Key material never passes through it,
// keyRef and passphraseRef only name where the signer finds them.
type Signer interface {
	// Sign writes a detached signature next to filePath and returns its path.
	Sign(ctx context.Context, filePath, keyRef, passphraseRef string) (string, error)
	Verify(ctx context.Context, filePath, signaturePath string) error
}

type SigningGate struct {
	signer  Signer
	timeout time.Duration
	logger  utils.Log
}

// NewSigningGate returns a gate bounding every signer call with timeout. A zero timeout means no bound.
func NewSigningGate(signer Signer, timeout time.Duration, logger utils.Log) *SigningGate {
	if logger == nil {
		logger = &utils.NullLog{}
	}
	return &SigningGate{signer: signer, timeout: timeout, logger: logger}
}

// Sign signs every artifact when the policy is enabled. Signing is all-or-nothing:
// on the first failure the signatures produced so far are removed and no set is returned.
func (sg *SigningGate) Sign(ctx context.Context, artifacts []entities.Artifact, policy entities.SigningPolicy) (entities.SignatureSet, error) {
	if !policy.Enabled {
		sg.logger.Debug("Signing is disabled, skipping the signing gate")
		return entities.SignatureSet{}, nil
	}
	if sg.signer == nil {
		return nil, &utils.SigningError{Cause: errors.New("signing is enabled but no signer is configured")}
	}
	signatures := entities.SignatureSet{}
	for _, artifact := range artifacts {
		signature, err := sg.signArtifact(ctx, artifact, policy)
		if err != nil {
			sg.discard(signatures)
			return nil, err
		}
		signatures = append(signatures, signature)
	}
	if missing := signatures.Missing(artifacts); len(missing) > 0 {
		sg.discard(signatures)
		return nil, &utils.SigningError{Artifact: missing[0], Cause: fmt.Errorf("no signature was produced for %s", strings.Join(missing, ", "))}
	}
	return signatures, nil
}

func (sg *SigningGate) signArtifact(ctx context.Context, artifact entities.Artifact, policy entities.SigningPolicy) (entities.Signature, error) {
	callCtx, cancel := sg.callContext(ctx)
	defer cancel()
	sg.logger.Debug("Signing ", artifact.Path)
	signaturePath, err := sg.signer.Sign(callCtx, artifact.Path, policy.KeyId, policy.PassphraseEnv)
	if err == nil {
		err = callCtx.Err()
	}
	if err != nil {
		if signaturePath != "" {
			sg.removeSignatureFile(signaturePath)
		}
		return entities.Signature{}, &utils.SigningError{Artifact: artifact.Path, Cause: err}
	}
	signature := entities.Signature{ArtifactPath: artifact.Path, Path: signaturePath}
	if !policy.Verify {
		return signature, nil
	}
	if err = sg.signer.Verify(callCtx, artifact.Path, signaturePath); err != nil {
		sg.removeSignatureFile(signaturePath)
		return entities.Signature{}, &utils.SigningError{Artifact: artifact.Path, Cause: fmt.Errorf("signature verification failed: %w", err)}
	}
	return signature, nil
}

func (sg *SigningGate) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if sg.timeout > 0 {
		return context.WithTimeout(ctx, sg.timeout)
	}
	return context.WithCancel(ctx)
}

func (sg *SigningGate) discard(signatures entities.SignatureSet) {
	for _, signature := range signatures {
		sg.removeSignatureFile(signature.Path)
	}
}

func (sg *SigningGate) removeSignatureFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		sg.logger.Warn(fmt.Sprintf("Failed removing the signature file '%s': %s", path, err.Error()))
	}
}
