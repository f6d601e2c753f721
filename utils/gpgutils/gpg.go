package gpgutils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	gofrogcmd "github.com/jfrog/gofrog/io"
	"github.com/jfrog/gofrog/log"
	"github.com/jfrog/gofrog/version"
	"github.com/jfrog/release-publisher-go/utils"
)

const (
	defaultGpgExecutable = "gpg"
	gnupgHomeEnv         = "GNUPGHOME"
	signatureExtension   = ".asc"
	// Loopback pinentry, needed to read the passphrase from stdin, was added in GnuPG 2.1.0.
	minGpgVersion = "2.1.0"
)

// Matches the first line of 'gpg --version', such as "gpg (GnuPG) 2.4.3".
var gpgVersionRegExp = regexp.MustCompile(`(?m)^gpg \(GnuPG[^)]*\) (\d+(?:\.\d+)*)`)

// GpgSigner signs files with detached armored signatures by running the gpg executable.
type GpgSigner struct {
	executablePath string
	homedir        string
	versionOnce    sync.Once
	versionErr     error
}

// NewGpgSigner returns a signer running executablePath, or 'gpg' from the PATH when it is empty.
// A non-empty homedir is passed to gpg as GNUPGHOME.
func NewGpgSigner(executablePath, homedir string) *GpgSigner {
	if executablePath == "" {
		executablePath = defaultGpgExecutable
	}
	return &GpgSigner{executablePath: executablePath, homedir: homedir}
}

// Sign writes '<filePath>.asc' with the key keyRef. passphraseRef names the environment variable holding the key passphrase,
// the passphrase itself is fed to gpg on stdin and never appears on the command line.
func (gs *GpgSigner) Sign(ctx context.Context, filePath, keyRef, passphraseRef string) (string, error) {
	if err := gs.checkVersion(ctx); err != nil {
		return "", err
	}
	signaturePath := filePath + signatureExtension
	args := []string{"--batch", "--yes"}
	var passphrase string
	if passphraseRef != "" {
		var exists bool
		if passphrase, exists = os.LookupEnv(passphraseRef); !exists {
			return "", fmt.Errorf("the passphrase environment variable '%s' is not set", passphraseRef)
		}
		args = append(args, "--pinentry-mode", "loopback", "--passphrase-fd", "0")
	}
	args = append(args, "--armor", "--detach-sign")
	if keyRef != "" {
		args = append(args, "--local-user", keyRef)
	}
	args = append(args, "--output", signaturePath, filePath)

	log.Debug(fmt.Sprintf("Running '%s %s'", gs.executablePath, strings.Join(args, " ")))
	if _, err := gs.run(ctx, args, passphrase); err != nil {
		return "", err
	}
	return signaturePath, nil
}

func (gs *GpgSigner) Verify(ctx context.Context, filePath, signaturePath string) error {
	_, err := gs.run(ctx, []string{"--batch", "--verify", signaturePath, filePath}, "")
	return err
}

// Version returns the version reported by 'gpg --version'.
func (gs *GpgSigner) Version(ctx context.Context) (*version.Version, error) {
	output, err := gs.run(ctx, []string{"--version"}, "")
	if err != nil {
		return nil, err
	}
	match := gpgVersionRegExp.FindStringSubmatch(output)
	if len(match) < 2 {
		return nil, fmt.Errorf("couldn't parse the gpg version from '%s'", strings.TrimSpace(output))
	}
	return version.NewVersion(match[1]), nil
}

func (gs *GpgSigner) checkVersion(ctx context.Context) error {
	gs.versionOnce.Do(func() {
		gpgVersion, err := gs.Version(ctx)
		if err != nil {
			gs.versionErr = err
			return
		}
		log.Debug("Using gpg " + gpgVersion.GetVersion())
		if !gpgVersion.AtLeast(minGpgVersion) {
			gs.versionErr = fmt.Errorf("gpg %s is not supported, version %s or above is required", gpgVersion.GetVersion(), minGpgVersion)
		}
	})
	return gs.versionErr
}

func (gs *GpgSigner) run(ctx context.Context, args []string, stdin string) (string, error) {
	cmd, err := utils.NewCmd(ctx, gs.executablePath, args)
	if err != nil {
		return "", err
	}
	if gs.homedir != "" {
		cmd.Env = map[string]string{gnupgHomeEnv: gs.homedir}
	}
	cmd.Stdin = stdin
	errBuffer := &closableBuffer{}
	cmd.ErrWriter = errBuffer
	output, err := gofrogcmd.RunCmdOutput(cmd)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(err, ctxErr)
		}
		return "", fmt.Errorf("'%s %s' failed: %w\n%s", gs.executablePath, args[len(args)-1], err, strings.TrimSpace(errBuffer.String()))
	}
	return output, nil
}

type closableBuffer struct {
	bytes.Buffer
}

func (cb *closableBuffer) Close() error {
	return nil
}
