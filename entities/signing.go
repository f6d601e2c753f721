package entities

// SigningPolicy decides whether artifacts get detached signatures before deployment.
// KeyId and PassphraseEnv are references only, the key material itself stays with the signer.
type SigningPolicy struct {
	Enabled        bool   `json:"enabled" toml:"enabled" yaml:"enabled"`
	Verify         bool   `json:"verify" toml:"verify" yaml:"verify"`
	ExecutablePath string `json:"executablePath,omitempty" toml:"executablePath" yaml:"executablePath"`
	KeyId          string `json:"keyId,omitempty" toml:"keyId" yaml:"keyId"`
	PassphraseEnv  string `json:"passphraseEnv,omitempty" toml:"passphraseEnv" yaml:"passphraseEnv"`
	Homedir        string `json:"homedir,omitempty" toml:"homedir" yaml:"homedir"`
}

// Signature is an armored detached signature of one staged artifact.
type Signature struct {
	ArtifactPath string `json:"artifactPath"`
	Path         string `json:"path"`
}

type SignatureSet []Signature

func (ss SignatureSet) For(artifactPath string) (Signature, bool) {
	for _, signature := range ss {
		if signature.ArtifactPath == artifactPath {
			return signature, true
		}
	}
	return Signature{}, false
}

// Missing returns the paths of the artifacts that have no signature in the set.
func (ss SignatureSet) Missing(artifacts []Artifact) []string {
	var missing []string
	for _, artifact := range artifacts {
		if _, ok := ss.For(artifact.Path); !ok {
			missing = append(missing, artifact.Path)
		}
	}
	return missing
}
