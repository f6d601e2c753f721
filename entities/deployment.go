package entities

import "path/filepath"

// StagingLocation is the per-run directory holding the staged files in Maven repository layout.
// It is owned by the caller once staging succeeded, the publisher never removes it.
type StagingLocation struct {
	Root       string            `json:"root"`
	Coordinate PackageCoordinate `json:"coordinate"`
	// Artifacts are the staged files that are published and signed, in staging order.
	Artifacts []Artifact `json:"artifacts"`
	// Checksum sidecars and repository metadata. They are uploaded but never signed.
	ChecksumFiles []string `json:"checksumFiles,omitempty"`
	MetadataFiles []string `json:"metadataFiles,omitempty"`
}

func (sl *StagingLocation) Path() string {
	return sl.Root
}

// VersionDir returns the directory holding this coordinate's staged files.
func (sl *StagingLocation) VersionDir() string {
	return filepath.Join(sl.Root, filepath.FromSlash(sl.Coordinate.RepositoryPath()))
}

// RelativePath returns the repository path of a staged file, using forward slashes.
func (sl *StagingLocation) RelativePath(stagedPath string) (string, error) {
	rel, err := filepath.Rel(sl.Root, stagedPath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

type DeployerKind string

const (
	ReleaseDeployer  DeployerKind = "release"
	SnapshotDeployer DeployerKind = "snapshot"
)

// Credentials name the environment variables holding the repository credentials.
type Credentials struct {
	UsernameEnv string `json:"usernameEnv,omitempty" toml:"usernameEnv" yaml:"usernameEnv"`
	PasswordEnv string `json:"passwordEnv,omitempty" toml:"passwordEnv" yaml:"passwordEnv"`
}

type DeployerTarget struct {
	Kind DeployerKind `json:"kind"`
	// EndpointUrl is the release endpoint. Snapshot targets publish to SnapshotUrl.
	EndpointUrl string      `json:"endpointUrl"`
	SnapshotUrl string      `json:"snapshotUrl,omitempty"`
	Credentials Credentials `json:"credentials"`
	Namespace   string      `json:"namespace,omitempty"`

	Checksums         bool `json:"checksums"`
	SourceJar         bool `json:"sourceJar"`
	JavadocJar        bool `json:"javadocJar"`
	VerifyPom         bool `json:"verifyPom"`
	ApplyCentralRules bool `json:"applyMavenCentralRules"`
	CloseRepository   bool `json:"closeRepository"`
	ReleaseRepository bool `json:"releaseRepository"`
	SnapshotSupported bool `json:"snapshotSupported"`
}

type DeploymentRequest struct {
	Target     DeployerTarget   `json:"target"`
	Manifest   *PackageManifest `json:"manifest"`
	Staging    *StagingLocation `json:"staging"`
	Signatures SignatureSet     `json:"signatures,omitempty"`
}

// UploadedFiles lists every staged file the uploader must transfer: artifacts, their checksum sidecars and signatures.
func (dr *DeploymentRequest) UploadedFiles() []string {
	var files []string
	for _, artifact := range dr.Staging.Artifacts {
		files = append(files, artifact.Path)
	}
	files = append(files, dr.Staging.ChecksumFiles...)
	files = append(files, dr.Staging.MetadataFiles...)
	for _, signature := range dr.Signatures {
		files = append(files, signature.Path)
	}
	return files
}

type UploadedArtifact struct {
	Path       string `json:"path"`
	Repository string `json:"repository"`
	Size       int64  `json:"size"`
	Checksum
}

type DeploymentResult struct {
	Target       DeployerKind       `json:"target"`
	Repository   string             `json:"repository"`
	DeploymentId string             `json:"deploymentId,omitempty"`
	State        string             `json:"state,omitempty"`
	Uploaded     []UploadedArtifact `json:"uploaded,omitempty"`
	Duration     string             `json:"duration"`
}

// EnvVar is one KEY=VALUE line a caller may export to its CI environment.
type EnvVar struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
