package publish

import (
	"time"

	"github.com/jfrog/release-publisher-go/entities"
)

const (
	DefaultScmConnectionTemplate = "scm:git:github.com/%s.git"
	DefaultScmUrlTemplate        = "https://github.com/%s"
	DefaultStagingDir            = "build/staging-deploy"
	DefaultReleaseUrl            = "https://central.sonatype.com"
	DefaultSnapshotUrl           = "https://central.sonatype.com/repository/maven-snapshots/"

	DefaultSigningTimeout = 2 * time.Minute
	DefaultUploadTimeout  = 30 * time.Minute
)

// PublishConfig is everything a publish run reads. The caller owns it, the publisher never modifies it.
type PublishConfig struct {
	GroupId    string `json:"groupId,omitempty" toml:"groupId" yaml:"groupId"`
	ArtifactId string `json:"artifactId,omitempty" toml:"artifactId" yaml:"artifactId"`
	Version    string `json:"version,omitempty" toml:"version" yaml:"version"`

	// Name is the repository name shown on the registry.
	Name             string                          `json:"name,omitempty" toml:"name" yaml:"name"`
	Description      string                          `json:"description,omitempty" toml:"description" yaml:"description"`
	DocumentationUrl string                          `json:"documentationUrl,omitempty" toml:"documentationUrl" yaml:"documentationUrl"`
	License          entities.License                `json:"license" toml:"license" yaml:"license"`
	Developer        entities.Developer              `json:"developer" toml:"developer" yaml:"developer"`
	Scm              ScmConfig                       `json:"scm" toml:"scm" yaml:"scm"`
	Dependencies     []entities.DependencyDescriptor `json:"dependencies,omitempty" toml:"dependencies" yaml:"dependencies"`

	Artifacts []ArtifactConfig       `json:"artifacts,omitempty" toml:"artifacts" yaml:"artifacts"`
	Signing   entities.SigningPolicy `json:"signing" toml:"signing" yaml:"signing"`
	Staging   StagingConfig          `json:"staging" toml:"staging" yaml:"staging"`
	Deploy    DeployConfig           `json:"deploy" toml:"deploy" yaml:"deploy"`
	Timeouts  TimeoutsConfig         `json:"timeouts" toml:"timeouts" yaml:"timeouts"`
	DryRun    bool                   `json:"dryRun,omitempty" toml:"dryRun" yaml:"dryRun"`
}

type ScmConfig struct {
	RepoName string `json:"repoName,omitempty" toml:"repoName" yaml:"repoName"`
	// Both templates take the repository name as their only '%s' argument.
	ConnectionTemplate string `json:"connectionTemplate,omitempty" toml:"connectionTemplate" yaml:"connectionTemplate"`
	UrlTemplate        string `json:"urlTemplate,omitempty" toml:"urlTemplate" yaml:"urlTemplate"`
}

// ArtifactConfig is one file handed over by the artifact producer.
// An empty Kind is derived from the file name.
type ArtifactConfig struct {
	Path       string `json:"path" toml:"path" yaml:"path"`
	Kind       string `json:"kind,omitempty" toml:"kind" yaml:"kind"`
	Classifier string `json:"classifier,omitempty" toml:"classifier" yaml:"classifier"`
}

type StagingConfig struct {
	Dir string `json:"dir,omitempty" toml:"dir" yaml:"dir"`
}

type DeployConfig struct {
	Release  ReleaseTargetConfig  `json:"release" toml:"release" yaml:"release"`
	Snapshot SnapshotTargetConfig `json:"snapshot" toml:"snapshot" yaml:"snapshot"`
}

type ReleaseTargetConfig struct {
	Url         string               `json:"url,omitempty" toml:"url" yaml:"url"`
	Credentials entities.Credentials `json:"credentials" toml:"credentials" yaml:"credentials"`
}

type SnapshotTargetConfig struct {
	ReleaseUrl  string               `json:"releaseUrl,omitempty" toml:"releaseUrl" yaml:"releaseUrl"`
	SnapshotUrl string               `json:"snapshotUrl,omitempty" toml:"snapshotUrl" yaml:"snapshotUrl"`
	Credentials entities.Credentials `json:"credentials" toml:"credentials" yaml:"credentials"`
}

// TimeoutsConfig bounds each call to the external signer and the whole upload. Zero selects the default.
type TimeoutsConfig struct {
	Signing Duration `json:"signing,omitempty" toml:"signing" yaml:"signing"`
	Upload  Duration `json:"upload,omitempty" toml:"upload" yaml:"upload"`
}

// Duration decodes Go duration strings such as '90s' from every supported config format.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// withDefaults returns a copy of the config with the optional fields filled in.
func (pc PublishConfig) withDefaults() PublishConfig {
	if pc.Scm.ConnectionTemplate == "" {
		pc.Scm.ConnectionTemplate = DefaultScmConnectionTemplate
	}
	if pc.Scm.UrlTemplate == "" {
		pc.Scm.UrlTemplate = DefaultScmUrlTemplate
	}
	if pc.Staging.Dir == "" {
		pc.Staging.Dir = DefaultStagingDir
	}
	if pc.Deploy.Release.Url == "" {
		pc.Deploy.Release.Url = DefaultReleaseUrl
	}
	if pc.Deploy.Snapshot.SnapshotUrl == "" {
		pc.Deploy.Snapshot.SnapshotUrl = DefaultSnapshotUrl
	}
	if pc.Deploy.Snapshot.ReleaseUrl == "" {
		pc.Deploy.Snapshot.ReleaseUrl = pc.Deploy.Release.Url
	}
	if pc.Timeouts.Signing <= 0 {
		pc.Timeouts.Signing = Duration(DefaultSigningTimeout)
	}
	if pc.Timeouts.Upload <= 0 {
		pc.Timeouts.Upload = Duration(DefaultUploadTimeout)
	}
	return pc
}
