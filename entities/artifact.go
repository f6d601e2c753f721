package entities

import (
	"errors"
	"fmt"
)

type ArtifactKind string

const (
	Primary ArtifactKind = "primary"
	Javadoc ArtifactKind = "javadoc"
	Sources ArtifactKind = "sources"
	// Produced by the staging area, never by the caller.
	Pom ArtifactKind = "pom"
)

// Classifier returns the Maven classifier used when staging an artifact of this kind.
func (kind ArtifactKind) Classifier() string {
	switch kind {
	case Javadoc, Sources:
		return string(kind)
	default:
		return ""
	}
}

func (kind ArtifactKind) IsValid() bool {
	switch kind {
	case Primary, Javadoc, Sources, Pom:
		return true
	}
	return false
}

type Artifact struct {
	Name string       `json:"name,omitempty"`
	Kind ArtifactKind `json:"kind,omitempty"`
	Path string       `json:"path,omitempty"`
	// Classifier overrides the classifier derived from Kind.
	Classifier string `json:"classifier,omitempty"`
	Extension  string `json:"extension,omitempty"`
	Checksum
}

func (a Artifact) EffectiveClassifier() string {
	if a.Classifier != "" {
		return a.Classifier
	}
	return a.Kind.Classifier()
}

// ArtifactSet is the ordered list of files produced for one coordinate.
type ArtifactSet []Artifact

func (as ArtifactSet) Validate() error {
	if len(as) == 0 {
		return errors.New("the artifact set is empty")
	}
	primaries := 0
	for _, artifact := range as {
		if artifact.Path == "" {
			return fmt.Errorf("artifact '%s' has no path", artifact.Name)
		}
		if !artifact.Kind.IsValid() {
			return fmt.Errorf("artifact '%s' has an unknown kind '%s'", artifact.Path, artifact.Kind)
		}
		if artifact.Kind == Primary {
			primaries++
		}
	}
	if primaries == 0 {
		return errors.New("the artifact set has no primary artifact")
	}
	return nil
}

// Primary returns the first primary artifact of the set.
func (as ArtifactSet) Primary() (Artifact, bool) {
	return as.FirstOfKind(Primary)
}

func (as ArtifactSet) FirstOfKind(kind ArtifactKind) (Artifact, bool) {
	for _, artifact := range as {
		if artifact.Kind == kind {
			return artifact, true
		}
	}
	return Artifact{}, false
}

type Checksum struct {
	Sha1   string `json:"sha1,omitempty"`
	Md5    string `json:"md5,omitempty"`
	Sha256 string `json:"sha256,omitempty"`
}

func (c *Checksum) IsEmpty() bool {
	return c.Md5 == "" && c.Sha1 == "" && c.Sha256 == ""
}
