package entities

import (
	"path"
	"strings"
)

type Channel string

const (
	Release  Channel = "RELEASE"
	Snapshot Channel = "SNAPSHOT"

	// SnapshotMarker is the case-sensitive version suffix of snapshot builds.
	SnapshotMarker = "-SNAPSHOT"
)

// PackageCoordinate identifies a published package. It is resolved once per publish run and never changed afterwards.
type PackageCoordinate struct {
	GroupId    string `json:"groupId"`
	ArtifactId string `json:"artifactId"`
	Version    string `json:"version"`
}

// Id returns the 'group:artifact:version' notation.
func (pc PackageCoordinate) Id() string {
	return pc.GroupId + ":" + pc.ArtifactId + ":" + pc.Version
}

// ArtifactDir returns the repository path of the artifact, without the version.
func (pc PackageCoordinate) ArtifactDir() string {
	return path.Join(strings.ReplaceAll(pc.GroupId, ".", "/"), pc.ArtifactId)
}

// RepositoryPath returns the Maven layout directory of this version, such as 'com/example/lib/1.0.0'.
func (pc PackageCoordinate) RepositoryPath() string {
	return path.Join(pc.ArtifactDir(), pc.Version)
}

// FileName returns the Maven layout file name for the given classifier and extension.
func (pc PackageCoordinate) FileName(classifier, extension string) string {
	name := pc.ArtifactId + "-" + pc.Version
	if classifier != "" {
		name += "-" + classifier
	}
	return name + "." + extension
}

func ChannelOf(version string) Channel {
	if strings.HasSuffix(version, SnapshotMarker) {
		return Snapshot
	}
	return Release
}
