package publish

import (
	"regexp"
	"strings"

	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/utils"
)

// Characters accepted by Maven repositories in group, artifact and version identifiers.
var identifierRegExp = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ResolveCoordinate validates the raw identifiers and classifies the version's channel.
// It performs no I/O.
func ResolveCoordinate(rawVersion, rawGroupId, rawArtifactId string) (entities.PackageCoordinate, entities.Channel, error) {
	if err := validateIdentifier("groupId", rawGroupId); err != nil {
		return entities.PackageCoordinate{}, "", err
	}
	for _, segment := range strings.Split(rawGroupId, ".") {
		if segment == "" {
			return entities.PackageCoordinate{}, "", &utils.InvalidCoordinateError{Field: "groupId", Value: rawGroupId, Reason: "namespace segments can't be empty"}
		}
	}
	if err := validateIdentifier("artifactId", rawArtifactId); err != nil {
		return entities.PackageCoordinate{}, "", err
	}
	if err := validateIdentifier("version", rawVersion); err != nil {
		return entities.PackageCoordinate{}, "", err
	}
	coordinate := entities.PackageCoordinate{GroupId: rawGroupId, ArtifactId: rawArtifactId, Version: rawVersion}
	return coordinate, entities.ChannelOf(rawVersion), nil
}

func validateIdentifier(field, value string) error {
	if value == "" {
		return &utils.InvalidCoordinateError{Field: field, Value: value, Reason: "value is empty"}
	}
	if !identifierRegExp.MatchString(value) {
		return &utils.InvalidCoordinateError{Field: field, Value: value, Reason: "only letters, digits, '.', '-' and '_' are allowed"}
	}
	// Identifiers become repository path segments, '.' and '..' would leave the artifact directory.
	if strings.HasPrefix(value, ".") {
		return &utils.InvalidCoordinateError{Field: field, Value: value, Reason: "can't start with '.'"}
	}
	return nil
}
