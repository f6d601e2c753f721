package publish

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jfrog/gofrog/stringutils"
	"github.com/jfrog/release-publisher-go/entities"
)

// File name patterns of the archives a library publication carries next to its binary.
var kindPatterns = []struct {
	pattern string
	kind    entities.ArtifactKind
}{
	{"*-sources.*", entities.Sources},
	{"*-javadoc.*", entities.Javadoc},
	{"*.pom", entities.Pom},
}

// BuildArtifactSet converts the producer's artifact list to an ArtifactSet, keeping the declared order.
func BuildArtifactSet(artifacts []ArtifactConfig) (entities.ArtifactSet, error) {
	set := entities.ArtifactSet{}
	for _, artifact := range artifacts {
		kind, err := artifactKindOf(artifact)
		if err != nil {
			return nil, err
		}
		if kind == entities.Pom {
			return nil, fmt.Errorf("artifact '%s' is a POM, the descriptor is generated from the publish configuration", artifact.Path)
		}
		set = append(set, entities.Artifact{
			Name:       filepath.Base(artifact.Path),
			Kind:       kind,
			Path:       artifact.Path,
			Classifier: artifact.Classifier,
			Extension:  extensionOf(artifact.Path),
		})
	}
	return set, set.Validate()
}

func artifactKindOf(artifact ArtifactConfig) (entities.ArtifactKind, error) {
	if artifact.Kind != "" {
		kind := entities.ArtifactKind(strings.ToLower(artifact.Kind))
		if !kind.IsValid() {
			return "", fmt.Errorf("artifact '%s' has an unknown kind '%s'", artifact.Path, artifact.Kind)
		}
		return kind, nil
	}
	fileName := filepath.Base(artifact.Path)
	for _, kindPattern := range kindPatterns {
		matched, err := stringutils.MatchWildcardPattern(kindPattern.pattern, fileName)
		if err != nil {
			return "", err
		}
		if matched {
			return kindPattern.kind, nil
		}
	}
	return entities.Primary, nil
}

func extensionOf(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
