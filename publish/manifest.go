package publish

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/utils"
	"golang.org/x/exp/slices"
)

const defaultPackaging = "jar"

// AssembleManifest builds the package manifest from the caller's config.
// Required fields are checked in the order the descriptor is written, and the first gap is reported.
func AssembleManifest(coordinate entities.PackageCoordinate, config *PublishConfig) (*entities.PackageManifest, error) {
	if config == nil {
		return nil, &utils.IncompleteConfigError{}
	}
	cfg := config.withDefaults()
	required := []struct {
		field string
		value string
	}{
		{"name", cfg.Name},
		{"description", cfg.Description},
		{"license.name", cfg.License.Name},
		{"license.url", cfg.License.Url},
		{"license.distribution", cfg.License.Distribution},
		{"developer.id", cfg.Developer.Id},
		{"developer.name", cfg.Developer.Name},
		{"developer.email", cfg.Developer.Email},
		{"scm.repoName", cfg.Scm.RepoName},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return nil, &utils.IncompleteConfigError{Field: field.field}
		}
	}

	// The same URL is used for both connection kinds.
	scmConnectionUrl := fmt.Sprintf(cfg.Scm.ConnectionTemplate, cfg.Scm.RepoName)
	scmRepoUrl := fmt.Sprintf(cfg.Scm.UrlTemplate, cfg.Scm.RepoName)

	return &entities.PackageManifest{
		Coordinate:                coordinate,
		Name:                      cfg.Name,
		Description:               cfg.Description,
		DocumentationUrl:          cfg.DocumentationUrl,
		Packaging:                 packagingOf(cfg.Artifacts),
		License:                   cfg.License,
		Developer:                 cfg.Developer,
		ScmConnectionUrl:          scmConnectionUrl,
		ScmDeveloperConnectionUrl: scmConnectionUrl,
		ScmRepoUrl:                scmRepoUrl,
		Dependencies:              slices.Clone(cfg.Dependencies),
	}, nil
}

// packagingOf returns the extension of the first primary artifact, such as 'aar' for Android libraries.
func packagingOf(artifacts []ArtifactConfig) string {
	for _, artifact := range artifacts {
		kind, err := artifactKindOf(artifact)
		if err != nil || kind != entities.Primary {
			continue
		}
		if ext := strings.TrimPrefix(filepath.Ext(artifact.Path), "."); ext != "" {
			return ext
		}
	}
	return defaultPackaging
}
