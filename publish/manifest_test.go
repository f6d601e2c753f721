package publish

import (
	"errors"
	"testing"

	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCoordinate = entities.PackageCoordinate{GroupId: "com.adobe.marketing.mobile", ArtifactId: "core", Version: "1.2.0"}

func TestAssembleManifest(t *testing.T) {
	config := newTestConfig(t, "1.2.0")
	manifest, err := AssembleManifest(testCoordinate, config)
	require.NoError(t, err)

	assert.Equal(t, testCoordinate, manifest.Coordinate)
	assert.Equal(t, config.Name, manifest.Name)
	assert.Equal(t, config.Description, manifest.Description)
	assert.Equal(t, config.DocumentationUrl, manifest.DocumentationUrl)
	assert.Equal(t, config.License, manifest.License)
	assert.Equal(t, config.Developer, manifest.Developer)
	assert.Equal(t, "aar", manifest.Packaging)
	assert.Equal(t, "scm:git:github.com/adobe/aepsdk-core-android.git", manifest.ScmConnectionUrl)
	assert.Equal(t, manifest.ScmConnectionUrl, manifest.ScmDeveloperConnectionUrl)
	assert.Equal(t, "https://github.com/adobe/aepsdk-core-android", manifest.ScmRepoUrl)
}

func TestAssembleManifestScmTemplates(t *testing.T) {
	config := newTestConfig(t, "1.2.0")
	config.Scm.ConnectionTemplate = "scm:git:https://gitlab.example.com/%s.git"
	config.Scm.UrlTemplate = "https://gitlab.example.com/%s"
	manifest, err := AssembleManifest(testCoordinate, config)
	require.NoError(t, err)
	assert.Equal(t, "scm:git:https://gitlab.example.com/adobe/aepsdk-core-android.git", manifest.ScmConnectionUrl)
	assert.Equal(t, manifest.ScmConnectionUrl, manifest.ScmDeveloperConnectionUrl)
	assert.Equal(t, "https://gitlab.example.com/adobe/aepsdk-core-android", manifest.ScmRepoUrl)
	// The caller's config is left untouched.
	assert.Equal(t, "", newTestConfig(t, "1.2.0").Scm.ConnectionTemplate)
}

func TestAssembleManifestDependencies(t *testing.T) {
	config := newTestConfig(t, "1.2.0")
	config.Dependencies = []entities.DependencyDescriptor{
		{GroupId: "org.jetbrains.kotlin", ArtifactId: "kotlin-stdlib", Version: "1.8.22"},
		{GroupId: "androidx.core", ArtifactId: "core-ktx", Version: "1.8.0"},
		{GroupId: "org.jetbrains.kotlin", ArtifactId: "kotlin-stdlib", Version: "1.8.22"},
	}
	manifest, err := AssembleManifest(testCoordinate, config)
	require.NoError(t, err)
	assert.Equal(t, config.Dependencies, manifest.Dependencies)

	// The manifest owns its copy of the list.
	config.Dependencies[0].Version = "2.0.0"
	assert.Equal(t, "1.8.22", manifest.Dependencies[0].Version)

	config.Dependencies = nil
	manifest, err = AssembleManifest(testCoordinate, config)
	require.NoError(t, err)
	assert.Empty(t, manifest.Dependencies)
}

func TestAssembleManifestMissingFields(t *testing.T) {
	testCases := []struct {
		field string
		clear func(config *PublishConfig)
	}{
		{"name", func(config *PublishConfig) { config.Name = "" }},
		{"description", func(config *PublishConfig) { config.Description = "" }},
		{"license.name", func(config *PublishConfig) { config.License.Name = "" }},
		{"license.url", func(config *PublishConfig) { config.License.Url = "" }},
		{"license.distribution", func(config *PublishConfig) { config.License.Distribution = " " }},
		{"developer.id", func(config *PublishConfig) { config.Developer.Id = "" }},
		{"developer.name", func(config *PublishConfig) { config.Developer.Name = "" }},
		{"developer.email", func(config *PublishConfig) { config.Developer.Email = "" }},
		{"scm.repoName", func(config *PublishConfig) { config.Scm.RepoName = "" }},
	}
	for _, testCase := range testCases {
		t.Run(testCase.field, func(t *testing.T) {
			config := newTestConfig(t, "1.2.0")
			testCase.clear(config)
			_, err := AssembleManifest(testCoordinate, config)
			var configErr *utils.IncompleteConfigError
			require.True(t, errors.As(err, &configErr))
			assert.Equal(t, testCase.field, configErr.Field)
		})
	}

	// The first missing field in the descriptor order is reported.
	config := newTestConfig(t, "1.2.0")
	config.Developer.Email = ""
	config.Description = ""
	_, err := AssembleManifest(testCoordinate, config)
	assert.EqualError(t, err, "publish configuration is missing the required field 'description'")

	_, err = AssembleManifest(testCoordinate, nil)
	var configErr *utils.IncompleteConfigError
	require.True(t, errors.As(err, &configErr))
	assert.Empty(t, configErr.Field)
}

func TestPackagingOf(t *testing.T) {
	assert.Equal(t, "jar", packagingOf(nil))
	assert.Equal(t, "jar", packagingOf([]ArtifactConfig{{Path: "build/libs/lib-sources.jar"}, {Path: "build/libs/lib.jar"}}))
	assert.Equal(t, "aar", packagingOf([]ArtifactConfig{{Path: "build/outputs/aar/lib-javadoc.jar"}, {Path: "build/outputs/aar/lib-phone-release.aar"}}))
	assert.Equal(t, "jar", packagingOf([]ArtifactConfig{{Path: "build/libs/lib"}}))
}
