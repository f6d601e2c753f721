package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/jfrog/release-publisher-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clitool "github.com/urfave/cli/v2"
)

func runCli(t *testing.T, args ...string) (string, error) {
	t.Helper()
	output := &bytes.Buffer{}
	app := &clitool.App{
		Name:      "rp",
		Commands:  GetCommands(&utils.NullLog{}),
		Writer:    output,
		ErrWriter: io.Discard,
	}
	err := app.Run(append([]string{"rp"}, args...))
	return output.String(), err
}

// writeConfig writes an unsigned publish configuration whose artifacts exist on disk.
func writeConfig(t *testing.T, version string) string {
	dir := t.TempDir()
	var artifacts []map[string]string
	for _, name := range []string{"core-phone-release.aar", "core-javadoc.jar", "core-sources.jar"} {
		artifactPath := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(artifactPath, []byte(name), 0644))
		artifacts = append(artifacts, map[string]string{"path": artifactPath})
	}
	config := map[string]interface{}{
		"groupId":     "com.adobe.marketing.mobile",
		"artifactId":  "core",
		"version":     version,
		"name":        "Adobe Experience Platform Core",
		"description": "Android library for the core extension",
		"license":     map[string]string{"name": "The Apache License, Version 2.0", "url": "https://www.apache.org/licenses/LICENSE-2.0.txt", "distribution": "repo"},
		"developer":   map[string]string{"id": "adobe", "name": "adobe", "email": "adobe-mobile-testing@adobe.com"},
		"scm":         map[string]string{"repoName": "adobe/aepsdk-core-android"},
		"dependencies": []map[string]string{
			{"groupId": "androidx.core", "artifactId": "core-ktx", "version": "1.8.0"},
		},
		"artifacts": artifacts,
		"signing":   map[string]bool{"enabled": false},
		"staging":   map[string]string{"dir": filepath.Join(dir, "staging-deploy")},
	}
	content, err := json.Marshal(config)
	require.NoError(t, err)
	configPath := filepath.Join(dir, "publish.json")
	require.NoError(t, os.WriteFile(configPath, content, 0644))
	return configPath
}

func TestPomCommand(t *testing.T) {
	output, err := runCli(t, "pom", "--config", writeConfig(t, "1.2.0"), "--version", "1.3.0")
	require.NoError(t, err)
	assert.Contains(t, output, "<artifactId>core</artifactId>")
	assert.Contains(t, output, "<version>1.3.0</version>")
	assert.Contains(t, output, "<packaging>aar</packaging>")
	assert.Contains(t, output, "<connection>scm:git:github.com/adobe/aepsdk-core-android.git</connection>")
	assert.Contains(t, output, "<artifactId>core-ktx</artifactId>")
}

func TestPomRepoNameFromCi(t *testing.T) {
	configPath := writeConfig(t, "1.2.0")
	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	var config map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &config))
	delete(config, "scm")
	content, err = json.Marshal(config)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(configPath, content, 0644))

	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_WORKFLOW", "publish")
	t.Setenv("GITHUB_RUN_ID", "42")
	t.Setenv("GITHUB_REPOSITORY", "adobe/aepsdk-edge-android")
	t.Setenv("GITHUB_REPOSITORY_OWNER", "adobe")
	output, err := runCli(t, "pom", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, output, "<url>https://github.com/adobe/aepsdk-edge-android</url>")
}

func TestSbomCommand(t *testing.T) {
	configPath := writeConfig(t, "1.2.0")
	output, err := runCli(t, "sbom", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, output, `"bomFormat": "CycloneDX"`)
	assert.Contains(t, output, "pkg:maven/androidx.core/core-ktx@1.8.0")

	output, err = runCli(t, "sbom", "--config", configPath, "--format", "cyclonedx/xml")
	require.NoError(t, err)
	assert.Contains(t, output, "<purl>pkg:maven/com.adobe.marketing.mobile/core@1.2.0</purl>")

	_, err = runCli(t, "sbom", "--config", configPath, "--format", "spdx")
	assert.ErrorContains(t, err, "'spdx' is not a valid value")
}

func TestResolveCommand(t *testing.T) {
	output, err := runCli(t, "resolve", "--config", writeConfig(t, "1.2.0"), "--version", "1.2.0-SNAPSHOT")
	require.NoError(t, err)

	var resolved struct {
		Channel        string `json:"channel"`
		RepositoryPath string `json:"repositoryPath"`
		Exports        []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"exports"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resolved))
	assert.Equal(t, "SNAPSHOT", resolved.Channel)
	assert.Equal(t, "com/adobe/marketing/mobile/core/1.2.0-SNAPSHOT", resolved.RepositoryPath)
	require.Len(t, resolved.Exports, 2)
	assert.Equal(t, "JRELEASER_PROJECT_VERSION", resolved.Exports[0].Key)
	assert.Equal(t, "1.2.0-SNAPSHOT", resolved.Exports[0].Value)
}

func TestResolveCommandInvalidGroup(t *testing.T) {
	_, err := runCli(t, "resolve", "--config", writeConfig(t, "1.2.0"), "--group-id", "com..adobe")
	assert.ErrorContains(t, err, "invalid groupId 'com..adobe'")
}

func TestPublishDryRun(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "github_env")
	stagingDir := filepath.Join(t.TempDir(), "staging")
	output, err := runCli(t, "publish", "--config", writeConfig(t, "1.2.0"), "--dry-run", "--env-file", envFile, "--staging-dir", stagingDir)
	require.NoError(t, err)

	var results []struct {
		Staging struct {
			Root string `json:"root"`
		} `json:"staging"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &results))
	require.Len(t, results, 1)
	assert.Equal(t, stagingDir, filepath.Dir(results[0].Staging.Root))
	assert.FileExists(t, filepath.Join(results[0].Staging.Root, "com", "adobe", "marketing", "mobile", "core", "1.2.0", "core-1.2.0.pom"))

	content, err := os.ReadFile(envFile)
	require.NoError(t, err)
	assert.Equal(t, "JRELEASER_PROJECT_VERSION=1.2.0\nJRELEASER_PROJECT_JAVA_GROUP_ID=com.adobe.marketing.mobile\n", string(content))
}

func TestPublishInCiWithoutEnvFile(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_WORKFLOW", "publish")
	t.Setenv("GITHUB_RUN_ID", "42")
	t.Setenv("GITHUB_ENV", "")
	output, err := runCli(t, "publish", "--config", writeConfig(t, "1.2.0"), "--dry-run", "--staging-dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, output, `"version": "1.2.0"`)
}

func TestPublishMissingConfig(t *testing.T) {
	_, err := runCli(t, "publish", "--config", filepath.Join(t.TempDir(), "publish.toml"))
	assert.ErrorContains(t, err, "failed reading the publish configuration")
}

func TestCleanCommand(t *testing.T) {
	stagingDir := t.TempDir()
	oldRun := filepath.Join(stagingDir, utils.StagingDirPrefix+strconv.FormatInt(time.Now().Add(-48*time.Hour).Unix(), 10)+"-1234")
	recentRun := filepath.Join(stagingDir, utils.StagingDirPrefix+strconv.FormatInt(time.Now().Unix(), 10)+"-5678")
	require.NoError(t, os.MkdirAll(oldRun, 0755))
	require.NoError(t, os.MkdirAll(recentRun, 0755))

	_, err := runCli(t, "clean", "--staging-dir", stagingDir)
	require.NoError(t, err)
	assert.NoDirExists(t, oldRun)
	assert.DirExists(t, recentRun)
}
