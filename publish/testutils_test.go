package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jfrog/release-publisher-go/entities"
	"github.com/stretchr/testify/require"
)

// fakeSigner writes a placeholder signature next to each file. failOn makes the signing call with that 1-based index fail.
type fakeSigner struct {
	mutex       sync.Mutex
	signCalls   []string
	verifyCalls int
	failOn      int
	failVerify  bool
	keyRefs     []string
}

func (fs *fakeSigner) Sign(_ context.Context, filePath, keyRef, _ string) (string, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	fs.signCalls = append(fs.signCalls, filePath)
	fs.keyRefs = append(fs.keyRefs, keyRef)
	if fs.failOn == len(fs.signCalls) {
		return "", errors.New("gpg: signing failed: No secret key")
	}
	signaturePath := filePath + ".asc"
	return signaturePath, os.WriteFile(signaturePath, []byte("-----BEGIN PGP SIGNATURE-----"), 0644)
}

func (fs *fakeSigner) Verify(context.Context, string, string) error {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	fs.verifyCalls++
	if fs.failVerify {
		return errors.New("gpg: BAD signature")
	}
	return nil
}

func (fs *fakeSigner) calls() int {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	return len(fs.signCalls)
}

type fakeUploader struct {
	mutex    sync.Mutex
	requests []*entities.DeploymentRequest
	err      error
}

func (fu *fakeUploader) Upload(_ context.Context, request *entities.DeploymentRequest) (*entities.DeploymentResult, error) {
	fu.mutex.Lock()
	defer fu.mutex.Unlock()
	fu.requests = append(fu.requests, request)
	if fu.err != nil {
		return nil, fu.err
	}
	return &entities.DeploymentResult{Target: request.Target.Kind, Repository: request.Target.EndpointUrl, Duration: "1ms"}, nil
}

// createArtifacts writes the three files of an Android library build and returns their configs.
func createArtifacts(t *testing.T, artifactId string) []ArtifactConfig {
	outputDir := t.TempDir()
	var artifacts []ArtifactConfig
	for _, name := range []string{artifactId + "-phone-release.aar", artifactId + "-javadoc.jar", artifactId + "-sources.jar"} {
		artifactPath := filepath.Join(outputDir, name)
		require.NoError(t, os.WriteFile(artifactPath, []byte("content of "+name), 0644))
		artifacts = append(artifacts, ArtifactConfig{Path: artifactPath})
	}
	return artifacts
}

func newTestConfig(t *testing.T, version string) *PublishConfig {
	return &PublishConfig{
		GroupId:          "com.adobe.marketing.mobile",
		ArtifactId:       "core",
		Version:          version,
		Name:             "Adobe Experience Platform Core",
		Description:      "Android library for the core extension",
		DocumentationUrl: "https://developer.adobe.com/client-sdks",
		License: entities.License{
			Name:         "The Apache License, Version 2.0",
			Url:          "https://www.apache.org/licenses/LICENSE-2.0.txt",
			Distribution: "repo",
		},
		Developer: entities.Developer{Id: "adobe", Name: "adobe", Email: "adobe-mobile-testing@adobe.com"},
		Scm:       ScmConfig{RepoName: "adobe/aepsdk-core-android"},
		Dependencies: []entities.DependencyDescriptor{
			{GroupId: "androidx.core", ArtifactId: "core-ktx", Version: "1.8.0"},
			{GroupId: "org.jetbrains.kotlin", ArtifactId: "kotlin-stdlib", Version: "1.8.22"},
		},
		Artifacts: createArtifacts(t, "core"),
		Signing:   entities.SigningPolicy{Enabled: true, Verify: true, KeyId: "ABCD1234", PassphraseEnv: "TEST_SIGNING_PASSPHRASE"},
		Staging:   StagingConfig{Dir: t.TempDir()},
		Deploy: DeployConfig{
			Release:  ReleaseTargetConfig{Url: "https://central.example.com"},
			Snapshot: SnapshotTargetConfig{SnapshotUrl: "https://central.example.com/repository/maven-snapshots/"},
		},
	}
}

// newTestService returns a service wired to test doubles for every collaborator.
func newTestService() (*PublishService, *fakeSigner, map[entities.DeployerKind]*fakeUploader) {
	service := NewPublishService()
	signer := &fakeSigner{}
	service.SetSigner(signer)
	uploaders := map[entities.DeployerKind]*fakeUploader{
		entities.ReleaseDeployer:  {},
		entities.SnapshotDeployer: {},
	}
	for kind, uploader := range uploaders {
		service.SetUploader(kind, uploader)
	}
	return service, signer, uploaders
}
