package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRelease(t *testing.T) {
	service, signer, uploaders := newTestService()
	config := newTestConfig(t, "1.2.0")
	publication, err := service.NewPublication(config)
	require.NoError(t, err)
	assert.Equal(t, entities.Release, publication.Channel())

	result, err := publication.Publish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.Release, result.Channel)
	assert.Equal(t, entities.ReleaseDeployer, result.Request.Target.Kind)
	assert.Equal(t, config.GroupId, result.Request.Target.Namespace)
	assert.Len(t, uploaders[entities.ReleaseDeployer].requests, 1)
	assert.Empty(t, uploaders[entities.SnapshotDeployer].requests)
	assert.Same(t, result.Request, uploaders[entities.ReleaseDeployer].requests[0])
	assert.Equal(t, entities.ReleaseDeployer, result.Deployment.Target)

	// Every staged file, the POM included, is signed before the deployer is selected.
	require.Len(t, result.Staging.Artifacts, 4)
	assert.Equal(t, 4, signer.calls())
	assert.Empty(t, result.Signatures.Missing(result.Staging.Artifacts))
	assert.Equal(t, 4, signer.verifyCalls)

	pom, err := os.ReadFile(filepath.Join(result.Staging.VersionDir(), "core-1.2.0.pom"))
	require.NoError(t, err)
	assert.Contains(t, string(pom), "<packaging>aar</packaging>")
	assert.Contains(t, string(pom), "<artifactId>core-ktx</artifactId>")
}

func TestPublishSnapshot(t *testing.T) {
	service, _, uploaders := newTestService()
	result, err := mustPublication(t, service, newTestConfig(t, "1.2.0-SNAPSHOT")).Publish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.Snapshot, result.Channel)
	assert.Equal(t, entities.SnapshotDeployer, result.Request.Target.Kind)
	assert.Len(t, uploaders[entities.SnapshotDeployer].requests, 1)
	assert.Empty(t, uploaders[entities.ReleaseDeployer].requests)
	assert.NotEmpty(t, result.Staging.MetadataFiles)
	// The snapshot release URL falls back to the release target's URL.
	assert.Equal(t, "https://central.example.com", result.Request.Target.EndpointUrl)
}

func TestPublishMissingDescription(t *testing.T) {
	service, signer, uploaders := newTestService()
	config := newTestConfig(t, "1.2.0")
	config.Description = ""

	publication, err := service.NewPublication(config)
	assert.Nil(t, publication)
	var configErr *utils.IncompleteConfigError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, "description", configErr.Field)
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, AssembleStage, stageErr.Stage)

	// Nothing was staged, signed or uploaded.
	entries, err := os.ReadDir(config.Staging.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, signer.calls())
	assert.Empty(t, uploaders[entities.ReleaseDeployer].requests)
}

func TestPublishInvalidCoordinate(t *testing.T) {
	service, _, _ := newTestService()
	config := newTestConfig(t, "1.2.0")
	config.GroupId = "com..adobe"
	_, err := service.NewPublication(config)
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, ResolveStage, stageErr.Stage)
	var coordinateErr *utils.InvalidCoordinateError
	assert.True(t, errors.As(err, &coordinateErr))
}

func TestPublishSigningFailure(t *testing.T) {
	service, signer, uploaders := newTestService()
	signer.failOn = 2
	_, err := mustPublication(t, service, newTestConfig(t, "1.2.0")).Publish(context.Background())

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, SignStage, stageErr.Stage)
	var signingErr *utils.SigningError
	assert.True(t, errors.As(err, &signingErr))
	assert.Empty(t, uploaders[entities.ReleaseDeployer].requests)
}

func TestPublishUnsigned(t *testing.T) {
	service, signer, uploaders := newTestService()
	config := newTestConfig(t, "1.2.0")
	config.Signing.Enabled = false
	result, err := mustPublication(t, service, config).Publish(context.Background())
	require.NoError(t, err)
	assert.Zero(t, signer.calls())
	assert.Empty(t, result.Signatures)
	assert.Len(t, uploaders[entities.ReleaseDeployer].requests, 1)
}

func TestPublishDryRun(t *testing.T) {
	service, _, uploaders := newTestService()
	config := newTestConfig(t, "1.2.0")
	config.DryRun = true
	result, err := mustPublication(t, service, config).Publish(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result.Deployment)
	assert.NotNil(t, result.Request)
	assert.DirExists(t, result.Staging.Path())
	assert.Empty(t, uploaders[entities.ReleaseDeployer].requests)
}

func TestPublishUploadFailure(t *testing.T) {
	service, _, uploaders := newTestService()
	uploaders[entities.ReleaseDeployer].err = &utils.DeploymentError{Target: "release", StatusCode: 401, Cause: utils.NewForbiddenError(401, "")}
	result, err := mustPublication(t, service, newTestConfig(t, "1.2.0")).Publish(context.Background())
	assert.Nil(t, result)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, UploadStage, stageErr.Stage)
	var forbiddenErr *utils.ForbiddenError
	assert.True(t, errors.As(err, &forbiddenErr))
}

func TestPublishUploadPlainError(t *testing.T) {
	service, _, uploaders := newTestService()
	uploaders[entities.SnapshotDeployer].err = errors.New("connection reset")
	_, err := mustPublication(t, service, newTestConfig(t, "1.2.0-SNAPSHOT")).Publish(context.Background())
	var deploymentErr *utils.DeploymentError
	require.True(t, errors.As(err, &deploymentErr))
	assert.Equal(t, "snapshot", deploymentErr.Target)
}

func TestPublishStagingFailure(t *testing.T) {
	service, signer, _ := newTestService()
	config := newTestConfig(t, "1.2.0")
	config.Artifacts[0].Path = filepath.Join(t.TempDir(), "missing.aar")
	_, err := mustPublication(t, service, config).Publish(context.Background())
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StagingStage, stageErr.Stage)
	var stagingErr *utils.StagingIOError
	assert.True(t, errors.As(err, &stagingErr))
	assert.Zero(t, signer.calls())
}

// contextUploader records the upload deadline. With waitForDone it only returns once the context ended.
type contextUploader struct {
	waitForDone bool
	hasDeadline bool
	deadline    time.Time
}

func (cu *contextUploader) Upload(ctx context.Context, request *entities.DeploymentRequest) (*entities.DeploymentResult, error) {
	cu.deadline, cu.hasDeadline = ctx.Deadline()
	if cu.waitForDone {
		<-ctx.Done()
	}
	return &entities.DeploymentResult{Target: request.Target.Kind, Repository: request.Target.EndpointUrl}, nil
}

func TestPublishDefaultUploadTimeout(t *testing.T) {
	service, _, _ := newTestService()
	uploader := &contextUploader{}
	service.SetUploader(entities.ReleaseDeployer, uploader)
	config := newTestConfig(t, "1.2.0")
	require.Zero(t, config.Timeouts.Upload)

	_, err := mustPublication(t, service, config).Publish(context.Background())
	require.NoError(t, err)
	require.True(t, uploader.hasDeadline)
	assert.WithinDuration(t, time.Now().Add(DefaultUploadTimeout), uploader.deadline, time.Minute)
}

func TestPublishUploadCompletedAtDeadline(t *testing.T) {
	service, _, _ := newTestService()
	service.SetUploader(entities.ReleaseDeployer, &contextUploader{waitForDone: true})
	config := newTestConfig(t, "1.2.0")
	config.Timeouts.Upload = Duration(10 * time.Millisecond)

	result, err := mustPublication(t, service, config).Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entities.ReleaseDeployer, result.Deployment.Target)
}

func TestNewPublicationWithoutConfig(t *testing.T) {
	_, err := NewPublishService().NewPublication(nil)
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, ResolveStage, stageErr.Stage)
	var configErr *utils.IncompleteConfigError
	require.True(t, errors.As(err, &configErr))
	assert.EqualError(t, configErr, "no publish configuration was given")
}

func TestEnvExports(t *testing.T) {
	result := &Result{Coordinate: entities.PackageCoordinate{GroupId: "com.adobe.marketing.mobile", ArtifactId: "core", Version: "1.2.0"}}
	assert.Equal(t, []entities.EnvVar{
		{Key: "JRELEASER_PROJECT_VERSION", Value: "1.2.0"},
		{Key: "JRELEASER_PROJECT_JAVA_GROUP_ID", Value: "com.adobe.marketing.mobile"},
	}, result.EnvExports())
}

func mustPublication(t *testing.T, service *PublishService, config *PublishConfig) *Publication {
	publication, err := service.NewPublication(config)
	require.NoError(t, err)
	return publication
}
