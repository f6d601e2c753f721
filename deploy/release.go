package deploy

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/buger/jsonparser"
	"github.com/jfrog/gofrog/log"
	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/utils"
	"github.com/mholt/archiver/v3"
)

const (
	uploadApi = "api/v1/publisher/upload"
	statusApi = "api/v1/publisher/status"

	bundleFileName  = "bundle.zip"
	bundleFormField = "bundle"

	defaultPollInterval      = 5 * time.Second
	defaultValidationTimeout = 20 * time.Minute
)

// Deployment states reported by the publisher status API.
const (
	StatePending    = "PENDING"
	StateValidating = "VALIDATING"
	StateValidated  = "VALIDATED"
	StatePublishing = "PUBLISHING"
	StatePublished  = "PUBLISHED"
	StateFailed     = "FAILED"
)

// ReleaseUploader deploys a release as a single bundle to a publisher portal,
// then follows the deployment until the portal validated it.
type ReleaseUploader struct {
	client            *http.Client
	pollInterval      time.Duration
	validationTimeout time.Duration
}

func NewReleaseUploader() *ReleaseUploader {
	return &ReleaseUploader{client: http.DefaultClient, pollInterval: defaultPollInterval, validationTimeout: defaultValidationTimeout}
}

func (ru *ReleaseUploader) SetHttpClient(client *http.Client) *ReleaseUploader {
	ru.client = client
	return ru
}

func (ru *ReleaseUploader) SetPollInterval(pollInterval time.Duration) *ReleaseUploader {
	ru.pollInterval = pollInterval
	return ru
}

// SetValidationTimeout bounds the status polling, on top of the deadline of the upload context.
func (ru *ReleaseUploader) SetValidationTimeout(validationTimeout time.Duration) *ReleaseUploader {
	ru.validationTimeout = validationTimeout
	return ru
}

func (ru *ReleaseUploader) Upload(ctx context.Context, request *entities.DeploymentRequest) (*entities.DeploymentResult, error) {
	target := request.Target
	if target.Kind != entities.ReleaseDeployer {
		return nil, ru.deploymentError("", fmt.Errorf("the release uploader can't deploy to a %s target", target.Kind))
	}
	if err := validateRequest(request); err != nil {
		return nil, ru.deploymentError("", err)
	}
	creds, err := resolveCredentials(target)
	if err != nil {
		return nil, ru.deploymentError("", err)
	}

	startTime := time.Now()
	bundleDir, err := os.MkdirTemp("", "release-bundle-*")
	if err != nil {
		return nil, ru.deploymentError("", err)
	}
	defer func() {
		if removeErr := os.RemoveAll(bundleDir); removeErr != nil {
			log.Debug("Failed removing the release bundle directory: " + removeErr.Error())
		}
	}()
	bundlePath := filepath.Join(bundleDir, bundleFileName)
	if err = createBundle(request.Staging, bundlePath); err != nil {
		return nil, ru.deploymentError(bundleFileName, err)
	}

	deploymentId, err := ru.uploadBundle(ctx, target, request.Manifest.Coordinate, creds, bundlePath)
	if err != nil {
		return nil, err
	}
	log.Info(fmt.Sprintf("Uploaded the %s bundle, deployment ID: %s", request.Manifest.Coordinate.Id(), deploymentId))

	state := StatePending
	if target.VerifyPom || target.CloseRepository {
		if state, err = ru.waitForValidation(ctx, target, creds, deploymentId); err != nil {
			return nil, err
		}
	}

	uploaded, err := uploadedArtifacts(request, target.EndpointUrl)
	if err != nil {
		return nil, ru.deploymentError("", err)
	}
	return &entities.DeploymentResult{
		Target:       entities.ReleaseDeployer,
		Repository:   target.EndpointUrl,
		DeploymentId: deploymentId,
		State:        state,
		Uploaded:     uploaded,
		Duration:     elapsed(startTime),
	}, nil
}

// createBundle zips the staging root so that every entry keeps its repository path.
func createBundle(staging *entities.StagingLocation, bundlePath string) error {
	entries, err := os.ReadDir(staging.Root)
	if err != nil {
		return err
	}
	var sources []string
	for _, entry := range entries {
		sources = append(sources, filepath.Join(staging.Root, entry.Name()))
	}
	if len(sources) == 0 {
		return errors.New("the staging directory is empty")
	}
	return archiver.Archive(sources, bundlePath)
}

func (ru *ReleaseUploader) uploadBundle(ctx context.Context, target entities.DeployerTarget, coordinate entities.PackageCoordinate,
	creds credentials, bundlePath string) (string, error) {
	body, contentType, err := multipartBundle(bundlePath)
	if err != nil {
		return "", ru.deploymentError(bundleFileName, err)
	}
	query := url.Values{}
	query.Set("name", coordinate.Id())
	query.Set("publishingType", publishingType(target))
	uploadUrl := joinUrl(target.EndpointUrl, uploadApi) + "?" + query.Encode()
	log.Debug("Uploading the release bundle to " + utils.MaskCredentialsInUrl(uploadUrl))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadUrl, body)
	if err != nil {
		return "", ru.deploymentError(bundleFileName, err)
	}
	req.Header.Set("Content-Type", contentType)
	setBearerAuth(req, creds)
	resp, err := ru.client.Do(req)
	if err != nil {
		return "", ru.deploymentError(bundleFileName, err)
	}
	defer closeBody(resp)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", responseError(entities.ReleaseDeployer, bundleFileName, resp)
	}
	deploymentId, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ru.deploymentError(bundleFileName, err)
	}
	return string(bytes.TrimSpace(deploymentId)), nil
}

// waitForValidation polls the deployment status until the portal accepted or rejected the bundle,
// or the validation timeout expired.
func (ru *ReleaseUploader) waitForValidation(ctx context.Context, target entities.DeployerTarget, creds credentials, deploymentId string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ru.validationTimeout)
	defer cancel()
	for {
		state, err := ru.deploymentState(ctx, target, creds, deploymentId)
		if err != nil {
			return "", err
		}
		log.Debug(fmt.Sprintf("Deployment %s is %s", deploymentId, state))
		switch state {
		case StateValidated, StatePublishing, StatePublished:
			return state, nil
		case StatePending, StateValidating:
		default:
			return "", ru.deploymentError("", fmt.Errorf("deployment %s is in the unknown state '%s'", deploymentId, state))
		}
		select {
		case <-ctx.Done():
			return "", ru.deploymentError("", fmt.Errorf("deployment %s is still %s: %w", deploymentId, state, ctx.Err()))
		case <-time.After(ru.pollInterval):
		}
	}
}

func (ru *ReleaseUploader) deploymentState(ctx context.Context, target entities.DeployerTarget, creds credentials, deploymentId string) (string, error) {
	statusUrl := joinUrl(target.EndpointUrl, statusApi) + "?" + url.Values{"id": {deploymentId}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, statusUrl, nil)
	if err != nil {
		return "", ru.deploymentError("", err)
	}
	setBearerAuth(req, creds)
	resp, err := ru.client.Do(req)
	if err != nil {
		return "", ru.deploymentError("", err)
	}
	defer closeBody(resp)
	if resp.StatusCode != http.StatusOK {
		return "", responseError(entities.ReleaseDeployer, "", resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ru.deploymentError("", err)
	}
	state, err := jsonparser.GetString(body, "deploymentState")
	if err != nil {
		return "", ru.deploymentError("", fmt.Errorf("unexpected status response of deployment %s: %w", deploymentId, err))
	}
	if state == StateFailed {
		failure := "the portal rejected the deployment"
		if details, _, _, detailsErr := jsonparser.Get(body, "errors"); detailsErr == nil {
			failure += ": " + string(details)
		}
		return "", ru.deploymentError("", errors.New(failure))
	}
	return state, nil
}

func (ru *ReleaseUploader) deploymentError(artifact string, cause error) error {
	return &utils.DeploymentError{Target: string(entities.ReleaseDeployer), Artifact: artifact, Cause: cause}
}

// publishingType is AUTOMATIC when the validated deployment is released without a manual step.
func publishingType(target entities.DeployerTarget) string {
	if target.ReleaseRepository {
		return "AUTOMATIC"
	}
	return "USER_MANAGED"
}

func multipartBundle(bundlePath string) (*bytes.Buffer, string, error) {
	bundle, err := os.Open(bundlePath)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		if closeErr := bundle.Close(); closeErr != nil {
			log.Debug("Failed closing the release bundle: " + closeErr.Error())
		}
	}()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(bundleFormField, bundleFileName)
	if err != nil {
		return nil, "", err
	}
	if _, err = io.Copy(part, bundle); err != nil {
		return nil, "", err
	}
	if err = writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

// setBearerAuth sets the portal's token header, the base64 encoding of 'username:password'.
func setBearerAuth(req *http.Request, creds credentials) {
	if creds.isEmpty() {
		return
	}
	token := base64.StdEncoding.EncodeToString([]byte(creds.username + ":" + creds.password))
	req.Header.Set("Authorization", "Bearer "+token)
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Debug("Failed closing the response body: " + err.Error())
	}
}
