package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jfrog/gofrog/crypto"
	"github.com/jfrog/gofrog/log"
	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/utils"
)

const (
	checksumSha1Header   = "X-Checksum-Sha1"
	checksumSha256Header = "X-Checksum-Sha256"
	checksumMd5Header    = "X-Checksum-Md5"

	mavenMetadataFileName = "maven-metadata.xml"
)

// SnapshotUploader PUTs every staged file to a Maven snapshot repository, keeping the staged layout.
// Snapshots are available as soon as the last file is uploaded, nothing is closed or released.
type SnapshotUploader struct {
	client *http.Client
}

func NewSnapshotUploader() *SnapshotUploader {
	return &SnapshotUploader{client: http.DefaultClient}
}

func (su *SnapshotUploader) SetHttpClient(client *http.Client) *SnapshotUploader {
	su.client = client
	return su
}

func (su *SnapshotUploader) Upload(ctx context.Context, request *entities.DeploymentRequest) (*entities.DeploymentResult, error) {
	target := request.Target
	if target.Kind != entities.SnapshotDeployer || !target.SnapshotSupported {
		return nil, su.deploymentError("", fmt.Errorf("the snapshot uploader can't deploy to a %s target", target.Kind))
	}
	if target.SnapshotUrl == "" {
		return nil, su.deploymentError("", fmt.Errorf("the snapshot target has no repository URL"))
	}
	if err := validateRequest(request); err != nil {
		return nil, su.deploymentError("", err)
	}
	creds, err := resolveCredentials(target)
	if err != nil {
		return nil, su.deploymentError("", err)
	}

	startTime := time.Now()
	if err = su.mergeRemoteMetadata(ctx, request, creds); err != nil {
		return nil, err
	}
	for _, filePath := range request.UploadedFiles() {
		relativePath, err := request.Staging.RelativePath(filePath)
		if err != nil {
			return nil, su.deploymentError(filePath, err)
		}
		if err = su.put(ctx, target, creds, filePath, relativePath); err != nil {
			return nil, err
		}
	}
	uploaded, err := uploadedArtifacts(request, target.SnapshotUrl)
	if err != nil {
		return nil, su.deploymentError("", err)
	}
	log.Info(fmt.Sprintf("Uploaded %d files of %s to %s", len(uploaded), request.Manifest.Coordinate.Id(), utils.MaskCredentialsInUrl(target.SnapshotUrl)))
	return &entities.DeploymentResult{
		Target:     entities.SnapshotDeployer,
		Repository: target.SnapshotUrl,
		State:      StatePublished,
		Uploaded:   uploaded,
		Duration:   elapsed(startTime),
	}, nil
}

func (su *SnapshotUploader) put(ctx context.Context, target entities.DeployerTarget, creds credentials, filePath, relativePath string) (err error) {
	fileDetails, err := crypto.GetFileDetails(filePath, true)
	if err != nil {
		return su.deploymentError(relativePath, err)
	}
	file, err := os.Open(filePath)
	if err != nil {
		return su.deploymentError(relativePath, err)
	}
	// The transport closes the request body once it was sent.
	defer func() {
		if closeErr := file.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && err == nil {
			err = su.deploymentError(relativePath, closeErr)
		}
	}()

	fileUrl := joinUrl(target.SnapshotUrl, relativePath)
	log.Debug("Uploading " + relativePath + " to " + utils.MaskCredentialsInUrl(fileUrl))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, fileUrl, file)
	if err != nil {
		return su.deploymentError(relativePath, err)
	}
	req.ContentLength = fileDetails.Size
	req.Header.Set(checksumSha1Header, fileDetails.Checksum.Sha1)
	req.Header.Set(checksumSha256Header, fileDetails.Checksum.Sha256)
	req.Header.Set(checksumMd5Header, fileDetails.Checksum.Md5)
	if !creds.isEmpty() {
		req.SetBasicAuth(creds.username, creds.password)
	}
	resp, err := su.client.Do(req)
	if err != nil {
		return su.deploymentError(relativePath, err)
	}
	defer closeBody(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(entities.SnapshotDeployer, relativePath, resp)
	}
	return nil
}

// mergeRemoteMetadata adds the versions already listed in the repository's artifact-level
// maven-metadata.xml to the staged one, and refreshes its checksum sidecars.
func (su *SnapshotUploader) mergeRemoteMetadata(ctx context.Context, request *entities.DeploymentRequest, creds credentials) error {
	for _, metadataPath := range request.Staging.MetadataFiles {
		if filepath.Base(metadataPath) != mavenMetadataFileName {
			continue
		}
		relativePath, err := request.Staging.RelativePath(metadataPath)
		if err != nil {
			return su.deploymentError(metadataPath, err)
		}
		remote, found, err := su.get(ctx, request.Target, creds, relativePath)
		if err != nil {
			return err
		}
		if !found {
			log.Debug("No " + relativePath + " in the snapshot repository yet")
			continue
		}
		staged, err := os.ReadFile(metadataPath)
		if err != nil {
			return su.deploymentError(relativePath, err)
		}
		merged, err := entities.MergeMavenMetadata(remote, staged)
		if err != nil {
			return su.deploymentError(relativePath, err)
		}
		if err = os.WriteFile(metadataPath, merged, 0644); err != nil {
			return su.deploymentError(relativePath, err)
		}
		if _, _, err = utils.WriteChecksumFiles(metadataPath, utils.SidecarAlgorithms...); err != nil {
			return su.deploymentError(relativePath, err)
		}
	}
	return nil
}

// get downloads a repository file. A missing file is reported with found == false.
func (su *SnapshotUploader) get(ctx context.Context, target entities.DeployerTarget, creds credentials, relativePath string) (content []byte, found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinUrl(target.SnapshotUrl, relativePath), nil)
	if err != nil {
		return nil, false, su.deploymentError(relativePath, err)
	}
	if !creds.isEmpty() {
		req.SetBasicAuth(creds.username, creds.password)
	}
	resp, err := su.client.Do(req)
	if err != nil {
		return nil, false, su.deploymentError(relativePath, err)
	}
	defer closeBody(resp)
	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, responseError(entities.SnapshotDeployer, relativePath, resp)
	}
	content, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, su.deploymentError(relativePath, err)
	}
	return content, true, nil
}

func (su *SnapshotUploader) deploymentError(artifact string, cause error) error {
	return &utils.DeploymentError{Target: string(entities.SnapshotDeployer), Artifact: artifact, Cause: cause}
}
