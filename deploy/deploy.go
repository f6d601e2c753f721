package deploy

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/jfrog/gofrog/crypto"
	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/utils"
)

// Upper bound of an error body kept in a DeploymentError.
const maxErrorBodySize = 4096

type credentials struct {
	username string
	password string
}

func (c credentials) isEmpty() bool {
	return c.username == "" && c.password == ""
}

// resolveCredentials reads the credentials named by the target from the environment.
// A target naming no variables deploys anonymously.
func resolveCredentials(target entities.DeployerTarget) (credentials, error) {
	var resolved credentials
	for _, variable := range []struct {
		name  string
		value *string
	}{
		{target.Credentials.UsernameEnv, &resolved.username},
		{target.Credentials.PasswordEnv, &resolved.password},
	} {
		if variable.name == "" {
			continue
		}
		value, exists := os.LookupEnv(variable.name)
		if !exists {
			return credentials{}, fmt.Errorf("the credentials environment variable '%s' is not set", variable.name)
		}
		*variable.value = value
	}
	return resolved, nil
}

// validateRequest checks that the staged files satisfy the target's verification flags before anything is sent.
func validateRequest(request *entities.DeploymentRequest) error {
	target := request.Target
	staging := request.Staging
	if staging == nil || len(staging.Artifacts) == 0 {
		return errors.New("nothing is staged for deployment")
	}
	if _, found := entities.ArtifactSet(staging.Artifacts).Primary(); !found {
		return fmt.Errorf("the %s target requires a primary artifact", target.Kind)
	}
	required := []struct {
		enabled bool
		kind    entities.ArtifactKind
		name    string
	}{
		{target.SourceJar, entities.Sources, "sources archive"},
		{target.JavadocJar, entities.Javadoc, "javadoc archive"},
		{target.VerifyPom, entities.Pom, "POM"},
	}
	for _, requirement := range required {
		if !requirement.enabled {
			continue
		}
		if _, found := entities.ArtifactSet(staging.Artifacts).FirstOfKind(requirement.kind); !found {
			return fmt.Errorf("the %s target requires a %s", target.Kind, requirement.name)
		}
	}
	if target.Checksums {
		for _, artifact := range staging.Artifacts {
			for _, algorithm := range []utils.Algorithm{utils.MD5, utils.SHA1} {
				if !containsPath(staging.ChecksumFiles, artifact.Path+"."+algorithm.Extension()) {
					return fmt.Errorf("the %s target requires a %s checksum of '%s'", target.Kind, algorithm.Extension(), artifact.Name)
				}
			}
		}
	}
	if target.ApplyCentralRules {
		if missing := request.Signatures.Missing(staging.Artifacts); len(missing) > 0 {
			return fmt.Errorf("the %s target requires signed artifacts, '%s' has no signature", target.Kind, missing[0])
		}
	}
	return nil
}

func containsPath(paths []string, path string) bool {
	for _, candidate := range paths {
		if candidate == path {
			return true
		}
	}
	return false
}

// uploadedArtifacts describes every uploaded file as stored under repository.
func uploadedArtifacts(request *entities.DeploymentRequest, repository string) ([]entities.UploadedArtifact, error) {
	var uploaded []entities.UploadedArtifact
	for _, filePath := range request.UploadedFiles() {
		fileDetails, err := crypto.GetFileDetails(filePath, true)
		if err != nil {
			return nil, err
		}
		relativePath, err := request.Staging.RelativePath(filePath)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, entities.UploadedArtifact{
			Path:       relativePath,
			Repository: repository,
			Size:       fileDetails.Size,
			Checksum: entities.Checksum{
				Sha1:   fileDetails.Checksum.Sha1,
				Md5:    fileDetails.Checksum.Md5,
				Sha256: fileDetails.Checksum.Sha256,
			},
		})
	}
	return uploaded, nil
}

// responseError converts a failed HTTP response to a DeploymentError, reading the message from JSON error bodies when possible.
func responseError(target entities.DeployerKind, artifact string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	message := errorMessage(body)
	var cause error
	if utils.IsForbiddenStatus(resp.StatusCode) {
		cause = utils.NewForbiddenError(resp.StatusCode, message)
	} else {
		if message == "" {
			message = resp.Status
		}
		cause = errors.New(message)
	}
	return &utils.DeploymentError{Target: string(target), Artifact: artifact, StatusCode: resp.StatusCode, Cause: cause}
}

// errorMessage extracts the message of the common repository error shapes, falling back to the raw body.
func errorMessage(body []byte) string {
	for _, keys := range [][]string{
		{"errors", "[0]", "message"},
		{"error", "message"},
		{"message"},
		{"error"},
	} {
		if message, err := jsonparser.GetString(body, keys...); err == nil && message != "" {
			return message
		}
	}
	return strings.TrimSpace(string(body))
}

func joinUrl(baseUrl string, elements ...string) string {
	joined := strings.TrimSuffix(baseUrl, "/")
	for _, element := range elements {
		joined += "/" + strings.TrimPrefix(filepath.ToSlash(element), "/")
	}
	return joined
}

func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}
