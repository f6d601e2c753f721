package cienv

import (
	"os"
	"strings"
)

const (
	// Reference: https://docs.gitlab.com/ee/ci/variables/predefined_variables.html
	GitLabCIEnvVar          = "GITLAB_CI"
	GitLabProjectPathEnvVar = "CI_PROJECT_PATH"
	GitLabPipelineIDEnvVar  = "CI_PIPELINE_ID"
	GitLabJobIDEnvVar       = "CI_JOB_ID"

	GitLabProviderName = "gitlab"
)

type GitLabCIProvider struct{}

func init() {
	RegisterProvider(&GitLabCIProvider{})
}

func (g *GitLabCIProvider) Name() string {
	return GitLabProviderName
}

func (g *GitLabCIProvider) IsActive() bool {
	if os.Getenv(GitLabCIEnvVar) != "true" {
		return false
	}
	return os.Getenv(GitLabPipelineIDEnvVar) != "" && os.Getenv(GitLabJobIDEnvVar) != ""
}

// GetVcsInfo splits CI_PROJECT_PATH at the first slash, subgroups stay in the repo part.
func (g *GitLabCIProvider) GetVcsInfo() CIVcsInfo {
	info := CIVcsInfo{Provider: GitLabProviderName}
	projectPath := os.Getenv(GitLabProjectPathEnvVar)
	if projectPath == "" {
		return info
	}
	if org, repo, found := strings.Cut(projectPath, "/"); found {
		info.Org, info.Repo = org, repo
	} else {
		info.Repo = projectPath
	}
	return info
}

// GitLab passes variables to later jobs through dotenv report artifacts, there is no env file to append to.
func (g *GitLabCIProvider) EnvFile() string {
	return ""
}
