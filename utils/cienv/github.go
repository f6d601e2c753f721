package cienv

import (
	"os"
	"strings"
)

const (
	// Reference: https://docs.github.com/en/actions/learn-github-actions/variables#default-environment-variables
	GitHubActionsEnvVar         = "GITHUB_ACTIONS"
	GitHubRepositoryEnvVar      = "GITHUB_REPOSITORY"
	GitHubRepositoryOwnerEnvVar = "GITHUB_REPOSITORY_OWNER"
	GitHubWorkflowEnvVar        = "GITHUB_WORKFLOW"
	GitHubRunIDEnvVar           = "GITHUB_RUN_ID"
	GitHubEnvFileEnvVar         = "GITHUB_ENV"

	GitHubProviderName = "github"
)

type GitHubActionsProvider struct{}

func init() {
	RegisterProvider(&GitHubActionsProvider{})
}

func (g *GitHubActionsProvider) Name() string {
	return GitHubProviderName
}

// IsActive requires GITHUB_ACTIONS=true together with the workflow and run variables every job has.
func (g *GitHubActionsProvider) IsActive() bool {
	if os.Getenv(GitHubActionsEnvVar) != "true" {
		return false
	}
	return os.Getenv(GitHubWorkflowEnvVar) != "" && os.Getenv(GitHubRunIDEnvVar) != ""
}

// GetVcsInfo splits GITHUB_REPOSITORY ("owner/repo") using GITHUB_REPOSITORY_OWNER.
func (g *GitHubActionsProvider) GetVcsInfo() CIVcsInfo {
	info := CIVcsInfo{
		Provider: GitHubProviderName,
		Org:      os.Getenv(GitHubRepositoryOwnerEnvVar),
	}
	fullRepo := os.Getenv(GitHubRepositoryEnvVar)
	if info.Org != "" {
		info.Repo = strings.TrimPrefix(fullRepo, info.Org+"/")
	} else {
		info.Repo = fullRepo
	}
	return info
}

func (g *GitHubActionsProvider) EnvFile() string {
	return os.Getenv(GitHubEnvFileEnvVar)
}
