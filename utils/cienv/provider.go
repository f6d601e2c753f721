// Package cienv detects the CI system a publish runs in.
//
// Providers register themselves from init(). At most one of them is active at runtime,
// and only when CI=true is set. The active provider supplies the repository name used for
// the SCM block of the descriptor and the file to which environment exports are appended.
package cienv

import "os"

const (
	// CIEnvVar is set to 'true' by most CI systems
	CIEnvVar = "CI"
)

// CIVcsInfo is the repository a CI job runs for.
type CIVcsInfo struct {
	Provider string
	Org      string
	Repo     string
}

func (v CIVcsInfo) IsEmpty() bool {
	return v.Provider == "" && v.Org == "" && v.Repo == ""
}

// RepoName returns the 'org/repo' notation, or only the repo when the org is unknown.
func (v CIVcsInfo) RepoName() string {
	if v.Org == "" {
		return v.Repo
	}
	if v.Repo == "" {
		return ""
	}
	return v.Org + "/" + v.Repo
}

type CIProvider interface {
	Name() string
	IsActive() bool
	GetVcsInfo() CIVcsInfo
	// EnvFile returns the path of the file whose KEY=VALUE lines the CI system exports to later steps,
	// or an empty string when the provider has none.
	EnvFile() string
}

// Registration happens in init(), the slice is read-only after that.
var providers []CIProvider

// RegisterProvider must be called from init() functions only.
func RegisterProvider(p CIProvider) {
	providers = append(providers, p)
}

// GetActiveProvider returns the provider of the current CI environment, or nil outside of CI.
func GetActiveProvider() CIProvider {
	if os.Getenv(CIEnvVar) != "true" {
		return nil
	}
	for _, p := range providers {
		if p.IsActive() {
			return p
		}
	}
	return nil
}

func GetCIVcsInfo() CIVcsInfo {
	provider := GetActiveProvider()
	if provider == nil {
		return CIVcsInfo{}
	}
	return provider.GetVcsInfo()
}

// GetEnvFile returns the env file of the active provider. Empty outside of CI.
func GetEnvFile() string {
	provider := GetActiveProvider()
	if provider == nil {
		return ""
	}
	return provider.EnvFile()
}

func IsRunningInCI() bool {
	return GetActiveProvider() != nil
}

func GetRegisteredProviders() []CIProvider {
	return providers
}

// ClearProviders is intended for tests only.
func ClearProviders() {
	providers = nil
}
