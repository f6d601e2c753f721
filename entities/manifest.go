package entities

type License struct {
	Name         string `json:"name,omitempty" toml:"name" yaml:"name"`
	Url          string `json:"url,omitempty" toml:"url" yaml:"url"`
	Distribution string `json:"distribution,omitempty" toml:"distribution" yaml:"distribution"`
}

type Developer struct {
	Id    string `json:"id,omitempty" toml:"id" yaml:"id"`
	Name  string `json:"name,omitempty" toml:"name" yaml:"name"`
	Email string `json:"email,omitempty" toml:"email" yaml:"email"`
}

// DependencyDescriptor is a declared dependency echoed into the published descriptor. It is never resolved.
type DependencyDescriptor struct {
	GroupId    string `json:"groupId" toml:"groupId" yaml:"groupId" xml:"groupId"`
	ArtifactId string `json:"artifactId" toml:"artifactId" yaml:"artifactId" xml:"artifactId"`
	Version    string `json:"version" toml:"version" yaml:"version" xml:"version"`
}

func (dd DependencyDescriptor) Id() string {
	return dd.GroupId + ":" + dd.ArtifactId + ":" + dd.Version
}

// PackageManifest is the descriptive metadata of one publication.
// It is assembled once per publish run and must be treated as read-only afterwards.
type PackageManifest struct {
	Coordinate       PackageCoordinate `json:"coordinate"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	DocumentationUrl string            `json:"documentationUrl,omitempty"`
	Packaging        string            `json:"packaging,omitempty"`
	License          License           `json:"license"`
	Developer        Developer         `json:"developer"`
	ScmConnectionUrl string            `json:"scmConnectionUrl"`
	// Always equal to ScmConnectionUrl, anonymous and authenticated checkouts are not told apart.
	ScmDeveloperConnectionUrl string                 `json:"scmDeveloperConnectionUrl"`
	ScmRepoUrl                string                 `json:"scmRepoUrl"`
	Dependencies              []DependencyDescriptor `json:"dependencies"`
}
