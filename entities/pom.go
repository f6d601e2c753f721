package entities

import (
	"encoding/xml"
	"fmt"

	"golang.org/x/exp/slices"
)

const (
	pomNamespace      = "http://maven.apache.org/POM/4.0.0"
	pomXsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	pomSchemaLocation = "http://maven.apache.org/POM/4.0.0 https://maven.apache.org/xsd/maven-4.0.0.xsd"
	pomModelVersion   = "4.0.0"
)

type pomProject struct {
	XMLName        xml.Name        `xml:"project"`
	Xmlns          string          `xml:"xmlns,attr"`
	XmlnsXsi       string          `xml:"xmlns:xsi,attr"`
	SchemaLocation string          `xml:"xsi:schemaLocation,attr"`
	ModelVersion   string          `xml:"modelVersion"`
	GroupId        string          `xml:"groupId"`
	ArtifactId     string          `xml:"artifactId"`
	Version        string          `xml:"version"`
	Packaging      string          `xml:"packaging,omitempty"`
	Name           string          `xml:"name"`
	Description    string          `xml:"description"`
	Url            string          `xml:"url,omitempty"`
	Licenses       pomLicenses     `xml:"licenses"`
	Developers     pomDevelopers   `xml:"developers"`
	Scm            pomScm          `xml:"scm"`
	Dependencies   pomDependencies `xml:"dependencies"`
}

type pomLicenses struct {
	License []pomLicense `xml:"license"`
}

type pomLicense struct {
	Name         string `xml:"name"`
	Url          string `xml:"url"`
	Distribution string `xml:"distribution"`
}

type pomDevelopers struct {
	Developer []pomDeveloper `xml:"developer"`
}

type pomDeveloper struct {
	Id    string `xml:"id"`
	Name  string `xml:"name"`
	Email string `xml:"email"`
}

type pomScm struct {
	Connection          string `xml:"connection"`
	DeveloperConnection string `xml:"developerConnection"`
	Url                 string `xml:"url"`
}

type pomDependencies struct {
	Dependency []pomDependency `xml:"dependency"`
}

type pomDependency struct {
	GroupId    string `xml:"groupId"`
	ArtifactId string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// ToPom renders the manifest as a Maven POM. Dependencies are written in their declared order.
func (pm *PackageManifest) ToPom() ([]byte, error) {
	project := pomProject{
		Xmlns:          pomNamespace,
		XmlnsXsi:       pomXsiNamespace,
		SchemaLocation: pomSchemaLocation,
		ModelVersion:   pomModelVersion,
		GroupId:        pm.Coordinate.GroupId,
		ArtifactId:     pm.Coordinate.ArtifactId,
		Version:        pm.Coordinate.Version,
		Packaging:      pm.Packaging,
		Name:           pm.Name,
		Description:    pm.Description,
		Url:            pm.DocumentationUrl,
		Licenses:       pomLicenses{License: []pomLicense{{Name: pm.License.Name, Url: pm.License.Url, Distribution: pm.License.Distribution}}},
		Developers:     pomDevelopers{Developer: []pomDeveloper{{Id: pm.Developer.Id, Name: pm.Developer.Name, Email: pm.Developer.Email}}},
		Scm: pomScm{
			Connection:          pm.ScmConnectionUrl,
			DeveloperConnection: pm.ScmDeveloperConnectionUrl,
			Url:                 pm.ScmRepoUrl,
		},
	}
	for _, dependency := range pm.Dependencies {
		project.Dependencies.Dependency = append(project.Dependencies.Dependency, pomDependency(dependency))
	}
	content, err := xml.MarshalIndent(project, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(content, '\n')...), nil
}

type mavenMetadata struct {
	XMLName    xml.Name          `xml:"metadata"`
	GroupId    string            `xml:"groupId"`
	ArtifactId string            `xml:"artifactId"`
	Versioning mavenMetaVersions `xml:"versioning"`
}

type mavenMetaVersions struct {
	Latest      string   `xml:"latest"`
	Release     string   `xml:"release,omitempty"`
	Versions    []string `xml:"versions>version"`
	LastUpdated string   `xml:"lastUpdated"`
}

// ToMavenMetadata renders the artifact-level maven-metadata.xml listing this coordinate's version.
// lastUpdated uses the 'yyyyMMddHHmmss' layout.
func (pc PackageCoordinate) ToMavenMetadata(lastUpdated string) ([]byte, error) {
	metadata := mavenMetadata{
		GroupId:    pc.GroupId,
		ArtifactId: pc.ArtifactId,
		Versioning: mavenMetaVersions{
			Latest:      pc.Version,
			Versions:    []string{pc.Version},
			LastUpdated: lastUpdated,
		},
	}
	if ChannelOf(pc.Version) == Release {
		metadata.Versioning.Release = pc.Version
	}
	return marshalMavenMetadata(metadata)
}

// MergeMavenMetadata adds the versions of the staged metadata to the repository's metadata of the same artifact.
// The staged latest and lastUpdated values win. The repository's release is kept unless the staged metadata has one.
func MergeMavenMetadata(repository, staged []byte) ([]byte, error) {
	var current, update mavenMetadata
	if err := xml.Unmarshal(repository, &current); err != nil {
		return nil, fmt.Errorf("failed parsing the repository's maven-metadata.xml: %w", err)
	}
	if err := xml.Unmarshal(staged, &update); err != nil {
		return nil, fmt.Errorf("failed parsing the staged maven-metadata.xml: %w", err)
	}
	if current.GroupId != update.GroupId || current.ArtifactId != update.ArtifactId {
		return nil, fmt.Errorf("the repository's maven-metadata.xml describes '%s:%s' instead of '%s:%s'",
			current.GroupId, current.ArtifactId, update.GroupId, update.ArtifactId)
	}
	versions := slices.Clone(current.Versioning.Versions)
	for _, version := range update.Versioning.Versions {
		if !slices.Contains(versions, version) {
			versions = append(versions, version)
		}
	}
	update.Versioning.Versions = versions
	if update.Versioning.Release == "" {
		update.Versioning.Release = current.Versioning.Release
	}
	return marshalMavenMetadata(update)
}

func marshalMavenMetadata(metadata mavenMetadata) ([]byte, error) {
	content, err := xml.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(content, '\n')...), nil
}
