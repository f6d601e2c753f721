package entities

import (
	cdx "github.com/CycloneDX/cyclonedx-go"
)

// ToCycloneDxBom exposes the declared dependency list to SBOM consumers such as registry scanners.
// The published package is the metadata component and every declared dependency is a direct dependency of it.
func (pm *PackageManifest) ToCycloneDxBom() *cdx.BOM {
	rootRef := pm.Coordinate.Id()
	licenses := cdx.Licenses{{License: &cdx.License{Name: pm.License.Name, URL: pm.License.Url}}}
	root := &cdx.Component{
		BOMRef:      rootRef,
		Type:        cdx.ComponentTypeLibrary,
		Group:       pm.Coordinate.GroupId,
		Name:        pm.Coordinate.ArtifactId,
		Version:     pm.Coordinate.Version,
		Description: pm.Description,
		PackageURL:  packageUrl(pm.Coordinate.GroupId, pm.Coordinate.ArtifactId, pm.Coordinate.Version),
		Licenses:    &licenses,
	}
	if pm.ScmRepoUrl != "" {
		root.ExternalReferences = &[]cdx.ExternalReference{{URL: pm.ScmRepoUrl, Type: cdx.ERTypeVCS}}
	}

	components := []cdx.Component{}
	dependsOn := []string{}
	seen := map[string]bool{}
	for _, dependency := range pm.Dependencies {
		ref := dependency.Id()
		// A BOM can't hold two components with the same reference.
		if seen[ref] {
			continue
		}
		seen[ref] = true
		components = append(components, cdx.Component{
			BOMRef:     ref,
			Type:       cdx.ComponentTypeLibrary,
			Group:      dependency.GroupId,
			Name:       dependency.ArtifactId,
			Version:    dependency.Version,
			PackageURL: packageUrl(dependency.GroupId, dependency.ArtifactId, dependency.Version),
		})
		dependsOn = append(dependsOn, ref)
	}

	bom := cdx.NewBOM()
	bom.Metadata = &cdx.Metadata{Component: root}
	bom.Components = &components
	bom.Dependencies = &[]cdx.Dependency{{Ref: rootRef, Dependencies: &dependsOn}}
	return bom
}

func packageUrl(groupId, artifactId, version string) string {
	return "pkg:maven/" + groupId + "/" + artifactId + "@" + version
}
