package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/utils"
)

const (
	mavenMetadataFileName = "maven-metadata.xml"
	// Layout of the maven-metadata.xml lastUpdated element.
	lastUpdatedLayout = "20060102150405"
)

// StagingArea lays artifacts out as a Maven repository under a fresh directory per run.
type StagingArea struct {
	baseDir string
	logger  utils.Log
	now     func() time.Time
}

func NewStagingArea(baseDir string, logger utils.Log) *StagingArea {
	if logger == nil {
		logger = &utils.NullLog{}
	}
	return &StagingArea{baseDir: baseDir, logger: logger, now: time.Now}
}

// Stage copies the artifacts and the generated POM into a new run directory and writes their checksum sidecars.
// Snapshot coordinates also get an artifact-level maven-metadata.xml.
// On failure the run directory is removed and a StagingIOError is returned.
func (sa *StagingArea) Stage(coordinate entities.PackageCoordinate, artifacts entities.ArtifactSet, pom []byte) (*entities.StagingLocation, error) {
	if err := artifacts.Validate(); err != nil {
		return nil, &utils.StagingIOError{Artifact: coordinate.Id(), Op: "validate", Cause: err}
	}
	root, err := utils.CreateStagingDir(sa.baseDir)
	if err != nil {
		return nil, &utils.StagingIOError{Artifact: coordinate.Id(), Op: "mkdir", Cause: err}
	}
	location := &entities.StagingLocation{Root: root, Coordinate: coordinate}
	if err = sa.stageFiles(location, artifacts, pom); err != nil {
		if removeErr := utils.RemoveDir(root); removeErr != nil {
			sa.logger.Warn(fmt.Sprintf("Failed removing the staging directory '%s': %s", root, removeErr.Error()))
		}
		return nil, err
	}
	sa.logger.Debug(fmt.Sprintf("Staged %d files of %s in %s", len(location.Artifacts), coordinate.Id(), root))
	return location, nil
}

func (sa *StagingArea) stageFiles(location *entities.StagingLocation, artifacts entities.ArtifactSet, pom []byte) error {
	coordinate := location.Coordinate
	versionDir := location.VersionDir()
	if err := os.MkdirAll(versionDir, 0755); err != nil {
		return &utils.StagingIOError{Artifact: coordinate.Id(), Op: "mkdir", Cause: err}
	}

	stagedNames := map[string]string{}
	for _, artifact := range artifacts {
		fileName := coordinate.FileName(artifact.EffectiveClassifier(), artifact.Extension)
		if previous, exists := stagedNames[fileName]; exists {
			return &utils.StagingIOError{Artifact: artifact.Path, Op: "copy", Cause: fmt.Errorf("'%s' is staged as '%s' as well", previous, fileName)}
		}
		stagedNames[fileName] = artifact.Path
		stagedPath := filepath.Join(versionDir, fileName)
		sa.logger.Debug("Staging ", artifact.Path, " as ", stagedPath)
		exists, err := utils.IsFileExists(artifact.Path, true)
		if err != nil {
			return &utils.StagingIOError{Artifact: artifact.Path, Op: "copy", Cause: err}
		}
		if !exists {
			return &utils.StagingIOError{Artifact: artifact.Path, Op: "copy", Cause: errors.New("the artifact file doesn't exist")}
		}
		if err := utils.CopyFile(stagedPath, artifact.Path); err != nil {
			return &utils.StagingIOError{Artifact: artifact.Path, Op: "copy", Cause: err}
		}
		staged := artifact
		staged.Name = fileName
		staged.Path = stagedPath
		if err := sa.addChecksums(location, &staged); err != nil {
			return err
		}
		location.Artifacts = append(location.Artifacts, staged)
	}

	pomPath := filepath.Join(versionDir, coordinate.FileName("", "pom"))
	if err := os.WriteFile(pomPath, pom, 0644); err != nil {
		return &utils.StagingIOError{Artifact: pomPath, Op: "write", Cause: err}
	}
	pomArtifact := entities.Artifact{Name: filepath.Base(pomPath), Kind: entities.Pom, Path: pomPath, Extension: "pom"}
	if err := sa.addChecksums(location, &pomArtifact); err != nil {
		return err
	}
	location.Artifacts = append(location.Artifacts, pomArtifact)

	if entities.ChannelOf(coordinate.Version) == entities.Snapshot {
		return sa.writeMavenMetadata(location)
	}
	return nil
}

func (sa *StagingArea) addChecksums(location *entities.StagingLocation, artifact *entities.Artifact) error {
	checksums, sidecars, err := utils.WriteChecksumFiles(artifact.Path, utils.SidecarAlgorithms...)
	location.ChecksumFiles = append(location.ChecksumFiles, sidecars...)
	if err != nil {
		return &utils.StagingIOError{Artifact: artifact.Path, Op: "checksum", Cause: err}
	}
	artifact.Checksum = entities.Checksum{
		Md5:    checksums[utils.MD5],
		Sha1:   checksums[utils.SHA1],
		Sha256: checksums[utils.SHA256],
	}
	return nil
}

func (sa *StagingArea) writeMavenMetadata(location *entities.StagingLocation) error {
	content, err := location.Coordinate.ToMavenMetadata(sa.now().UTC().Format(lastUpdatedLayout))
	if err != nil {
		return &utils.StagingIOError{Artifact: mavenMetadataFileName, Op: "render", Cause: err}
	}
	metadataPath := filepath.Join(location.Root, filepath.FromSlash(location.Coordinate.ArtifactDir()), mavenMetadataFileName)
	if err = os.WriteFile(metadataPath, content, 0644); err != nil {
		return &utils.StagingIOError{Artifact: metadataPath, Op: "write", Cause: err}
	}
	location.MetadataFiles = append(location.MetadataFiles, metadataPath)
	_, sidecars, err := utils.WriteChecksumFiles(metadataPath, utils.SidecarAlgorithms...)
	location.MetadataFiles = append(location.MetadataFiles, sidecars...)
	if err != nil {
		return &utils.StagingIOError{Artifact: metadataPath, Op: "checksum", Cause: err}
	}
	return nil
}
