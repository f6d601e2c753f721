package publish

import (
	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/utils"
)

// SelectDeployer picks the single deployer target of the channel and binds it to the staged, signed files.
// It performs no I/O.
func SelectDeployer(channel entities.Channel, manifest *entities.PackageManifest, staging *entities.StagingLocation,
	signatures entities.SignatureSet, targets DeployConfig) (*entities.DeploymentRequest, error) {
	var target entities.DeployerTarget
	switch channel {
	case entities.Release:
		target = releaseTarget(manifest, targets.Release)
	case entities.Snapshot:
		target = snapshotTarget(targets.Snapshot)
	default:
		return nil, &utils.UnsupportedChannelError{Channel: string(channel)}
	}
	return &entities.DeploymentRequest{
		Target:     target,
		Manifest:   manifest,
		Staging:    staging,
		Signatures: signatures,
	}, nil
}

func releaseTarget(manifest *entities.PackageManifest, config ReleaseTargetConfig) entities.DeployerTarget {
	return entities.DeployerTarget{
		Kind:              entities.ReleaseDeployer,
		EndpointUrl:       config.Url,
		Credentials:       config.Credentials,
		Namespace:         manifest.Coordinate.GroupId,
		Checksums:         true,
		SourceJar:         true,
		JavadocJar:        true,
		VerifyPom:         true,
		ApplyCentralRules: true,
		CloseRepository:   true,
		ReleaseRepository: true,
	}
}

func snapshotTarget(config SnapshotTargetConfig) entities.DeployerTarget {
	return entities.DeployerTarget{
		Kind:              entities.SnapshotDeployer,
		EndpointUrl:       config.ReleaseUrl,
		SnapshotUrl:       config.SnapshotUrl,
		Credentials:       config.Credentials,
		Checksums:         true,
		SnapshotSupported: true,
	}
}
