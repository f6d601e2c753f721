package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/utils"
)

const (
	ProjectVersionEnv     = "JRELEASER_PROJECT_VERSION"
	ProjectJavaGroupIdEnv = "JRELEASER_PROJECT_JAVA_GROUP_ID"
)

type Stage string

const (
	ResolveStage  Stage = "resolve"
	AssembleStage Stage = "assemble"
	StagingStage  Stage = "stage"
	SignStage     Stage = "sign"
	SelectStage   Stage = "select"
	UploadStage   Stage = "upload"
)

// StageError names the pipeline stage that failed. The typed cause stays reachable with errors.As.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("publish %s stage failed: %s", e.Stage, e.Err.Error())
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Uploader transfers a deployment request to its remote repository.
type Uploader interface {
	Upload(ctx context.Context, request *entities.DeploymentRequest) (*entities.DeploymentResult, error)
}

// Publication is one publish run. The coordinate and manifest are resolved when it is created,
// so configuration errors surface before any file is staged or signed.
type Publication struct {
	config     PublishConfig
	coordinate entities.PackageCoordinate
	channel    entities.Channel
	manifest   *entities.PackageManifest
	signer     Signer
	uploaders  map[entities.DeployerKind]Uploader
	logger     utils.Log
}

// Result holds everything a publish run produced. Deployment is nil on dry runs.
type Result struct {
	Coordinate entities.PackageCoordinate  `json:"coordinate"`
	Channel    entities.Channel            `json:"channel"`
	Manifest   *entities.PackageManifest   `json:"manifest"`
	Staging    *entities.StagingLocation   `json:"staging"`
	Signatures entities.SignatureSet       `json:"signatures"`
	Request    *entities.DeploymentRequest `json:"request"`
	Deployment *entities.DeploymentResult  `json:"deployment,omitempty"`
}

// EnvExports returns the variables a CI job may export after a successful publish, in the order they are written.
func (r *Result) EnvExports() []entities.EnvVar {
	return []entities.EnvVar{
		{Key: ProjectVersionEnv, Value: r.Coordinate.Version},
		{Key: ProjectJavaGroupIdEnv, Value: r.Coordinate.GroupId},
	}
}

func newPublication(config *PublishConfig, signer Signer, uploaders map[entities.DeployerKind]Uploader, logger utils.Log) (*Publication, error) {
	if config == nil {
		return nil, &StageError{Stage: ResolveStage, Err: &utils.IncompleteConfigError{}}
	}
	coordinate, channel, err := ResolveCoordinate(config.Version, config.GroupId, config.ArtifactId)
	if err != nil {
		return nil, &StageError{Stage: ResolveStage, Err: err}
	}
	manifest, err := AssembleManifest(coordinate, config)
	if err != nil {
		return nil, &StageError{Stage: AssembleStage, Err: err}
	}
	return &Publication{
		config:     config.withDefaults(),
		coordinate: coordinate,
		channel:    channel,
		manifest:   manifest,
		signer:     signer,
		uploaders:  uploaders,
		logger:     logger,
	}, nil
}

func (p *Publication) Coordinate() entities.PackageCoordinate {
	return p.coordinate
}

func (p *Publication) Channel() entities.Channel {
	return p.channel
}

func (p *Publication) Manifest() *entities.PackageManifest {
	return p.manifest
}

// Publish stages, signs and deploys the publication, strictly in this order.
// The staging directory is left in place once staging succeeded.
func (p *Publication) Publish(ctx context.Context) (*Result, error) {
	result := &Result{Coordinate: p.coordinate, Channel: p.channel, Manifest: p.manifest}
	p.logger.Info(fmt.Sprintf("Publishing %s to the %s channel", p.coordinate.Id(), p.channel))

	artifacts, err := BuildArtifactSet(p.config.Artifacts)
	if err != nil {
		return nil, &StageError{Stage: StagingStage, Err: err}
	}
	pom, err := p.manifest.ToPom()
	if err != nil {
		return nil, &StageError{Stage: StagingStage, Err: err}
	}
	result.Staging, err = NewStagingArea(p.config.Staging.Dir, p.logger).Stage(p.coordinate, artifacts, pom)
	if err != nil {
		return nil, &StageError{Stage: StagingStage, Err: err}
	}

	gate := NewSigningGate(p.signer, time.Duration(p.config.Timeouts.Signing), p.logger)
	result.Signatures, err = gate.Sign(ctx, result.Staging.Artifacts, p.config.Signing)
	if err != nil {
		return nil, &StageError{Stage: SignStage, Err: err}
	}

	result.Request, err = SelectDeployer(p.channel, p.manifest, result.Staging, result.Signatures, p.config.Deploy)
	if err != nil {
		return nil, &StageError{Stage: SelectStage, Err: err}
	}

	if p.config.DryRun {
		p.logger.Info(fmt.Sprintf("Dry run, %d files staged in %s were not deployed", len(result.Request.UploadedFiles()), result.Staging.Path()))
		return result, nil
	}
	result.Deployment, err = p.upload(ctx, result.Request)
	if err != nil {
		return nil, &StageError{Stage: UploadStage, Err: err}
	}
	p.logger.Info(fmt.Sprintf("Published %s to %s", p.coordinate.Id(), result.Deployment.Repository))
	return result, nil
}

func (p *Publication) upload(ctx context.Context, request *entities.DeploymentRequest) (*entities.DeploymentResult, error) {
	uploader, ok := p.uploaders[request.Target.Kind]
	if !ok || uploader == nil {
		return nil, &utils.DeploymentError{Target: string(request.Target.Kind), Cause: fmt.Errorf("no uploader is registered for the %s deployer", request.Target.Kind)}
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(p.config.Timeouts.Upload))
	defer cancel()
	deployment, err := uploader.Upload(ctx, request)
	if err != nil {
		var deploymentErr *utils.DeploymentError
		if !errors.As(err, &deploymentErr) {
			err = &utils.DeploymentError{Target: string(request.Target.Kind), Cause: err}
		}
		return nil, err
	}
	return deployment, nil
}
