package publish

import (
	"context"
	"errors"
	"sync"

	"github.com/jfrog/gofrog/parallel"
	"github.com/jfrog/release-publisher-go/deploy"
	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/utils"
	"github.com/jfrog/release-publisher-go/utils/gpgutils"
)

type PublishService struct {
	logger    utils.Log
	signer    Signer
	uploaders map[entities.DeployerKind]Uploader
}

// NewPublishService returns a service signing with gpg and deploying over HTTP.
func NewPublishService() *PublishService {
	return &PublishService{
		logger: &utils.NullLog{},
		uploaders: map[entities.DeployerKind]Uploader{
			entities.ReleaseDeployer:  deploy.NewReleaseUploader(),
			entities.SnapshotDeployer: deploy.NewSnapshotUploader(),
		},
	}
}

func (ps *PublishService) SetLogger(logger utils.Log) {
	ps.logger = logger
}

// SetSigner replaces the gpg signer built from each config's signing policy.
func (ps *PublishService) SetSigner(signer Signer) {
	ps.signer = signer
}

func (ps *PublishService) SetUploader(kind entities.DeployerKind, uploader Uploader) {
	ps.uploaders[kind] = uploader
}

// NewPublication resolves and assembles a publish run. Nothing is written to disk yet.
func (ps *PublishService) NewPublication(config *PublishConfig) (*Publication, error) {
	signer := ps.signer
	if signer == nil && config != nil && config.Signing.Enabled {
		signer = gpgutils.NewGpgSigner(config.Signing.ExecutablePath, config.Signing.Homedir)
	}
	return newPublication(config, signer, ps.uploaders, ps.logger)
}

// PublishAll runs independent publications concurrently, at most threads at a time.
// Results keep the order of configs, a failed run leaves a nil entry and its error is joined into the returned error.
func (ps *PublishService) PublishAll(ctx context.Context, configs []*PublishConfig, threads int) ([]*Result, error) {
	if threads < 1 {
		threads = 1
	}
	results := make([]*Result, len(configs))
	var errorsMutex sync.Mutex
	var publishErrors []error
	collectError := func(err error) {
		errorsMutex.Lock()
		defer errorsMutex.Unlock()
		publishErrors = append(publishErrors, err)
	}

	producerConsumer := parallel.NewBounedRunner(threads, false)
	go func() {
		defer producerConsumer.Done()
		for i, config := range configs {
			index, publishConfig := i, config
			if _, err := producerConsumer.AddTaskWithError(func(threadId int) error {
				publication, err := ps.NewPublication(publishConfig)
				if err != nil {
					return err
				}
				results[index], err = publication.Publish(ctx)
				return err
			}, collectError); err != nil {
				collectError(err)
				return
			}
		}
	}()
	producerConsumer.Run()
	return results, errors.Join(publishErrors...)
}
