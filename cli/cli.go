package cli

import (
	"encoding/json"
	"fmt"
	"io"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/jfrog/release-publisher-go/entities"
	"github.com/jfrog/release-publisher-go/publish"
	"github.com/jfrog/release-publisher-go/utils"
	"github.com/jfrog/release-publisher-go/utils/cienv"
	"github.com/pkg/errors"
	clitool "github.com/urfave/cli/v2"
)

const (
	configFlag     = "config"
	versionFlag    = "version"
	groupIdFlag    = "group-id"
	artifactIdFlag = "artifact-id"
	stagingDirFlag = "staging-dir"
	dryRunFlag     = "dry-run"
	envFileFlag    = "env-file"
	threadsFlag    = "threads"
	formatFlag     = "format"

	defaultConfigFile = "publish.toml"
	cycloneDxXml      = "cyclonedx/xml"
	cycloneDxJson     = "cyclonedx/json"
)

func GetCommands(logger utils.Log) []*clitool.Command {
	configFlags := []clitool.Flag{
		&clitool.StringSliceFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage:   fmt.Sprintf("[Default: %s] Publish configuration files. Each one is a separate publication.` `", defaultConfigFile),
		},
		&clitool.StringFlag{
			Name:  versionFlag,
			Usage: "[Optional] Overrides the version of the publication.` `",
		},
		&clitool.StringFlag{
			Name:  groupIdFlag,
			Usage: "[Optional] Overrides the group ID of the publication.` `",
		},
		&clitool.StringFlag{
			Name:  artifactIdFlag,
			Usage: "[Optional] Overrides the artifact ID of the publication.` `",
		},
	}
	stagingFlag := &clitool.StringFlag{
		Name:  stagingDirFlag,
		Usage: fmt.Sprintf("[Default: %s] Directory under which each run creates its staging directory.` `", publish.DefaultStagingDir),
	}

	return []*clitool.Command{
		{
			Name:      "publish",
			Usage:     "Stage, sign and deploy a library publication",
			UsageText: "rp publish [command options]",
			Flags: append(configFlags, stagingFlag,
				&clitool.BoolFlag{
					Name:  dryRunFlag,
					Usage: "[Default: false] Stage and sign without deploying.` `",
				},
				&clitool.StringFlag{
					Name:  envFileFlag,
					Usage: "[Optional] File to which the version and group ID are appended after a successful publish. Defaults to the CI provider's env file, such as $GITHUB_ENV.` `",
				},
				&clitool.IntFlag{
					Name:  threadsFlag,
					Value: 3,
					Usage: "[Default: 3] Number of publications deployed in parallel.` `",
				},
			),
			Action: func(context *clitool.Context) error {
				configs, err := loadConfigs(context)
				if err != nil {
					return err
				}
				service := publish.NewPublishService()
				service.SetLogger(logger)
				results, publishErr := service.PublishAll(context.Context, configs, context.Int(threadsFlag))
				exportErr := exportEnv(context, logger, results)
				printErr := printJson(context.App.Writer, successful(results))
				if publishErr != nil {
					return publishErr
				}
				if exportErr != nil {
					return exportErr
				}
				return printErr
			},
		},
		{
			Name:      "pom",
			Usage:     "Print the POM generated for a publication",
			UsageText: "rp pom [command options]",
			Flags:     configFlags,
			Action: func(context *clitool.Context) error {
				publication, err := singlePublication(context, logger)
				if err != nil {
					return err
				}
				pom, err := publication.Manifest().ToPom()
				if err != nil {
					return err
				}
				_, err = context.App.Writer.Write(pom)
				return err
			},
		},
		{
			Name:      "sbom",
			Usage:     "Print a CycloneDX SBOM of the publication's declared dependencies",
			UsageText: "rp sbom [command options]",
			Flags: append(configFlags, &clitool.StringFlag{
				Name:  formatFlag,
				Value: cycloneDxJson,
				Usage: fmt.Sprintf("[Default: %s] Supported values are '%s' and '%s'.` `", cycloneDxJson, cycloneDxJson, cycloneDxXml),
			}),
			Action: func(context *clitool.Context) error {
				publication, err := singlePublication(context, logger)
				if err != nil {
					return err
				}
				return printBom(context.App.Writer, publication.Manifest(), context.String(formatFlag))
			},
		},
		{
			Name:      "resolve",
			Usage:     "Print the coordinate, channel and CI exports of a publication",
			UsageText: "rp resolve [command options]",
			Flags:     configFlags,
			Action: func(context *clitool.Context) error {
				publication, err := singlePublication(context, logger)
				if err != nil {
					return err
				}
				coordinate := publication.Coordinate()
				return printJson(context.App.Writer, struct {
					Coordinate     entities.PackageCoordinate `json:"coordinate"`
					Channel        entities.Channel           `json:"channel"`
					RepositoryPath string                     `json:"repositoryPath"`
					Exports        []entities.EnvVar          `json:"exports"`
				}{coordinate, publication.Channel(), coordinate.RepositoryPath(), (&publish.Result{Coordinate: coordinate}).EnvExports()})
			},
		},
		{
			Name:      "clean",
			Usage:     "Remove staging directories left behind for more than a day",
			UsageText: "rp clean [command options]",
			Flags:     []clitool.Flag{stagingFlag},
			Action: func(context *clitool.Context) error {
				stagingDir := context.String(stagingDirFlag)
				if stagingDir == "" {
					stagingDir = publish.DefaultStagingDir
				}
				removed, err := utils.CleanOldStagingDirs(stagingDir)
				for _, dir := range removed {
					logger.Info("Removed ", dir)
				}
				return errors.Wrap(err, "failed cleaning old staging directories")
			},
		},
	}
}

// loadConfigs reads every config file and applies the command line overrides to each of them.
func loadConfigs(context *clitool.Context) ([]*publish.PublishConfig, error) {
	paths := context.StringSlice(configFlag)
	if len(paths) == 0 {
		paths = []string{defaultConfigFile}
	}
	var configs []*publish.PublishConfig
	for _, path := range paths {
		config, err := publish.LoadPublishConfig(path)
		if err != nil {
			return nil, err
		}
		applyOverrides(context, config)
		configs = append(configs, config)
	}
	return configs, nil
}

func applyOverrides(context *clitool.Context, config *publish.PublishConfig) {
	overrides := []struct {
		flag  string
		field *string
	}{
		{versionFlag, &config.Version},
		{groupIdFlag, &config.GroupId},
		{artifactIdFlag, &config.ArtifactId},
		{stagingDirFlag, &config.Staging.Dir},
	}
	for _, override := range overrides {
		if context.IsSet(override.flag) {
			*override.field = context.String(override.flag)
		}
	}
	if context.Bool(dryRunFlag) {
		config.DryRun = true
	}
	if vcsInfo := cienv.GetCIVcsInfo(); config.Scm.RepoName == "" && !vcsInfo.IsEmpty() {
		config.Scm.RepoName = vcsInfo.RepoName()
	}
}

func singlePublication(context *clitool.Context, logger utils.Log) (*publish.Publication, error) {
	configs, err := loadConfigs(context)
	if err != nil {
		return nil, err
	}
	if len(configs) != 1 {
		return nil, errors.Errorf("expected a single publish configuration, got %d", len(configs))
	}
	service := publish.NewPublishService()
	service.SetLogger(logger)
	return service.NewPublication(configs[0])
}

// exportEnv appends the CI exports of every successful publication to the env file.
func exportEnv(context *clitool.Context, logger utils.Log, results []*publish.Result) error {
	envFile := context.String(envFileFlag)
	if envFile == "" {
		envFile = cienv.GetEnvFile()
	}
	if envFile == "" {
		if cienv.IsRunningInCI() {
			logger.Debug("The CI provider exposes no env file, skipping the environment exports")
		}
		return nil
	}
	for _, result := range successful(results) {
		if err := cienv.AppendEnvFile(envFile, result.EnvExports()); err != nil {
			return errors.Wrap(err, "failed writing the CI environment exports")
		}
		logger.Debug("Exported ", result.Coordinate.Id(), " to ", envFile)
	}
	return nil
}

func successful(results []*publish.Result) []*publish.Result {
	var succeeded []*publish.Result
	for _, result := range results {
		if result != nil {
			succeeded = append(succeeded, result)
		}
	}
	return succeeded
}

func printBom(writer io.Writer, manifest *entities.PackageManifest, format string) error {
	var fileFormat cdx.BOMFileFormat
	switch format {
	case cycloneDxJson:
		fileFormat = cdx.BOMFileFormatJSON
	case cycloneDxXml:
		fileFormat = cdx.BOMFileFormatXML
	default:
		return fmt.Errorf("'%s' is not a valid value for '%s'", format, formatFlag)
	}
	encoder := cdx.NewBOMEncoder(writer, fileFormat)
	encoder.SetPretty(true)
	return encoder.Encode(manifest.ToCycloneDxBom())
}

func printJson(writer io.Writer, value interface{}) error {
	content, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(writer, string(content))
	return err
}
