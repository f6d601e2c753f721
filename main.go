package main

import (
	"os"

	"github.com/jfrog/release-publisher-go/cli"
	"github.com/jfrog/release-publisher-go/utils"
	clitool "github.com/urfave/cli/v2"
)

var log utils.Log

func main() {
	log = utils.NewDefaultLogger(getCliLogLevel())
	app := &clitool.App{
		Name:     "rp",
		Usage:    "stage, sign and publish library releases to Maven repositories",
		Commands: cli.GetCommands(log),
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func getCliLogLevel() utils.LevelType {
	switch os.Getenv("RELEASE_PUBLISHER_LOG_LEVEL") {
	case "ERROR":
		return utils.ERROR
	case "WARN":
		return utils.WARN
	case "DEBUG":
		return utils.DEBUG
	default:
		return utils.INFO
	}
}
