package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slog"
)

const (
	appName   = "roofdeploy"
	envPrefix = "ROOFDEPLOY_"
)

var app = &cli.App{
	Name:        appName,
	Usage:       "deploy the roofing platform to ECS",
	Description: "roofdeploy builds, pushes and deploys the roofing platform services to an ECS environment, rolling back to the previous task definitions when a deployment fails to stabilize",
	Commands: []*cli.Command{
		DeployCommand,
		RollbackCommand,
		StatusCommand,
		ValidateCommand,
	},
	Flags: commonFlags,
}

func main() {
	ctx := context.Background()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func setupLogging() {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelWarn)
	if commonOpts.verbose {
		logLevel.Set(slog.LevelInfo)
	}
	if commonOpts.veryverbose {
		logLevel.Set(slog.LevelDebug)
	}

	if commonOpts.nocolor {
		slog.SetDefault(slog.New(slog.HandlerOptions{Level: logLevel}.NewTextHandler(os.Stdout)))
	} else {
		h := NewConsoleHandler()
		h = h.WithLevel(logLevel.Level())
		slog.SetDefault(slog.New(h))
	}
}

var commonOpts struct {
	region      string
	accountID   string
	verbose     bool
	veryverbose bool
	nocolor     bool
}

var commonFlags = []cli.Flag{
	&cli.StringFlag{
		Name:        "region",
		Usage:       "AWS region the platform runs in",
		Destination: &commonOpts.region,
		EnvVars:     []string{"AWS_REGION"},
	},
	&cli.StringFlag{
		Name:        "account-id",
		Usage:       "AWS account that owns the ECR registry and ECS cluster",
		Destination: &commonOpts.accountID,
		EnvVars:     []string{"AWS_ACCOUNT_ID"},
	},
	&cli.BoolFlag{
		Name:        "verbose",
		Aliases:     []string{"v"},
		Usage:       "Set logging level more verbose to include info level logs",
		Value:       true,
		Destination: &commonOpts.verbose,
		EnvVars:     []string{envPrefix + "VERBOSE"},
	},
	&cli.BoolFlag{
		Name:        "veryverbose",
		Aliases:     []string{"vv"},
		Usage:       "Set logging level very verbose to include debug level logs",
		Value:       false,
		Destination: &commonOpts.veryverbose,
		EnvVars:     []string{envPrefix + "VERY_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:        "nocolor",
		Usage:       "Use plain, machine readable logs",
		Value:       false,
		Destination: &commonOpts.nocolor,
		EnvVars:     []string{envPrefix + "NOCOLOR"},
	},
}

func flags(fs []cli.Flag) []cli.Flag {
	fs = append(fs, commonFlags...)
	return fs
}

func checkEnv() error {
	if commonOpts.region == "" {
		return fmt.Errorf("AWS_REGION should be set to the region the roofing platform is running in")
	}
	if commonOpts.accountID == "" {
		return fmt.Errorf("AWS_ACCOUNT_ID should be set to the account that owns the platform's ECR registry")
	}
	return nil
}

// environmentArg reads the optional positional environment argument,
// defaulting to staging.
func environmentArg(cc *cli.Context) (string, error) {
	switch cc.NArg() {
	case 0:
		return "staging", nil
	case 1:
		return cc.Args().Get(0), nil
	default:
		return "", fmt.Errorf("at most one environment may be supplied")
	}
}
