package main

import (
	"github.com/urfave/cli/v2"

	"github.com/bantoinese83/roofdeploy/cmd/roofdeploy/infra"
	"github.com/bantoinese83/roofdeploy/pkg/notify"
)

var RollbackCommand = &cli.Command{
	Name:      "rollback",
	Usage:     "Roll every service back to its previous task definition",
	Action:    Rollback,
	ArgsUsage: "[ENVIRONMENT]",
	Flags: flags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "manifest",
				Aliases:     []string{"f"},
				Usage:       "Filename of a deployment manifest. Defaults to the built-in backend and frontend targets.",
				Destination: &rollbackOpts.manifest,
				EnvVars:     []string{envPrefix + "MANIFEST"},
			},
		},
	),
}

var rollbackOpts struct {
	manifest string
}

func Rollback(cc *cli.Context) error {
	ctx := cc.Context
	setupLogging()
	if err := checkEnv(); err != nil {
		return err
	}

	environment, err := environmentArg(cc)
	if err != nil {
		return err
	}

	m, err := loadManifest(rollbackOpts.manifest)
	if err != nil {
		return err
	}

	// The revision is not used when rolling back but the context requires one.
	dctx, err := infra.NewDeploymentContext(environment, commonOpts.region, commonOpts.accountID, "rollback", "", m)
	if err != nil {
		return err
	}

	ecsClient, stsClient, err := infra.NewAWSClients(dctx.Region)
	if err != nil {
		return err
	}

	orch := infra.NewOrchestrator(dctx, ecsClient, stsClient, nil, notify.NewWebhook(""))
	return orch.Rollback(ctx)
}
