package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/bantoinese83/roofdeploy/cmd/roofdeploy/infra"
	"github.com/bantoinese83/roofdeploy/pkg/notify"
)

var StatusCommand = &cli.Command{
	Name:      "status",
	Usage:     "Report on the deployment state of each service",
	Action:    Status,
	ArgsUsage: "[ENVIRONMENT]",
	Flags: flags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "manifest",
				Aliases:     []string{"f"},
				Usage:       "Filename of a deployment manifest. Defaults to the built-in backend and frontend targets.",
				Destination: &statusOpts.manifest,
				EnvVars:     []string{envPrefix + "MANIFEST"},
			},
		},
	),
}

var statusOpts struct {
	manifest string
}

func Status(cc *cli.Context) error {
	ctx := cc.Context
	setupLogging()
	if err := checkEnv(); err != nil {
		return err
	}

	environment, err := environmentArg(cc)
	if err != nil {
		return err
	}

	m, err := loadManifest(statusOpts.manifest)
	if err != nil {
		return err
	}

	dctx, err := infra.NewDeploymentContext(environment, commonOpts.region, commonOpts.accountID, "status", "", m)
	if err != nil {
		return err
	}

	ecsClient, stsClient, err := infra.NewAWSClients(dctx.Region)
	if err != nil {
		return err
	}

	orch := infra.NewOrchestrator(dctx, ecsClient, stsClient, nil, notify.NewWebhook(""))
	statuses, err := orch.ServiceStatuses(ctx)
	if err != nil {
		return err
	}

	allstable := true
	for _, s := range statuses {
		fmt.Printf("Target %q\n", s.Target)
		fmt.Printf("  Status:          %s\n", s.Status)
		fmt.Printf("  Desired tasks:   %d\n", s.DesiredCount)
		fmt.Printf("  Running tasks:   %d\n", s.RunningCount)
		fmt.Printf("  Pending tasks:   %d\n", s.PendingCount)
		fmt.Printf("  Task definition: %s\n", s.TaskDefinition)
		fmt.Println()
		if !s.Stable() {
			allstable = false
		}
	}

	if allstable {
		fmt.Println("All services stable")
	} else {
		fmt.Println("Some services have not stabilized")
	}

	return nil
}
