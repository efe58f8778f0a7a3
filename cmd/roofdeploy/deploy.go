package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/exp/slog"

	"github.com/bantoinese83/roofdeploy/cmd/roofdeploy/build"
	"github.com/bantoinese83/roofdeploy/cmd/roofdeploy/infra"
	"github.com/bantoinese83/roofdeploy/pkg/manifest"
	"github.com/bantoinese83/roofdeploy/pkg/notify"
)

var DeployCommand = &cli.Command{
	Name:      "deploy",
	Usage:     "Deploy the platform to an environment",
	Action:    Deploy,
	ArgsUsage: "[ENVIRONMENT]",
	Flags: flags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "revision",
				Aliases:     []string{"r"},
				Usage:       "Source revision to tag images with. Defaults to the current git commit.",
				Destination: &deployOpts.revision,
				EnvVars:     []string{envPrefix + "REVISION"},
			},
			&cli.StringFlag{
				Name:        "manifest",
				Aliases:     []string{"f"},
				Usage:       "Filename of a deployment manifest. Defaults to the built-in backend and frontend targets.",
				Destination: &deployOpts.manifest,
				EnvVars:     []string{envPrefix + "MANIFEST"},
			},
			&cli.StringFlag{
				Name:        "webhook-url",
				Usage:       "Webhook to notify when a deployment completes. Notifications are skipped when unset.",
				Destination: &deployOpts.webhookURL,
				EnvVars:     []string{envPrefix + "WEBHOOK_URL"},
			},
			&cli.BoolFlag{
				Name:        "skip-build",
				Usage:       "Reuse images already pushed for the revision instead of rebuilding them.",
				Destination: &deployOpts.skipBuild,
				EnvVars:     []string{envPrefix + "SKIP_BUILD"},
			},
		},
	),
}

var deployOpts struct {
	revision   string
	manifest   string
	webhookURL string
	skipBuild  bool
}

func Deploy(cc *cli.Context) error {
	ctx := cc.Context
	setupLogging()
	if err := checkEnv(); err != nil {
		return err
	}

	environment, err := environmentArg(cc)
	if err != nil {
		return err
	}

	revision := deployOpts.revision
	if revision == "" {
		revision, err = build.GitRevision(".")
		if err != nil {
			return fmt.Errorf("determine revision from git: %w", err)
		}
	}

	m, err := loadManifest(deployOpts.manifest)
	if err != nil {
		return err
	}

	dctx, err := infra.NewDeploymentContext(environment, commonOpts.region, commonOpts.accountID, revision, deployOpts.webhookURL, m)
	if err != nil {
		return err
	}

	ecsClient, stsClient, err := infra.NewAWSClients(dctx.Region)
	if err != nil {
		return err
	}

	builder := build.NewBuilder(dctx.Region, dctx.RegistryURL).WithSkipBuild(deployOpts.skipBuild)
	orch := infra.NewOrchestrator(dctx, ecsClient, stsClient, builder, notify.NewWebhook(dctx.WebhookURL))

	out, err := orch.Deploy(ctx)
	if out != nil && out.RollbackErr != nil {
		// Report rollback failures without letting them mask the original error.
		slog.Error("rollback did not fully restore previous task definitions", out.RollbackErr)
	}
	return err
}

func loadManifest(filename string) (*manifest.Manifest, error) {
	if filename == "" {
		return manifest.Default(), nil
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := manifest.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse deployment manifest: %w", err)
	}

	return m, nil
}
