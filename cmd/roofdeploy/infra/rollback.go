package infra

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	"golang.org/x/exp/slog"
)

// Rollback re-points every service at its -previous task definition family.
// The rollback is all-or-nothing across targets: every target is attempted
// even when an earlier one fails, and the collected failures are returned as
// a single RollbackError.
func (o *Orchestrator) Rollback(ctx context.Context) error {
	var errs []error
	for _, t := range o.dctx.Targets {
		logger := slog.With("component", "target "+t.Name, "step", string(StepRollback))
		if err := o.rollbackTarget(ctx, t); err != nil {
			logger.Error("rollback failed", err)
			errs = append(errs, fmt.Errorf("target %s: %w", t.Name, err))
			continue
		}
		logger.Info("rolled back to previous task definition")
	}

	if len(errs) > 0 {
		return &RollbackError{Errs: errs}
	}
	return nil
}

func (o *Orchestrator) rollbackTarget(ctx context.Context, t ServiceTarget) error {
	arn, err := o.findTaskDefinition(t.PreviousFamily())
	if err != nil {
		return err
	}
	if arn == "" {
		return fmt.Errorf("no active task definition in family %s, nothing to restore", t.PreviousFamily())
	}

	_, err = o.ecs.UpdateService(&ecs.UpdateServiceInput{
		Cluster:            aws.String(o.dctx.ClusterName),
		Service:            aws.String(t.ServiceName),
		TaskDefinition:     aws.String(arn),
		ForceNewDeployment: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}

	return nil
}
