package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/exp/slog"
)

var errMigrationRunning = errors.New("migration task still running")

// RunMigrations launches each target's migration command as a one-off task
// and polls until the task stops. Migrations only run against production; in
// every other environment this is a no-op.
func (o *Orchestrator) RunMigrations(ctx context.Context) error {
	if o.dctx.Environment != EnvProduction {
		slog.Info("skipping migrations", "environment", o.dctx.Environment)
		return nil
	}

	for _, t := range o.dctx.Targets {
		if len(t.MigrationCommand) == 0 {
			continue
		}
		if err := o.runMigration(ctx, t); err != nil {
			return err
		}
	}

	return nil
}

func (o *Orchestrator) runMigration(ctx context.Context, t ServiceTarget) error {
	logger := slog.With("component", "target "+t.Name, "step", string(StepMigrate))

	cmd := make([]*string, 0, len(t.MigrationCommand))
	for _, c := range t.MigrationCommand {
		cmd = append(cmd, aws.String(c))
	}

	logger.Info("starting migration task", "family", t.TaskFamily)
	out, err := o.ecs.RunTask(&ecs.RunTaskInput{
		Cluster:        aws.String(o.dctx.ClusterName),
		Count:          aws.Int64(1),
		TaskDefinition: aws.String(t.TaskFamily),
		Group:          aws.String("migrations"),
		StartedBy:      aws.String("roofdeploy"),
		Overrides: &ecs.TaskOverride{
			ContainerOverrides: []*ecs.ContainerOverride{
				{
					Name:    aws.String(t.Name),
					Command: cmd,
				},
			},
		},
	})
	if err != nil {
		return &MigrationError{Err: fmt.Errorf("run task: %w", err)}
	}

	if out == nil {
		return &MigrationError{Err: fmt.Errorf("no run task output found")}
	}

	if len(out.Failures) > 0 {
		for _, f := range out.Failures {
			logger.Warn("run task failure", "arn", dstr(f.Arn), "detail", dstr(f.Detail), "reason", dstr(f.Reason))
		}
		return &MigrationError{Err: fmt.Errorf("run task returned failures")}
	}

	if len(out.Tasks) != 1 || out.Tasks[0] == nil || out.Tasks[0].TaskArn == nil {
		return &MigrationError{Err: fmt.Errorf("unexpected number of tasks: %d", len(out.Tasks))}
	}

	taskArn := *out.Tasks[0].TaskArn
	logger.Debug("migration task started", "task_arn", taskArn)

	return o.waitForMigration(ctx, t, taskArn)
}

// waitForMigration polls the task status with exponential backoff until the
// task stops, the polling budget is exhausted, or the context is cancelled.
// Exhaustion surfaces as ErrMigrationTimeout, distinct from a task that
// stopped with a non-zero exit code.
func (o *Orchestrator) waitForMigration(ctx context.Context, t ServiceTarget, taskArn string) error {
	logger := slog.With("component", "target "+t.Name, "step", string(StepMigrate))

	op := func() error {
		out, err := o.ecs.DescribeTasks(&ecs.DescribeTasksInput{
			Cluster: aws.String(o.dctx.ClusterName),
			Tasks:   []*string{aws.String(taskArn)},
		})
		if err != nil {
			return backoff.Permanent(fmt.Errorf("describe tasks: %w", err))
		}

		for _, task := range out.Tasks {
			if task == nil || aws.StringValue(task.TaskArn) != taskArn {
				continue
			}

			if aws.StringValue(task.LastStatus) != "STOPPED" {
				logger.Debug("still waiting for migration task", "status", aws.StringValue(task.LastStatus))
				return errMigrationRunning
			}

			for _, c := range task.Containers {
				if aws.StringValue(c.Name) != t.Name {
					continue
				}
				if aws.Int64Value(c.ExitCode) != 0 {
					return backoff.Permanent(&MigrationError{TaskArn: taskArn, ExitCode: aws.Int64Value(c.ExitCode)})
				}
				return nil
			}

			return backoff.Permanent(&MigrationError{TaskArn: taskArn, Err: fmt.Errorf("container %s not found in stopped task", t.Name)})
		}

		return errMigrationRunning
	}

	err := backoff.Retry(op, backoff.WithContext(o.newBackoff(), ctx))
	if err == nil {
		logger.Info("migration task completed")
		return nil
	}

	if errors.Is(err, errMigrationRunning) {
		return &MigrationError{TaskArn: taskArn, Err: ErrMigrationTimeout}
	}

	var merr *MigrationError
	if errors.As(err, &merr) {
		return merr
	}

	return &MigrationError{TaskArn: taskArn, Err: err}
}
