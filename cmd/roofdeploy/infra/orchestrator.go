package infra

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/exp/slog"

	"github.com/bantoinese83/roofdeploy/pkg/notify"
)

// Step names the orchestrator operation that was running when a failure
// occurred.
type Step string

const (
	StepPrerequisites  Step = "check prerequisites"
	StepBuildImages    Step = "build and push images"
	StepMigrate        Step = "run migrations"
	StepUpdateServices Step = "update services"
	StepWaitForStable  Step = "wait for services stable"
	StepRollback       Step = "rollback"
)

// State is the position of a deployment run in its lifecycle.
type State string

const (
	StateStart            State = "START"
	StatePrereqsOK        State = "PREREQS_OK"
	StateImagesPushed     State = "IMAGES_PUSHED"
	StateMigrated         State = "MIGRATED"
	StateServicesUpdating State = "SERVICES_UPDATING"
	StateStable           State = "STABLE"
	StateRollingBack      State = "ROLLING_BACK"
	StateRolledBack       State = "ROLLED_BACK"
	StateAborted          State = "ABORTED"
)

// Outcome is the terminal result of a deployment run. When the run failed it
// records the step that failed and, separately, any errors hit while rolling
// back so the compensating failure never hides the original one.
type Outcome struct {
	State             State
	FailedStep        Step
	Err               error
	RollbackAttempted bool
	RollbackErr       *RollbackError
}

func (o *Outcome) Success() bool { return o.State == StateStable }

// ImageBuilder builds a target's image for a revision and pushes it to the
// registry, returning the pushed image URI.
type ImageBuilder interface {
	BuildAndPush(ctx context.Context, target ServiceTarget, revision string) (string, error)
}

// Orchestrator drives a single environment's deployment to completion or
// triggers a compensating rollback. Each cloud operation is attempted exactly
// once; there is no retry of individual steps.
type Orchestrator struct {
	dctx     DeploymentContext
	ecs      ECSAPI
	sts      STSAPI
	builder  ImageBuilder
	notifier notify.Notifier

	lookPath   func(string) (string, error)
	newBackoff func() backoff.BackOff

	// images built during this run, keyed by target name
	images map[string]string
}

func NewOrchestrator(dctx DeploymentContext, ecsClient ECSAPI, stsClient STSAPI, builder ImageBuilder, notifier notify.Notifier) *Orchestrator {
	return &Orchestrator{
		dctx:       dctx,
		ecs:        ecsClient,
		sts:        stsClient,
		builder:    builder,
		notifier:   notifier,
		lookPath:   exec.LookPath,
		newBackoff: defaultMigrationBackoff,
	}
}

func defaultMigrationBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 10 * time.Minute
	return bo
}

// Deploy runs the full sequence: prerequisites, image build and push,
// migrations, service updates, stability wait. Failures before any live
// mutation abort the run; failures after images are pushed trigger a rollback
// of every target. The returned error is non-nil whenever the outcome is not
// STABLE.
func (o *Orchestrator) Deploy(ctx context.Context) (*Outcome, error) {
	out := &Outcome{State: StateStart}

	if err := o.CheckPrerequisites(ctx); err != nil {
		return o.abort(out, StepPrerequisites, err)
	}
	out.State = StatePrereqsOK

	if err := o.BuildAndPushImages(ctx); err != nil {
		return o.abort(out, StepBuildImages, err)
	}
	out.State = StateImagesPushed

	// Every failure from here on is compensated by rolling back.
	if err := o.RunMigrations(ctx); err != nil {
		return o.rollbackAfter(ctx, out, StepMigrate, err)
	}
	if o.dctx.Environment == EnvProduction {
		out.State = StateMigrated
	}

	out.State = StateServicesUpdating
	if err := o.UpdateServices(ctx); err != nil {
		return o.rollbackAfter(ctx, out, StepUpdateServices, err)
	}

	if err := o.WaitForStable(ctx); err != nil {
		return o.rollbackAfter(ctx, out, StepWaitForStable, err)
	}
	out.State = StateStable

	slog.Info("deployment complete", "environment", o.dctx.Environment, "revision", o.dctx.Revision)
	if err := o.notifier.Notify(ctx, fmt.Sprintf("Deployed roofing platform %s at revision %s", o.dctx.Environment, o.dctx.Revision)); err != nil {
		slog.Warn("could not send deployment notification", "reason", err.Error())
	}

	return out, nil
}

func (o *Orchestrator) abort(out *Outcome, step Step, err error) (*Outcome, error) {
	out.State = StateAborted
	out.FailedStep = step
	out.Err = err
	return out, err
}

func (o *Orchestrator) rollbackAfter(ctx context.Context, out *Outcome, step Step, err error) (*Outcome, error) {
	derr := &DeploymentError{Step: step, Err: err}
	out.FailedStep = step
	out.Err = derr
	out.State = StateRollingBack
	out.RollbackAttempted = true

	if rerr := o.Rollback(ctx); rerr != nil {
		var rbe *RollbackError
		if errors.As(rerr, &rbe) {
			out.RollbackErr = rbe
		} else {
			out.RollbackErr = &RollbackError{Errs: []error{rerr}}
		}
	}
	out.State = StateRolledBack

	if err := o.notifier.Notify(ctx, fmt.Sprintf("Deployment of roofing platform %s failed at %q, rolled back", o.dctx.Environment, step)); err != nil {
		slog.Warn("could not send rollback notification", "reason", err.Error())
	}

	return out, derr
}

// CheckPrerequisites verifies the required CLI tools and cloud credentials
// before any mutating action.
func (o *Orchestrator) CheckPrerequisites(ctx context.Context) error {
	logger := slog.With("step", string(StepPrerequisites))

	for _, tool := range []string{"docker", "aws", "git"} {
		if _, err := o.lookPath(tool); err != nil {
			return &PrerequisiteError{Missing: tool, Err: err}
		}
		logger.Debug("found required tool", "tool", tool)
	}

	if _, err := o.sts.GetCallerIdentity(&sts.GetCallerIdentityInput{}); err != nil {
		return &PrerequisiteError{Missing: "aws credentials", Err: err}
	}

	logger.Info("prerequisites satisfied")
	return nil
}

// BuildAndPushImages builds one image per target tagged with the run's
// revision and pushes it to the registry.
func (o *Orchestrator) BuildAndPushImages(ctx context.Context) error {
	for _, t := range o.dctx.Targets {
		slog.Info("building image", "component", "target "+t.Name, "revision", o.dctx.Revision)
		image, err := o.builder.BuildAndPush(ctx, t, o.dctx.Revision)
		if err != nil {
			return &BuildError{Target: t.Name, Err: err}
		}
		if o.images == nil {
			o.images = make(map[string]string)
		}
		o.images[t.Name] = image
		slog.Debug("using image", "component", "target "+t.Name, "image", image)
	}
	return nil
}

// UpdateServices re-deploys every target: the live task definition is first
// snapshotted into the target's -previous family so rollback has a known
// restore point, then a new revision carrying the freshly pushed image is
// registered and the service is pointed at it.
func (o *Orchestrator) UpdateServices(ctx context.Context) error {
	for _, t := range o.dctx.Targets {
		if err := o.updateService(ctx, t); err != nil {
			return fmt.Errorf("update service %s: %w", t.ServiceName, err)
		}
	}
	return nil
}

func (o *Orchestrator) updateService(ctx context.Context, t ServiceTarget) error {
	logger := slog.With("component", "target "+t.Name)

	current, err := o.currentTaskDefinition(t)
	if err != nil {
		return err
	}

	logger.Info("snapshotting task definition", "family", t.PreviousFamily())
	if _, err := o.ecs.RegisterTaskDefinition(registerInputFromDefinition(current, t.PreviousFamily())); err != nil {
		return fmt.Errorf("register previous task definition: %w", err)
	}

	image, ok := o.images[t.Name]
	if !ok {
		image = t.ImageURI(o.dctx.RegistryURL, o.dctx.Revision)
	}

	next := registerInputFromDefinition(current, t.TaskFamily)
	next.ContainerDefinitions, err = containersWithImage(next.ContainerDefinitions, t.Name, image)
	if err != nil {
		return err
	}

	out, err := o.ecs.RegisterTaskDefinition(next)
	if err != nil {
		return fmt.Errorf("register task definition: %w", err)
	}
	if out == nil || out.TaskDefinition == nil || out.TaskDefinition.TaskDefinitionArn == nil {
		return fmt.Errorf("no task definition arn found")
	}

	logger.Info("updating service", "task_definition", *out.TaskDefinition.TaskDefinitionArn)
	_, err = o.ecs.UpdateService(&ecs.UpdateServiceInput{
		Cluster:            aws.String(o.dctx.ClusterName),
		Service:            aws.String(t.ServiceName),
		TaskDefinition:     out.TaskDefinition.TaskDefinitionArn,
		ForceNewDeployment: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}

	return nil
}

func (o *Orchestrator) currentTaskDefinition(t ServiceTarget) (*ecs.TaskDefinition, error) {
	out, err := o.ecs.DescribeServices(&ecs.DescribeServicesInput{
		Cluster:  aws.String(o.dctx.ClusterName),
		Services: []*string{aws.String(t.ServiceName)},
	})
	if err != nil {
		return nil, fmt.Errorf("describe services: %w", err)
	}

	if len(out.Failures) > 0 {
		for _, f := range out.Failures {
			slog.Warn("describe services failure", "component", "target "+t.Name, "arn", dstr(f.Arn), "detail", dstr(f.Detail), "reason", dstr(f.Reason))
		}
		return nil, fmt.Errorf("failed to describe service %s", t.ServiceName)
	}

	if len(out.Services) != 1 {
		return nil, fmt.Errorf("unexpected number of services: %d", len(out.Services))
	}

	if out.Services[0] == nil || out.Services[0].TaskDefinition == nil {
		return nil, fmt.Errorf("service %s has no task definition", t.ServiceName)
	}

	outtd, err := o.ecs.DescribeTaskDefinition(&ecs.DescribeTaskDefinitionInput{
		TaskDefinition: out.Services[0].TaskDefinition,
	})
	if err != nil {
		return nil, fmt.Errorf("describe task definition: %w", err)
	}

	if outtd == nil || outtd.TaskDefinition == nil {
		return nil, fmt.Errorf("no task definition found for %s", t.ServiceName)
	}

	return outtd.TaskDefinition, nil
}

// WaitForStable blocks until the control plane reports every target's service
// stable. A failure here triggers the compensating rollback.
func (o *Orchestrator) WaitForStable(ctx context.Context) error {
	names := make([]*string, 0, len(o.dctx.Targets))
	for _, t := range o.dctx.Targets {
		names = append(names, aws.String(t.ServiceName))
	}

	slog.Info("waiting for services to stabilize", "cluster", o.dctx.ClusterName)
	if err := o.ecs.WaitUntilServicesStableWithContext(ctx, &ecs.DescribeServicesInput{
		Cluster:  aws.String(o.dctx.ClusterName),
		Services: names,
	}); err != nil {
		return fmt.Errorf("wait for services stable: %w", err)
	}

	return nil
}
