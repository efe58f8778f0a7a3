package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/cenkalti/backoff/v4"
	"github.com/golang/mock/gomock"

	mock_infra "github.com/bantoinese83/roofdeploy/mock/infra"
	"github.com/bantoinese83/roofdeploy/pkg/manifest"
)

type fakeBuilder struct {
	calls int
	err   error
}

func (b *fakeBuilder) BuildAndPush(ctx context.Context, target ServiceTarget, revision string) (string, error) {
	b.calls++
	if b.err != nil {
		return "", b.err
	}
	return target.ImageURI("123456789012.dkr.ecr.us-east-1.amazonaws.com", revision), nil
}

type fakeNotifier struct {
	texts []string
}

func (n *fakeNotifier) Notify(ctx context.Context, text string) error {
	n.texts = append(n.texts, text)
	return nil
}

func testDeploymentContext(t *testing.T, environment string) DeploymentContext {
	t.Helper()
	dctx, err := NewDeploymentContext(environment, "us-east-1", "123456789012", "abc1234", "", manifest.Default())
	if err != nil {
		t.Fatalf("new deployment context: %v", err)
	}
	return dctx
}

func newTestOrchestrator(dctx DeploymentContext, ecsMock ECSAPI, stsMock STSAPI, builder ImageBuilder, notifier *fakeNotifier) *Orchestrator {
	o := NewOrchestrator(dctx, ecsMock, stsMock, builder, notifier)
	o.lookPath = func(string) (string, error) { return "/usr/local/bin/tool", nil }
	o.newBackoff = func() backoff.BackOff { return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3) }
	return o
}

// stubServiceReads makes describe-service and describe-task-definition behave
// like a live cluster: every service reports a current task definition whose
// single container is named after the target, and every family lookup
// resolves to an active definition.
func stubServiceReads(m *mock_infra.MockECSAPI) {
	m.EXPECT().DescribeServices(gomock.Any()).DoAndReturn(func(in *ecs.DescribeServicesInput) (*ecs.DescribeServicesOutput, error) {
		name := aws.StringValue(in.Services[0])
		return &ecs.DescribeServicesOutput{
			Services: []*ecs.Service{
				{
					ServiceName:    in.Services[0],
					TaskDefinition: aws.String("arn:aws:ecs:us-east-1:123456789012:task-definition/" + name + ":7"),
				},
			},
		}, nil
	}).AnyTimes()

	m.EXPECT().DescribeTaskDefinition(gomock.Any()).DoAndReturn(func(in *ecs.DescribeTaskDefinitionInput) (*ecs.DescribeTaskDefinitionOutput, error) {
		ref := aws.StringValue(in.TaskDefinition)
		arn := ref
		if !strings.HasPrefix(ref, "arn:") {
			arn = "arn:aws:ecs:us-east-1:123456789012:task-definition/" + ref + ":7"
		}
		// derive the container name from the family: roofing-platform-<env>-<target>
		family := strings.TrimSuffix(ref, ":7")
		if i := strings.LastIndex(family, "/"); i >= 0 {
			family = family[i+1:]
		}
		family = strings.TrimSuffix(family, "-previous")
		container := family[strings.LastIndex(family, "-")+1:]

		return &ecs.DescribeTaskDefinitionOutput{
			TaskDefinition: &ecs.TaskDefinition{
				TaskDefinitionArn: aws.String(arn),
				Status:            aws.String(ecs.TaskDefinitionStatusActive),
				Revision:          aws.Int64(7),
				ContainerDefinitions: []*ecs.ContainerDefinition{
					{
						Name:      aws.String(container),
						Image:     aws.String("123456789012.dkr.ecr.us-east-1.amazonaws.com/roofing-platform/" + container + ":old"),
						Essential: aws.Bool(true),
					},
				},
			},
		}, nil
	}).AnyTimes()
}

func stubRegisters(m *mock_infra.MockECSAPI, registered *[]*ecs.RegisterTaskDefinitionInput) {
	m.EXPECT().RegisterTaskDefinition(gomock.Any()).DoAndReturn(func(in *ecs.RegisterTaskDefinitionInput) (*ecs.RegisterTaskDefinitionOutput, error) {
		*registered = append(*registered, in)
		return &ecs.RegisterTaskDefinitionOutput{
			TaskDefinition: &ecs.TaskDefinition{
				TaskDefinitionArn: aws.String("arn:aws:ecs:us-east-1:123456789012:task-definition/" + aws.StringValue(in.Family) + ":8"),
				Status:            aws.String(ecs.TaskDefinitionStatusActive),
			},
		}, nil
	}).AnyTimes()
}

func stubUpdates(m *mock_infra.MockECSAPI, updated *[]*ecs.UpdateServiceInput) {
	m.EXPECT().UpdateService(gomock.Any()).DoAndReturn(func(in *ecs.UpdateServiceInput) (*ecs.UpdateServiceOutput, error) {
		*updated = append(*updated, in)
		return &ecs.UpdateServiceOutput{}, nil
	}).AnyTimes()
}

func stubCredentials(m *mock_infra.MockSTSAPI) {
	m.EXPECT().GetCallerIdentity(gomock.Any()).Return(&sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
	}, nil).AnyTimes()
}

func rollbackUpdates(updated []*ecs.UpdateServiceInput) []*ecs.UpdateServiceInput {
	var rbs []*ecs.UpdateServiceInput
	for _, in := range updated {
		if strings.Contains(aws.StringValue(in.TaskDefinition), "-previous") {
			rbs = append(rbs, in)
		}
	}
	return rbs
}

func TestDeployStagingSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockECS := mock_infra.NewMockECSAPI(ctrl)
	mockSTS := mock_infra.NewMockSTSAPI(ctrl)
	stubCredentials(mockSTS)
	stubServiceReads(mockECS)

	var registered []*ecs.RegisterTaskDefinitionInput
	var updated []*ecs.UpdateServiceInput
	stubRegisters(mockECS, &registered)
	stubUpdates(mockECS, &updated)

	mockECS.EXPECT().WaitUntilServicesStableWithContext(gomock.Any(), gomock.Any()).Return(nil)

	builder := &fakeBuilder{}
	notifier := &fakeNotifier{}
	dctx := testDeploymentContext(t, EnvStaging)
	o := newTestOrchestrator(dctx, mockECS, mockSTS, builder, notifier)

	out, err := o.Deploy(context.Background())
	if err != nil {
		t.Fatalf("deploy: %v", err)
	}

	if !out.Success() || out.State != StateStable {
		t.Errorf("got state %s, wanted %s", out.State, StateStable)
	}
	if builder.calls != 2 {
		t.Errorf("got %d image builds, wanted 2", builder.calls)
	}
	// migration must never run outside production: no RunTask expectation is
	// set so any call would have failed the mock controller.
	if got := len(updated); got != 2 {
		t.Errorf("got %d service updates, wanted 2", got)
	}
	if rbs := rollbackUpdates(updated); len(rbs) != 0 {
		t.Errorf("got %d rollback updates, wanted none", len(rbs))
	}
	if len(notifier.texts) != 1 {
		t.Errorf("got %d notifications, wanted 1", len(notifier.texts))
	}
}

func TestDeployThreadsNewImageThroughTaskDefinition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockECS := mock_infra.NewMockECSAPI(ctrl)
	mockSTS := mock_infra.NewMockSTSAPI(ctrl)
	stubCredentials(mockSTS)
	stubServiceReads(mockECS)

	var registered []*ecs.RegisterTaskDefinitionInput
	var updated []*ecs.UpdateServiceInput
	stubRegisters(mockECS, &registered)
	stubUpdates(mockECS, &updated)

	mockECS.EXPECT().WaitUntilServicesStableWithContext(gomock.Any(), gomock.Any()).Return(nil)

	dctx := testDeploymentContext(t, EnvStaging)
	o := newTestOrchestrator(dctx, mockECS, mockSTS, &fakeBuilder{}, &fakeNotifier{})

	if _, err := o.Deploy(context.Background()); err != nil {
		t.Fatalf("deploy: %v", err)
	}

	// each target registers a -previous snapshot followed by a new revision
	if len(registered) != 4 {
		t.Fatalf("got %d registered task definitions, wanted 4", len(registered))
	}

	for _, in := range registered {
		family := aws.StringValue(in.Family)
		image := aws.StringValue(in.ContainerDefinitions[0].Image)
		if strings.HasSuffix(family, "-previous") {
			if !strings.HasSuffix(image, ":old") {
				t.Errorf("snapshot for %s should keep the old image, got %s", family, image)
			}
			continue
		}
		if !strings.HasSuffix(image, ":abc1234") {
			t.Errorf("new revision for %s should run the freshly pushed image, got %s", family, image)
		}
	}
}

func TestDeployProductionStabilityFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockECS := mock_infra.NewMockECSAPI(ctrl)
	mockSTS := mock_infra.NewMockSTSAPI(ctrl)
	stubCredentials(mockSTS)
	stubServiceReads(mockECS)

	var registered []*ecs.RegisterTaskDefinitionInput
	var updated []*ecs.UpdateServiceInput
	stubRegisters(mockECS, &registered)
	stubUpdates(mockECS, &updated)

	migrationRuns := 0
	mockECS.EXPECT().RunTask(gomock.Any()).DoAndReturn(func(in *ecs.RunTaskInput) (*ecs.RunTaskOutput, error) {
		migrationRuns++
		return &ecs.RunTaskOutput{
			Tasks: []*ecs.Task{
				{TaskArn: aws.String("arn:aws:ecs:us-east-1:123456789012:task/migration-1")},
			},
		}, nil
	})

	mockECS.EXPECT().DescribeTasks(gomock.Any()).Return(&ecs.DescribeTasksOutput{
		Tasks: []*ecs.Task{
			{
				TaskArn:    aws.String("arn:aws:ecs:us-east-1:123456789012:task/migration-1"),
				LastStatus: aws.String("STOPPED"),
				Containers: []*ecs.Container{
					{Name: aws.String("backend"), ExitCode: aws.Int64(0)},
				},
			},
		},
	}, nil)

	mockECS.EXPECT().WaitUntilServicesStableWithContext(gomock.Any(), gomock.Any()).Return(fmt.Errorf("exceeded wait attempts"))

	builder := &fakeBuilder{}
	dctx := testDeploymentContext(t, EnvProduction)
	o := newTestOrchestrator(dctx, mockECS, mockSTS, builder, &fakeNotifier{})

	out, err := o.Deploy(context.Background())
	if err == nil {
		t.Fatal("expected deploy to fail")
	}

	var derr *DeploymentError
	if !errors.As(err, &derr) || derr.Step != StepWaitForStable {
		t.Errorf("got error %v, wanted DeploymentError for step %q", err, StepWaitForStable)
	}
	if out.State != StateRolledBack {
		t.Errorf("got state %s, wanted %s", out.State, StateRolledBack)
	}
	if migrationRuns != 1 {
		t.Errorf("got %d migration runs, wanted 1", migrationRuns)
	}

	rbs := rollbackUpdates(updated)
	if len(rbs) != 2 {
		t.Fatalf("got %d rollback updates, wanted one per target", len(rbs))
	}
	seen := map[string]bool{}
	for _, in := range rbs {
		seen[aws.StringValue(in.Service)] = true
	}
	for _, target := range []string{"backend", "frontend"} {
		if !seen["roofing-platform-production-"+target] {
			t.Errorf("rollback did not cover target %s", target)
		}
	}
}

func TestDeployPrerequisiteFailureMakesNoCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no expectations: any ECS or STS call fails the test
	mockECS := mock_infra.NewMockECSAPI(ctrl)
	mockSTS := mock_infra.NewMockSTSAPI(ctrl)

	builder := &fakeBuilder{}
	dctx := testDeploymentContext(t, EnvStaging)
	o := newTestOrchestrator(dctx, mockECS, mockSTS, builder, &fakeNotifier{})
	o.lookPath = func(tool string) (string, error) {
		return "", fmt.Errorf("%s not found in PATH", tool)
	}

	out, err := o.Deploy(context.Background())
	if err == nil {
		t.Fatal("expected deploy to fail")
	}

	var perr *PrerequisiteError
	if !errors.As(err, &perr) {
		t.Errorf("got error %v, wanted PrerequisiteError", err)
	}
	if out.State != StateAborted {
		t.Errorf("got state %s, wanted %s", out.State, StateAborted)
	}
	if builder.calls != 0 {
		t.Errorf("got %d image builds, wanted none", builder.calls)
	}
	if out.RollbackAttempted {
		t.Error("rollback must not be attempted before any mutation")
	}
}

func TestDeployBuildFailureAbortsWithoutRollback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockECS := mock_infra.NewMockECSAPI(ctrl)
	mockSTS := mock_infra.NewMockSTSAPI(ctrl)
	stubCredentials(mockSTS)

	builder := &fakeBuilder{err: fmt.Errorf("docker build: exit status 1")}
	dctx := testDeploymentContext(t, EnvStaging)
	o := newTestOrchestrator(dctx, mockECS, mockSTS, builder, &fakeNotifier{})

	out, err := o.Deploy(context.Background())
	if err == nil {
		t.Fatal("expected deploy to fail")
	}

	var berr *BuildError
	if !errors.As(err, &berr) {
		t.Errorf("got error %v, wanted BuildError", err)
	}
	if out.State != StateAborted {
		t.Errorf("got state %s, wanted %s", out.State, StateAborted)
	}
	if out.RollbackAttempted {
		t.Error("rollback must not be attempted when no live mutation occurred")
	}
}

func TestDeployMigrationFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockECS := mock_infra.NewMockECSAPI(ctrl)
	mockSTS := mock_infra.NewMockSTSAPI(ctrl)
	stubCredentials(mockSTS)
	stubServiceReads(mockECS)

	var updated []*ecs.UpdateServiceInput
	stubUpdates(mockECS, &updated)

	mockECS.EXPECT().RunTask(gomock.Any()).Return(&ecs.RunTaskOutput{
		Tasks: []*ecs.Task{
			{TaskArn: aws.String("arn:aws:ecs:us-east-1:123456789012:task/migration-2")},
		},
	}, nil)

	mockECS.EXPECT().DescribeTasks(gomock.Any()).Return(&ecs.DescribeTasksOutput{
		Tasks: []*ecs.Task{
			{
				TaskArn:    aws.String("arn:aws:ecs:us-east-1:123456789012:task/migration-2"),
				LastStatus: aws.String("STOPPED"),
				Containers: []*ecs.Container{
					{Name: aws.String("backend"), ExitCode: aws.Int64(2)},
				},
			},
		},
	}, nil)

	dctx := testDeploymentContext(t, EnvProduction)
	o := newTestOrchestrator(dctx, mockECS, mockSTS, &fakeBuilder{}, &fakeNotifier{})

	out, err := o.Deploy(context.Background())
	if err == nil {
		t.Fatal("expected deploy to fail")
	}

	var merr *MigrationError
	if !errors.As(err, &merr) {
		t.Fatalf("got error %v, wanted MigrationError", err)
	}
	if merr.ExitCode != 2 {
		t.Errorf("got exit code %d, wanted 2", merr.ExitCode)
	}
	if out.State != StateRolledBack {
		t.Errorf("got state %s, wanted %s", out.State, StateRolledBack)
	}
	if rbs := rollbackUpdates(updated); len(rbs) != 2 {
		t.Errorf("got %d rollback updates, wanted one per target", len(rbs))
	}
}

func TestMigrationTimeoutIsDistinct(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockECS := mock_infra.NewMockECSAPI(ctrl)

	mockECS.EXPECT().RunTask(gomock.Any()).Return(&ecs.RunTaskOutput{
		Tasks: []*ecs.Task{
			{TaskArn: aws.String("arn:aws:ecs:us-east-1:123456789012:task/migration-3")},
		},
	}, nil)

	mockECS.EXPECT().DescribeTasks(gomock.Any()).Return(&ecs.DescribeTasksOutput{
		Tasks: []*ecs.Task{
			{
				TaskArn:    aws.String("arn:aws:ecs:us-east-1:123456789012:task/migration-3"),
				LastStatus: aws.String("RUNNING"),
			},
		},
	}, nil).AnyTimes()

	dctx := testDeploymentContext(t, EnvProduction)
	o := newTestOrchestrator(dctx, mockECS, nil, &fakeBuilder{}, &fakeNotifier{})

	err := o.RunMigrations(context.Background())
	if err == nil {
		t.Fatal("expected migration to time out")
	}
	if !errors.Is(err, ErrMigrationTimeout) {
		t.Errorf("got error %v, wanted ErrMigrationTimeout", err)
	}
}

func TestRunMigrationsSkippedOutsideProduction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no expectations: a RunTask call would fail the test
	mockECS := mock_infra.NewMockECSAPI(ctrl)

	dctx := testDeploymentContext(t, EnvStaging)
	o := newTestOrchestrator(dctx, mockECS, nil, &fakeBuilder{}, &fakeNotifier{})

	if err := o.RunMigrations(context.Background()); err != nil {
		t.Errorf("migrations outside production should be a no-op, got %v", err)
	}
}

func TestRollbackReportsMissingPreviousDefinition(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockECS := mock_infra.NewMockECSAPI(ctrl)

	describes := 0
	mockECS.EXPECT().DescribeTaskDefinition(gomock.Any()).DoAndReturn(func(in *ecs.DescribeTaskDefinitionInput) (*ecs.DescribeTaskDefinitionOutput, error) {
		describes++
		return nil, &ecs.ClientException{Message_: aws.String("Unable to describe task definition")}
	}).Times(2)

	dctx := testDeploymentContext(t, EnvStaging)
	o := newTestOrchestrator(dctx, mockECS, nil, &fakeBuilder{}, &fakeNotifier{})

	err := o.Rollback(context.Background())
	if err == nil {
		t.Fatal("expected rollback to fail when no previous definition exists")
	}

	var rerr *RollbackError
	if !errors.As(err, &rerr) {
		t.Fatalf("got error %v, wanted RollbackError", err)
	}
	if len(rerr.Errs) != 2 {
		t.Errorf("got %d rollback errors, wanted one per target", len(rerr.Errs))
	}
	if describes != 2 {
		t.Errorf("rollback checked %d previous families, wanted 2: all targets must be attempted", describes)
	}
}

func TestDeployStabilityFailureKeepsOriginalError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockECS := mock_infra.NewMockECSAPI(ctrl)
	mockSTS := mock_infra.NewMockSTSAPI(ctrl)
	stubCredentials(mockSTS)
	stubServiceReads(mockECS)

	var registered []*ecs.RegisterTaskDefinitionInput
	stubRegisters(mockECS, &registered)

	// service updates succeed during deploy but fail during rollback
	mockECS.EXPECT().UpdateService(gomock.Any()).DoAndReturn(func(in *ecs.UpdateServiceInput) (*ecs.UpdateServiceOutput, error) {
		if strings.Contains(aws.StringValue(in.TaskDefinition), "-previous") {
			return nil, fmt.Errorf("throttled")
		}
		return &ecs.UpdateServiceOutput{}, nil
	}).AnyTimes()

	mockECS.EXPECT().WaitUntilServicesStableWithContext(gomock.Any(), gomock.Any()).Return(fmt.Errorf("exceeded wait attempts"))

	dctx := testDeploymentContext(t, EnvStaging)
	o := newTestOrchestrator(dctx, mockECS, mockSTS, &fakeBuilder{}, &fakeNotifier{})

	out, err := o.Deploy(context.Background())
	if err == nil {
		t.Fatal("expected deploy to fail")
	}

	var derr *DeploymentError
	if !errors.As(err, &derr) || derr.Step != StepWaitForStable {
		t.Errorf("rollback failure must not mask the original error, got %v", err)
	}
	if out.RollbackErr == nil {
		t.Error("rollback failures should be reported on the outcome")
	} else if len(out.RollbackErr.Errs) != 2 {
		t.Errorf("got %d rollback errors, wanted one per target", len(out.RollbackErr.Errs))
	}
}
