package infra

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ecs"
	"github.com/aws/aws-sdk-go/service/sts"
)

// Generate AWS API mocks by running go generate
//go:generate mockgen -source ecs.go -package mock_infra -destination ../../../mock/infra/aws_mock.go

// ECSAPI is the subset of the ECS control plane the orchestrator consumes.
// The production implementation is *ecs.ECS.
type ECSAPI interface {
	DescribeServices(*ecs.DescribeServicesInput) (*ecs.DescribeServicesOutput, error)
	DescribeTaskDefinition(*ecs.DescribeTaskDefinitionInput) (*ecs.DescribeTaskDefinitionOutput, error)
	RegisterTaskDefinition(*ecs.RegisterTaskDefinitionInput) (*ecs.RegisterTaskDefinitionOutput, error)
	UpdateService(*ecs.UpdateServiceInput) (*ecs.UpdateServiceOutput, error)
	RunTask(*ecs.RunTaskInput) (*ecs.RunTaskOutput, error)
	DescribeTasks(*ecs.DescribeTasksInput) (*ecs.DescribeTasksOutput, error)
	WaitUntilServicesStableWithContext(aws.Context, *ecs.DescribeServicesInput, ...request.WaiterOption) error
}

// STSAPI is the subset of STS used for the credentials prerequisite check.
type STSAPI interface {
	GetCallerIdentity(*sts.GetCallerIdentityInput) (*sts.GetCallerIdentityOutput, error)
}

var (
	_ ECSAPI = (*ecs.ECS)(nil)
	_ STSAPI = (*sts.STS)(nil)
)

func NewAWSClients(region string) (ECSAPI, STSAPI, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("new session: %w", err)
	}

	return ecs.New(sess), sts.New(sess), nil
}
