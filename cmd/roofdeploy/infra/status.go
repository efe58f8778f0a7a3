package infra

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
	"golang.org/x/sync/errgroup"
)

// ServiceStatus is a point-in-time view of one target's service.
type ServiceStatus struct {
	Target         string
	Status         string
	DesiredCount   int64
	RunningCount   int64
	PendingCount   int64
	TaskDefinition string
}

// Stable reports whether the service's running tasks match its desired count
// with none pending.
func (s ServiceStatus) Stable() bool {
	return s.RunningCount == s.DesiredCount && s.PendingCount == 0
}

// ServiceStatuses describes every target's service. The describes are
// read-only so they fan out concurrently, one per target.
func (o *Orchestrator) ServiceStatuses(ctx context.Context) ([]ServiceStatus, error) {
	statuses := make([]ServiceStatus, len(o.dctx.Targets))

	g, _ := errgroup.WithContext(ctx)
	for i, t := range o.dctx.Targets {
		i, t := i, t
		g.Go(func() error {
			out, err := o.ecs.DescribeServices(&ecs.DescribeServicesInput{
				Cluster:  aws.String(o.dctx.ClusterName),
				Services: []*string{aws.String(t.ServiceName)},
			})
			if err != nil {
				return fmt.Errorf("describe service %s: %w", t.ServiceName, err)
			}

			if len(out.Services) != 1 || out.Services[0] == nil {
				return fmt.Errorf("service %s not found", t.ServiceName)
			}

			s := out.Services[0]
			statuses[i] = ServiceStatus{
				Target:         t.Name,
				Status:         aws.StringValue(s.Status),
				DesiredCount:   aws.Int64Value(s.DesiredCount),
				RunningCount:   aws.Int64Value(s.RunningCount),
				PendingCount:   aws.Int64Value(s.PendingCount),
				TaskDefinition: aws.StringValue(s.TaskDefinition),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return statuses, nil
}
