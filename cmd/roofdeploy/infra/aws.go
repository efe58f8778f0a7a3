package infra

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ecs"
)

func dstr(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

// registerInputFromDefinition copies the run-relevant fields of a task
// definition into a register input for the given family. Revision, status and
// registration metadata are owned by ECS and must not be carried over.
func registerInputFromDefinition(td *ecs.TaskDefinition, family string) *ecs.RegisterTaskDefinitionInput {
	return &ecs.RegisterTaskDefinitionInput{
		Family:                  aws.String(family),
		ContainerDefinitions:    td.ContainerDefinitions,
		Cpu:                     td.Cpu,
		Memory:                  td.Memory,
		ExecutionRoleArn:        td.ExecutionRoleArn,
		TaskRoleArn:             td.TaskRoleArn,
		NetworkMode:             td.NetworkMode,
		RequiresCompatibilities: td.RequiresCompatibilities,
		Volumes:                 td.Volumes,
		PlacementConstraints:    td.PlacementConstraints,
		RuntimePlatform:         td.RuntimePlatform,
	}
}

// containersWithImage returns a copy of defs where the container named after
// the target runs the given image. Copies are shallow but the mutated
// definition is cloned so callers can keep using the original slice.
func containersWithImage(defs []*ecs.ContainerDefinition, name, image string) ([]*ecs.ContainerDefinition, error) {
	out := make([]*ecs.ContainerDefinition, len(defs))
	found := false
	for i, cd := range defs {
		if cd != nil && aws.StringValue(cd.Name) == name {
			cp := *cd
			cp.Image = aws.String(image)
			out[i] = &cp
			found = true
			continue
		}
		out[i] = cd
	}

	if !found {
		if len(defs) == 1 && defs[0] != nil {
			cp := *defs[0]
			cp.Image = aws.String(image)
			return []*ecs.ContainerDefinition{&cp}, nil
		}
		return nil, fmt.Errorf("no container named %q in task definition", name)
	}

	return out, nil
}

// findTaskDefinition returns the arn of the active task definition in the
// family, or the empty string when the family has none.
func (o *Orchestrator) findTaskDefinition(family string) (string, error) {
	out, err := o.ecs.DescribeTaskDefinition(&ecs.DescribeTaskDefinitionInput{
		TaskDefinition: aws.String(family),
	})
	if err != nil {
		aerr := &ecs.ClientException{}
		if errors.As(err, &aerr) {
			if strings.Contains(aerr.Error(), "Unable to describe task definition") {
				return "", nil // assume it does not exist, so no error
			}
		}
		return "", fmt.Errorf("describe task definition: %w", err)
	}

	if out == nil || out.TaskDefinition == nil || out.TaskDefinition.TaskDefinitionArn == nil || out.TaskDefinition.Status == nil {
		return "", fmt.Errorf("unable to read task definition arn or status")
	}

	if *out.TaskDefinition.Status == ecs.TaskDefinitionStatusActive {
		return *out.TaskDefinition.TaskDefinitionArn, nil
	}
	return "", nil
}
