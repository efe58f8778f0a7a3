package infra

import (
	"fmt"

	"github.com/bantoinese83/roofdeploy/pkg/manifest"
)

const (
	EnvStaging    = "staging"
	EnvProduction = "production"
)

// DeploymentContext carries everything a single deployment run needs. It is
// built once at entry and never mutated; every step receives it by value.
type DeploymentContext struct {
	Environment string
	Region      string
	AccountID   string
	Revision    string
	ClusterName string
	RegistryURL string
	WebhookURL  string
	Targets     []ServiceTarget
}

// ServiceTarget is one deployable unit managed by the orchestrator.
type ServiceTarget struct {
	Name             string
	ImageRepo        string
	BuildContext     string
	ContainerPort    int64
	TaskFamily       string
	ServiceName      string
	MigrationCommand []string
}

// PreviousFamily is the task definition family that holds the snapshot taken
// before the last deployment touched this target. Rollback re-points the
// service at it.
func (t ServiceTarget) PreviousFamily() string {
	return t.TaskFamily + "-previous"
}

// ImageURI is the fully qualified registry image for this target at the given
// revision.
func (t ServiceTarget) ImageURI(registryURL, revision string) string {
	return registryURL + "/" + t.ImageRepo + ":" + revision
}

func NewDeploymentContext(environment, region, accountID, revision, webhookURL string, m *manifest.Manifest) (DeploymentContext, error) {
	if environment != EnvStaging && environment != EnvProduction {
		return DeploymentContext{}, fmt.Errorf("unknown environment %q, must be %s or %s", environment, EnvStaging, EnvProduction)
	}
	if region == "" {
		return DeploymentContext{}, fmt.Errorf("region must be supplied")
	}
	if accountID == "" {
		return DeploymentContext{}, fmt.Errorf("account id must be supplied")
	}
	if revision == "" {
		return DeploymentContext{}, fmt.Errorf("revision must be supplied")
	}
	if m == nil || len(m.Targets) == 0 {
		return DeploymentContext{}, fmt.Errorf("manifest must name at least one target")
	}

	dc := DeploymentContext{
		Environment: environment,
		Region:      region,
		AccountID:   accountID,
		Revision:    revision,
		ClusterName: "roofing-platform-" + environment,
		RegistryURL: fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com", accountID, region),
		WebhookURL:  webhookURL,
	}

	for _, ts := range m.Targets {
		dc.Targets = append(dc.Targets, ServiceTarget{
			Name:             ts.Name,
			ImageRepo:        ts.ImageRepo,
			BuildContext:     ts.BuildContext,
			ContainerPort:    int64(ts.ContainerPort),
			TaskFamily:       dc.ClusterName + "-" + ts.Name,
			ServiceName:      dc.ClusterName + "-" + ts.Name,
			MigrationCommand: ts.Migrate,
		})
	}

	return dc, nil
}
