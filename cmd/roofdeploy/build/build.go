// Package build produces and publishes the platform's container images using
// the local docker and aws command line tools.
package build

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"github.com/bantoinese83/roofdeploy/cmd/roofdeploy/infra"
)

// Builder builds target images from their local build contexts and pushes
// them to the ECR registry.
type Builder struct {
	region      string
	registryURL string
	skipBuild   bool
}

func NewBuilder(region, registryURL string) *Builder {
	return &Builder{
		region:      region,
		registryURL: registryURL,
	}
}

// WithSkipBuild makes BuildAndPush reuse an already pushed image for the
// revision when the registry has one, instead of rebuilding.
func (b *Builder) WithSkipBuild(skip bool) *Builder {
	b.skipBuild = skip
	return b
}

func (b *Builder) BuildAndPush(ctx context.Context, target infra.ServiceTarget, revision string) (string, error) {
	localName := target.ImageRepo + ":" + revision
	remoteName := target.ImageURI(b.registryURL, revision)
	logger := slog.With("component", "target "+target.Name)

	if b.skipBuild {
		if exists, _ := b.imageExists(remoteName); exists {
			logger.Info("image already pushed for revision, skipping build", "image", remoteName)
			return remoteName, nil
		}
	}

	logger.Debug("building image", "context", target.BuildContext)
	if err := DockerBuild(target.BuildContext, localName); err != nil {
		return "", fmt.Errorf("docker build: %w", err)
	}

	if err := DockerTag(localName, remoteName); err != nil {
		return "", fmt.Errorf("docker tag: %w", err)
	}

	if err := EcrLogin(b.registryURL, b.region); err != nil {
		return "", fmt.Errorf("docker login: %w", err)
	}

	if err := DockerPush(remoteName); err != nil {
		return "", fmt.Errorf("docker push: %w", err)
	}

	return remoteName, nil
}

func (b *Builder) imageExists(remoteName string) (bool, error) {
	slog.Info("checking if image exists in registry", "image", remoteName)
	if err := EcrLogin(b.registryURL, b.region); err != nil {
		return false, fmt.Errorf("docker login: %w", err)
	}

	if err := DockerInspect(remoteName); err != nil {
		return false, err
	}

	return true, nil
}
