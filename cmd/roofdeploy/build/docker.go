package build

import (
	"io"
	"os"
	"os/exec"

	"golang.org/x/exp/slog"
)

func DockerBuild(buildDir string, imageName string) error {
	cmd := exec.Command("docker", "build", "-t", imageName, ".")
	cmd.Dir = buildDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	slog.Debug(cmd.String())
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Wait()
}

func DockerTag(srcImageName, dstImageName string) error {
	cmd := exec.Command("docker", "tag", srcImageName, dstImageName)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	slog.Debug(cmd.String())
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Wait()
}

func DockerPush(imageName string) error {
	cmd := exec.Command("docker", "push", imageName)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	slog.Debug(cmd.String())
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Wait()
}

// DockerInspect returns an error when the named image cannot be found in its
// registry.
func DockerInspect(imageName string) error {
	cmd := exec.Command("docker", "manifest", "inspect", imageName)
	cmd.Stdout = io.Discard
	cmd.Stderr = os.Stderr
	slog.Debug(cmd.String())
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Wait()
}
