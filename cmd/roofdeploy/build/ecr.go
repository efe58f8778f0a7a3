package build

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/exp/slog"
)

func EcrLogin(registryURL string, awsRegion string) error {
	awsPwd, err := GetAwsEcrPassword(awsRegion)
	if err != nil {
		return fmt.Errorf("get aws ecr password: %w", err)
	}

	// docker login -u AWS -p $(aws ecr get-login-password --region us-east-1) "$REGISTRY"
	cmd := exec.Command("docker", "login", "-u", "AWS", "-p", strings.TrimSpace(awsPwd), registryURL)
	slog.Debug("docker login -u AWS -p REDACTED " + registryURL)
	cmd.Stdout = io.Discard
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Wait()
}

func GetAwsEcrPassword(awsRegion string) (string, error) {
	buf := new(bytes.Buffer)
	cmd := exec.Command("aws", "ecr", "get-login-password", "--region", awsRegion)
	cmd.Stdout = buf
	cmd.Stderr = os.Stderr

	slog.Debug(cmd.String())
	if err := cmd.Start(); err != nil {
		return "", err
	}
	if err := cmd.Wait(); err != nil {
		return "", err
	}

	return buf.String(), nil
}
