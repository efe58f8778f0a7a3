package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

// Target name must contain only lowercase letters, numbers and hyphens and must start with a letter
var reTargetName = regexp.MustCompile(`^[a-z][a-z0-9-]+$`)

// Manifest describes the set of services deployed together for the platform.
type Manifest struct {
	Targets []TargetSpec
}

// TargetSpec is one deployable unit of the platform.
type TargetSpec struct {
	Name          string   // name of the service, e.g. "backend"
	ImageRepo     string   // repository path within the registry
	BuildContext  string   // directory passed to docker build
	ContainerPort int      // port the main container listens on
	Migrate       []string // command run as a one-off task before the service is updated, if any
}

type manifestJSON struct {
	Targets []targetJSON `json:"targets"`
}

type targetJSON struct {
	Name          string   `json:"name"`
	ImageRepo     string   `json:"image_repo,omitempty"`     // defaults to roofing-platform/<name>
	BuildContext  string   `json:"build_context,omitempty"`  // defaults to ./<name>
	ContainerPort int      `json:"container_port,omitempty"` // defaults to 8080
	Migrate       []string `json:"migrate,omitempty"`
}

// Default is the manifest used when no manifest file is supplied: the
// platform's Django API and its Next.js frontend.
func Default() *Manifest {
	return &Manifest{
		Targets: []TargetSpec{
			{
				Name:          "backend",
				ImageRepo:     "roofing-platform/backend",
				BuildContext:  "./backend",
				ContainerPort: 8000,
				Migrate:       []string{"python", "manage.py", "migrate", "--noinput"},
			},
			{
				Name:          "frontend",
				ImageRepo:     "roofing-platform/frontend",
				BuildContext:  "./frontend",
				ContainerPort: 3000,
			},
		},
	}
}

func Parse(r io.Reader) (*Manifest, error) {
	mj := new(manifestJSON)
	if err := json.NewDecoder(r).Decode(mj); err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}

	if len(mj.Targets) == 0 {
		return nil, fmt.Errorf("at least one target must be supplied")
	}

	m := new(Manifest)
	uniqueNames := map[string]bool{}
	for i, tj := range mj.Targets {
		t := TargetSpec{
			Migrate: tj.Migrate,
		}
		if tj.Name != "" {
			t.Name = tj.Name
		} else {
			return nil, fmt.Errorf("name must be supplied for target %d", i+1)
		}

		if uniqueNames[t.Name] {
			return nil, fmt.Errorf("target name must be unique, %q has already been used", t.Name)
		}
		uniqueNames[t.Name] = true

		if !reTargetName.MatchString(t.Name) {
			return nil, fmt.Errorf("target name must start with a letter and contain only lowercase letters, numbers and hyphens: %q", t.Name)
		}

		if tj.ImageRepo != "" {
			t.ImageRepo = tj.ImageRepo
		} else {
			t.ImageRepo = "roofing-platform/" + t.Name
		}

		if tj.BuildContext != "" {
			t.BuildContext = tj.BuildContext
		} else {
			t.BuildContext = "./" + t.Name
		}

		switch {
		case tj.ContainerPort == 0:
			t.ContainerPort = 8080
		case tj.ContainerPort > 0 && tj.ContainerPort < 65536:
			t.ContainerPort = tj.ContainerPort
		default:
			return nil, fmt.Errorf("container port out of range for target %s: %d", t.Name, tj.ContainerPort)
		}

		m.Targets = append(m.Targets, t)
	}

	return m, nil
}
