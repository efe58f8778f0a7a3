package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

var ValidateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Validate a deployment manifest",
	Action:    Validate,
	ArgsUsage: "MANIFEST-FILENAME",
	Flags:     commonFlags,
}

func Validate(cc *cli.Context) error {
	setupLogging()

	if cc.NArg() != 1 {
		return fmt.Errorf("manifest filename must be supplied")
	}

	args := cc.Args()
	m, err := loadManifest(args.Get(0))
	if err != nil {
		return err
	}

	for _, t := range m.Targets {
		fmt.Printf("Target %q\n", t.Name)
		fmt.Printf("  Image repo:     %s\n", t.ImageRepo)
		fmt.Printf("  Build context:  %s\n", t.BuildContext)
		fmt.Printf("  Container port: %d\n", t.ContainerPort)
		if len(t.Migrate) > 0 {
			fmt.Printf("  Migration:      %s\n", strings.Join(t.Migrate, " "))
		} else {
			fmt.Println("  Migration:      none")
		}
		fmt.Println()
	}

	return nil
}
