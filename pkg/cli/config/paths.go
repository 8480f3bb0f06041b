package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Paths holds the project location
type Paths struct {
	Root string
}

// Flags returns CLI flags for path configuration
func (c *Paths) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "root",
			Usage:       "Project root holding data/raw and data/external (default: current directory)",
			Destination: &c.Root,
		},
	}
}

// Dirs resolves the data directories under the project root
func (c *Paths) Dirs() (model.Dirs, error) {
	root := c.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return model.Dirs{}, goerr.Wrap(err, "failed to get working directory")
		}
		root = wd
	}

	return model.NewDirs(root), nil
}
