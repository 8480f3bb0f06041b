package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tripdata/pkg/infra/catalog"
)

// Catalog holds S3 access settings for listing published archives
type Catalog struct {
	Region   string
	Endpoint string
}

// Flags returns CLI flags for catalog configuration
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "region",
			Usage:       "AWS region of the archive bucket",
			Value:       catalog.DefaultRegion,
			Destination: &c.Region,
		},
		&cli.StringFlag{
			Name:        "endpoint",
			Usage:       "Custom S3 endpoint, e.g. an S3-compatible mirror",
			Destination: &c.Endpoint,
			Sources:     cli.EnvVars("TRIPDATA_S3_ENDPOINT"),
		},
	}
}

// Options converts the configuration into catalog client options
func (c *Catalog) Options(bucket string) []catalog.Option {
	opts := []catalog.Option{
		catalog.WithBucket(bucket),
		catalog.WithRegion(c.Region),
	}
	if c.Endpoint != "" {
		opts = append(opts, catalog.WithEndpoint(c.Endpoint))
	}
	return opts
}
