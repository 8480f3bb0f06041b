package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/m-mizutani/tripdata/pkg/domain/types"
	"github.com/m-mizutani/tripdata/pkg/infra/catalog"
	"github.com/m-mizutani/tripdata/pkg/infra/tripdata"
)

// Dataset describes where archives live and how they are named.
// Values come from flags first, then the optional TOML profile, then defaults.
type Dataset struct {
	ConfigFile      string
	BaseURL         string
	NameTemplate    string
	Bucket          string
	TabularSuffixes []string
}

// datasetProfile is the TOML representation of a dataset profile
type datasetProfile struct {
	BaseURL         string   `toml:"base_url"`
	NameTemplate    string   `toml:"name_template"`
	Bucket          string   `toml:"bucket"`
	TabularSuffixes []string `toml:"tabular_suffixes"`
}

// Flags returns CLI flags for dataset configuration
func (c *Dataset) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dataset-config",
			Usage:       "TOML file overriding base_url, name_template, bucket and tabular_suffixes",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("TRIPDATA_DATASET_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL archives are downloaded from (default: " + tripdata.DefaultBaseURL + ")",
			Destination: &c.BaseURL,
		},
	}
}

// Resolve fills unset fields from the profile file and defaults
func (c *Dataset) Resolve() error {
	if c.ConfigFile != "" {
		data, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			return goerr.Wrap(err, "failed to read dataset config", goerr.V("path", c.ConfigFile), goerr.T(types.ErrTagInvalidInput))
		}

		var profile datasetProfile
		if err := toml.Unmarshal(data, &profile); err != nil {
			return goerr.Wrap(err, "failed to parse dataset config", goerr.V("path", c.ConfigFile), goerr.T(types.ErrTagInvalidInput))
		}

		if c.BaseURL == "" {
			c.BaseURL = profile.BaseURL
		}
		if c.NameTemplate == "" {
			c.NameTemplate = profile.NameTemplate
		}
		if c.Bucket == "" {
			c.Bucket = profile.Bucket
		}
		if len(c.TabularSuffixes) == 0 {
			c.TabularSuffixes = profile.TabularSuffixes
		}
	}

	if c.BaseURL == "" {
		c.BaseURL = tripdata.DefaultBaseURL
	}
	if c.NameTemplate == "" {
		c.NameTemplate = model.DefaultArchiveTemplate
	}
	if c.Bucket == "" {
		c.Bucket = catalog.DefaultBucket
	}
	if len(c.TabularSuffixes) == 0 {
		c.TabularSuffixes = []string{".csv"}
	}

	return nil
}
