package catalog

import (
	"context"
	"regexp"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/tripdata/pkg/domain/interfaces"
	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/m-mizutani/tripdata/pkg/domain/types"
)

const (
	// DefaultBucket is the public bucket holding trip-data archives
	DefaultBucket = "tripdata"
	// DefaultRegion is the region of DefaultBucket
	DefaultRegion = "us-east-1"
)

// monthly archives only; yearly bundles and Jersey City files are skipped
var archiveKeyPattern = regexp.MustCompile(`^(\d{6})-citibike-tripdata(\.csv)?\.zip$`)

// ObjectLister is the subset of the S3 API used by the catalog
type ObjectLister interface {
	s3.ListObjectsV2APIClient
}

type config struct {
	bucket   string
	region   string
	endpoint string
	lister   ObjectLister
}

// Option is a functional option for the catalog client
type Option func(*config)

// WithBucket sets the bucket name
func WithBucket(bucket string) Option {
	return func(c *config) {
		c.bucket = bucket
	}
}

// WithRegion sets the AWS region
func WithRegion(region string) Option {
	return func(c *config) {
		c.region = region
	}
}

// WithEndpoint overrides the S3 endpoint, e.g. for S3-compatible stores
func WithEndpoint(endpoint string) Option {
	return func(c *config) {
		c.endpoint = endpoint
	}
}

// WithObjectLister replaces the S3 client
func WithObjectLister(lister ObjectLister) Option {
	return func(c *config) {
		c.lister = lister
	}
}

type client struct {
	bucket string
	lister ObjectLister
}

// NewClient creates a catalog backed by anonymous S3 access
func NewClient(ctx context.Context, opts ...Option) (interfaces.ArchiveCatalog, error) {
	cfg := &config{
		bucket: DefaultBucket,
		region: DefaultRegion,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.lister == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.region),
			awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load AWS config", goerr.V("region", cfg.region))
		}

		cfg.lister = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.endpoint)
				o.UsePathStyle = true
			}
		})
	}

	return &client{
		bucket: cfg.bucket,
		lister: cfg.lister,
	}, nil
}

// ListArchives returns every monthly archive in the bucket, oldest first
func (c *client) ListArchives(ctx context.Context) ([]*model.RemoteArchive, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
	}

	var archives []*model.RemoteArchive
	paginator := s3.NewListObjectsV2Paginator(c.lister, input)

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list objects", goerr.V("bucket", c.bucket), goerr.T(types.ErrTagTransport))
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			m := archiveKeyPattern.FindStringSubmatch(key)
			if m == nil {
				continue
			}
			ym, err := model.ParseYearMonth(m[1])
			if err != nil {
				continue
			}

			archives = append(archives, &model.RemoteArchive{
				Key:          key,
				YearMonth:    ym,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.Slice(archives, func(i, j int) bool {
		if archives[i].YearMonth == archives[j].YearMonth {
			return archives[i].Key < archives[j].Key
		}
		return archives[i].YearMonth < archives[j].YearMonth
	})

	return archives, nil
}
