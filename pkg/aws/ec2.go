package aws

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/smithy-go"
	"github.com/devA2C3/cloudvisor-test/pkg/etlerr"
)

// ErrNoRegion is returned when no region was given to the extractor
var ErrNoRegion = errors.New("no AWS region configured")

// DescribeInstancesAPI is the part of the EC2 API used for extraction
type DescribeInstancesAPI interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// EC2Client struct for EC2 client
type EC2Client struct {
	client DescribeInstancesAPI
	region string
}

// LoadConfig loads the default AWS config for a region
func LoadConfig(ctx context.Context, region string, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithEC2IMDSClientEnableState(imds.ClientEnabled),
	}
	opts = append(opts, optFns...)

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("error loading AWS config: %w", err)
	}
	return cfg, nil
}

// NewEC2Client creates a new EC2Client
func NewEC2Client(ctx context.Context, region string, optFns ...func(*config.LoadOptions) error) (*EC2Client, error) {
	cfg, err := LoadConfig(ctx, region, optFns...)
	if err != nil {
		return nil, err
	}

	return NewEC2ClientWithAPI(ec2.NewFromConfig(cfg), region), nil
}

// NewEC2ClientWithAPI creates an EC2Client around an existing API implementation
func NewEC2ClientWithAPI(api DescribeInstancesAPI, region string) *EC2Client {
	return &EC2Client{
		client: api,
		region: region,
	}
}

// DescribeInstances returns the raw reservation list of the client's region.
// Only the first page is fetched.
func (c *EC2Client) DescribeInstances(ctx context.Context) (*ec2.DescribeInstancesOutput, error) {
	result, err := c.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{})
	if err != nil {
		return nil, classifyAPIError(c.region, err)
	}
	return result, nil
}

// ClientFactory builds an EC2Client for a region
type ClientFactory func(ctx context.Context, region string) (*EC2Client, error)

// InventoryExtractor fetches the EC2 inventory of one region per call
type InventoryExtractor struct {
	newClient ClientFactory
}

// NewInventoryExtractor creates an extractor that loads the default AWS config per region
func NewInventoryExtractor(optFns ...func(*config.LoadOptions) error) *InventoryExtractor {
	return &InventoryExtractor{
		newClient: func(ctx context.Context, region string) (*EC2Client, error) {
			return NewEC2Client(ctx, region, optFns...)
		},
	}
}

// NewInventoryExtractorWithFactory creates an extractor with a custom client factory
func NewInventoryExtractorWithFactory(factory ClientFactory) *InventoryExtractor {
	return &InventoryExtractor{newClient: factory}
}

// Extract calls DescribeInstances once for region and returns the unprocessed result
func (e *InventoryExtractor) Extract(ctx context.Context, region string) (*ec2.DescribeInstancesOutput, error) {
	if region == "" {
		return nil, etlerr.New(etlerr.KindRegionResolution, region, "resolve region", ErrNoRegion)
	}

	client, err := e.newClient(ctx, region)
	if err != nil {
		return nil, classifyAPIError(region, err)
	}

	return client.DescribeInstances(ctx)
}

// classifyAPIError tags an SDK error with its etlerr kind. An endpoint host that
// does not resolve counts as a region resolution failure.
func classifyAPIError(region string, err error) error {
	var missingRegion *aws.MissingRegionError
	var dnsErr *net.DNSError
	if errors.Is(err, ErrNoRegion) ||
		errors.As(err, &missingRegion) ||
		(errors.As(err, &dnsErr) && dnsErr.IsNotFound) {
		return etlerr.New(etlerr.KindRegionResolution, region, "resolve region", err)
	}

	op := "error querying EC2 instances"
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		op = fmt.Sprintf("error querying EC2 instances (%s)", apiErr.ErrorCode())
	}
	return etlerr.New(etlerr.KindExtraction, region, op, err)
}
