package aws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/devA2C3/cloudvisor-test/pkg/etlerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDescribeAPI struct {
	out   *ec2.DescribeInstancesOutput
	err   error
	calls int
}

func (f *fakeDescribeAPI) DescribeInstances(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.calls++
	return f.out, f.err
}

func factoryFor(api DescribeInstancesAPI) ClientFactory {
	return func(_ context.Context, region string) (*EC2Client, error) {
		return NewEC2ClientWithAPI(api, region), nil
	}
}

func TestExtractReturnsRawResult(t *testing.T) {
	out := &ec2.DescribeInstancesOutput{
		Reservations: []types.Reservation{
			{Instances: []types.Instance{{InstanceId: aws.String("i-1")}}},
		},
	}
	api := &fakeDescribeAPI{out: out}

	got, err := NewInventoryExtractorWithFactory(factoryFor(api)).Extract(context.Background(), "us-east-1")
	require.NoError(t, err)
	assert.Same(t, out, got)
	assert.Equal(t, 1, api.calls)
}

func TestExtractEmptyRegion(t *testing.T) {
	api := &fakeDescribeAPI{}

	_, err := NewInventoryExtractorWithFactory(factoryFor(api)).Extract(context.Background(), "")
	require.Error(t, err)
	assert.True(t, etlerr.Is(err, etlerr.KindRegionResolution))
	assert.ErrorIs(t, err, ErrNoRegion)
	assert.Zero(t, api.calls)
}

func TestExtractMissingRegionError(t *testing.T) {
	api := &fakeDescribeAPI{err: &aws.MissingRegionError{}}

	_, err := NewInventoryExtractorWithFactory(factoryFor(api)).Extract(context.Background(), "us-east-1")
	assert.True(t, etlerr.Is(err, etlerr.KindRegionResolution))
}

func TestExtractAPIError(t *testing.T) {
	api := &fakeDescribeAPI{err: &smithy.GenericAPIError{Code: "UnauthorizedOperation", Message: "denied"}}

	_, err := NewInventoryExtractorWithFactory(factoryFor(api)).Extract(context.Background(), "us-east-1")
	require.Error(t, err)
	assert.True(t, etlerr.Is(err, etlerr.KindExtraction))
	assert.Contains(t, err.Error(), "UnauthorizedOperation")
}

func TestExtractFactoryError(t *testing.T) {
	factory := func(context.Context, string) (*EC2Client, error) {
		return nil, errors.New("error loading AWS config: no credentials")
	}

	_, err := NewInventoryExtractorWithFactory(factory).Extract(context.Background(), "us-east-1")
	assert.True(t, etlerr.Is(err, etlerr.KindExtraction))
}

func TestExtractUnresolvableEndpoint(t *testing.T) {
	dnsErr := &net.DNSError{Err: "no such host", Name: "ec2.xx-nowhere-1.amazonaws.com", IsNotFound: true}
	api := &fakeDescribeAPI{err: fmt.Errorf("operation error EC2: DescribeInstances, %w", dnsErr)}

	_, err := NewInventoryExtractorWithFactory(factoryFor(api)).Extract(context.Background(), "xx-nowhere-1")
	assert.True(t, etlerr.Is(err, etlerr.KindRegionResolution))

	timeout := &net.DNSError{Err: "i/o timeout", Name: "ec2.us-east-1.amazonaws.com", IsTimeout: true}
	api = &fakeDescribeAPI{err: timeout}

	_, err = NewInventoryExtractorWithFactory(factoryFor(api)).Extract(context.Background(), "us-east-1")
	assert.True(t, etlerr.Is(err, etlerr.KindExtraction))
}
