package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	buckets   []string
	putErr    error
	created   []*s3.CreateBucketInput
	keys      []string
	bodies    []string
	listCalls int
}

func (f *fakeAPI) ListBuckets(
	_ context.Context,
	_ *s3.ListBucketsInput,
	_ ...func(*s3.Options),
) (*s3.ListBucketsOutput, error) {
	f.listCalls++

	output := new(s3.ListBucketsOutput)
	for _, name := range f.buckets {
		output.Buckets = append(output.Buckets, types.Bucket{Name: aws.String(name)})
	}

	return output, nil
}

func (f *fakeAPI) CreateBucket(
	_ context.Context,
	params *s3.CreateBucketInput,
	_ ...func(*s3.Options),
) (*s3.CreateBucketOutput, error) {
	f.created = append(f.created, params)
	return new(s3.CreateBucketOutput), nil
}

func (f *fakeAPI) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}

	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}

	f.keys = append(f.keys, aws.ToString(params.Key))
	f.bodies = append(f.bodies, string(body))

	return new(s3.PutObjectOutput), nil
}

func TestStore_EnsureExists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		region     string
		buckets    []string
		wantCreate bool
		wantLoc    types.BucketLocationConstraint
	}{
		{
			name:    "bucket already present",
			region:  "eu-west-1",
			buckets: []string{"other", "ha-artifacts-1-eu-west-1"},
		},
		{
			name:       "created in us-east-1 without constraint",
			region:     "us-east-1",
			buckets:    []string{"other"},
			wantCreate: true,
		},
		{
			name:       "created elsewhere with constraint",
			region:     "eu-west-1",
			wantCreate: true,
			wantLoc:    types.BucketLocationConstraint("eu-west-1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			api := &fakeAPI{buckets: tt.buckets}
			bucket := "ha-artifacts-1-" + tt.region
			store := NewStore(api, bucket, tt.region)
			require.NoError(t, store.EnsureExists(context.Background()))
			require.Equal(t, 1, api.listCalls)

			if !tt.wantCreate {
				require.Empty(t, api.created)
				return
			}

			require.Len(t, api.created, 1)
			require.Equal(t, bucket, aws.ToString(api.created[0].Bucket))

			if tt.wantLoc == "" {
				require.Nil(t, api.created[0].CreateBucketConfiguration)
				return
			}

			require.Equal(t, tt.wantLoc, api.created[0].CreateBucketConfiguration.LocationConstraint)
		})
	}
}

func TestStore_Upload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "home-assistant.zip")
	require.NoError(t, os.WriteFile(path, []byte("zip bytes"), 0o600))

	api := new(fakeAPI)
	store := NewStore(api, "bucket", "us-east-1")

	require.Equal(t, "bucket", store.Name())
	require.NoError(t, store.Upload(context.Background(), path, "1.0.0/home-assistant.zip"))
	require.Equal(t, []string{"1.0.0/home-assistant.zip"}, api.keys)
	require.Equal(t, []string{"zip bytes"}, api.bodies)
}

func TestStore_Upload_Errors(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{putErr: errors.New("denied")}
	store := NewStore(api, "bucket", "us-east-1")

	err := store.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.zip"), "key")
	require.ErrorContains(t, err, "open artifact")

	path := filepath.Join(t.TempDir(), "a.zip")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	err = store.Upload(context.Background(), path, "key")
	require.ErrorContains(t, err, "denied")
}
