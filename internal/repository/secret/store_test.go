package secret

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/require"
)

const (
	testName        = "greengrass-home-assistant"
	testDescription = "Secure configuration"
	testValue       = "foobar"
	testARN         = "arn:aws:secretsmanager:us-east-1:000011112222:secret:greengrass-home-assistant-AbCdEf"
)

// fakeAPI records calls and serves canned Secrets Manager responses.
type fakeAPI struct {
	// pages are returned one per ListSecrets call, chained with NextToken.
	pages [][]string
	// value is returned by GetSecretValue.
	value string
	err   error

	creates []*secretsmanager.CreateSecretInput
	updates []*secretsmanager.UpdateSecretInput
	gets    []string
	lists   int
}

func (f *fakeAPI) GetSecretValue(
	_ context.Context,
	params *secretsmanager.GetSecretValueInput,
	_ ...func(*secretsmanager.Options),
) (*secretsmanager.GetSecretValueOutput, error) {
	f.gets = append(f.gets, aws.ToString(params.SecretId))
	if f.err != nil {
		return nil, f.err
	}

	return &secretsmanager.GetSecretValueOutput{
		ARN:          aws.String(testARN),
		Name:         params.SecretId,
		SecretString: aws.String(f.value),
	}, nil
}

func (f *fakeAPI) CreateSecret(
	_ context.Context,
	params *secretsmanager.CreateSecretInput,
	_ ...func(*secretsmanager.Options),
) (*secretsmanager.CreateSecretOutput, error) {
	f.creates = append(f.creates, params)
	if f.err != nil {
		return nil, f.err
	}

	return &secretsmanager.CreateSecretOutput{ARN: aws.String(testARN), Name: params.Name}, nil
}

func (f *fakeAPI) UpdateSecret(
	_ context.Context,
	params *secretsmanager.UpdateSecretInput,
	_ ...func(*secretsmanager.Options),
) (*secretsmanager.UpdateSecretOutput, error) {
	f.updates = append(f.updates, params)
	if f.err != nil {
		return nil, f.err
	}

	return &secretsmanager.UpdateSecretOutput{ARN: aws.String(testARN), Name: params.SecretId}, nil
}

func (f *fakeAPI) ListSecrets(
	_ context.Context,
	_ *secretsmanager.ListSecretsInput,
	_ ...func(*secretsmanager.Options),
) (*secretsmanager.ListSecretsOutput, error) {
	output := new(secretsmanager.ListSecretsOutput)
	if f.lists >= len(f.pages) {
		return output, nil
	}

	for _, name := range f.pages[f.lists] {
		output.SecretList = append(output.SecretList, types.SecretListEntry{Name: aws.String(name)})
	}

	f.lists++
	if f.lists < len(f.pages) {
		output.NextToken = aws.String(fmt.Sprintf("page-%d", f.lists))
	}

	return output, nil
}

// TestStore_Get returns value and ARN, and maps a missing secret to ErrSecretNotFound.
func TestStore_Get(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{value: testValue}
	store := NewStore(api, testName, testDescription)

	got, err := store.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, testARN, got.ARN)
	require.Equal(t, testValue, got.Value)
	require.Equal(t, []string{testName}, api.gets)

	api.err = &types.ResourceNotFoundException{Message: aws.String("mocked error")}

	_, err = store.Get(context.Background())
	require.ErrorIs(t, err, ErrSecretNotFound)

	api.err = errors.New("mocked error")

	_, err = store.Get(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrSecretNotFound)
}

// TestStore_Exists is true iff the fixed name is listed, on any page.
func TestStore_Exists(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		pages [][]string
		want  bool
	}{
		{name: "empty", pages: nil, want: false},
		{name: "others only", pages: [][]string{{"a", "b"}}, want: false},
		{name: "prefix is not a match", pages: [][]string{{testName + "-old"}}, want: false},
		{name: "first page", pages: [][]string{{"a", testName}}, want: true},
		{name: "later page", pages: [][]string{{"a"}, {"b"}, {testName}}, want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := NewStore(&fakeAPI{pages: tc.pages}, testName, testDescription)

			exists, err := store.Exists(context.Background())
			require.NoError(t, err)
			require.Equal(t, tc.want, exists)
		})
	}
}

// TestStore_Put creates when the secret is absent and updates when present, never both.
func TestStore_Put(t *testing.T) {
	t.Parallel()

	api := new(fakeAPI)
	store := NewStore(api, testName, testDescription)

	got, err := store.Put(context.Background(), testValue)
	require.NoError(t, err)
	require.Equal(t, testARN, got.ARN)
	require.Len(t, api.creates, 1)
	require.Empty(t, api.updates)
	require.Equal(t, testName, aws.ToString(api.creates[0].Name))
	require.Equal(t, testValue, aws.ToString(api.creates[0].SecretString))
	require.Equal(t, testDescription, aws.ToString(api.creates[0].Description))

	api = &fakeAPI{pages: [][]string{{testName}}}
	store = NewStore(api, testName, testDescription)

	got, err = store.Put(context.Background(), testValue)
	require.NoError(t, err)
	require.Equal(t, testARN, got.ARN)
	require.Empty(t, api.creates)
	require.Len(t, api.updates, 1)
	require.Equal(t, testName, aws.ToString(api.updates[0].SecretId))
	require.Equal(t, testValue, aws.ToString(api.updates[0].SecretString))
	require.Equal(t, testDescription, aws.ToString(api.updates[0].Description))
}

// TestStore_PutFails propagates create and update errors.
func TestStore_PutFails(t *testing.T) {
	t.Parallel()

	mocked := errors.New("mocked error")

	api := &fakeAPI{err: mocked}
	_, err := NewStore(api, testName, testDescription).Put(context.Background(), testValue)
	require.ErrorIs(t, err, mocked)
	require.Len(t, api.creates, 1)

	api = &fakeAPI{err: mocked, pages: [][]string{{testName}}}
	_, err = NewStore(api, testName, testDescription).Put(context.Background(), testValue)
	require.ErrorIs(t, err, mocked)
	require.Len(t, api.updates, 1)
}
