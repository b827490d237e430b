package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

const (
	testAccount = "000011112222"
	testRegion  = "us-east-1"

	greengrassPrefix = "/greengrass/v2/"
)

// fakeAWS serves the subset of Secrets Manager, STS and Greengrass used by
// the tools from one endpoint, the way a local emulator does.
type fakeAWS struct {
	t *testing.T

	mu sync.Mutex
	// secrets maps secret names to their string values.
	secrets map[string]string
	// deployments maps deployment ids to GetDeployment responses.
	deployments map[string]map[string]any
	// latest is the deployment id returned by ListDeployments.
	latest string
	// statuses are returned in order for the created deployment, the last one repeats.
	statuses []string
	// versions maps public component names to their listed versions, newest first.
	versions map[string][]string

	// created collects CreateDeployment request bodies.
	created []map[string]any
	// operations records every call in order.
	operations []string
	polls      int
}

func newFakeAWS(t *testing.T) (*fakeAWS, *httptest.Server) {
	t.Helper()

	fake := &fakeAWS{
		t:           t,
		secrets:     make(map[string]string),
		deployments: make(map[string]map[string]any),
		versions:    make(map[string][]string),
	}

	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	return fake, server
}

func (f *fakeAWS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case r.Header.Get("X-Amz-Target") != "":
		f.serveSecrets(w, strings.TrimPrefix(r.Header.Get("X-Amz-Target"), "secretsmanager."), body)
	case strings.HasPrefix(r.URL.Path, greengrassPrefix):
		f.serveGreengrass(w, r, body)
	default:
		f.serveSTS(w, body)
	}
}

func (f *fakeAWS) serveSecrets(w http.ResponseWriter, operation string, body []byte) {
	f.operations = append(f.operations, operation)

	var input struct {
		Name         string
		SecretID     string `json:"SecretId"`
		SecretString string
	}

	require.NoError(f.t, json.Unmarshal(body, &input))

	switch operation {
	case "ListSecrets":
		list := make([]map[string]string, 0, len(f.secrets))
		for name := range f.secrets {
			list = append(list, map[string]string{"Name": name, "ARN": secretARN(name)})
		}

		writeJSON(w, http.StatusOK, map[string]any{"SecretList": list})
	case "CreateSecret":
		f.secrets[input.Name] = input.SecretString
		writeJSON(w, http.StatusOK, map[string]string{"ARN": secretARN(input.Name), "Name": input.Name})
	case "UpdateSecret":
		f.secrets[input.SecretID] = input.SecretString
		writeJSON(w, http.StatusOK, map[string]string{"ARN": secretARN(input.SecretID), "Name": input.SecretID})
	case "GetSecretValue":
		name := input.SecretID
		if strings.HasPrefix(name, "arn:") {
			name = strings.TrimSuffix(name[strings.LastIndex(name, ":")+1:], "-AbCdEf")
		}

		value, ok := f.secrets[name]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"__type":  "ResourceNotFoundException",
				"message": "Secrets Manager can't find the specified secret.",
			})

			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"ARN":          secretARN(name),
			"Name":         name,
			"SecretString": value,
			"VersionId":    "v1",
		})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"__type": "InvalidRequestException"})
	}
}

func (f *fakeAWS) serveGreengrass(w http.ResponseWriter, r *http.Request, body []byte) {
	path := strings.TrimPrefix(r.URL.Path, greengrassPrefix)

	switch {
	case r.Method == http.MethodGet && path == "deployments":
		f.operations = append(f.operations, "ListDeployments")
		require.Equal(f.t, "LATEST_ONLY", r.URL.Query().Get("historyFilter"))

		deployments := []map[string]string{}
		if f.latest != "" {
			deployments = append(deployments, map[string]string{
				"deploymentId": f.latest,
				"targetArn":    r.URL.Query().Get("targetArn"),
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{"deployments": deployments})
	case r.Method == http.MethodGet && strings.HasPrefix(path, "deployments/"):
		f.operations = append(f.operations, "GetDeployment")
		f.getDeployment(w, strings.TrimPrefix(path, "deployments/"))
	case r.Method == http.MethodPost && path == "deployments":
		f.operations = append(f.operations, "CreateDeployment")

		var input map[string]any

		require.NoError(f.t, json.Unmarshal(body, &input))
		f.created = append(f.created, input)

		writeJSON(w, http.StatusCreated, map[string]string{"deploymentId": "the-pot"})
	case r.Method == http.MethodGet && strings.HasPrefix(path, "components/") && strings.HasSuffix(path, "/versions"):
		f.operations = append(f.operations, "ListComponentVersions")

		arn, err := url.PathUnescape(strings.TrimSuffix(strings.TrimPrefix(path, "components/"), "/versions"))
		require.NoError(f.t, err)

		name := arn[strings.LastIndex(arn, ":")+1:]
		versions := make([]map[string]string, 0, len(f.versions[name]))

		for _, version := range f.versions[name] {
			versions = append(versions, map[string]string{
				"componentName":    name,
				"componentVersion": version,
				"arn":              arn + ":versions:" + version,
			})
		}

		writeJSON(w, http.StatusOK, map[string]any{"componentVersions": versions})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}
}

func (f *fakeAWS) getDeployment(w http.ResponseWriter, id string) {
	if id == "the-pot" {
		status := f.statuses[min(f.polls, len(f.statuses)-1)]
		f.polls++

		writeJSON(w, http.StatusOK, map[string]string{"deploymentId": id, "deploymentStatus": status})

		return
	}

	deployment, ok := f.deployments[id]
	if !ok {
		w.Header().Set("X-Amzn-Errortype", "ResourceNotFoundException")
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "deployment not found"})

		return
	}

	writeJSON(w, http.StatusOK, deployment)
}

func (f *fakeAWS) serveSTS(w http.ResponseWriter, body []byte) {
	values, err := url.ParseQuery(string(body))
	require.NoError(f.t, err)
	require.Equal(f.t, "GetCallerIdentity", values.Get("Action"))

	f.operations = append(f.operations, "GetCallerIdentity")

	w.Header().Set("Content-Type", "text/xml")
	_, _ = io.WriteString(w, `<GetCallerIdentityResponse xmlns="https://sts.amazonaws.com/doc/2011-06-15/">
  <GetCallerIdentityResult>
    <Arn>arn:aws:iam::`+testAccount+`:user/operator</Arn>
    <UserId>AIDAEXAMPLE</UserId>
    <Account>`+testAccount+`</Account>
  </GetCallerIdentityResult>
  <ResponseMetadata>
    <RequestId>01234567-89ab-cdef-0123-456789abcdef</RequestId>
  </ResponseMetadata>
</GetCallerIdentityResponse>`)
}

// snapshot returns a copy of the recorded operations.
func (f *fakeAWS) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.operations...)
}

func secretARN(name string) string {
	return "arn:aws:secretsmanager:" + testRegion + ":" + testAccount + ":secret:" + name + "-AbCdEf"
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/x-amz-json-1.1")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(value)
}

// useFakeAWS points the AWS credential chain at static test credentials.
func useFakeAWS(t *testing.T) {
	t.Helper()

	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "wJalrXUtnFEMI/K7MDENG/bPxRfiCYEXAMPLEKEY")
	t.Setenv("AWS_SESSION_TOKEN", "")
	t.Setenv("AWS_MAX_ATTEMPTS", "1")
}

// writeFile creates path with contents, including parent directories.
func writeFile(t *testing.T, path, contents string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}
