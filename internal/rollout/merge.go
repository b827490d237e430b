package rollout

import (
	"strings"

	"github.com/goccy/go-json"
)

const cloudSecretsKey = "cloudSecrets"

type cloudSecret struct {
	ARN string `json:"arn"`
}

// MergeCloudSecret returns the secret manager merge document with arn added
// to its cloudSecrets list, and whether it was added.
//
// A document that already mentions arn anywhere is returned unchanged, even
// when the match is not a cloudSecrets entry. Other keys are preserved.
func MergeCloudSecret(merge, arn string) (string, bool, error) {
	if merge != "" && strings.Contains(merge, arn) {
		return merge, false, nil
	}

	document := make(map[string]json.RawMessage)
	if strings.TrimSpace(merge) != "" {
		if err := json.Unmarshal([]byte(merge), &document); err != nil {
			return "", false, err
		}
	}

	var secrets []json.RawMessage
	if raw, ok := document[cloudSecretsKey]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &secrets); err != nil {
			return "", false, err
		}
	}

	entry, err := json.Marshal(cloudSecret{ARN: arn})
	if err != nil {
		return "", false, err
	}

	secrets = append(secrets, entry)

	list, err := json.Marshal(secrets)
	if err != nil {
		return "", false, err
	}

	document[cloudSecretsKey] = list

	result, err := json.Marshal(document)
	if err != nil {
		return "", false, err
	}

	return string(result), true, nil
}
