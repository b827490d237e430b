package cloud

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
)

const (
	// publicAccount replaces the account id in ARNs of AWS-provided components.
	publicAccount = "aws"
	// defaultBucketRegion needs no location constraint when creating a bucket.
	defaultBucketRegion = "us-east-1"
)

// ComponentVersionARN identifies one version of a private component.
func ComponentVersionARN(region, account, name, version string) string {
	return fmt.Sprintf("arn:aws:greengrass:%s:%s:components:%s:versions:%s", region, account, name, version)
}

// PublicComponentARN identifies an AWS-provided component across all of its versions.
func PublicComponentARN(region, name string) string {
	return fmt.Sprintf("arn:aws:greengrass:%s:%s:components:%s", region, publicAccount, name)
}

// ThingARN identifies an IoT thing, the target of a single-device deployment.
func ThingARN(region, account, thingName string) string {
	return fmt.Sprintf("arn:aws:iot:%s:%s:thing/%s", region, account, thingName)
}

// BucketName returns the per-account, per-region artifact bucket name.
func BucketName(prefix, account, region string) string {
	return prefix + "-" + account + "-" + region
}

// NeedsLocationConstraint reports whether bucket creation in region must name the region.
func NeedsLocationConstraint(region string) bool {
	return region != "" && region != defaultBucketRegion
}

// RegionFromARN returns the region of a resource ARN, or false when id is not an ARN.
func RegionFromARN(id string) (string, bool) {
	if !arn.IsARN(id) {
		return "", false
	}

	parsed, err := arn.Parse(id)
	if err != nil || parsed.Region == "" {
		return "", false
	}

	return parsed.Region, true
}
