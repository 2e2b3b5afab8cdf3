package config

import (
	"github.com/pkg/errors"
)

// ValidateBucketConfig validates the S3 bucket configuration.
func ValidateBucketConfig(bucketConfig BucketConfig) error {
	if bucketConfig.AccessKey == "" {
		return errors.New("missing AccessKey in configuration")
	}
	if bucketConfig.SecretKey == "" {
		return errors.New("missing SecretKey in configuration")
	}
	if bucketConfig.Bucket == "" {
		return errors.New("missing Bucket in configuration")
	}
	if bucketConfig.Endpoint == "" {
		return errors.New("missing Endpoint in configuration")
	}
	return nil
}
