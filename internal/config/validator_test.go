package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validBucketConfig() BucketConfig {
	return BucketConfig{
		Enabled:   true,
		Bucket:    "backups",
		Endpoint:  "s3.example.com",
		AccessKey: "ak",
		SecretKey: "sk",
	}
}

func TestValidateBucketConfig(t *testing.T) {
	assert.NoError(t, ValidateBucketConfig(validBucketConfig()))

	tests := []struct {
		name   string
		mutate func(*BucketConfig)
		want   string
	}{
		{"missing access key", func(c *BucketConfig) { c.AccessKey = "" }, "missing AccessKey"},
		{"missing secret key", func(c *BucketConfig) { c.SecretKey = "" }, "missing SecretKey"},
		{"missing bucket", func(c *BucketConfig) { c.Bucket = "" }, "missing Bucket"},
		{"missing endpoint", func(c *BucketConfig) { c.Endpoint = "" }, "missing Endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBucketConfig()
			tt.mutate(&cfg)
			err := ValidateBucketConfig(cfg)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
