package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/EsotericSoftware/wildcard/pkg/logx"
)

// Config holds the global configuration for the application.
type Config struct {
	// Log contains logging-related configuration.
	Log *logx.LoggingConfig
	// Scan contains the defaults applied to every scan.
	Scan *ScanConfig
	// S3 contains the optional S3 upload target.
	S3 *BucketConfig
}

// ScanConfig holds the defaults applied to every scan invocation.
type ScanConfig struct {
	// DefaultExcludes are appended to the exclude set of every wildcard scan.
	DefaultExcludes []string
	// CaseInsensitive folds path segments before comparison.
	CaseInsensitive bool
	// FailFast aborts a scan on the first unreadable directory.
	FailFast bool
}

// BucketConfig holds the configuration for an S3-compatible bucket.
type BucketConfig struct {
	// Enabled indicates whether the bucket is enabled.
	Enabled bool
	// Bucket is the name of the bucket.
	Bucket string
	// Region is the region of the bucket.
	Region string
	// Prefix is the prefix for objects in the bucket.
	Prefix string
	// Endpoint is the endpoint for the bucket.
	Endpoint string
	// AccessKey names the environment variable holding the access key.
	AccessKey string
	// SecretKey names the environment variable holding the secret key.
	SecretKey string
	// UseSSL enables SSL for the bucket connection.
	UseSSL bool
	// MaxRetries is the maximum number of retries for bucket operations.
	MaxRetries int
}

var config = Config{
	Log: &logx.LoggingConfig{
		Level:          "info",
		ConsoleLogging: true,
		FileLogging:    false,
	},
	Scan: &ScanConfig{},
	S3:   &BucketConfig{},
}

// Initialize loads the configuration from the specified file.
func Initialize(path string) error {
	viper.Reset()
	viper.SetConfigFile(path)
	viper.SetEnvPrefix("wildcard")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	initializeNestedStructs()
	overrideWithEnvVars()

	return nil
}

// initializeNestedStructs ensures all nested structs are initialized.
func initializeNestedStructs() {
	if config.Log == nil {
		config.Log = &logx.LoggingConfig{Level: "info", ConsoleLogging: true}
	}
	if config.Scan == nil {
		config.Scan = &ScanConfig{}
	}
	if config.S3 == nil {
		config.S3 = &BucketConfig{}
	}
}

// overrideWithEnvVars resolves sensitive fields through environment
// variables: the config file names the variable, never the secret itself.
func overrideWithEnvVars() {
	if config.S3.AccessKey != "" {
		config.S3.AccessKey = os.Getenv(config.S3.AccessKey)
	}
	if config.S3.SecretKey != "" {
		config.S3.SecretKey = os.Getenv(config.S3.SecretKey)
	}
}

// Get returns the loaded configuration.
func Get() Config {
	return config
}
