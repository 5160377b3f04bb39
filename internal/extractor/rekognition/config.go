package rekognition

// Config holds configuration for the AWS Rekognition extractor
type Config struct {
	// Region is the AWS region where Rekognition will be called (e.g., "us-east-1")
	Region string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region: "us-east-1",
	}
}
