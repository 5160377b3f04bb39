package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrServiceUnavailable indicates that the Rekognition API could not be reached
	ErrServiceUnavailable = errors.New("rekognition service unavailable")
)
