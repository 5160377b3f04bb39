package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Extractor backend: local, deepface or rekognition
	Extractor   string `envconfig:"EXTRACTOR" default:"local"`
	DeepFaceURL string `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	AWSRegion   string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Matching
	MatchThreshold float64 `envconfig:"MATCH_THRESHOLD" default:"0.65"`

	// Liveness
	BlinkClosureThreshold float64 `envconfig:"BLINK_CLOSURE_THRESHOLD" default:"0.25"`
	BlinkMinConsecutive   int     `envconfig:"BLINK_MIN_CONSECUTIVE" default:"3"`
	BlinkValidityFrames   int     `envconfig:"BLINK_VALIDITY_FRAMES" default:"30"`

	// Operator auth
	JWTSecret    string        `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer    string        `envconfig:"JWT_ISSUER" default:"face-attendance"`
	JWTExpiresIn time.Duration `envconfig:"JWT_EXPIRES_IN" default:"24h"`

	// Abuse controls
	AttemptRateLimit  int           `envconfig:"ATTEMPT_RATE_LIMIT" default:"30"`
	AttemptRateWindow time.Duration `envconfig:"ATTEMPT_RATE_WINDOW" default:"1m"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
