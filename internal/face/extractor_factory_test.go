package face

import (
	"context"
	"testing"

	"github.com/tryshirtonline/face-attandance/internal/config"
	"github.com/tryshirtonline/face-attandance/internal/extractor/deepface"
	"github.com/tryshirtonline/face-attandance/internal/extractor/local"
)

func TestNewExtractor_Local(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		extractorType string
	}{
		{
			name:          "explicit local extractor",
			extractorType: "local",
		},
		{
			name:          "empty extractor defaults to local",
			extractorType: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Extractor: tt.extractorType,
			}

			ext, err := NewExtractor(ctx, cfg)
			if err != nil {
				t.Fatalf("NewExtractor() error = %v", err)
			}

			if _, ok := ext.(*local.Extractor); !ok {
				t.Errorf("NewExtractor() returned type %T, want *local.Extractor", ext)
			}
			if ext.Name() != "local" {
				t.Errorf("Name() = %q, want %q", ext.Name(), "local")
			}
		})
	}
}

func TestNewExtractor_DeepFace(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		deepFaceURL string
	}{
		{
			name:        "default URL",
			deepFaceURL: "",
		},
		{
			name:        "custom URL",
			deepFaceURL: "http://custom-host:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Extractor:   "deepface",
				DeepFaceURL: tt.deepFaceURL,
			}

			ext, err := NewExtractor(ctx, cfg)
			if err != nil {
				t.Fatalf("NewExtractor() error = %v", err)
			}

			if _, ok := ext.(*deepface.Extractor); !ok {
				t.Errorf("NewExtractor() returned type %T, want *deepface.Extractor", ext)
			}
		})
	}
}

func TestNewExtractor_Unknown(t *testing.T) {
	cfg := &config.Config{
		Extractor: "hologram",
	}

	_, err := NewExtractor(context.Background(), cfg)
	if err == nil {
		t.Fatal("NewExtractor() expected error for unknown extractor type")
	}
}
