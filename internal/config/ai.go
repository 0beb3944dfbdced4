package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AISettingsKey is the shared-settings key holding AI provider settings.
const AISettingsKey = "schemapilot:ai:config"

const aiFileName = "ai-config.json"

// AIConfig holds the settings of the external text-drafting service.
type AIConfig struct {
	Provider       string `yaml:"provider,omitempty" json:"provider,omitempty"`
	Model          string `yaml:"model,omitempty" json:"model,omitempty"`
	APIKey         string `yaml:"api_key,omitempty" json:"apiKey,omitempty"`
	BaseURL        string `yaml:"base_url,omitempty" json:"baseUrl,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty" json:"timeoutSeconds,omitempty"`
}

// Complete reports whether the settings are usable.
func (a AIConfig) Complete() bool {
	return a.Provider != "" && a.Model != "" && a.APIKey != ""
}

// Timeout returns the request timeout, 60s when unset.
func (a AIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// AISource names where resolved AI settings came from.
type AISource string

const (
	AISourceRequest AISource = "request"
	AISourceShared  AISource = "shared"
	AISourceFile    AISource = "file"
	AISourceNone    AISource = "none"
)

// SettingsGetter reads shared settings. Implemented by the redis adapter.
type SettingsGetter interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
}

// SettingsPutter writes shared settings. Implemented by the redis adapter.
type SettingsPutter interface {
	PutSetting(ctx context.Context, key, value string) error
}

// AIFilePath returns the process-local fallback file for a working directory.
func AIFilePath(dir string) string {
	return filepath.Join(dir, dirName, aiFileName)
}

// ResolveAISettings picks AI settings by precedence: the request-supplied value,
// then the shared settings store, then the local fallback file. The first
// complete value wins. shared may be nil when no cache is configured.
func ResolveAISettings(ctx context.Context, request AIConfig, shared SettingsGetter, fallbackFile string) (AIConfig, AISource) {
	if request.Complete() {
		return request, AISourceRequest
	}

	if shared != nil {
		if raw, found, err := shared.GetSetting(ctx, AISettingsKey); err == nil && found {
			var ai AIConfig
			if json.Unmarshal([]byte(raw), &ai) == nil && ai.Complete() {
				return ai, AISourceShared
			}
		}
	}

	if fallbackFile != "" {
		if data, err := os.ReadFile(fallbackFile); err == nil {
			var ai AIConfig
			if json.Unmarshal(data, &ai) == nil && ai.Complete() {
				return ai, AISourceFile
			}
		}
	}

	return AIConfig{}, AISourceNone
}

// SaveAISettings stores AI settings in the shared store when one is given,
// otherwise in the local fallback file.
func SaveAISettings(ctx context.Context, ai AIConfig, shared SettingsPutter, fallbackFile string) error {
	if !ai.Complete() {
		return errors.New("ai settings require provider, model and api key")
	}
	data, err := json.Marshal(ai)
	if err != nil {
		return fmt.Errorf("failed to marshal ai settings: %w", err)
	}

	if shared != nil {
		if err := shared.PutSetting(ctx, AISettingsKey, string(data)); err != nil {
			return fmt.Errorf("failed to store ai settings: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(fallbackFile), 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", dirName, err)
	}
	if err := os.WriteFile(fallbackFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write ai settings: %w", err)
	}
	return nil
}
