package secondary

import "context"

// SettingsStore is a key/value store for shared operator settings
// (for example the AI provider settings kept in the cache server).
type SettingsStore interface {
	// GetSetting returns the raw value, or found=false when absent.
	GetSetting(ctx context.Context, key string) (value string, found bool, err error)

	// PutSetting stores a raw value.
	PutSetting(ctx context.Context, key, value string) error
}
