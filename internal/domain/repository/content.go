package repository

import "context"

// ContentRepository backs the content provider with raw key lookups.
type ContentRepository interface {
	ConfigValue(ctx context.Context, key string) (string, error)
	MessageText(ctx context.Context, key string) (string, error)
	UILabels(ctx context.Context) (map[string]string, error)
	Provinces(ctx context.Context) ([]string, error)
}
