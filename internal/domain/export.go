package domain

import (
	"context"
	"io"
	"time"
)

// HistoryExport describes an uploaded spend history file
type HistoryExport struct {
	ObjectPath  string    `json:"objectPath"`
	URL         string    `json:"url"`
	RecordCount int       `json:"recordCount"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ExportRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}
