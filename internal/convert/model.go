package convert

import (
	"encoding/json"
	"time"
)

// Conversion represents one file moving through the pipeline. The queue listing
// is ordered by Position, which preserves the order the files were selected in.
type Conversion struct {
	ID            string          `json:"id"`
	FileName      string          `json:"fileName"`
	MimeType      string          `json:"mimeType"`
	SizeBytes     int64           `json:"sizeBytes"`
	StorageKey    string          `json:"-"`
	Template      string          `json:"template"`
	Position      int             `json:"position"`
	Status        string          `json:"status"`
	StatusMessage string          `json:"statusMessage,omitempty"`
	ErrorMessage  *string         `json:"errorMessage,omitempty"`
	SourceHash    string          `json:"sourceHash,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
}
