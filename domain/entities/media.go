package entities

import (
	"fmt"
	"time"
)

// Teaser is a generated video stored in the media store.
type Teaser struct {
	MediaID   string    `json:"media_id"`
	MIMEType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	Prompt    string    `json:"prompt"`
	Operation string    `json:"operation,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Credential is a named API key used for one backend call.
type Credential struct {
	Name   string
	APIKey string
}

// String never prints the key.
func (c Credential) String() string {
	if c.APIKey == "" {
		return fmt.Sprintf("%s(empty)", c.Name)
	}
	return fmt.Sprintf("%s(****)", c.Name)
}

// Valid reports whether the credential carries a key.
func (c Credential) Valid() bool {
	return c.APIKey != ""
}
