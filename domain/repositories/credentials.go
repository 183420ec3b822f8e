package repositories

import (
	"context"

	"github.com/satriahrh/linksense/domain/entities"
)

// CredentialSelector owns which API key the backends are called with.
type CredentialSelector interface {
	// Available lists the credential names that can be selected.
	Available(ctx context.Context) []string
	// HasSelected reports whether a usable credential is currently selected.
	HasSelected(ctx context.Context) bool
	// EnsureSelected selects the first usable credential when none is.
	EnsureSelected(ctx context.Context) error
	Select(ctx context.Context, name string) error
	Current(ctx context.Context) (entities.Credential, error)
}
