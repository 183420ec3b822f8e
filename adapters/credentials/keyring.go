// Package credentials selects which Gemini API key backend calls use.
package credentials

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/linksense/domain"
	"github.com/satriahrh/linksense/domain/entities"
	"github.com/satriahrh/linksense/domain/repositories"
)

// DefaultName is the credential backed by GEMINI_API_KEY.
const DefaultName = "default"

// Resolver fetches the key stored under name. An empty key means unusable.
type Resolver func(ctx context.Context, name string) (string, error)

// Keyring is a named set of keys with one current selection. Resolved keys
// are cached.
type Keyring struct {
	mu       sync.RWMutex
	names    []string
	resolve  Resolver
	cache    map[string]string
	selected string
	logger   *zap.Logger
}

var _ repositories.CredentialSelector = (*Keyring)(nil)

// NewKeyring creates a keyring over names. The first name is pre-selected.
func NewKeyring(names []string, resolve Resolver, logger *zap.Logger) *Keyring {
	k := &Keyring{
		names:   append([]string(nil), names...),
		resolve: resolve,
		cache:   make(map[string]string),
		logger:  logger,
	}
	if len(names) > 0 {
		k.selected = names[0]
	}
	return k
}

// NewEnvKeyring reads GEMINI_API_KEY as "default" and GEMINI_API_KEY_<NAME>
// for each extra name.
func NewEnvKeyring(lookup func(string) (string, bool), names []string, logger *zap.Logger) *Keyring {
	all := []string{DefaultName}
	for _, n := range names {
		if n != DefaultName {
			all = append(all, n)
		}
	}

	resolve := func(_ context.Context, name string) (string, error) {
		key := "GEMINI_API_KEY"
		if name != DefaultName {
			key = "GEMINI_API_KEY_" + strings.ToUpper(name)
		}
		v, _ := lookup(key)
		return strings.TrimSpace(v), nil
	}

	return NewKeyring(all, resolve, logger)
}

func (k *Keyring) Available(ctx context.Context) []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return append([]string(nil), k.names...)
}

func (k *Keyring) HasSelected(ctx context.Context) bool {
	k.mu.RLock()
	selected := k.selected
	k.mu.RUnlock()

	if selected == "" {
		return false
	}
	key, err := k.key(ctx, selected)
	return err == nil && key != ""
}

func (k *Keyring) EnsureSelected(ctx context.Context) error {
	if k.HasSelected(ctx) {
		return nil
	}
	for _, name := range k.Available(ctx) {
		key, err := k.key(ctx, name)
		if err != nil {
			k.logger.Warn("Credential not resolvable", zap.String("name", name), zap.Error(err))
			continue
		}
		if key == "" {
			continue
		}
		k.mu.Lock()
		k.selected = name
		k.mu.Unlock()
		k.logger.Info("Credential selected", zap.String("name", name))
		return nil
	}
	return domain.ErrNoCredential
}

func (k *Keyring) Select(ctx context.Context, name string) error {
	if !k.known(name) {
		return fmt.Errorf("credential %q: %w", name, repositories.ErrNotFound)
	}
	key, err := k.key(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to resolve credential %q: %w", name, err)
	}
	if key == "" {
		return fmt.Errorf("credential %q has no key: %w", name, domain.ErrNoCredential)
	}

	k.mu.Lock()
	k.selected = name
	k.mu.Unlock()
	k.logger.Info("Credential selected", zap.String("name", name))
	return nil
}

func (k *Keyring) Current(ctx context.Context) (entities.Credential, error) {
	k.mu.RLock()
	selected := k.selected
	k.mu.RUnlock()

	if selected == "" {
		return entities.Credential{}, domain.ErrNoCredential
	}
	key, err := k.key(ctx, selected)
	if err != nil {
		return entities.Credential{}, fmt.Errorf("failed to resolve credential %q: %w", selected, err)
	}
	if key == "" {
		return entities.Credential{}, fmt.Errorf("credential %q has no key: %w", selected, domain.ErrNoCredential)
	}
	return entities.Credential{Name: selected, APIKey: key}, nil
}

func (k *Keyring) known(name string) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	for _, n := range k.names {
		if n == name {
			return true
		}
	}
	return false
}

func (k *Keyring) key(ctx context.Context, name string) (string, error) {
	k.mu.RLock()
	key, ok := k.cache[name]
	k.mu.RUnlock()
	if ok {
		return key, nil
	}

	key, err := k.resolve(ctx, name)
	if err != nil {
		return "", err
	}

	if key != "" {
		k.mu.Lock()
		k.cache[name] = key
		k.mu.Unlock()
	}
	return key, nil
}
