package credentials

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
)

type secretAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// SecretManagerKeyring resolves each credential name as a Secret Manager
// secret id in project, using its latest version.
type SecretManagerKeyring struct {
	*Keyring
	client *secretmanager.Client
}

// NewSecretManagerKeyring connects to Secret Manager with application default credentials.
func NewSecretManagerKeyring(ctx context.Context, project string, names []string, logger *zap.Logger) (*SecretManagerKeyring, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}

	logger.Info("Using Secret Manager credentials",
		zap.String("project", project),
		zap.Strings("names", names))

	return &SecretManagerKeyring{
		Keyring: NewKeyring(names, secretResolver(client, project), logger),
		client:  client,
	}, nil
}

func (s *SecretManagerKeyring) Close() error {
	return s.client.Close()
}

func secretResolver(accessor secretAccessor, project string) Resolver {
	return func(ctx context.Context, name string) (string, error) {
		resp, err := accessor.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
			Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, name),
		})
		if err != nil {
			return "", fmt.Errorf("failed to access secret %s: %w", name, err)
		}
		if resp.GetPayload() == nil {
			return "", nil
		}
		return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
	}
}
