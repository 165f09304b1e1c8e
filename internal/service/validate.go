package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"ossbridge/internal/files"
	"ossbridge/internal/storage"
)

// ValidateCredentials 先做本地校验，再列举一个对象确认凭据、bucket 与 endpoint 可用。
func (g *Gateway) ValidateCredentials(ctx context.Context) error {
	if err := g.creds.Validate(); err != nil {
		return fmt.Errorf("validate credentials: %w", err)
	}

	client, err := g.open(ctx, g.creds)
	if err != nil {
		return fmt.Errorf("validate credentials: %w", err)
	}

	err = client.Probe(ctx)
	observeStorage("list", err)
	if err == nil {
		return nil
	}

	switch status := storage.StatusCode(err); {
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: authentication failed, check access key id and secret: %w", files.ErrStorage, err)
	case status == http.StatusForbidden:
		return fmt.Errorf("%w: invalid access key id or secret: %w", files.ErrStorage, err)
	case status == http.StatusNotFound || errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: bucket %q does not exist or endpoint is wrong: %w", files.ErrStorage, g.creds.Bucket, err)
	case status != 0:
		return fmt.Errorf("%w: credential check failed [%d]: %w", files.ErrStorage, status, err)
	default:
		return fmt.Errorf("%w: credential check failed: %w", files.ErrStorage, err)
	}
}
