package store

import (
	"context"
	"fmt"

	"github.com/planMaster/backend/pkg/encrypt"
)

// EncryptedKV wraps another KV and encrypts values at rest with AES-GCM.
// Plan content and requirement text can carry proprietary code, so deployments
// sharing a Redis or MySQL instance can opt in via storage.aes_key.
type EncryptedKV struct {
	inner KV
	key   string
}

func NewEncryptedKV(inner KV, key string) *EncryptedKV {
	return &EncryptedKV{inner: inner, key: key}
}

func (e *EncryptedKV) Get(ctx context.Context, key string) (string, bool, error) {
	val, ok, err := e.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}
	plain, err := encrypt.AESDecrypt(e.key, val)
	if err != nil {
		return "", false, fmt.Errorf("decrypt %s: %w", key, err)
	}
	return plain, true, nil
}

func (e *EncryptedKV) Set(ctx context.Context, key, value string) error {
	sealed, err := encrypt.AESEncrypt(e.key, value)
	if err != nil {
		return fmt.Errorf("encrypt %s: %w", key, err)
	}
	return e.inner.Set(ctx, key, sealed)
}

func (e *EncryptedKV) Remove(ctx context.Context, key string) error {
	return e.inner.Remove(ctx, key)
}

var _ KV = (*EncryptedKV)(nil)
