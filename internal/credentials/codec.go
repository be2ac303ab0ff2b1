// Package credentials is the single seam through which user passwords reach
// the store. The default codec keeps the plaintext contract clients already
// depend on; switching to argon2id only touches configuration.
package credentials

import (
	"fmt"

	"github.com/angelmondragon/authdash-backend/pkg/config"
)

// Codec turns a submitted password into its stored form.
type Codec interface {
	Encode(password string) (string, error)
	// Matches reports whether password corresponds to the stored value.
	Matches(password, stored string) (bool, error)
	Name() string
}

// NewCodec picks the codec named by cfg.Storage.
func NewCodec(cfg config.PasswordConfig) (Codec, error) {
	switch cfg.Storage {
	case "", config.PasswordStoragePlaintext:
		return Plaintext{}, nil
	case config.PasswordStorageArgon2id:
		return NewArgon2id(cfg), nil
	default:
		return nil, fmt.Errorf("unknown password storage %q", cfg.Storage)
	}
}

// Plaintext stores passwords exactly as submitted.
type Plaintext struct{}

func (Plaintext) Encode(password string) (string, error) { return password, nil }

func (Plaintext) Matches(password, stored string) (bool, error) {
	return password == stored, nil
}

func (Plaintext) Name() string { return config.PasswordStoragePlaintext }
