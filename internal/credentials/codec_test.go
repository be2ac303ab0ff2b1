package credentials_test

import (
	"strings"
	"testing"

	"github.com/angelmondragon/authdash-backend/internal/credentials"
	"github.com/angelmondragon/authdash-backend/pkg/config"
)

func TestPlaintextIsIdentity(t *testing.T) {
	codec, err := credentials.NewCodec(config.PasswordConfig{})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	if codec.Name() != config.PasswordStoragePlaintext {
		t.Fatalf("expected plaintext default, got %s", codec.Name())
	}
	stored, err := codec.Encode("YourDefaultPassword")
	if err != nil || stored != "YourDefaultPassword" {
		t.Fatalf("expected identity encode, got %q err=%v", stored, err)
	}
	if ok, _ := codec.Matches("YourDefaultPassword", stored); !ok {
		t.Fatal("expected match")
	}
}

func TestArgon2idEncodeAndMatch(t *testing.T) {
	codec, err := credentials.NewCodec(config.PasswordConfig{
		Storage:          config.PasswordStorageArgon2id,
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	hash, err := codec.Encode("very-secure-password")
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := codec.Matches("very-secure-password", hash)
	if err != nil || !ok {
		t.Fatalf("expected match, ok=%v err=%v", ok, err)
	}
	ok, err = codec.Matches("bogus-password", hash)
	if err != nil || ok {
		t.Fatalf("expected mismatch, ok=%v err=%v", ok, err)
	}

	if _, err := codec.Matches("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if _, err := codec.Encode(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestNewCodecRejectsUnknown(t *testing.T) {
	if _, err := credentials.NewCodec(config.PasswordConfig{Storage: "md5"}); err == nil {
		t.Fatal("expected unknown storage to fail")
	}
}
