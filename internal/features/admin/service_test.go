package admin

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/argon2"

	"vibehub.ru/vibe-points/internal/common"
	"vibehub.ru/vibe-points/internal/config"
)

// hashKey строит Argon2id-хеш в том же формате, что scripts/generate_hash.go.
func hashKey(key string) string {
	salt := []byte("0123456789abcdef")
	var (
		memory      uint32 = 65536
		iterations  uint32 = 3
		parallelism uint8  = 2
	)
	hash := argon2.IDKey([]byte(key), salt, iterations, memory, parallelism, 32)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

func TestVerifyKey(t *testing.T) {
	svc := NewService(&config.Config{AdminKeyHash: hashKey("секретный-ключ")})

	assert.NoError(t, svc.VerifyKey("секретный-ключ"))
	assert.ErrorIs(t, svc.VerifyKey("неверный"), common.ErrBadAdminKey)
	assert.ErrorIs(t, svc.VerifyKey(""), common.ErrBadAdminKey)
}

func TestVerifyKeyMalformedHash(t *testing.T) {
	svc := NewService(&config.Config{AdminKeyHash: "не-хеш-вовсе"})

	assert.ErrorIs(t, svc.VerifyKey("любой"), common.ErrBadAdminKey)
}
