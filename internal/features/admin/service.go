// Package admin — служебные операции над счетами: выдача и изъятие
// поинтов по API-ключу. service.go содержит проверку ключа Argon2id.
package admin

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"vibehub.ru/vibe-points/internal/common"
	"vibehub.ru/vibe-points/internal/config"
)

// Service проверяет права администратора.
type Service struct {
	cfg *config.Config
}

// NewService создаёт сервис админки.
func NewService(cfg *config.Config) *Service {
	return &Service{cfg: cfg}
}

// VerifyKey проверяет API-ключ администратора по Argon2id-хешу из конфига.
func (s *Service) VerifyKey(key string) error {
	if key == "" || !verifyArgon2id(key, s.cfg.AdminKeyHash) {
		return common.ErrBadAdminKey
	}
	return nil
}

// verifyArgon2id проверяет ключ по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(key, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(key), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравниваем в постоянном времени (защита от timing attack)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}
