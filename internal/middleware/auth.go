package middleware

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// APIKeyPrefix starts every generated key
const APIKeyPrefix = "tc_"

// apiKeyLocal holds the hash of the key that authenticated the request
const apiKeyLocal = "api_key_hash"

// AuthMiddleware accepts requests carrying "Authorization: Bearer <key>" where
// the SHA-256 hex digest of the key is one of keyHashes
func AuthMiddleware(keyHashes []string) fiber.Handler {
	allowed := make([][]byte, 0, len(keyHashes))
	for _, h := range keyHashes {
		allowed = append(allowed, []byte(strings.ToLower(h)))
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "missing_api_key",
				"message": "API key is required. Use Authorization: Bearer YOUR_API_KEY",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "invalid_auth_format",
				"message": "Authorization header must be in format: Bearer YOUR_API_KEY",
			})
		}

		apiKey := strings.TrimSpace(parts[1])
		if !strings.HasPrefix(apiKey, APIKeyPrefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "invalid_api_key_format",
				"message": "API key must start with " + APIKeyPrefix,
			})
		}

		keyHash := []byte(HashAPIKey(apiKey))
		for _, h := range allowed {
			if subtle.ConstantTimeCompare(h, keyHash) == 1 {
				c.Locals(apiKeyLocal, string(keyHash))
				return c.Next()
			}
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "invalid_api_key",
			"message": "The provided API key is invalid or has been revoked",
		})
	}
}

// ClientKey identifies the client by its API key hash when authenticated, else by IP
func ClientKey(c *fiber.Ctx) string {
	if h, ok := c.Locals(apiKeyLocal).(string); ok && h != "" {
		return "key:" + h[:16]
	}
	return c.IP()
}

// HashAPIKey returns the hex SHA-256 digest stored in configuration
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// GenerateAPIKey returns a fresh random key and its hash
func GenerateAPIKey() (key, hash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	randomStr := hex.EncodeToString(randomBytes)

	// 2 byte checksum catches copy/paste truncation
	checksum := sha256.Sum256([]byte(randomStr))
	key = fmt.Sprintf("%s%s_%s", APIKeyPrefix, randomStr, hex.EncodeToString(checksum[:2]))

	return key, HashAPIKey(key), nil
}
