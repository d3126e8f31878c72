package config

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"SlideLab/server/internal/pkg/encryption"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Cipher   CipherConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // "postgres" or "memory"
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// AuthConfig holds operator authentication settings
type AuthConfig struct {
	JWTSecret            string
	OperatorPasswordHash string // bcrypt hash; empty disables token issuing
}

// CipherConfig holds the raw cipher parameters as read from the environment.
// Values stay unparsed until BuildCipher so malformed input is reported.
type CipherConfig struct {
	SBox         string // comma separated, 16 entries
	Keys         string // comma separated round keys
	Rounds       string
	ConfirmLimit string // 0 checks the whole corpus
	Seed         string // when set, S-box and keys are drawn from this seed
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("STORAGE_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "slidelab"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		},
		Cipher: CipherConfig{
			SBox:         getEnv("CIPHER_SBOX", joinInts(encryption.BuildSBox().Ints())),
			Keys:         getEnv("CIPHER_KEYS", joinInts(encryption.ReferenceKeys.Ints())),
			Rounds:       getEnv("CIPHER_ROUNDS", strconv.Itoa(encryption.ReferenceRounds)),
			ConfirmLimit: getEnv("CONFIRM_LIMIT", "0"),
			Seed:         getEnv("CIPHER_SEED", ""),
		},
	}
}

// BuildCipher validates the cipher parameters and constructs the cipher
func (c CipherConfig) BuildCipher() (*encryption.Cipher, error) {
	rounds, err := parseInt("CIPHER_ROUNDS", c.Rounds)
	if err != nil {
		return nil, err
	}

	if c.Seed != "" {
		seed, err := strconv.ParseInt(strings.TrimSpace(c.Seed), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("CIPHER_SEED: %w: %q is not an integer", encryption.ErrDomain, c.Seed)
		}
		return encryption.NewRandomCipher(rand.New(rand.NewSource(seed)), rounds)
	}

	rawSBox, err := parseInts("CIPHER_SBOX", c.SBox)
	if err != nil {
		return nil, err
	}
	sbox, err := encryption.NewSBox(rawSBox)
	if err != nil {
		return nil, fmt.Errorf("CIPHER_SBOX: %w", err)
	}

	rawKeys, err := parseInts("CIPHER_KEYS", c.Keys)
	if err != nil {
		return nil, err
	}
	keys, err := encryption.ParseBlocks(rawKeys)
	if err != nil {
		return nil, fmt.Errorf("CIPHER_KEYS: %w", err)
	}

	return encryption.NewCipher(sbox, keys, rounds)
}

// ConfirmLimitValue parses CONFIRM_LIMIT. Negative values are rejected.
func (c CipherConfig) ConfirmLimitValue() (int, error) {
	limit, err := parseInt("CONFIRM_LIMIT", c.ConfirmLimit)
	if err != nil {
		return 0, err
	}
	if limit < 0 {
		return 0, fmt.Errorf("CONFIRM_LIMIT: %w: %d is negative", encryption.ErrDomain, limit)
	}
	return limit, nil
}

func parseInt(key, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %q is not an integer", key, encryption.ErrDomain, raw)
	}
	return n, nil
}

// parseInts parses a comma separated integer list; any malformed element fails the whole list
func parseInts(key, raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := parseInt(key, p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`
Server: %s:%d
Database: %s://%s@%s:%d/%s
JWT Secret: ***
Cipher: sbox=%s keys=*** rounds=%s confirm_limit=%s seeded=%t`,
		c.Server.Host, c.Server.Port,
		c.Database.Driver, c.Database.User, c.Database.Host, c.Database.Port, c.Database.Database,
		c.Cipher.SBox, c.Cipher.Rounds, c.Cipher.ConfirmLimit, c.Cipher.Seed != "",
	)
}
