package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"
)

// Argon2Params are the Argon2id cost parameters.
type Argon2Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params follows the OWASP recommendation.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

var (
	ErrInvalidHash      = errors.New("invalid hash format")
	ErrIncompatibleHash = errors.New("incompatible hash version")
	ErrWeakPassword     = errors.New("password does not meet strength requirements")
)

// PasswordHasher hashes and verifies employee passwords with Argon2id.
type PasswordHasher struct {
	params Argon2Params
}

// NewPasswordHasher validates params and returns a hasher.
func NewPasswordHasher(params Argon2Params) (*PasswordHasher, error) {
	switch {
	case params.Memory < 1024:
		return nil, fmt.Errorf("memory must be at least 1024 KiB")
	case params.Iterations < 1:
		return nil, fmt.Errorf("iterations must be at least 1")
	case params.Parallelism < 1:
		return nil, fmt.Errorf("parallelism must be at least 1")
	case params.SaltLength < 8 || params.KeyLength < 16:
		return nil, fmt.Errorf("salt must be at least 8 bytes and key at least 16")
	}
	return &PasswordHasher{params: params}, nil
}

// DefaultPasswordHasher returns a hasher with DefaultArgon2Params.
func DefaultPasswordHasher() *PasswordHasher {
	return &PasswordHasher{params: DefaultArgon2Params}
}

// Hash returns the PHC-encoded hash:
// $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
func (ph *PasswordHasher) Hash(password string) (string, error) {
	p := ph.params

	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash, using the cost
// parameters recorded in the hash.
func (ph *PasswordHasher) Verify(password, encodedHash string) (bool, error) {
	p, salt, key, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	other := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return subtle.ConstantTimeCompare(key, other) == 1, nil
}

func decodeHash(encodedHash string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: version: %v", ErrInvalidHash, err)
	}
	if version != argon2.Version {
		return p, nil, nil, ErrIncompatibleHash
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("%w: parameters: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %v", ErrInvalidHash, err)
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}

// PasswordStrength describes the minimum password policy.
type PasswordStrength struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireNumber bool
}

// DefaultPasswordStrength returns default password strength requirements
func DefaultPasswordStrength() PasswordStrength {
	return PasswordStrength{
		MinLength:     8,
		RequireUpper:  true,
		RequireLower:  true,
		RequireNumber: true,
	}
}

// Check validates a password against strength requirements
func (ps PasswordStrength) Check(password string) error {
	if len(password) < ps.MinLength {
		return fmt.Errorf("%w: minimum length is %d", ErrWeakPassword, ps.MinLength)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}

	if ps.RequireUpper && !hasUpper {
		return fmt.Errorf("%w: must contain uppercase letter", ErrWeakPassword)
	}
	if ps.RequireLower && !hasLower {
		return fmt.Errorf("%w: must contain lowercase letter", ErrWeakPassword)
	}
	if ps.RequireNumber && !hasNumber {
		return fmt.Errorf("%w: must contain number", ErrWeakPassword)
	}
	return nil
}
