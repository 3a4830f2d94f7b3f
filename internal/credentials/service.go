package credentials

import (
	"errors"
	"fmt"

	"github.com/haein/redfish-exporter/internal/config"
)

// ErrNotFound is returned when no usable profile exists for a code.
var ErrNotFound = errors.New("credential profile not found")

// Profile is one resolved credential entry from static configuration.
type Profile struct {
	Code     string
	Username string
	Password string
}

// Service handles credential operations
type Service struct {
	profiles map[string]config.ProfileConfig
}

// NewService creates a new credential service
func NewService(profiles map[string]config.ProfileConfig) *Service {
	return &Service{profiles: profiles}
}

// Resolve fetches the credential profile registered under code. A
// profile with an empty username or password is treated the same as a
// missing one.
func (s *Service) Resolve(code string) (*Profile, error) {
	profile, ok := s.profiles[code]
	if !ok {
		return nil, fmt.Errorf("code %q: %w", code, ErrNotFound)
	}

	if profile.Auth.Username == "" || profile.Auth.Password == "" {
		return nil, fmt.Errorf("code %q has incomplete auth: %w", code, ErrNotFound)
	}

	return &Profile{
		Code:     code,
		Username: profile.Auth.Username,
		Password: profile.Auth.Password,
	}, nil
}
