package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/pkg/logger"
)

// Connection test messages.
const (
	msgHostRequired        = "Error: SMTP Host is required."
	msgCredentialsRequired = "Error: Username and Password are required for authentication."
	msgGooglePort          = "Error: Google Workspace requires Port 587 (TLS) or 465 (SSL)."
	msgSuccessFormat       = "Connection Successful! Authenticated as %s via %s."
)

// Service reads, writes and tests the SMTP configuration.
type Service struct {
	repo      Repository
	testDelay time.Duration
}

// NewService creates a settings service. testDelay simulates the handshake
// time of TestConnection.
func NewService(repo Repository, testDelay time.Duration) *Service {
	return &Service{repo: repo, testDelay: testDelay}
}

// Get returns the current configuration.
func (s *Service) Get(ctx context.Context) (domain.SmtpConfig, error) {
	return s.repo.Get(ctx)
}

// Save stores cfg. A blank password keeps the stored one, since clients
// never receive it back.
func (s *Service) Save(ctx context.Context, cfg domain.SmtpConfig) (domain.SmtpConfig, error) {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Encryption = domain.Encryption(strings.ToLower(string(cfg.Encryption)))
	if cfg.Encryption == "" {
		cfg.Encryption = domain.EncryptionTLS
	}
	if !cfg.Encryption.Valid() {
		return domain.SmtpConfig{}, ErrInvalidEncryption
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return domain.SmtpConfig{}, ErrInvalidPort
	}

	merged, err := s.withStoredPassword(ctx, cfg)
	if err != nil {
		return domain.SmtpConfig{}, err
	}
	if err := s.repo.Save(ctx, merged); err != nil {
		return domain.SmtpConfig{}, err
	}
	logger.Info("smtp settings saved", "host", merged.Host, "port", merged.Port, "username", merged.Username)
	return merged, nil
}

// TestConnection validates cfg the way a real handshake would fail, after a
// simulated delay. The checks run in order and the first failure wins.
// It returns an error only when ctx is cancelled during the delay.
func (s *Service) TestConnection(ctx context.Context, cfg domain.SmtpConfig) (domain.ConnectionTestResult, error) {
	if s.testDelay > 0 {
		timer := time.NewTimer(s.testDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.ConnectionTestResult{}, ctx.Err()
		case <-timer.C:
		}
	}

	cfg, err := s.withStoredPassword(ctx, cfg)
	if err != nil {
		return domain.ConnectionTestResult{}, err
	}
	return Validate(cfg), nil
}

// Validate applies the connection checks without any delay.
func Validate(cfg domain.SmtpConfig) domain.ConnectionTestResult {
	if cfg.Host == "" {
		return domain.ConnectionTestResult{Message: msgHostRequired}
	}
	if cfg.Username == "" || cfg.Password == "" {
		return domain.ConnectionTestResult{Message: msgCredentialsRequired}
	}
	if strings.Contains(cfg.Host, "gmail.com") || strings.Contains(cfg.Host, "googlemail") {
		if cfg.Port != 587 && cfg.Port != 465 {
			return domain.ConnectionTestResult{Message: msgGooglePort}
		}
	}
	return domain.ConnectionTestResult{
		Success: true,
		Message: fmt.Sprintf(msgSuccessFormat, cfg.Username, strings.ToUpper(string(cfg.Encryption))),
	}
}

// withStoredPassword fills a blank password from storage when the account
// (host and username) is unchanged.
func (s *Service) withStoredPassword(ctx context.Context, cfg domain.SmtpConfig) (domain.SmtpConfig, error) {
	if cfg.Password != "" {
		return cfg, nil
	}
	stored, err := s.repo.Get(ctx)
	if err != nil {
		return domain.SmtpConfig{}, err
	}
	if stored.Host == cfg.Host && stored.Username == cfg.Username {
		cfg.Password = stored.Password
	}
	return cfg, nil
}
