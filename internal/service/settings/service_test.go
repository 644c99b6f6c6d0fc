package settings_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/mailflow/internal/domain"
	"github.com/ignite/mailflow/internal/service/settings"
)

type memRepo struct {
	cfg   *domain.SmtpConfig
	saves int
}

func (m *memRepo) Get(context.Context) (domain.SmtpConfig, error) {
	if m.cfg == nil {
		return domain.DefaultSmtpConfig(), nil
	}
	return *m.cfg, nil
}

func (m *memRepo) Save(_ context.Context, cfg domain.SmtpConfig) error {
	m.cfg = &cfg
	m.saves++
	return nil
}

func TestValidate(t *testing.T) {
	gmail := domain.SmtpConfig{Host: "smtp.gmail.com", Username: "me@gmail.com", Password: "app-pass", Encryption: domain.EncryptionTLS}

	tests := []struct {
		name    string
		mutate  func(*domain.SmtpConfig)
		success bool
		message string
	}{
		{"missing host", func(c *domain.SmtpConfig) { c.Host = "" }, false, "Error: SMTP Host is required."},
		{"missing password", func(c *domain.SmtpConfig) { c.Port = 587; c.Password = "" }, false, "Error: Username and Password are required for authentication."},
		{"missing username", func(c *domain.SmtpConfig) { c.Port = 587; c.Username = "" }, false, "Error: Username and Password are required for authentication."},
		{"gmail port 25", func(c *domain.SmtpConfig) { c.Port = 25 }, false, "Error: Google Workspace requires Port 587 (TLS) or 465 (SSL)."},
		{"googlemail port 2525", func(c *domain.SmtpConfig) { c.Host = "smtp.googlemail.com"; c.Port = 2525 }, false, "Error: Google Workspace requires Port 587 (TLS) or 465 (SSL)."},
		{"gmail 587", func(c *domain.SmtpConfig) { c.Port = 587 }, true, "Connection Successful! Authenticated as me@gmail.com via TLS."},
		{"gmail 465 ssl", func(c *domain.SmtpConfig) { c.Port = 465; c.Encryption = domain.EncryptionSSL }, true, "Connection Successful! Authenticated as me@gmail.com via SSL."},
		{"other host any port", func(c *domain.SmtpConfig) {
			c.Host = "mail.example.com"
			c.Port = 25
			c.Encryption = domain.EncryptionNone
		}, true, "Connection Successful! Authenticated as me@gmail.com via NONE."},
		{"host checked before credentials", func(c *domain.SmtpConfig) { c.Host = ""; c.Username = "" }, false, "Error: SMTP Host is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := gmail
			tt.mutate(&cfg)
			got := settings.Validate(cfg)
			assert.Equal(t, tt.success, got.Success)
			assert.Equal(t, tt.message, got.Message)
		})
	}
}

func TestTestConnectionHonoursContext(t *testing.T) {
	svc := settings.NewService(&memRepo{}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.TestConnection(ctx, domain.SmtpConfig{Host: "h"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTestConnectionUsesStoredPassword(t *testing.T) {
	repo := &memRepo{}
	svc := settings.NewService(repo, time.Millisecond)
	ctx := context.Background()

	_, err := svc.Save(ctx, domain.SmtpConfig{Host: "smtp.gmail.com", Port: 587, Username: "me", Password: "secret"})
	require.NoError(t, err)

	res, err := svc.TestConnection(ctx, domain.SmtpConfig{Host: "smtp.gmail.com", Port: 587, Username: "me", Encryption: domain.EncryptionTLS})
	require.NoError(t, err)
	assert.True(t, res.Success, res.Message)

	// A different account does not inherit the password.
	res, err = svc.TestConnection(ctx, domain.SmtpConfig{Host: "smtp.gmail.com", Port: 587, Username: "other"})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestSave(t *testing.T) {
	repo := &memRepo{}
	svc := settings.NewService(repo, 0)
	ctx := context.Background()

	saved, err := svc.Save(ctx, domain.SmtpConfig{Host: " smtp.example.com ", Port: 465, Username: "u", Password: "p", Encryption: "SSL"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com", saved.Host)
	assert.Equal(t, domain.EncryptionSSL, saved.Encryption)

	// Blank password keeps the stored one.
	saved, err = svc.Save(ctx, domain.SmtpConfig{Host: "smtp.example.com", Port: 465, Username: "u", FromName: "Team"})
	require.NoError(t, err)
	assert.Equal(t, "p", saved.Password)
	assert.Equal(t, domain.EncryptionTLS, saved.Encryption)
	assert.Equal(t, 2, repo.saves)

	_, err = svc.Save(ctx, domain.SmtpConfig{Encryption: "starttls"})
	assert.ErrorIs(t, err, settings.ErrInvalidEncryption)
	_, err = svc.Save(ctx, domain.SmtpConfig{Port: 70000})
	assert.ErrorIs(t, err, settings.ErrInvalidPort)
}

func TestGetDefault(t *testing.T) {
	svc := settings.NewService(&memRepo{}, 0)
	cfg, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "smtp.gmail.com", cfg.Host)
	assert.Equal(t, 587, cfg.Port)
	assert.Equal(t, "My Company", cfg.FromName)
	assert.Equal(t, domain.EncryptionTLS, cfg.Encryption)
}
