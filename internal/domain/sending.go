package domain

// Encryption enumerates the transport security modes of an SMTP account.
type Encryption string

const (
	EncryptionTLS  Encryption = "tls"
	EncryptionSSL  Encryption = "ssl"
	EncryptionNone Encryption = "none"
)

// Valid reports whether e is one of the known modes.
func (e Encryption) Valid() bool {
	return e == EncryptionTLS || e == EncryptionSSL || e == EncryptionNone
}

// SmtpConfig holds the single SMTP account used for campaign sends.
// The password travels in storage documents but never in API responses;
// handlers use Redacted before encoding.
type SmtpConfig struct {
	Host       string     `json:"host"`
	Port       int        `json:"port"`
	Username   string     `json:"username"`
	Password   string     `json:"password,omitempty"`
	FromName   string     `json:"fromName"`
	FromEmail  string     `json:"fromEmail"`
	Encryption Encryption `json:"encryption"`
}

// Redacted returns a copy without the secret credential.
func (c SmtpConfig) Redacted() SmtpConfig {
	c.Password = ""
	return c
}

// ConnectionTestResult is the outcome of validating an SMTP account.
type ConnectionTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// EmailMessage is the fully-resolved message handed to a dispatcher.
// By the time a message reaches this struct, template rendering and
// sender resolution are complete.
type EmailMessage struct {
	ID          string `json:"id"`
	RunID       string `json:"run_id"`
	ContactID   string `json:"contact_id"`
	Email       string `json:"email"`
	FromName    string `json:"from_name"`
	FromEmail   string `json:"from_email"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"html_content"`
	TextContent string `json:"text_content"`
}
