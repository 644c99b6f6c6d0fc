// Package settings owns the SMTP account configuration and its simulated
// connection test. No network connection is ever opened.
package settings
