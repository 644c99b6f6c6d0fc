// Package template manages reusable email templates and renders
// personalised previews of them.
package template
