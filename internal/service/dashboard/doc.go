// Package dashboard derives summary statistics from the campaign log.
// Nothing is cached; every call reads a fresh snapshot.
package dashboard
