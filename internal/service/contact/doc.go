// Package contact manages the recipient list: single adds, bulk imports from
// pasted text or CSV files, deletion and selection for a campaign run.
package contact
