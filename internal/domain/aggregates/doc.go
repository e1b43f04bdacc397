// Package aggregates holds the error vocabulary shared by the learning engine's
// write boundaries. Callers branch on ErrorCode, never on message text.
package aggregates
