// Package aggregates owns transaction boundaries for multi-row writes and
// classifies which storage failures are worth another attempt.
package aggregates
