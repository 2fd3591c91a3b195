// Package logger builds the zap logger used across the service and carries
// the per-request ray id into log fields.
package logger
