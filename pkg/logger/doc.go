// Package logger builds slog loggers with environment-driven format
// and level, static service attributes, and context extractors that
// enrich every record with request-scoped values such as the tenant
// key (see tenant.LoggerExtractor).
package logger
