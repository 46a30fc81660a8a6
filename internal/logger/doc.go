// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a sane console encoder writing to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Every launcher phase accepts a context and extracts the logger from it,
// enabling scoped, structured logging throughout the codebase. Stdout is
// deliberately left untouched: it is inherited by the launched application.
package logger
