// Package config defines the launcher settings and provides helpers to
// load, validate and save them in YAML format.
//
// The Config type names the remote endpoints, the interpreter candidates,
// the data root override and the fetch timeout. A missing settings file is
// replaced by built-in defaults so the launcher runs from a bare download.
package config
