// Package fetch downloads files from the update endpoints over HTTP.
//
// Every request is bounded by the timeout from the launcher settings, and
// file downloads go through a temporary file in the destination directory
// so an interrupted transfer never corrupts what was already on disk.
package fetch
