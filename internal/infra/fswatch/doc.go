// Package fswatch notifies callbacks when specific files change on disk.
//
// The server uses it for two files: the configuration file (log level hot
// reload) and the snapshot file (out-of-band edits trigger a resync).
//
// Parent directories are watched rather than the files themselves, so
// editors that save by renaming a temp file over the original, and the
// snapshot writer's own atomic rename, are both seen. Events for other
// files in the same directory are ignored. Bursts of events for one file
// are coalesced into a single callback after a short quiet period.
package fswatch
