// Package config holds the issuemesh-server settings.
//
// ServerConfig mirrors the YAML file section by section (server, storage,
// history, log, metrics). Default returns the values used when nothing is
// configured, and its koanf tags double as the default layer fed to
// internal/infra/confloader. Verify checks a loaded config before use and
// creates the snapshot directory when missing.
//
// The PORT and AUTO_PUSH variables of earlier deployments are still read
// by ApplyLegacyEnv, unless the same key was set explicitly.
package config
