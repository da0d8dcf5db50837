// Package confloader layers configuration sources with koanf.
//
// Load applies, lowest priority first:
//
//  1. struct defaults (WithDefaults)
//  2. a YAML file (WithConfigFile)
//  3. environment variables under the prefix, ISSUEMESH_ by default
//  4. overrides such as command line flags (WithOverrides)
//
// Each layer is loaded on its own before merging, so the loader can tell
// which layer set a key (Origin, Changed) and, with WithStrictKeys, reject
// file keys that are not part of the configuration.
//
// File change notification lives in internal/infra/fswatch.
package confloader
