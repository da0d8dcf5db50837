package confloader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the prefix of environment variables read by Load.
const DefaultEnvPrefix = "ISSUEMESH_"

// Source names the layer a configuration key was last set by.
type Source string

// Layers in the order Load applies them.
const (
	SourceDefault  Source = "default"
	SourceFile     Source = "file"
	SourceEnv      Source = "env"
	SourceOverride Source = "override"
)

// UnknownKeysError lists file keys that match no default key.
type UnknownKeysError struct {
	Path string
	Keys []string
}

func (e *UnknownKeysError) Error() string {
	return fmt.Sprintf("%s: unknown keys: %s", e.Path, strings.Join(e.Keys, ", "))
}

// Loader merges configuration layers into a koanf-tagged struct.
type Loader struct {
	k *koanf.Koanf

	envPrefix string
	filePath  string
	defaults  any
	overrides map[string]any
	strict    bool

	origin map[string]Source
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix replaces DefaultEnvPrefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile adds a YAML file layer.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath = path }
}

// WithDefaults uses the koanf-tagged struct v as the bottom layer. Its keys
// also drive environment mapping and WithStrictKeys.
func WithDefaults(v any) Option {
	return func(l *Loader) { l.defaults = v }
}

// WithOverrides adds a top layer of "section.key" values, typically from
// command line flags. Nil values are skipped.
func WithOverrides(m map[string]any) Option {
	return func(l *Loader) {
		for k, v := range m {
			if v == nil {
				continue
			}
			if l.overrides == nil {
				l.overrides = make(map[string]any)
			}
			l.overrides[k] = v
		}
	}
}

// WithStrictKeys makes Load fail with *UnknownKeysError when the file sets
// a key that the defaults do not have. Ignored without WithDefaults.
func WithStrictKeys() Option {
	return func(l *Loader) { l.strict = true }
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
		origin:    make(map[string]Source),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load applies defaults, file, environment and overrides in that order and
// unmarshals the result into target.
func (l *Loader) Load(target any) error {
	if l.defaults != nil {
		if err := l.merge(SourceDefault, structs.Provider(l.defaults, "koanf"), nil); err != nil {
			return fmt.Errorf("load defaults: %w", err)
		}
	}
	if l.filePath != "" {
		if err := l.loadFile(); err != nil {
			return err
		}
	}
	if err := l.merge(SourceEnv, env.Provider(l.envPrefix, ".", l.envKey()), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	if len(l.overrides) > 0 {
		if err := l.merge(SourceOverride, overrides(l.overrides), nil); err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
	}

	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

func (l *Loader) loadFile() error {
	layer := koanf.New(".")
	if err := layer.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
		return fmt.Errorf("load config file %s: %w", l.filePath, err)
	}

	if l.strict && l.defaults != nil {
		var unknown []string
		for _, key := range layer.Keys() {
			if _, ok := l.origin[key]; !ok {
				unknown = append(unknown, key)
			}
		}
		if len(unknown) > 0 {
			return &UnknownKeysError{Path: l.filePath, Keys: unknown}
		}
	}
	return l.mergeLayer(SourceFile, layer)
}

// merge loads one provider into its own layer so the keys it sets can be
// attributed, then merges the layer.
func (l *Loader) merge(src Source, p koanf.Provider, parser koanf.Parser) error {
	layer := koanf.New(".")
	if err := layer.Load(p, parser); err != nil {
		return err
	}
	return l.mergeLayer(src, layer)
}

func (l *Loader) mergeLayer(src Source, layer *koanf.Koanf) error {
	if err := l.k.Merge(layer); err != nil {
		return err
	}
	for _, key := range layer.Keys() {
		l.origin[key] = src
	}
	return nil
}

// envKey maps ISSUEMESH_HISTORY_AUTO_PUSH to history.auto_push. Underscores
// separate both path segments and words inside a key, so variables are
// matched against the keys loaded so far; unmatched names treat every
// underscore as a separator.
func (l *Loader) envKey() func(string) string {
	known := make(map[string]string)
	for _, key := range l.k.Keys() {
		known[strings.ReplaceAll(key, ".", "_")] = key
	}
	return func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, l.envPrefix))
		if key, ok := known[s]; ok {
			return key
		}
		return strings.ReplaceAll(s, "_", ".")
	}
}

// Origin reports which layer last set key. ok is false for unknown keys.
func (l *Loader) Origin(key string) (src Source, ok bool) {
	src, ok = l.origin[key]
	return src, ok
}

// Changed lists the keys set above the defaults layer as "key=source",
// sorted by key.
func (l *Loader) Changed() []string {
	var out []string
	for key, src := range l.origin {
		if src != SourceDefault {
			out = append(out, key+"="+string(src))
		}
	}
	sort.Strings(out)
	return out
}
