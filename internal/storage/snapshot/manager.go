// Package snapshot provides the durable snapshot writer for issuemesh.
package snapshot

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/yndnr/issuemesh-go/internal/core/domain"
)

const (
	// DefaultFileName is the snapshot file name used when only a
	// directory is configured.
	DefaultFileName = "issues.json"

	corruptSuffix = ".corrupt-"
	tempPattern   = ".issues-*.tmp"
)

var (
	// ErrCorrupt indicates the snapshot file exists but cannot be decoded
	// or fails shape validation.
	ErrCorrupt = errors.New("snapshot: corrupt snapshot file")
)

// Config configures the snapshot manager.
type Config struct {
	// Path is the snapshot file path.
	Path string

	// StrictLoad makes Load fail with ErrCorrupt instead of quarantining a
	// corrupt file and starting from an empty store.
	StrictLoad bool

	Logger *slog.Logger
}

// Manager reads and writes the snapshot document.
//
// Save is safe to call from one goroutine at a time; the mutex only guards
// the checksum shared with Reload.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	lastSum [sha256.Size]byte
	hasSum  bool
}

// NewManager creates a snapshot manager. The parent directory is created
// if needed.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("snapshot: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0750); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		cfg:    cfg,
		logger: logger.With("component", "snapshot"),
	}, nil
}

// Path returns the snapshot file path.
func (m *Manager) Path() string {
	return m.cfg.Path
}

// Load returns the persisted document.
//
// A missing file is initialized with an empty document, which is persisted
// before returning. A corrupt file is renamed to <path>.corrupt-<timestamp>
// and replaced by an empty document, unless StrictLoad is set, in which case
// ErrCorrupt is returned and nothing is touched.
func (m *Manager) Load() (*domain.Document, error) {
	data, err := os.ReadFile(m.cfg.Path)
	if errors.Is(err, os.ErrNotExist) {
		m.logger.Info("snapshot not found, initializing empty store", "path", m.cfg.Path)
		return m.initialize()
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", m.cfg.Path, err)
	}

	doc, err := decode(data)
	if err != nil {
		if m.cfg.StrictLoad {
			return nil, err
		}
		quarantined, qerr := m.quarantine()
		if qerr != nil {
			return nil, fmt.Errorf("snapshot: quarantine corrupt file: %w", qerr)
		}
		m.logger.Warn("snapshot corrupt, starting from empty store",
			"path", m.cfg.Path,
			"quarantined_to", quarantined,
			"error", err,
		)
		return m.initialize()
	}

	m.remember(data)
	return doc, nil
}

// Save writes the full document: temp file in the same directory, fsync,
// then atomic rename over the target. Readers never observe a partial file.
func (m *Manager) Save(doc *domain.Document) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(m.cfg.Path)
	file, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w", err)
	}
	tempPath := file.Name()
	defer os.Remove(tempPath)

	if _, err := file.Write(data); err != nil {
		file.Close()
		return fmt.Errorf("snapshot: write: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("snapshot: sync: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("snapshot: close: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("snapshot: chmod: %w", err)
	}
	if err := os.Rename(tempPath, m.cfg.Path); err != nil {
		return fmt.Errorf("snapshot: rename: %w", err)
	}

	m.remember(data)
	return nil
}

// Reload re-reads the snapshot file after an out-of-band change.
// changed is false when the content equals what this manager last wrote or
// loaded. A file that cannot be decoded returns ErrCorrupt and is left alone.
func (m *Manager) Reload() (doc *domain.Document, changed bool, err error) {
	data, err := os.ReadFile(m.cfg.Path)
	if err != nil {
		return nil, false, fmt.Errorf("snapshot: read %s: %w", m.cfg.Path, err)
	}

	sum := sha256.Sum256(data)
	m.mu.Lock()
	same := m.hasSum && sum == m.lastSum
	m.mu.Unlock()
	if same {
		return nil, false, nil
	}

	doc, err = decode(data)
	if err != nil {
		return nil, false, err
	}

	m.remember(data)
	return doc, true, nil
}

func (m *Manager) initialize() (*domain.Document, error) {
	doc := domain.NewDocument()
	if err := m.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (m *Manager) quarantine() (string, error) {
	target := m.cfg.Path + corruptSuffix + time.Now().UTC().Format("20060102T150405.000")
	if err := os.Rename(m.cfg.Path, target); err != nil {
		return "", err
	}
	return target, nil
}

func (m *Manager) remember(data []byte) {
	sum := sha256.Sum256(data)
	m.mu.Lock()
	m.lastSum = sum
	m.hasSum = true
	m.mu.Unlock()
}

func encode(doc *domain.Document) ([]byte, error) {
	if doc.Issues == nil {
		doc = &domain.Document{NextID: doc.NextID, Issues: []*domain.Issue{}}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal: %w", err)
	}
	return append(data, '\n'), nil
}

func decode(data []byte) (*domain.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorrupt)
	}

	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Issues == nil {
		doc.Issues = []*domain.Issue{}
	}
	for _, issue := range doc.Issues {
		if issue != nil && issue.Comments == nil {
			issue.Comments = []*domain.Comment{}
		}
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &doc, nil
}
