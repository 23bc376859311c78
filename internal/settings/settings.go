package settings

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/rotmg-stash/stash-helper/pkg/appdir"
	"github.com/rotmg-stash/stash-helper/pkg/model"
)

// FileName is the settings file inside the application data directory.
const FileName = "rotmg-stash-settings.json"

// keyBytes is the number of random bytes behind the hex secret key.
const keyBytes = 32

// Outcome tells which path GetOrCreate took.
type Outcome int

const (
	// Unknown is returned alongside an error; no path completed.
	Unknown Outcome = iota
	// Loaded means an existing file was read and parsed.
	Loaded
	// Regenerated means no file existed and a new key was generated and written.
	Regenerated
	// RecoveredFromCorruption means an existing file did not parse and
	// default settings were returned. The file is left untouched.
	RecoveredFromCorruption
)

func (o Outcome) String() string {
	switch o {
	case Loaded:
		return "loaded"
	case Regenerated:
		return "regenerated"
	case RecoveredFromCorruption:
		return "recovered_from_corruption"
	default:
		return "unknown"
	}
}

// Store reads and creates the settings file.
type Store struct {
	logger *zap.Logger
	dir    string
	keyGen func() (string, error)
}

// NewStore creates a Store rooted at dir.
func NewStore(logger *zap.Logger, dir string) *Store {
	return &Store{
		logger: logger,
		dir:    dir,
		keyGen: func() (string, error) { return GenerateHexKey(keyBytes) },
	}
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// GetOrCreate returns the stored settings, creating the file with a fresh
// secret key on first run. Once the file exists its content is authoritative:
// a malformed file degrades to default settings and is never rewritten.
//
// Creation holds an advisory lock on a sibling .lock file and re-checks for
// the file under it, so concurrent first runs agree on one key.
func (s *Store) GetOrCreate() (model.Settings, Outcome, error) {
	if err := appdir.EnsureDir(s.dir); err != nil {
		return model.Settings{}, Unknown, model.NewError(model.KindSettingsIO, err)
	}

	path := s.Path()
	if st, ok, err := s.load(path); ok || err != nil {
		return st.settings, st.outcome, err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return model.Settings{}, Unknown, model.NewError(model.KindSettingsIO, fmt.Errorf("lock settings: %w", err))
	}
	defer func() { _ = lock.Unlock() }()

	if st, ok, err := s.load(path); ok || err != nil {
		return st.settings, st.outcome, err
	}

	s.logger.Info("settings.creating", zap.String("path", path))
	key, err := s.keyGen()
	if err != nil {
		return model.Settings{}, Unknown, model.NewError(model.KindSettingsIO, fmt.Errorf("generate key: %w", err))
	}
	created := model.Settings{SecretKey: &key}

	data, err := json.MarshalIndent(created, "", "  ")
	if err != nil {
		return model.Settings{}, Unknown, model.NewError(model.KindSettingsIO, err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return model.Settings{}, Unknown, model.NewError(model.KindSettingsIO, err)
	}

	s.logger.Info("settings.created", zap.String("path", path))
	return created, Regenerated, nil
}

type loadResult struct {
	settings model.Settings
	outcome  Outcome
}

// load reads path. ok is false when the file does not exist.
func (s *Store) load(path string) (loadResult, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return loadResult{}, false, nil
	}
	if err != nil {
		return loadResult{outcome: Unknown}, false, model.NewError(model.KindSettingsIO, err)
	}

	var st model.Settings
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("settings.parse_failed",
			zap.String("path", path),
			zap.Error(model.NewError(model.KindSettingsParse, err)))
		return loadResult{settings: model.Settings{}, outcome: RecoveredFromCorruption}, true, nil
	}

	s.logger.Debug("settings.loaded", zap.String("path", path))
	return loadResult{settings: st, outcome: Loaded}, true, nil
}

// writeFileAtomic writes data to a temp file in the same directory and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename settings: %w", err)
	}
	return nil
}

// GenerateHexKey returns n random bytes as lowercase hex (2n characters).
func GenerateHexKey(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
