package service

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"

	"cinescope/internal/logging"
	"cinescope/internal/metrics"
	"cinescope/internal/storage"
	"cinescope/internal/timeutil"
)

// ErrNoBackups is returned when a backup directory holds no snapshots.
var ErrNoBackups = errors.New("no backups found")

const (
	backupPrefix = "cinescope_backup_"
	backupSuffix = ".json"
)

// Snapshot is the file format of a backup: every stored key verbatim.
type Snapshot struct {
	CreatedAt time.Time         `json:"created_at"`
	Entries   map[string]string `json:"entries"`
}

// BackupService copies the whole key space to and from snapshot files.
type BackupService struct {
	backend    storage.Backend
	fs         afero.Fs
	backupDir  string
	maxBackups int
}

// NewBackupService creates a new BackupService. maxBackups below 1 keeps one.
func NewBackupService(backend storage.Backend, fs afero.Fs, backupDir string, maxBackups int) *BackupService {
	return &BackupService{
		backend:    backend,
		fs:         fs,
		backupDir:  backupDir,
		maxBackups: max(maxBackups, 1),
	}
}

// Backup writes a snapshot of every key and prunes old snapshots.
func (b *BackupService) Backup() (string, error) {
	path, err := b.backup()
	if err != nil {
		metrics.BackupsTotal.WithLabelValues("failure").Inc()
		return "", err
	}
	metrics.BackupsTotal.WithLabelValues("success").Inc()
	return path, nil
}

func (b *BackupService) backup() (string, error) {
	if err := b.fs.MkdirAll(b.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	keys, err := b.backend.Keys()
	if err != nil {
		return "", fmt.Errorf("failed to list keys: %w", err)
	}
	now := timeutil.Now()
	snap := Snapshot{CreatedAt: now, Entries: make(map[string]string, len(keys))}
	for _, k := range keys {
		v, ok, err := b.backend.Get(k)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", k, err)
		}
		if ok {
			snap.Entries[k] = string(v)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	name := backupPrefix + now.Format("2006-01-02_150405.000") + backupSuffix
	path := filepath.Join(b.backupDir, name)
	tmp := path + ".tmp"
	if err := afero.WriteFile(b.fs, tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := b.fs.Rename(tmp, path); err != nil {
		_ = b.fs.Remove(tmp)
		return "", fmt.Errorf("failed to move snapshot into place: %w", err)
	}

	if err := b.CleanOldBackups(); err != nil {
		// the snapshot itself is fine
		logging.Warn().Err(err).Msg("failed to clean old backups")
	}
	return path, nil
}

// Restore makes the backend match the snapshot at path: keys in the
// snapshot are written and every other key is deleted. Callers holding a
// store must Reload it afterwards.
func (b *BackupService) Restore(path string) error {
	data, err := afero.ReadFile(b.fs, path)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if snap.Entries == nil {
		return fmt.Errorf("backup %s has no entries", path)
	}

	existing, err := b.backend.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	for _, k := range existing {
		if _, keep := snap.Entries[k]; keep {
			continue
		}
		if err := b.backend.Delete(k); err != nil {
			return fmt.Errorf("failed to delete %s: %w", k, err)
		}
	}
	for k, v := range snap.Entries {
		if err := b.backend.Set(k, []byte(v)); err != nil {
			return fmt.Errorf("failed to restore %s: %w", k, err)
		}
	}
	logging.Info().Str("path", path).Int("keys", len(snap.Entries)).Msg("backup restored")
	return nil
}

// Path resolves a snapshot file name inside the backup directory. Any
// directory part of name is ignored.
func (b *BackupService) Path(name string) string {
	return filepath.Join(b.backupDir, filepath.Base(name))
}

// Latest returns the newest snapshot path.
func (b *BackupService) Latest() (string, error) {
	backups, err := b.listBackups()
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", ErrNoBackups
	}
	return backups[len(backups)-1], nil
}

// LastBackupTime returns the modification time of the newest snapshot, or
// the zero time when there is none.
func (b *BackupService) LastBackupTime() (time.Time, error) {
	latest, err := b.Latest()
	if errors.Is(err, ErrNoBackups) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	info, err := b.fs.Stat(latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat backup file: %w", err)
	}
	return info.ModTime(), nil
}

// CleanOldBackups removes the oldest snapshots beyond maxBackups.
func (b *BackupService) CleanOldBackups() error {
	backups, err := b.listBackups()
	if err != nil {
		return err
	}
	if len(backups) <= b.maxBackups {
		return nil
	}
	for _, path := range backups[:len(backups)-b.maxBackups] {
		if err := b.fs.Remove(path); err != nil {
			return fmt.Errorf("failed to delete old backup %s: %w", path, err)
		}
	}
	return nil
}

// listBackups returns snapshot paths, oldest first.
func (b *BackupService) listBackups() ([]string, error) {
	exists, err := afero.DirExists(b.fs, b.backupDir)
	if err != nil || !exists {
		return []string{}, err
	}
	entries, err := afero.ReadDir(b.fs, b.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), backupPrefix) && strings.HasSuffix(entry.Name(), backupSuffix) {
			backups = append(backups, filepath.Join(b.backupDir, entry.Name()))
		}
	}
	// names embed the timestamp
	sort.Strings(backups)
	return backups, nil
}
