// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/taibuivan/postdeck/internal/platform/constants"
)

// ErrCorruptStore is returned when the token file exists but cannot be decoded.
var ErrCorruptStore = errors.New("session: token file is corrupt")

// FileStore persists the token as {"token": "..."} in a single JSON file.
//
// Writes go to a temp file in the same directory and are renamed into place,
// so a crash never leaves a half-written token behind. The file is 0600.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath is $XDG_CONFIG_HOME/postdeck/session.json (or the platform
// equivalent). Profiles other than "default" get session.<profile>.json.
func DefaultFilePath(profile string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("session: locate config dir: %w", err)
	}

	name := constants.TokenFileName
	if profile != "" && profile != "default" {
		name = "session." + profile + ".json"
	}
	return filepath.Join(dir, constants.AppName, name), nil
}

// Path is the file the store reads and writes.
func (store *FileStore) Path() string { return store.path }

func (store *FileStore) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(store.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: read token file: %w", err)
	}

	var record map[string]string
	if err := json.Unmarshal(data, &record); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCorruptStore, store.path, err)
	}
	return record[constants.TokenStorageKey], nil
}

func (store *FileStore) Save(_ context.Context, token string) error {
	data, err := json.Marshal(map[string]string{constants.TokenStorageKey: token})
	if err != nil {
		return fmt.Errorf("session: encode token file: %w", err)
	}

	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("session: create config dir: %w", err)
	}

	// CreateTemp opens with 0600.
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("session: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("session: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session: close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), store.path); err != nil {
		return fmt.Errorf("session: replace token file: %w", err)
	}
	return nil
}

// Clear removes the file. A missing file is not an error.
func (store *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(store.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: remove token file: %w", err)
	}
	return nil
}
