package repository

import (
	"bufio"
	"encoding/json"
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"github.com/sirupsen/logrus"
	"os"
	"sync"
)

// preferencesFile is the on-disk shape of the preference slot.
type preferencesFile struct {
	Theme models.Theme `json:"theme"`
}

// Preferences is the single local key-value slot holding the UI theme.
type Preferences struct {
	theme           models.Theme // Current theme
	storageFilePath string       // Path to the JSON file holding the slot
	mu              sync.RWMutex // Mutex for thread-safe access
}

// NewPreferences creates a preference slot with the fallback theme; call Load to read
// the stored value.
func NewPreferences(storageFilePath string, fallback models.Theme) *Preferences {
	if _, err := models.ParseTheme(string(fallback)); err != nil {
		fallback = models.ThemeLight
	}
	return &Preferences{theme: fallback, storageFilePath: storageFilePath}
}

// Load reads the stored theme.
//
// A missing file keeps the fallback theme. An unreadable or invalid value is reported and the
// fallback theme is kept as well.
//
// Returns:
//   - error: An error if the file exists but cannot be read or parsed; nil otherwise.
func (p *Preferences) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.storageFilePath == "" {
		return nil
	}

	data, err := os.ReadFile(p.storageFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Infof("Preferences file %s was not found, using theme %s", p.storageFilePath, p.theme)
			return nil
		}
		return fmt.Errorf("failed to read preferences from file %s: %w", p.storageFilePath, err)
	}
	if len(data) == 0 {
		return nil
	}

	var stored preferencesFile
	if err = json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	theme, err := models.ParseTheme(string(stored.Theme))
	if err != nil {
		return fmt.Errorf("stored preferences: %w", err)
	}
	p.theme = theme
	logrus.Infof("Preferences %s successfully loaded", p.storageFilePath)
	return nil
}

// Theme returns the current theme.
func (p *Preferences) Theme() models.Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.theme
}

// SetTheme stores a new theme and writes it to disk immediately.
func (p *Preferences) SetTheme(theme models.Theme) error {
	if _, err := models.ParseTheme(string(theme)); err != nil {
		return fmt.Errorf("%w: %w", models.ErrInvalidRequest, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.save(theme); err != nil {
		return err
	}
	p.theme = theme
	return nil
}

// Toggle switches between light and dark and returns the new theme.
func (p *Preferences) Toggle() (models.Theme, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.theme.Toggled()
	if err := p.save(next); err != nil {
		return p.theme, err
	}
	p.theme = next
	return next, nil
}

// save writes the slot through a temp file and an atomic rename. Caller holds the lock.
func (p *Preferences) save(theme models.Theme) error {
	if p.storageFilePath == "" {
		return nil
	}

	tempPath := p.storageFilePath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		err = fmt.Errorf("failed to open temp file %s: %w", tempPath, err)
		logrus.WithError(err).Error("Error saving preferences")
		return err
	}

	writer := bufio.NewWriter(file)
	if err = json.NewEncoder(writer).Encode(preferencesFile{Theme: theme}); err == nil {
		err = writer.Flush()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		err = fmt.Errorf("failed to write temp file %s: %w", tempPath, err)
		logrus.WithError(err).Error("Error saving preferences")
		return err
	}

	// Atomically rename a temp file to final destination
	if err = os.Rename(tempPath, p.storageFilePath); err != nil {
		err = fmt.Errorf("failed to rename temp file %s to %s: %w", tempPath, p.storageFilePath, err)
		logrus.WithError(err).Error("Error finalizing preferences save")
		return err
	}
	logrus.Debugf("Theme %s saved to %s", theme, p.storageFilePath)
	return nil
}
