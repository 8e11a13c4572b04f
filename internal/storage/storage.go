package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/run-countdown/internal/countdown"
	"github.com/ensigniasec/run-countdown/internal/validate"
)

// DefaultPath is where the session file lives unless --storage-file says otherwise.
const DefaultPath = "~/.run-countdown/session.json"

// Data represents the structure of the storage file.
type Data struct {
	SessionID string    `json:"session_id" validate:"required,uuid4"`
	Name      string    `json:"name,omitempty"`
	Deadline  string    `json:"deadline,omitempty" validate:"omitempty,datetime_like"`
	Start     string    `json:"start,omitempty" validate:"omitempty,datetime_like"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Storage handles the loading and saving of the storage file.
type Storage struct {
	Path string `validate:"required,filepath"`
	Data Data
}

// NewStorage creates a new Storage instance, loading the file if it exists.
func NewStorage(path string) (*Storage, error) {
	expandedPath, err := expandTilde(path)
	if err != nil {
		return nil, err
	}

	s := &Storage{
		Path: expandedPath,
	}

	if err := s.Load(); err != nil {
		// If the file doesn't exist, we can ignore the error.
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	if s.Data.SessionID == "" {
		s.Data.SessionID = uuid.NewString()
	}

	return s, nil
}

// NewOrExistingStorage returns existing storage if the file exists, or creates a new one otherwise.
// When creating a new storage, it writes the initial structure to disk immediately.
func NewOrExistingStorage(path string) (*Storage, error) {
	expandedPath, err := expandTilde(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(expandedPath); err == nil {
		return NewStorage(path)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	s, err := NewStorage(path)
	if err != nil {
		return nil, err
	}
	if err := s.Save(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) Load() error {
	logrus.Debug("Loading storage file from: ", s.Path)
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return err
	}

	var loaded Data
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("decode %s: %w", s.Path, err)
	}
	s.Data = loaded

	// Validate loaded data and self-heal when possible.
	if err := validate.Struct(s.Data); err != nil {
		if validate.Var(s.Data.SessionID, "required,uuid4") != nil {
			s.Data.SessionID = uuid.NewString()
			if err := s.Save(); err != nil {
				return err
			}
		}
		// Unparseable times are kept; the countdown renders them as NaN.
		if validate.Var(s.Data.Deadline, "omitempty,"+validate.DatetimeLikeTag) != nil {
			logrus.Warnf("Unparseable deadline %q in storage.", s.Data.Deadline)
		}
		if validate.Var(s.Data.Start, "omitempty,"+validate.DatetimeLikeTag) != nil {
			logrus.Warnf("Unparseable start %q in storage.", s.Data.Start)
		}
	}
	return nil
}

// Save writes the storage data to the file.
func (s *Storage) Save() error {
	logrus.Debug("Saving storage file to: ", s.Path)
	// Ensure parent directory exists.
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.Data, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.Path, data, 0o600)
}

// SetWindow records a deadline and optional start.
func (s *Storage) SetWindow(name, deadline, start string) error {
	s.Data.Name = name
	s.Data.Deadline = deadline
	s.Data.Start = start
	s.Data.UpdatedAt = time.Now().UTC()
	return s.Save()
}

// Clear forgets the stored deadline and start, keeping the session id.
func (s *Storage) Clear() error {
	s.Data.Name = ""
	s.Data.Deadline = ""
	s.Data.Start = ""
	s.Data.UpdatedAt = time.Now().UTC()
	return s.Save()
}

// Window parses the stored deadline and start.
func (s *Storage) Window() countdown.Window {
	return countdown.Window{
		Deadline: countdown.Parse(s.Data.Deadline),
		Start:    countdown.Parse(s.Data.Start),
	}
}

// Source returns a countdown.Source that re-reads the file on every call.
func (s *Storage) Source() countdown.Source {
	return func() (countdown.Window, error) {
		if err := s.Load(); err != nil {
			return countdown.Window{}, err
		}
		return s.Window(), nil
	}
}

// expandTilde expands the tilde in a path to the user's home directory.
func expandTilde(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}
