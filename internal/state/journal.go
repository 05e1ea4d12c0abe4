package state

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/paperl/serverinit/internal/errors"
	"github.com/paperl/serverinit/internal/logger"
)

// Journal maps task keys to completion, spanning the current run plus any
// prior run loaded from a resume file. It is threaded explicitly through the
// workflow driver; task bodies never touch it.
type Journal map[string]bool

// LoadJournal reads a journal from path. A missing file yields an empty
// journal; a corrupt file yields an empty journal with a warning. Neither is
// fatal — the operator can always start fresh.
func LoadJournal(path string, log logger.Logger) Journal {
	if path == "" {
		return Journal{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("cannot read state file at %s: %v", path, err)
		}
		return Journal{}
	}
	var j Journal
	if err := yaml.Unmarshal(data, &j); err != nil {
		log.Warn("failed to parse state file at %s; starting fresh", path)
		return Journal{}
	}
	if j == nil {
		j = Journal{}
	}
	return j
}

// SaveTo writes the journal atomically (write-then-rename) as indented YAML
// with keys sorted by the encoder. An empty target path means no
// persistence and is a silent no-op.
func (j Journal) SaveTo(path string) error {
	if path == "" {
		return nil
	}
	data, err := yaml.Marshal(j)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrState,
			"Failed to encode state file", "")
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".serverinit-state-*")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrState,
			"Failed to create temporary state file",
			"Check permissions on "+dir)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrState,
			"Failed to write state file", "")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrState,
			"Failed to close state file", "")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.WrapWithCode(err, errors.ErrState,
			"Failed to replace state file at "+path, "")
	}
	return nil
}

// CompletedKeys returns the keys marked true, in map order; callers sort as
// needed for display.
func (j Journal) CompletedKeys() []string {
	keys := make([]string, 0, len(j))
	for key, done := range j {
		if done {
			keys = append(keys, key)
		}
	}
	return keys
}
