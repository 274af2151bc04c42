package fileprefs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/aula/core"
)

// Preferences keeps the session in a single JSON document readable only by its owner.
type Preferences struct {
	mutex sync.Mutex
	path  string
}

var _ core.Preferences = (*Preferences)(nil)

func NewPreferences(path string) *Preferences {
	return &Preferences{path: path}
}

func (p *Preferences) load() (map[string]string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, errors.Wrapf(err, "reading %s", p.path)
	}
	table := map[string]string{}
	if len(data) == 0 {
		return table, nil
	}
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", p.path)
	}
	return table, nil
}

// save writes to a temp file then renames it over the document.
func (p *Preferences) save(table map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return errors.Wrap(err, "creating preferences dir")
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding preferences")
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, p.path), "replacing %s", p.path)
}

func (p *Preferences) Store(_ context.Context, key, value string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	table, err := p.load()
	if err != nil {
		return err
	}
	table[key] = value
	return p.save(table)
}

func (p *Preferences) Retrieve(_ context.Context, key string) (string, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	table, err := p.load()
	if err != nil {
		return "", err
	}
	if val, ok := table[key]; ok {
		return val, nil
	}
	return "", core.ErrPrefNotFound
}

func (p *Preferences) Remove(_ context.Context, key string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	table, err := p.load()
	if err != nil {
		return err
	}
	if _, ok := table[key]; !ok {
		return nil
	}
	delete(table, key)
	return p.save(table)
}

func (p *Preferences) Clear(_ context.Context) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", p.path)
	}
	return nil
}
