package inmemprefs

import (
	"context"
	"sync"

	"github.com/trezcool/aula/core"
)

type Preferences struct {
	mutex sync.RWMutex
	table map[string]string
}

var _ core.Preferences = (*Preferences)(nil)

func NewPreferences() *Preferences {
	return &Preferences{table: make(map[string]string)}
}

func (p *Preferences) Store(_ context.Context, key, value string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.table[key] = value
	return nil
}

func (p *Preferences) Retrieve(_ context.Context, key string) (string, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	if val, ok := p.table[key]; ok {
		return val, nil
	}
	return "", core.ErrPrefNotFound
}

func (p *Preferences) Remove(_ context.Context, key string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	delete(p.table, key)
	return nil
}

func (p *Preferences) Clear(_ context.Context) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.table = make(map[string]string)
	return nil
}
