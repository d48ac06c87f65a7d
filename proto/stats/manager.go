package stats

import (
	"sort"
	"sync"
)

// Manager 计数器集合
type Manager struct {
	access   sync.RWMutex
	counters map[string]*Counter
}

// NewManager 实例
func NewManager() *Manager {
	return &Manager{
		counters: make(map[string]*Counter),
	}
}

// RegisterCounter returns the counter called name, creating it once.
func (m *Manager) RegisterCounter(name string) *Counter {
	m.access.Lock()
	defer m.access.Unlock()

	if c, found := m.counters[name]; found {
		return c
	}
	c := NewCounter(name)
	m.counters[name] = c
	return c
}

// Names lists the registered counters in order.
func (m *Manager) Names() []string {
	m.access.RLock()
	defer m.access.RUnlock()

	names := make([]string, 0, len(m.counters))
	for name := range m.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
