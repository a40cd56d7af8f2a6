package model

import (
	"errors"
	"net/http"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Plugin is a third party service exposed through the dashboard
type Plugin struct {
	Alias       string `json:"alias"`
	ServiceURL  string `json:"serviceUrl"`
	FrontendURL string `json:"frontendUrl,omitempty"`
	Authorize   bool   `json:"authorize,omitempty"`
}

// ErrPluginsNotSynced is returned by the readiness check until the first update arrives
var ErrPluginsNotSynced = errors.New("dashboard plugin configuration was not synced yet")

var cmpOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
}

// PluginStore holds the current plugin configuration.
// It is updated by the dashboard config controller and read on every plugin request.
type PluginStore struct {
	mu      sync.RWMutex
	plugins []Plugin
	synced  bool
}

// NewPluginStore creates a store; passing plugins marks it as synced
func NewPluginStore(plugins ...Plugin) *PluginStore {
	s := new(PluginStore)
	if len(plugins) > 0 {
		s.SetPlugins(plugins)
	}
	return s
}

// SetPlugins replaces the plugin list and returns true if it differs from the previous one
func (s *PluginStore) SetPlugins(plugins []Plugin) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.synced && cmp.Equal(plugins, s.plugins, cmpOpts...) {
		return false
	}

	s.synced = true
	s.plugins = append([]Plugin(nil), plugins...)
	return true
}

// LookupPlugin returns the plugin registered under alias
func (s *PluginStore) LookupPlugin(alias string) (Plugin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.plugins {
		if p.Alias == alias {
			return p, true
		}
	}
	return Plugin{}, false
}

// ReadyzCheck fails until the store received its first update
func (s *PluginStore) ReadyzCheck(*http.Request) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.synced {
		return ErrPluginsNotSynced
	}
	return nil
}
