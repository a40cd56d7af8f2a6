package model

import (
	"fmt"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluginStore(t *testing.T) {
	s := NewPluginStore()
	require.ErrorIs(t, s.ReadyzCheck(nil), ErrPluginsNotSynced)

	_, ok := s.LookupPlugin("modelRegistry")
	assert.False(t, ok)

	assert.True(t, s.SetPlugins(nil), "first update is a change even if empty")
	assert.NoError(t, s.ReadyzCheck(nil))
	assert.False(t, s.SetPlugins([]Plugin{}), "nil and empty lists are equal")

	mr := Plugin{Alias: "modelRegistry", ServiceURL: "http://model-registry:8080", Authorize: true}
	assert.True(t, s.SetPlugins([]Plugin{mr}))
	assert.False(t, s.SetPlugins([]Plugin{mr}))

	got, ok := s.LookupPlugin("modelRegistry")
	require.True(t, ok)
	assert.Equal(t, mr, got)

	assert.True(t, s.SetPlugins(nil))
	_, ok = s.LookupPlugin("modelRegistry")
	assert.False(t, ok, "removed plugins are no longer found")
	assert.NoError(t, s.ReadyzCheck(nil))
}

func TestPluginStoreConcurrent(t *testing.T) {
	s := NewPluginStore(Plugin{Alias: "p0", ServiceURL: "http://p0"})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.SetPlugins([]Plugin{{Alias: fmt.Sprintf("p%d", i), ServiceURL: "http://p"}})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.LookupPlugin("p0")
		}()
	}
	wg.Wait()
	found := 0
	for i := 0; i < 10; i++ {
		if _, ok := s.LookupPlugin(fmt.Sprintf("p%d", i)); ok {
			found++
		}
	}
	assert.Equal(t, 1, found, "the last update replaces the whole list")
}

func TestParseUpstream(t *testing.T) {
	for _, tc := range []struct {
		in     string
		expect *UpstreamTarget
	}{
		{"http://localhost:9000", &UpstreamTarget{Scheme: "http", Host: "localhost", Port: "9000"}},
		{"https://registry.example.com/api", &UpstreamTarget{Scheme: "https", Host: "registry.example.com", Path: "/api"}},
		{"http://user:pw@h.example.com:9000/base?tenant=a", &UpstreamTarget{
			Scheme: "http", Host: "h.example.com", Port: "9000", Path: "/base",
			User: url.UserPassword("user", "pw"), RawQuery: "tenant=a",
		}},
		{"http://[::1]/base", &UpstreamTarget{Scheme: "http", Host: "::1", Path: "/base"}},
		{"http://[::1]:8080", &UpstreamTarget{Scheme: "http", Host: "::1", Port: "8080"}},
		{"ftp://registry", nil},
		{"http://", nil},
		{"://bad", nil},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseUpstream(tc.in)
			if tc.expect == nil {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
			assert.Equal(t, tc.in, got.String())
		})
	}
}
