package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerFallbackProvider(t *testing.T) {
	s := NewSelector(SelectorConfig{Environment: Server})
	f, err := s.GetFallbackProvider()
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 1, f.Quorum())
	ms := f.Members()
	require.Len(t, ms, len(PublicEndpoints))
	for i, m := range ms {
		assert.Equal(t, i+1, m.Priority)
		assert.Equal(t, 1, m.Weight)
		assert.Equal(t, PublicEndpoints[i], m.Provider.Name())
		assert.IsType(t, &JSONRPC{}, m.Provider)
	}
}

func TestServerProvider(t *testing.T) {
	s := NewSelector(SelectorConfig{})
	assert.Equal(t, Server, s.Environment())

	p, err := s.GetProvider()
	require.NoError(t, err)
	defer p.Close()

	require.IsType(t, &JSONRPC{}, p)
	assert.Equal(t, PublicEndpoints[0], p.Name())
}

func TestCustomEndpoints(t *testing.T) {
	urls := []string{"http://127.0.0.1:8545", "http://127.0.0.1:8546"}
	s := NewSelector(SelectorConfig{Endpoints: urls})
	assert.Equal(t, urls, s.Endpoints())

	f, err := s.GetFallbackProvider()
	require.NoError(t, err)
	defer f.Close()
	require.Len(t, f.Members(), 2)
	assert.Equal(t, urls[1], f.Members()[1].Provider.Name())
}

func TestBrowserProviders(t *testing.T) {
	s := NewSelector(SelectorConfig{Environment: Browser})

	f, err := s.GetFallbackProvider()
	require.NoError(t, err)
	defer f.Close()
	names := make([]string, 0)
	for _, m := range f.Members() {
		names = append(names, m.Provider.Name())
	}
	assert.Equal(t, []string{"infura", "etherscan"}, names)
	assert.Equal(t, 2, f.Quorum(), "both browser vendors must agree")

	p, err := s.GetProvider()
	require.NoError(t, err)
	defer p.Close()
	assert.IsType(t, &Fallback{}, p)
}

func TestBrowserVendorKeys(t *testing.T) {
	s := NewSelector(SelectorConfig{
		Environment: Browser,
		VendorKeys:  map[Vendor]string{Infura: "my-project"},
	})
	f, err := s.GetFallbackProvider()
	require.NoError(t, err)
	defer f.Close()

	rpc, ok := f.Members()[0].Provider.(*vendorRPC)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(rpc.url, "/my-project"))
	assert.Equal(t, "infura", rpc.Name(), "keys stay out of the name")
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in      string
		want    Environment
		wantErr bool
	}{
		{"", Server, false},
		{"server", Server, false},
		{" Browser ", Browser, false},
		{"desktop", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEnvironment(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
