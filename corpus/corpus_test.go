package corpus_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixpkgs-monitor/updatetool/corpus"
)

const listing = `[
  {"internal_name": "httpd", "name": "httpd", "version": "2.4.1", "url": "mirror://apache/httpd/httpd-2.4.1.tar.bz2"},
  {"internal_name": "rubyPackages.rack", "name": "ruby-rack", "version": "1.5.2"},
  {"internal_name": "httpd_2_2", "name": "httpd", "version": "2.2.26"}
]`

type countingProvider struct {
	calls int
	pkgs  []corpus.Package
}

func (p *countingProvider) Packages() ([]corpus.Package, error) {
	p.calls++
	return p.pkgs, nil
}

func TestJSONFile_Packages(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []corpus.Package
		wantErr string
	}{
		{
			name:    "happy path",
			content: listing,
			want: []corpus.Package{
				{InternalName: "httpd", Name: "httpd", Version: "2.4.1", URL: "mirror://apache/httpd/httpd-2.4.1.tar.bz2"},
				{InternalName: "rubyPackages.rack", Name: "ruby-rack", Version: "1.5.2"},
				{InternalName: "httpd_2_2", Name: "httpd", Version: "2.2.26"},
			},
		},
		{
			name:    "broken json",
			content: `[{"internal_name": `,
			wantErr: "failed to decode package list",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/corpus/nix.json", []byte(tt.content), 0644))

			got, err := corpus.JSONFile{AppFs: fs, Path: "/corpus/nix.json"}.Packages()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCorpus_ByName(t *testing.T) {
	c := corpus.New([]corpus.Package{
		{InternalName: "httpd", Name: "httpd", Version: "2.4.1"},
		{InternalName: "httpd_2_2", Name: "httpd", Version: "2.2.26"},
		{InternalName: "rubyPackages.rack", Name: "ruby-rack", Version: "1.5.2"},
	})

	got, ok := c.ByName("httpd")
	require.True(t, ok)
	assert.Equal(t, "httpd", got.InternalName, "first listed package wins")

	got, ok = c.ByName("ruby-rack")
	require.True(t, ok)
	assert.Equal(t, "rubyPackages.rack", got.InternalName)

	_, ok = c.ByName("rack")
	assert.False(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestCache_Get(t *testing.T) {
	nix := &countingProvider{pkgs: []corpus.Package{{InternalName: "httpd", Name: "httpd", Version: "2.4.1"}}}
	cache := corpus.NewCache(map[string]corpus.Provider{"nix": nix})

	first, err := cache.Get("nix")
	require.NoError(t, err)
	second, err := cache.Get("nix")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, nix.calls)

	_, err = cache.Get("arch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown distribution: arch")
}
