package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixpkgs-monitor/updatetool/corpus"
	"github.com/nixpkgs-monitor/updatetool/match"
)

var glsaCorpus = corpus.New([]corpus.Package{
	{InternalName: "openssh", Name: "openssh", Version: "6.4p1"},
	{InternalName: "rubyLibs.rack", Name: "ruby-rack", Version: "1.5.2"},
	{InternalName: "pythonPackages.django", Name: "python-django", Version: "1.5.5"},
	{InternalName: "perlPackages.DBI", Name: "perl-dbi", Version: "1.630"},
	{InternalName: "dbi", Name: "python-dbi", Version: "0.1"},
})

func TestMatchGLSA(t *testing.T) {
	tests := []struct {
		name     string
		packages string
		want     string
		wantOK   bool
	}{
		{name: "exact name", packages: "net-misc/openssh", want: "openssh", wantOK: true},
		{name: "ruby prefix", packages: "dev-ruby/rack", want: "rubyLibs.rack", wantOK: true},
		{name: "python prefix", packages: "dev-python/django", want: "pythonPackages.django", wantOK: true},
		{name: "python before perl", packages: "dev-perl/dbi", want: "dbi", wantOK: true},
		{name: "only the first atom", packages: "www-servers/nginx net-misc/openssh", wantOK: false},
		{name: "unknown package", packages: "app-misc/unknown", wantOK: false},
		{name: "not an atom", packages: "openssh", wantOK: false},
		{name: "missing category", packages: "/openssh", wantOK: false},
		{name: "trailing segments", packages: "net-misc/openssh/extra", want: "openssh", wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := glsaEntries(t, [][2]string{{"201401-01", tt.packages}})
			require.Len(t, entries, 1)

			got, ok := match.MatchGLSA(entries[0], glsaCorpus)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.InternalName)
		})
	}
}

func TestFindUnmatched(t *testing.T) {
	entries := glsaEntries(t, [][2]string{
		{"201210-02", "www-client/chromium"},
		{"201401-01", "net-misc/openssh"},
		{"201402-01", "www-servers/nginx"},
	})

	tests := []struct {
		name      string
		knownSafe []string
		want      []string
	}{
		{
			name:      "default known safe",
			knownSafe: match.DefaultKnownSafe,
			want:      []string{"GLSA-201402-01"},
		},
		{
			name: "nothing known safe",
			want: []string{"GLSA-201210-02", "GLSA-201402-01"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, entry := range match.FindUnmatched(entries, glsaCorpus, tt.knownSafe) {
				got = append(got, entry.ID())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
