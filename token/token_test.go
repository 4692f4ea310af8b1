package token

import (
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/assert"

	"github.com/nixpkgs-monitor/updatetool/corpus"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{input: "windows_xp_professional", want: []string{"windows", "xp", "professional"}},
		{input: "7zip", want: []string{"7", "zip"}},
		{input: "log4j2", want: []string{"log", "4", "j", "2"}},
		{input: ".net_framework", want: []string{"net", "framework"}},
		{input: "nx-os", want: []string{"nx", "os"}},
		{input: "___", want: nil},
		{input: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestNewStats(t *testing.T) {
	pkgs := []corpus.Package{
		{InternalName: "httpd", Name: "apache-httpd"},
		{InternalName: "perlPackages.HTTPDaemon", Name: "perl-http-daemon"},
		{InternalName: "lighttpd", Name: "lighttpd"},
		{InternalName: "openssl", Name: "openssl"},
	}
	products := []string{"httpd", "http_server", "openssl", "httpd", "openssl_openssl"}

	got := NewStats(products, pkgs)

	wantOccurrences := map[string]int{
		"httpd":  1,
		"http":   1,
		"server": 1,
		// "openssl" and "openssl_openssl" are distinct products; the repeat
		// inside the second one is not counted twice
		"openssl": 2,
	}
	wantSelectivity := map[string]int{
		"httpd":   2,
		"http":    3,
		"server":  0,
		"openssl": 1,
	}
	if diff := pretty.Compare(got.Occurrences, wantOccurrences); diff != "" {
		t.Errorf("occurrences diff: %s", diff)
	}
	if diff := pretty.Compare(got.Selectivity, wantSelectivity); diff != "" {
		t.Errorf("selectivity diff: %s", diff)
	}

	assert.Equal(t, map[string]int{
		"httpd":   2,
		"http":    3,
		"server":  0,
		"openssl": 2,
	}, got.FalsePositiveImpact())
}

func TestNewStats_SelectivityIsMonotonic(t *testing.T) {
	pkgs := []corpus.Package{
		{InternalName: "zip", Name: "zip"},
		{InternalName: "unzip", Name: "unzip"},
	}
	before := NewStats([]string{"7zip"}, pkgs)
	after := NewStats([]string{"7zip"}, append(pkgs, corpus.Package{InternalName: "p7zip", Name: "p7zip"}))

	for tok, n := range before.Selectivity {
		assert.GreaterOrEqual(t, after.Selectivity[tok], n, tok)
	}
	assert.Equal(t, 3, after.Selectivity["zip"])
	assert.Equal(t, 1, after.Selectivity["7"])
}

func TestSortedString(t *testing.T) {
	got := sortedString(map[string]int{"b": 2, "a": 2, "c": 1})
	assert.Equal(t, "c: 1\na: 2\nb: 2", got)
}
