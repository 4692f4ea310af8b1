package match_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/nixpkgs-monitor/updatetool/advisory"
)

// nvdEntries loads entries from an in-memory NVD feed. Each advisory id maps
// to its raw product strings.
func nvdEntries(t *testing.T, advisories [][2]string) []advisory.Entry {
	t.Helper()

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<nvd>\n")
	for _, a := range advisories {
		fmt.Fprintf(&b, "  <entry id=%q>\n    <vulnerable-software-list>\n", a[0])
		for _, p := range strings.Fields(a[1]) {
			fmt.Fprintf(&b, "      <product>%s</product>\n", p)
		}
		b.WriteString("    </vulnerable-software-list>\n  </entry>\n")
	}
	b.WriteString("</nvd>\n")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/feeds/nvd.xml", []byte(b.String()), 0644))
	entries, err := advisory.LoadNVD(fs, "/feeds/nvd.xml")
	require.NoError(t, err)
	return entries
}

// glsaEntries loads entries from in-memory GLSA documents keyed by id.
func glsaEntries(t *testing.T, advisories [][2]string) []advisory.Entry {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, a := range advisories {
		var b strings.Builder
		fmt.Fprintf(&b, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<glsa id=%q>\n  <affected>\n", a[0])
		for _, p := range strings.Fields(a[1]) {
			fmt.Fprintf(&b, "    <package name=%q auto=\"yes\" arch=\"*\"/>\n", p)
		}
		b.WriteString("  </affected>\n</glsa>\n")
		path := filepath.Join("/glsa", "glsa-"+a[0]+".xml")
		require.NoError(t, afero.WriteFile(fs, path, []byte(b.String()), 0644))
	}
	entries, err := advisory.LoadGLSA(fs, "/glsa", advisory.DefaultGLSAYearPattern)
	require.NoError(t, err)
	return entries
}
