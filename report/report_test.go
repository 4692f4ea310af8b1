package report_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixpkgs-monitor/updatetool/corpus"
	"github.com/nixpkgs-monitor/updatetool/match"
	"github.com/nixpkgs-monitor/updatetool/report"
)

var pkgs = []corpus.Package{
	{InternalName: "apacheHttpd", Name: "httpd", Version: "2.4.1"},
	{InternalName: "jq", Name: "jq", Version: "1.3"},
}

func TestCSV(t *testing.T) {
	tests := []struct {
		name  string
		write func(c report.CSV) error
		want  string
	}{
		{
			name: "coverage",
			write: func(c report.CSV) error {
				return c.Coverage(pkgs, map[string]int{"apacheHttpd": 2})
			},
			want: "Attr,Name,Version,Coverage\n" +
				"apacheHttpd,httpd,2.4.1,2\n" +
				"jq,jq,1.3,0\n",
		},
		{
			name: "updates",
			write: func(c report.CSV) error {
				return c.Updates(pkgs, []string{"gentoo", "github"},
					map[string]int{"apacheHttpd": 1, "jq": 1},
					map[string]map[string]string{
						"gentoo": {"apacheHttpd": "2.4.6"},
						"github": {"jq": "1.5"},
					})
			},
			want: "Attr,Name,Version,Coverage,gentoo,github\n" +
				"apacheHttpd,httpd,2.4.1,1,2.4.6,\n" +
				"jq,jq,1.3,1,,1.5\n",
		},
		{
			name: "cve matches",
			write: func(c report.CSV) error {
				return c.CVEMatches([]match.Record{
					{PackageAttr: "apacheHttpd", Product: "httpd", Version: "2.4.1", AdvisoryID: "CVE-2099-0001"},
				})
			},
			want: "Attr,Product,Version,CVE\n" +
				"apacheHttpd,httpd,2.4.1,CVE-2099-0001\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, tt.write(report.NewCSV(fs, "/out/report.csv")))

			got, err := afero.ReadFile(fs, "/out/report.csv")
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestCSV_disabled(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, report.NewCSV(fs, "").Coverage(pkgs, nil))

	files, err := afero.ReadDir(fs, "/")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestCSV_readOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := report.NewCSV(fs, "/out/report.csv").CVEMatches(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write report /out/report.csv")
}
