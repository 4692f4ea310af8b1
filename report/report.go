package report

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/nixpkgs-monitor/updatetool/corpus"
	"github.com/nixpkgs-monitor/updatetool/match"
	"github.com/nixpkgs-monitor/updatetool/utils"
)

var packageHeader = []string{"Attr", "Name", "Version", "Coverage"}

// CSV writes reports as CSV files. An empty path disables the report.
type CSV struct {
	fs   utils.Fs
	path string
}

func NewCSV(fs afero.Fs, path string) CSV {
	return CSV{
		fs:   utils.NewFs(fs),
		path: path,
	}
}

func (c CSV) write(rows [][]string) error {
	if c.path == "" {
		return nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return xerrors.Errorf("failed to encode CSV: %w", err)
	}
	if err := c.fs.WriteFile(c.path, buf.Bytes()); err != nil {
		return xerrors.Errorf("failed to write report %s: %w", c.path, err)
	}
	return nil
}

// Coverage writes one row per package with the number of updaters covering it.
func (c CSV) Coverage(pkgs []corpus.Package, coverage map[string]int) error {
	rows := [][]string{packageHeader}
	for _, pkg := range pkgs {
		rows = append(rows, []string{pkg.InternalName, pkg.Name, pkg.Version, strconv.Itoa(coverage[pkg.InternalName])})
	}
	return c.write(rows)
}

// Updates writes the coverage row of each package followed by the newest
// version each updater found, empty when it found none.
func (c CSV) Updates(pkgs []corpus.Package, updaters []string, coverage map[string]int,
	versions map[string]map[string]string) error {
	header := append(append([]string{}, packageHeader...), updaters...)
	rows := [][]string{header}
	for _, pkg := range pkgs {
		row := []string{pkg.InternalName, pkg.Name, pkg.Version, strconv.Itoa(coverage[pkg.InternalName])}
		for _, u := range updaters {
			row = append(row, versions[u][pkg.InternalName])
		}
		rows = append(rows, row)
	}
	return c.write(rows)
}

func (c CSV) CVEMatches(records []match.Record) error {
	rows := [][]string{{"Attr", "Product", "Version", "CVE"}}
	for _, r := range records {
		rows = append(rows, []string{r.PackageAttr, r.Product, r.Version, r.AdvisoryID})
	}
	return c.write(rows)
}
