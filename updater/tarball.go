package updater

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/nixpkgs-monitor/updatetool/corpus"
)

var archiveSuffixes = []string{
	".tar.gz", ".tar.bz2", ".tar.xz", ".tar.lzma", ".tar.lz", ".tgz", ".tbz2", ".txz", ".zip", ".tar",
}

var tarballRegexp = regexp.MustCompile(`^(.+?)[-_]v?(\d[0-9A-Za-z.+_-]*)$`)

// ParseTarball splits an archive file name such as "httpd-2.4.6.tar.bz2"
// into the project name and version.
func ParseTarball(file string) (name, version string, ok bool) {
	base := ""
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(file, suffix) {
			base = strings.TrimSuffix(file, suffix)
			break
		}
	}
	if base == "" {
		return "", "", false
	}
	m := tarballRegexp.FindStringSubmatch(base)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// tarball returns the archive file name and its directory URL.
func tarball(rawURL string) (file, dir string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return "", "", false
	}
	file = path.Base(u.Path)
	u.Path = path.Dir(u.Path) + "/"
	u.RawQuery = ""
	u.Fragment = ""
	return file, u.String(), true
}

// VersionsMatch reports whether the version in the package's source tarball
// name equals the package version. It is false when the tarball name cannot
// be parsed.
func VersionsMatch(pkg corpus.Package) bool {
	file, _, ok := tarball(pkg.URL)
	if !ok {
		return false
	}
	_, v, ok := ParseTarball(file)
	if !ok {
		return false
	}
	return v == pkg.Version
}
