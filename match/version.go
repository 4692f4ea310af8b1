package match

import (
	"regexp"
	"strings"

	"github.com/nixpkgs-monitor/updatetool/corpus"
)

// Tried in order; the first that matches wins even if a later one would too.
var versionRegexps = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.\d+\.\d+\.\d+`),
	regexp.MustCompile(`^\d+\.\d+\.\d+`),
	regexp.MustCompile(`^\d+\.\d+`),
	regexp.MustCompile(`^\d+`),
}

var pythonPackagesRegexp = regexp.MustCompile(`^python\d\dPackages\.`)

// ExtractVersion returns the leading numeric part of a version string that
// advisory and package versions are compared on.
func ExtractVersion(version string) (string, bool) {
	for _, re := range versionRegexps {
		if v := re.FindString(version); v != "" {
			return v, true
		}
	}
	return "", false
}

// Excluded reports whether pkg must not be matched against product because
// interpreter sub-packages share the interpreter's version number.
func Excluded(product string, pkg corpus.Package) bool {
	switch product {
	case "perl":
		return strings.HasPrefix(pkg.InternalName, "perlPackages.")
	case "python":
		return pythonPackagesRegexp.MatchString(pkg.InternalName) ||
			strings.HasPrefix(pkg.InternalName, "pythonDocs.")
	}
	return false
}

// VersionsCorrelate confirms that an advisory version and a package version
// share the same comparable prefix.
func VersionsCorrelate(advisoryVersion, packageVersion string) bool {
	v1, ok := ExtractVersion(advisoryVersion)
	if !ok {
		return false
	}
	v2, ok := ExtractVersion(packageVersion)
	if !ok {
		return false
	}
	return v1 == v2
}
