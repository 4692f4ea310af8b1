package cpe

import (
	"regexp"
	"strings"
)

// uriRegexp matches the URI binding: cpe:/<part>:<vendor>:<product>:<version>
var uriRegexp = regexp.MustCompile(`^cpe:/.:([^:]*):([^:]*):([^:]*)`)

// Product is a vendor product reference taken from a CPE URI.
// Version may be empty.
type Product struct {
	Supplier string
	Product  string
	Version  string
}

// Parse splits a CPE URI into supplier, product and version. No unescaping or
// case folding is done.
func Parse(s string) (Product, bool) {
	m := uriRegexp.FindStringSubmatch(s)
	if m == nil {
		return Product{}, false
	}
	return Product{
		Supplier: m[1],
		Product:  m[2],
		Version:  m[3],
	}, true
}

// String returns product:version, the key advisories are grouped under.
func (p Product) String() string {
	return p.Product + ":" + p.Version
}

// FromFormatted converts a CPE 2.3 formatted string into the URI binding
// understood by Parse. ANY and NA versions become empty.
func FromFormatted(s string) (string, bool) {
	if !strings.HasPrefix(s, "cpe:2.3:") {
		return "", false
	}
	parts := strings.Split(strings.TrimPrefix(s, "cpe:2.3:"), ":")
	if len(parts) < 4 || len(parts[0]) != 1 {
		return "", false
	}
	version := parts[3]
	if version == "*" || version == "-" {
		version = ""
	}
	return "cpe:/" + strings.Join([]string{parts[0], parts[1], parts[2], version}, ":"), true
}
