package updater

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/nixpkgs-monitor/updatetool/corpus"
	"github.com/nixpkgs-monitor/updatetool/utils"
)

const defaultRetry = 2

type option func(*HTMLIndex)

func WithRetry(retry int) option {
	return func(h *HTMLIndex) {
		h.retry = retry
	}
}

// HTMLIndex finds newer tarballs in the directory listing that a package's
// source URL lives in, for packages hosted under baseURL.
type HTMLIndex struct {
	name    string
	baseURL string
	retry   int
}

func NewHTMLIndex(name, baseURL string, opts ...option) HTMLIndex {
	h := HTMLIndex{
		name:    name,
		baseURL: baseURL,
		retry:   defaultRetry,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func (h HTMLIndex) Name() string {
	return h.name
}

func (h HTMLIndex) Covers(pkg corpus.Package) bool {
	if !strings.HasPrefix(pkg.URL, h.baseURL) {
		return false
	}
	file, _, ok := tarball(pkg.URL)
	if !ok {
		return false
	}
	_, _, ok = ParseTarball(file)
	return ok
}

func (h HTMLIndex) NewestVersion(ctx context.Context, pkg corpus.Package) (string, error) {
	if !h.Covers(pkg) {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file, dir, _ := tarball(pkg.URL)
	project, current, _ := ParseTarball(file)

	body, err := utils.FetchURL(dir, h.retry)
	if err != nil {
		return "", xerrors.Errorf("failed to fetch index of %s: %w", pkg.InternalName, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", xerrors.Errorf("failed to parse index %s: %w", dir, err)
	}

	newest := ""
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		name, v, ok := ParseTarball(path.Base(u.Path))
		if !ok || name != project {
			return
		}
		base := current
		if newest != "" {
			base = newest
		}
		if n, ok := newer(base, v); ok {
			newest = n
		}
	})
	log.Debugf("%s: newest %s tarball in %s is %q", h.name, project, dir, newest)
	return newest, nil
}
