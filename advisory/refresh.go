package advisory

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"time"

	"github.com/araddon/dateparse"
	"github.com/parnurzeal/gorequest"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/nixpkgs-monitor/updatetool/utils"
)

const DefaultNVDBaseURL = "http://static.nvd.nist.gov/feeds/xml/cve/"

type Refresher struct {
	appFs   afero.Fs
	feedDir string
	urls    []string
	timeout time.Duration
}

type RefreshOption func(*Refresher)

func WithTimeout(timeout time.Duration) RefreshOption {
	return func(r *Refresher) { r.timeout = timeout }
}

// NewRefresher downloads each feed named in feeds from baseURL into feedDir.
func NewRefresher(appFs afero.Fs, feedDir, baseURL string, feeds []string, opts ...RefreshOption) (*Refresher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, xerrors.Errorf("unable to parse %q base url: %w", baseURL, err)
	}

	r := &Refresher{
		appFs:   appFs,
		feedDir: feedDir,
		timeout: 10 * time.Minute,
	}
	for _, feed := range feeds {
		r.urls = append(r.urls, base.ResolveReference(&url.URL{Path: feed}).String())
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Refresh fetches every feed whose remote copy is newer than the local one.
// All feeds are attempted; failures are returned together.
func (r *Refresher) Refresh(ctx context.Context) error {
	var errs []error
	for _, u := range r.urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.refresh(u); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return xerrors.Errorf("failed to refresh %d feeds: %s", len(errs), fmt.Sprint(errs))
	}
	return nil
}

func (r *Refresher) refresh(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return xerrors.Errorf("invalid feed url %q: %w", rawURL, err)
	}
	localPath := filepath.Join(r.feedDir, path.Base(u.Path))

	req := gorequest.New().Timeout(r.timeout).Get(rawURL)
	if info, err := r.appFs.Stat(localPath); err == nil {
		req.Set("If-Modified-Since", info.ModTime().UTC().Format(http.TimeFormat))
	}

	resp, body, errs := req.EndBytes()
	if len(errs) > 0 {
		return xerrors.Errorf("HTTP error. url: %s, err: %w", rawURL, errs[0])
	}

	switch resp.StatusCode {
	case http.StatusNotModified:
		log.Debugf("%s is up to date", localPath)
		return nil
	case http.StatusOK:
	default:
		return xerrors.Errorf("HTTP error. status code: %d, url: %s", resp.StatusCode, rawURL)
	}

	if err = utils.NewFs(r.appFs).ReplaceFile(localPath, body); err != nil {
		return xerrors.Errorf("failed to save %s: %w", localPath, err)
	}

	modified := time.Now()
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := dateparse.ParseAny(lm); err == nil {
			modified = t
		} else {
			log.Debugf("unparsable Last-Modified %q: %s", lm, err)
		}
	}
	if err = r.appFs.Chtimes(localPath, modified, modified); err != nil {
		return xerrors.Errorf("unable to stamp %s: %w", localPath, err)
	}

	log.Infof("fetched %s (%d bytes)", rawURL, len(body))
	return nil
}
