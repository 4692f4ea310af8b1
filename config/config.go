package config

import (
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"

	"github.com/nixpkgs-monitor/updatetool/advisory"
	"github.com/nixpkgs-monitor/updatetool/match"
	"github.com/nixpkgs-monitor/updatetool/utils"
)

type Config struct {
	FeedDir          string            `yaml:"feed_dir"`
	NVDFeeds         []string          `yaml:"nvd_feeds"`
	NVDBaseURL       string            `yaml:"nvd_base_url"`
	GLSADir          string            `yaml:"glsa_dir"`
	GLSASource       string            `yaml:"glsa_source"`
	GLSAYearPattern  string            `yaml:"glsa_year_pattern"`
	CSAFDir          string            `yaml:"csaf_dir"`
	DBPath           string            `yaml:"db_path"`
	Corpus           map[string]string `yaml:"corpus"`
	ProductBlacklist []string          `yaml:"product_blacklist"`
	KnownSafeGLSA    []string          `yaml:"known_safe_glsa"`
	HTMLIndexes      map[string]string `yaml:"html_indexes"`
	GithubToken      string            `yaml:"github_token"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	dataDir := utils.DataDir()
	return Config{
		FeedDir:          filepath.Join(dataDir, "nvd"),
		NVDFeeds:         advisory.DefaultNVDFeeds,
		NVDBaseURL:       advisory.DefaultNVDBaseURL,
		GLSADir:          filepath.Join(dataDir, "glsa"),
		GLSASource:       advisory.DefaultGLSASource,
		GLSAYearPattern:  advisory.DefaultGLSAYearPattern,
		DBPath:           filepath.Join(dataDir, "db.bolt"),
		Corpus:           map[string]string{"nix": filepath.Join(dataDir, "corpus", "nix.json")},
		ProductBlacklist: match.DefaultBlacklist,
		KnownSafeGLSA:    match.DefaultKnownSafe,
		GithubToken:      utils.LookupEnv("GITHUB_TOKEN", ""),
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values and maps are merged into the default maps. The product
// blacklist and known safe GLSAs only extend the built-in lists. An empty path
// returns the defaults.
func Load(fs afero.Fs, path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, xerrors.Errorf("unable to read config %s: %w", path, err)
	}
	if err = yaml.Unmarshal(b, &c); err != nil {
		return Config{}, xerrors.Errorf("failed to unmarshal config %s: %w", path, err)
	}
	c.ProductBlacklist = lo.Uniq(append(slices.Clone(match.DefaultBlacklist), c.ProductBlacklist...))
	c.KnownSafeGLSA = lo.Uniq(append(slices.Clone(match.DefaultKnownSafe), c.KnownSafeGLSA...))
	return c, nil
}
