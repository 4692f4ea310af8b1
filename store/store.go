package store

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"

	"github.com/nixpkgs-monitor/updatetool/match"
)

const (
	cveMatchBucket        = "cve_match"
	coverageBucket        = "estimated_coverage"
	versionMismatchBucket = "version_mismatch"
	updatesBucketPrefix   = "updates_"
)

// DB holds the report tables. Each table is a bucket that is rebuilt from
// scratch in a single transaction.
type DB struct {
	db *bolt.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, xerrors.Errorf("failed to create db directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, xerrors.Errorf("failed to open db %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// rebuild replaces the bucket with what fill writes. If fill fails the
// previous contents are kept.
func (d *DB) rebuild(bucket string, fill func(b *bolt.Bucket) error) error {
	err := d.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucket)); err != nil && !xerrors.Is(err, bolt.ErrBucketNotFound) {
			return xerrors.Errorf("failed to drop table: %w", err)
		}
		b, err := tx.CreateBucket([]byte(bucket))
		if err != nil {
			return xerrors.Errorf("failed to create table: %w", err)
		}
		return fill(b)
	})
	if err != nil {
		return xerrors.Errorf("failed to rebuild %s: %w", bucket, err)
	}
	return nil
}

// view calls fn for every row of the bucket. A missing bucket has no rows.
func (d *DB) view(bucket string, fn func(k, v []byte) error) error {
	return d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		return b.ForEach(fn)
	})
}

// RebuildCVEMatches replaces the match table. Rows are not unique.
func (d *DB) RebuildCVEMatches(records []match.Record) error {
	err := d.rebuild(cveMatchBucket, func(b *bolt.Bucket) error {
		for _, r := range records {
			seq, err := b.NextSequence()
			if err != nil {
				return xerrors.Errorf("failed to get sequence: %w", err)
			}
			v, err := json.Marshal(r)
			if err != nil {
				return xerrors.Errorf("failed to marshal match: %w", err)
			}
			if err = b.Put(itob(seq), v); err != nil {
				return xerrors.Errorf("failed to insert %s: %w", r.PackageAttr, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debugf("stored %d CVE matches", len(records))
	return nil
}

func (d *DB) CVEMatches() ([]match.Record, error) {
	var records []match.Record
	err := d.view(cveMatchBucket, func(_, v []byte) error {
		var r match.Record
		if err := json.Unmarshal(v, &r); err != nil {
			return xerrors.Errorf("failed to unmarshal match: %w", err)
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", cveMatchBucket, err)
	}
	return records, nil
}

// RebuildCoverage replaces the coverage estimate keyed by package attribute.
func (d *DB) RebuildCoverage(coverage map[string]int) error {
	return d.rebuild(coverageBucket, func(b *bolt.Bucket) error {
		for attr, n := range coverage {
			v, err := json.Marshal(n)
			if err != nil {
				return xerrors.Errorf("failed to marshal coverage: %w", err)
			}
			if err = b.Put([]byte(attr), v); err != nil {
				return xerrors.Errorf("failed to insert %q: %w", attr, err)
			}
		}
		return nil
	})
}

func (d *DB) Coverage() (map[string]int, error) {
	coverage := map[string]int{}
	err := d.view(coverageBucket, func(k, v []byte) error {
		var n int
		if err := json.Unmarshal(v, &n); err != nil {
			return xerrors.Errorf("failed to unmarshal coverage of %s: %w", k, err)
		}
		coverage[string(k)] = n
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", coverageBucket, err)
	}
	return coverage, nil
}

// RebuildVersionMismatch replaces the list of packages whose version differs
// from their source tarball.
func (d *DB) RebuildVersionMismatch(attrs []string) error {
	return d.rebuild(versionMismatchBucket, func(b *bolt.Bucket) error {
		for _, attr := range attrs {
			if err := b.Put([]byte(attr), []byte{}); err != nil {
				return xerrors.Errorf("failed to insert %q: %w", attr, err)
			}
		}
		return nil
	})
}

// VersionMismatches returns the package attributes sorted by key.
func (d *DB) VersionMismatches() ([]string, error) {
	var attrs []string
	err := d.view(versionMismatchBucket, func(k, _ []byte) error {
		attrs = append(attrs, string(k))
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to read %s: %w", versionMismatchBucket, err)
	}
	return attrs, nil
}

// RebuildUpdates replaces the newest versions found by one updater.
func (d *DB) RebuildUpdates(updater string, versions map[string]string) error {
	return d.rebuild(updatesBucketPrefix+updater, func(b *bolt.Bucket) error {
		for attr, version := range versions {
			if err := b.Put([]byte(attr), []byte(version)); err != nil {
				return xerrors.Errorf("failed to insert %q: %w", attr, err)
			}
		}
		return nil
	})
}

func (d *DB) Updates(updater string) (map[string]string, error) {
	versions := map[string]string{}
	err := d.view(updatesBucketPrefix+updater, func(k, v []byte) error {
		versions[string(k)] = string(v)
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to read updates of %s: %w", updater, err)
	}
	return versions, nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
