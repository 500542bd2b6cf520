// Package store manages the local cache directory shared by the fetcher
// and the compositor.
//
// The layout is flat and named by object identifier:
//
//	collection.json   catalog listing
//	436535.json       object record, stored verbatim
//	436535.jpg        primary image, extension taken from its URL
//
// A file's presence is the only proof of a completed download: there is
// no freshness check and no checksum. Writes go to a temporary file in the
// same directory and are renamed into place, so an interrupted download
// never leaves a file that later runs would mistake for a complete one.
package store

import (
	"cmp"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/museum"
)

// ImageExts are the extensions [Store.FindImage] probes, in order.
var ImageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".tif", ".tiff", ".bmp"}

// Store is a cache directory.
type Store struct {
	dir     string
	catalog string
}

// Open returns a Store rooted at dir, creating dir if needed.
// catalogFile is the catalog's file name inside dir.
func Open(dir, catalogFile string) (*Store, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeFilesystem, err, "create cache dir %s", dir)
	}
	return &Store{dir: dir, catalog: catalogFile}, nil
}

// ForCatalog returns the Store whose catalog is the file at path.
// Records and images are looked up next to it. The directory is not created.
func ForCatalog(path string) *Store {
	return &Store{dir: filepath.Dir(path), catalog: filepath.Base(path)}
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// CatalogPath returns the catalog file path.
func (s *Store) CatalogPath() string { return filepath.Join(s.dir, s.catalog) }

// RecordPath returns the record file path for id.
func (s *Store) RecordPath(id int64) string {
	return filepath.Join(s.dir, museum.FormatID(id)+".json")
}

// ImagePath returns the image file path for id with the given extension.
func (s *Store) ImagePath(id int64, ext string) string {
	return filepath.Join(s.dir, museum.FormatID(id)+ext)
}

// HasRecord reports whether the record for id is cached.
func (s *Store) HasRecord(id int64) bool { return exists(s.RecordPath(id)) }

// HasImage reports whether the image for id with ext is cached.
func (s *Store) HasImage(id int64, ext string) bool { return exists(s.ImagePath(id, ext)) }

// WriteCatalog atomically replaces the catalog with what fill writes.
func (s *Store) WriteCatalog(fill func(io.Writer) error) error {
	return writeAtomic(s.CatalogPath(), fill)
}

// WriteRecord atomically stores the record for id.
func (s *Store) WriteRecord(id int64, fill func(io.Writer) error) error {
	return writeAtomic(s.RecordPath(id), fill)
}

// WriteImage atomically stores the image for id.
func (s *Store) WriteImage(id int64, ext string, fill func(io.Writer) error) error {
	return writeAtomic(s.ImagePath(id, ext), fill)
}

// ReadCatalog returns the identifiers listed in the catalog file.
// Any failure is INVALID_CATALOG; an empty list is EMPTY_CATALOG.
func (s *Store) ReadCatalog() ([]int64, error) {
	path := s.CatalogPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeInvalidCatalog, err, "cannot open file %s", path)
	}
	c, err := museum.ParseCatalog(data)
	if err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeInvalidCatalog, err, "cannot parse %s", path)
	}
	if len(c.ObjectIDs) == 0 {
		return nil, aferrors.New(aferrors.ErrCodeEmptyCatalog, "no IDs found in %s", path)
	}
	return c.ObjectIDs, nil
}

// ReadRecord loads and parses the cached record for id.
func (s *Store) ReadRecord(id int64) (*museum.Record, error) {
	path := s.RecordPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeFilesystem, err, "cannot open file %s", path)
	}
	r, err := museum.ParseRecord(data)
	if err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeParse, err, "cannot parse %s", path)
	}
	return r, nil
}

// FindImage returns the path of the cached image for id, whatever its
// extension. Extensions in [ImageExts] are probed first, in lower and
// upper case, then any other non-JSON file named after id.
func (s *Store) FindImage(id int64) (string, error) {
	for _, ext := range ImageExts {
		for _, e := range []string{ext, strings.ToUpper(ext)} {
			if p := s.ImagePath(id, e); exists(p) {
				return p, nil
			}
		}
	}
	matches, _ := filepath.Glob(filepath.Join(s.dir, museum.FormatID(id)+".*"))
	for _, m := range matches {
		if !strings.EqualFold(filepath.Ext(m), ".json") && !strings.HasSuffix(m, tmpSuffix) {
			return m, nil
		}
	}
	return "", aferrors.New(aferrors.ErrCodeFilesystem, "cannot open file %s", s.ImagePath(id, museum.DefaultImageExt))
}

// Entry is one cached object.
type Entry struct {
	ID        int64
	ImagePath string // empty when the image is missing
}

// List returns every cached record, sorted by id.
func (s *Store) List() ([]Entry, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeFilesystem, err, "list %s", s.dir)
	}
	var entries []Entry
	for _, m := range matches {
		id, err := strconv.ParseInt(strings.TrimSuffix(filepath.Base(m), ".json"), 10, 64)
		if err != nil {
			continue // the catalog and other non-record files
		}
		e := Entry{ID: id}
		if p, err := s.FindImage(id); err == nil {
			e.ImagePath = p
		}
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b Entry) int { return cmp.Compare(a.ID, b.ID) })
	return entries, nil
}

// Stats summarises the cache.
type Stats struct {
	CatalogIDs int
	Records    int
	Images     int
}

// Stats counts catalog ids, cached records and cached images.
// A missing or empty catalog counts as zero ids.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	if ids, err := s.ReadCatalog(); err == nil {
		st.CatalogIDs = len(ids)
	}
	entries, err := s.List()
	if err != nil {
		return st, err
	}
	st.Records = len(entries)
	for _, e := range entries {
		if e.ImagePath != "" {
			st.Images++
		}
	}
	return st, nil
}

const tmpSuffix = ".part"

func writeAtomic(path string, fill func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*"+tmpSuffix)
	if err != nil {
		return aferrors.Wrap(aferrors.ErrCodeFilesystem, err, "create temp file for %s", path)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if err = fill(f); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return aferrors.Wrap(aferrors.ErrCodeFilesystem, err, "write %s", path)
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return aferrors.Wrap(aferrors.ErrCodeFilesystem, err, "chmod %s", path)
	}
	if err = os.Rename(tmp, path); err != nil {
		return aferrors.Wrap(aferrors.ErrCodeFilesystem, err, "rename into %s", path)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
