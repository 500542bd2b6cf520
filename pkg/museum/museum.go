// Package museum talks to a museum collection API shaped like the
// Metropolitan Museum of Art Open Access endpoints:
//
//	GET {base}/objects?departmentIds=11  -> {"total": N, "objectIDs": [...]}
//	GET {base}/objects/{id}              -> {"title": ..., "primaryImage": ...}
//
// The client only downloads; it never interprets HTTP bodies beyond the
// status code. Parsing is done on the cached bytes with [ParseCatalog] and
// [ParseRecord] so a file written by an earlier run parses the same way.
package museum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	aferrors "github.com/matzehuels/artframe/pkg/errors"
)

// Catalog is the collection listing.
type Catalog struct {
	Total     int     `json:"total"`
	ObjectIDs []int64 `json:"objectIDs"`
}

// Record is the subset of an object record the compositor uses.
type Record struct {
	ObjectID          int64   `json:"objectID"`
	Title             string  `json:"title"`
	ArtistDisplayName string  `json:"artistDisplayName"`
	ObjectEndDate     EndDate `json:"objectEndDate"`
	PrimaryImage      string  `json:"primaryImage"`
	PrimaryImageSmall string  `json:"primaryImageSmall"`
	IsPublicDomain    bool    `json:"isPublicDomain"`
	Department        string  `json:"department"`
	ObjectURL         string  `json:"objectURL"`
}

// EndDate is the object's end date as text. The live API sends a number,
// older dumps send a string; 0 and null both mean "unknown" and decode to "".
type EndDate string

// UnmarshalJSON implements json.Unmarshaler.
func (d *EndDate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*d = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = EndDate(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("objectEndDate: %w", err)
		}
		if v, err := n.Float64(); err == nil && v == 0 {
			*d = ""
			return nil
		}
		*d = EndDate(n.String())
	}
	return nil
}

// String returns the date text.
func (d EndDate) String() string { return string(d) }

// ParseCatalog decodes a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	return &c, nil
}

// ParseRecord decodes an object record.
func ParseRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, aferrors.Wrap(aferrors.ErrCodeParse, err, "decode record")
	}
	return &r, nil
}

// EncodeImageURL percent-encodes literal spaces in an image URL.
// Some records carry URLs with raw spaces in the file name; nothing else
// in the URL is touched.
func EncodeImageURL(raw string) string {
	return strings.ReplaceAll(raw, " ", "%20")
}

// DefaultImageExt is used when an image URL has no extension.
const DefaultImageExt = ".jpg"

// ImageExtension returns the lower-cased extension of the URL's path,
// or [DefaultImageExt] when there is none.
func ImageExtension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if ext == "" || ext == "." {
		return DefaultImageExt
	}
	return ext
}

// FormatID renders an object identifier the way file names use it.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
