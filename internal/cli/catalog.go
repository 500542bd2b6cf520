package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	aferrors "github.com/matzehuels/artframe/pkg/errors"
	"github.com/matzehuels/artframe/pkg/museum"
	"github.com/matzehuels/artframe/pkg/render"
	"github.com/matzehuels/artframe/pkg/store"
)

// Output formats for "catalog info".
const (
	formatText = "text"
	formatYAML = "yaml"
	formatJSON = "json"
)

// catalogCommand creates the catalog inspection command.
func (c *CLI) catalogCommand() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the local cache",
	}
	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog file (default from config)")

	open := func() (*store.Store, error) {
		cfg, err := c.loadConfig()
		if err != nil {
			return nil, err
		}
		return openStore(cfg, []string{catalogPath})
	}

	cmd.AddCommand(c.catalogListCommand(open))
	cmd.AddCommand(c.catalogStatsCommand(open))
	cmd.AddCommand(c.catalogInfoCommand(open))

	return cmd
}

func (c *CLI) catalogListCommand(open func() (*store.Store, error)) *cobra.Command {
	var imagesOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached artworks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			items, err := loadArtworkItems(st)
			if err != nil {
				return err
			}
			if imagesOnly {
				items = withImages(items)
			}
			if len(items) == 0 {
				printInfo("No cached artworks in %s", st.Dir())
				return nil
			}
			fmt.Println(artworkTable(items))
			printDetail("%d artworks", len(items))
			return nil
		},
	}
	cmd.Flags().BoolVar(&imagesOnly, "images", false, "only list artworks with a cached image")
	return cmd
}

func withImages(items []artworkItem) []artworkItem {
	var out []artworkItem
	for _, item := range items {
		if item.HasImage {
			out = append(out, item)
		}
	}
	return out
}

func (c *CLI) catalogStatsCommand(open func() (*store.Store, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			s, err := st.Stats()
			if err != nil {
				return err
			}
			fmt.Println(StyleTitle.Render("Cache"))
			printKeyValue("Directory", st.Dir())
			printKeyValue("Catalog", strconv.Itoa(s.CatalogIDs)+" ids")
			printKeyValue("Records", strconv.Itoa(s.Records))
			printKeyValue("Images", strconv.Itoa(s.Images))
			if missing := s.CatalogIDs - s.Records; missing > 0 {
				printNewline()
				printWarning("%d catalog ids have no cached record", missing)
				printNextStep("Fetch them", appName+" fetch --skip-catalog")
			}
			return nil
		},
	}
}

// artworkInfo is the "catalog info" document.
type artworkInfo struct {
	ID           int64  `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	Artist       string `json:"artist,omitempty" yaml:"artist,omitempty"`
	Date         string `json:"date,omitempty" yaml:"date,omitempty"`
	Department   string `json:"department,omitempty" yaml:"department,omitempty"`
	PublicDomain bool   `json:"public_domain" yaml:"public_domain"`
	Caption      string `json:"caption" yaml:"caption"`
	ImageURL     string `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	ObjectURL    string `json:"object_url,omitempty" yaml:"object_url,omitempty"`
	RecordPath   string `json:"record_path" yaml:"record_path"`
	ImagePath    string `json:"image_path,omitempty" yaml:"image_path,omitempty"`
}

func newArtworkInfo(st *store.Store, id int64, rec *museum.Record) artworkInfo {
	info := artworkInfo{
		ID:           id,
		Title:        rec.Title,
		Artist:       rec.ArtistDisplayName,
		Date:         rec.ObjectEndDate.String(),
		Department:   rec.Department,
		PublicDomain: rec.IsPublicDomain,
		Caption:      render.CaptionText(rec),
		ImageURL:     rec.PrimaryImage,
		ObjectURL:    rec.ObjectURL,
		RecordPath:   st.RecordPath(id),
	}
	if p, err := st.FindImage(id); err == nil {
		info.ImagePath = p
	}
	return info
}

func (c *CLI) catalogInfoCommand(open func() (*store.Store, error)) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "info <id>",
		Short: "Show one cached record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return aferrors.New(aferrors.ErrCodeInvalidConfig, "invalid object id %q", args[0])
			}
			st, err := open()
			if err != nil {
				return err
			}
			rec, err := st.ReadRecord(id)
			if err != nil {
				return err
			}
			return writeArtworkInfo(os.Stdout, newArtworkInfo(st, id, rec), format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", formatText, "output format: text, yaml or json")
	return cmd
}

func writeArtworkInfo(w io.Writer, info artworkInfo, format string) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	case formatText, "":
		fmt.Fprintln(w, StyleTitle.Render(orNone(info.Title)))
		for _, kv := range [][2]string{
			{"ID", strconv.FormatInt(info.ID, 10)},
			{"Artist", info.Artist},
			{"Date", info.Date},
			{"Department", info.Department},
			{"Caption", info.Caption},
			{"Record", info.RecordPath},
			{"Image", info.ImagePath},
		} {
			fprintKeyValue(w, kv[0], kv[1])
		}
		return nil
	default:
		return aferrors.New(aferrors.ErrCodeInvalidConfig, "unknown output format %q", format)
	}
}
