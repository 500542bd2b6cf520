package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/artframe/pkg/store"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// headerRow is the row index lipgloss tables pass to StyleFunc for headers.
const headerRow = -1

// artworkItem is one cached object as shown in lists and tables.
type artworkItem struct {
	ID       int64
	Title    string
	Artist   string
	Date     string
	HasImage bool
}

// loadArtworkItems reads the record of every cached object. Records that
// do not parse are listed with an empty title.
func loadArtworkItems(st *store.Store) ([]artworkItem, error) {
	entries, err := st.List()
	if err != nil {
		return nil, err
	}
	items := make([]artworkItem, 0, len(entries))
	for _, e := range entries {
		item := artworkItem{ID: e.ID, HasImage: e.ImagePath != ""}
		if rec, err := st.ReadRecord(e.ID); err == nil {
			item.Title = rec.Title
			item.Artist = rec.ArtistDisplayName
			item.Date = rec.ObjectEndDate.String()
		}
		items = append(items, item)
	}
	return items, nil
}

func (a artworkItem) row() []string {
	image := iconNone
	if a.HasImage {
		image = iconSuccess
	}
	return []string{strconv.FormatInt(a.ID, 10), orNone(truncate(a.Title, 48)), orNone(truncate(a.Artist, 32)), orNone(a.Date), image}
}

var artworkHeaders = []string{"ID", "Title", "Artist", "Date", "Image"}

// =============================================================================
// ArtworkListModel - Interactive artwork selection
// =============================================================================

// ArtworkListModel is the bubbletea model behind "paint --pick".
// Only artworks with a cached image can be selected.
type ArtworkListModel struct {
	Items    []artworkItem
	Cursor   int
	Selected *artworkItem
	Height   int
	Offset   int
}

func newArtworkListModel(items []artworkItem) ArtworkListModel {
	return ArtworkListModel{Items: items, Height: 15}
}

func (m ArtworkListModel) Init() tea.Cmd {
	return nil
}

func (m ArtworkListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Items) == 0 {
				return m, nil
			}
			item := m.Items[m.Cursor]
			if !item.HasImage {
				return m, nil
			}
			m.Selected = &item
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m ArtworkListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Artwork"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ paint  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Items))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, m.Items[i].row()...))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(append([]string{""}, artworkHeaders...)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Items) {
				return lipgloss.NewStyle()
			}
			style := lipgloss.NewStyle().Foreground(colorWhite)
			if !m.Items[idx].HasImage {
				style = style.Foreground(colorDim)
			} else if col == 5 {
				style = style.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				style = style.Bold(true)
				if m.Items[idx].HasImage && col != 5 {
					style = style.Foreground(colorCyan)
				}
			}
			return style
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Items))))

	return b.String()
}

// pickArtwork runs the selection list. It returns nil when the user quits.
func pickArtwork(items []artworkItem) (*artworkItem, error) {
	final, err := tea.NewProgram(newArtworkListModel(items)).Run()
	if err != nil {
		return nil, err
	}
	return final.(ArtworkListModel).Selected, nil
}

// =============================================================================
// Helpers
// =============================================================================

// artworkTable renders items as a static table for "catalog list".
func artworkTable(items []artworkItem) string {
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = item.row()
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(artworkHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case row >= len(items):
				return lipgloss.NewStyle()
			case !items[row].HasImage:
				return StyleDim
			case col == 4:
				return StyleSuccess
			}
			return StyleValue
		}).
		Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orNone(s string) string {
	if s == "" {
		return iconNone
	}
	return s
}
