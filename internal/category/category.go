// Package category maps file names to category folder names using an ordered
// extension table.
package category

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fallback receives every file whose extension no category lists.
const Fallback = "Others"

// Category is a named folder and the extensions routed into it.
type Category struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// Table is an ordered category list. The first category containing an
// extension wins.
type Table struct {
	categories []Category
}

// Default returns the built-in table. Documents and Texts both list .txt;
// Documents comes first and therefore wins.
func Default() Table {
	return New([]Category{
		{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg"}},
		{Name: "Documents", Extensions: []string{".pdf", ".docx", ".doc", ".txt", ".pptx", ".xlsx", ".odt"}},
		{Name: "Videos", Extensions: []string{".mp4", ".mkv", ".mov", ".avi", ".flv"}},
		{Name: "Audio", Extensions: []string{".mp3", ".wav", ".aac", ".flac"}},
		{Name: "Archives", Extensions: []string{".zip", ".rar", ".7z", ".tar", ".gz"}},
		{Name: "Code", Extensions: []string{".py", ".js", ".html", ".css", ".java", ".c", ".cpp", ".json"}},
		{Name: "Installers", Extensions: []string{".exe", ".msi", ".dmg", ".deb"}},
		{Name: "Texts", Extensions: []string{".txt", ".csv", ".log"}},
	})
}

// New builds a table from cats, lowercasing extensions, adding a missing
// leading dot, and dropping blanks. Category order is preserved.
func New(cats []Category) Table {
	out := make([]Category, 0, len(cats))
	for _, cat := range cats {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			continue
		}
		exts := make([]string, 0, len(cat.Extensions))
		for _, ext := range cat.Extensions {
			ext = normalizeExt(ext)
			if ext == "" || ext == "." {
				continue
			}
			exts = append(exts, ext)
		}
		out = append(out, Category{Name: name, Extensions: exts})
	}
	return Table{categories: out}
}

// Classify returns the category for filename, or Fallback.
func (t Table) Classify(filename string) string {
	ext := Extension(filename)
	if ext == "" {
		return Fallback
	}
	for _, cat := range t.categories {
		for _, candidate := range cat.Extensions {
			if candidate == ext {
				return cat.Name
			}
		}
	}
	return Fallback
}

// Categories returns a copy of the table rows.
func (t Table) Categories() []Category {
	out := make([]Category, len(t.categories))
	for i, cat := range t.categories {
		out[i] = Category{Name: cat.Name, Extensions: append([]string(nil), cat.Extensions...)}
	}
	return out
}

// Names lists category names in table order, without the fallback.
func (t Table) Names() []string {
	names := make([]string, len(t.categories))
	for i, cat := range t.categories {
		names[i] = cat.Name
	}
	return names
}

// Overlap is an extension claimed by more than one category. Winner is the
// category Classify picks.
type Overlap struct {
	Extension  string   `json:"extension"`
	Categories []string `json:"categories"`
}

// Winner returns the category that receives files with the extension.
func (o Overlap) Winner() string {
	if len(o.Categories) == 0 {
		return Fallback
	}
	return o.Categories[0]
}

// Overlaps reports extensions listed by more than one category, in order of
// first appearance.
func (t Table) Overlaps() []Overlap {
	owners := make(map[string][]string)
	var order []string
	for _, cat := range t.categories {
		for _, ext := range cat.Extensions {
			prev := owners[ext]
			if len(prev) > 0 && prev[len(prev)-1] == cat.Name {
				continue
			}
			if len(prev) == 0 {
				order = append(order, ext)
			}
			owners[ext] = append(prev, cat.Name)
		}
	}
	var out []Overlap
	for _, ext := range order {
		if len(owners[ext]) > 1 {
			out = append(out, Overlap{Extension: ext, Categories: owners[ext]})
		}
	}
	return out
}

// Extension returns the lowercased extension of name including the dot.
// A leading dot alone does not start an extension, so ".bashrc" has none.
func Extension(name string) string {
	base := filepath.Base(name)
	stripped := strings.TrimLeft(base, ".")
	idx := strings.LastIndex(stripped, ".")
	if idx < 0 {
		return ""
	}
	return lowerString(stripped[idx:])
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return lowerString(ext)
}

// Casers carry state, so each call gets its own.
func lowerString(s string) string {
	return cases.Lower(language.Und).String(s)
}
