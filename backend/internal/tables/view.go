package tables

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"archmap/backend/internal/graphview"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort direction
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortConfig is the active sort column and direction
type SortConfig struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders by name ascending
func DefaultSort() SortConfig {
	return SortConfig{Key: "name", Direction: Ascending}
}

// Toggle returns the config after clicking a column header: the same column
// flips ascending to descending, anything else starts ascending.
func (c SortConfig) Toggle(key string) SortConfig {
	if c.Key == key && c.Direction == Ascending {
		return SortConfig{Key: key, Direction: Descending}
	}
	return SortConfig{Key: key, Direction: Ascending}
}

// ParseDirection defaults to ascending for anything but "desc"
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Descending)) {
		return Descending
	}
	return Ascending
}

// Filter keeps rows where any value contains term, case-insensitively.
// An empty term keeps everything.
func Filter(rows []Record, term string) []Record {
	if term == "" {
		return rows
	}
	needle := strings.ToLower(term)
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		for _, v := range row {
			if v == nil {
				continue
			}
			if strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// Sort returns a sorted copy. Rows missing the key always sort last,
// whatever the direction; the rest compare as text with locale collation.
func Sort(rows []Record, cfg SortConfig) []Record {
	out := append([]Record(nil), rows...)
	col := collate.New(language.Und)

	sort.SliceStable(out, func(i, j int) bool {
		a, aok := out[i][cfg.Key]
		b, bok := out[j][cfg.Key]
		aok, bok = aok && a != nil, bok && b != nil
		switch {
		case !aok && !bok:
			return false
		case !aok:
			return false
		case !bok:
			return true
		}
		cmp := col.CompareString(fmt.Sprint(a), fmt.Sprint(b))
		if cfg.Direction == Descending {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

// FormatValue renders one cell
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	case string:
		if strings.HasPrefix(val, "[") {
			var items []string
			if err := json.Unmarshal([]byte(val), &items); err == nil {
				return strings.Join(items, ", ")
			}
		}
		return graphview.PlainText(val)
	default:
		return fmt.Sprint(val)
	}
}

// View is a filtered and sorted table ready to display
type View struct {
	Table   Table      `json:"table"`
	Columns []string   `json:"columns"`
	Rows    []Record   `json:"rows"`
	Total   int        `json:"total"`
	Shown   int        `json:"shown"`
	Sort    SortConfig `json:"sort"`
	Filter  string     `json:"filter,omitempty"`
}

// BuildView filters then sorts rows
func BuildView(t Table, rows []Record, filter string, cfg SortConfig) View {
	filtered := Filter(rows, filter)
	sorted := Sort(filtered, cfg)
	return View{
		Table:   t,
		Columns: t.Columns(),
		Rows:    sorted,
		Total:   len(rows),
		Shown:   len(sorted),
		Sort:    cfg,
		Filter:  filter,
	}
}
