// Package columns turns a file's column names into the ordered, checkable
// list used to choose search fields.
package columns

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
)

// priorityKeys are normalized names surfaced first and pre-checked.
var priorityKeys = map[string]bool{
	"product":        true,
	"indiancompany":  true,
	"foreigncompany": true,
}

// fieldAliases maps display names back to the backend field names.
var fieldAliases = map[string]string{
	"ForeignCompany": "Foreign Company",
	"IndianCompany":  "Indian Company",
}

// Column is one selectable column.
type Column struct {
	Name     string
	Label    string
	ID       string
	Priority bool
}

// Normalize trims names, drops empties and removes duplicates keeping the
// first occurrence.
func Normalize(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Split parses a semicolon-delimited column string.
func Split(raw string) []string {
	return Normalize(strings.Split(raw, ";"))
}

// Parse accepts either an already-split list or a delimited string; the list
// wins when both are present.
func Parse(list []string, raw string) []string {
	if len(list) > 0 {
		return Normalize(list)
	}
	return Split(raw)
}

// IsPriority reports whether name is one of the priority columns, ignoring
// case and whitespace.
func IsPriority(name string) bool {
	return priorityKeys[squash(name)]
}

func squash(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ControlID derives the stable control identifier for name.
func ControlID(name string) string {
	return "column-" + strings.Join(strings.Fields(name), "-")
}

// FieldName maps a display name to the field name the backend expects.
func FieldName(name string) string {
	if alias, ok := fieldAliases[name]; ok {
		return alias
	}
	return name
}

// Label renders a column name for display: words split on dots, underscores,
// whitespace and camel-case boundaries, then title-cased. All-caps words are
// kept as acronyms.
func Label(name string) string {
	words := splitWords(name)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func splitWords(name string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '.' || r == '_' || unicode.IsSpace(r):
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

func titleWord(w string) string {
	runes := []rune(w)
	if len(runes) > 1 && isAllUpper(runes) {
		return w
	}
	for i := range runes {
		if i == 0 {
			runes[i] = unicode.ToUpper(runes[i])
		} else {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}

func isAllUpper(runes []rune) bool {
	letters := 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			letters++
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return letters > 0
}

// Selector tracks which columns are checked. Select-all is derived from the
// individual check states and never stored.
type Selector struct {
	cols    []Column
	checked map[string]bool
}

// NewSelector orders names with priority columns first (pre-checked), each
// group sorted case-insensitively.
func NewSelector(names []string) *Selector {
	names = Normalize(names)
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		cols = append(cols, Column{Name: n, Label: Label(n), ID: ControlID(n), Priority: IsPriority(n)})
	}
	sort.SliceStable(cols, func(i, j int) bool {
		if cols[i].Priority != cols[j].Priority {
			return cols[i].Priority
		}
		li, lj := strings.ToLower(cols[i].Name), strings.ToLower(cols[j].Name)
		if li != lj {
			return li < lj
		}
		return cols[i].Name < cols[j].Name
	})
	s := &Selector{cols: cols, checked: make(map[string]bool, len(cols))}
	for _, c := range cols {
		if c.Priority {
			s.checked[c.Name] = true
		}
	}
	return s
}

// Columns returns the columns in display order.
func (s *Selector) Columns() []Column {
	if s == nil {
		return nil
	}
	out := make([]Column, len(s.cols))
	copy(out, s.cols)
	return out
}

// Len returns the number of columns.
func (s *Selector) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cols)
}

// Checked reports whether name is checked.
func (s *Selector) Checked(name string) bool {
	return s != nil && s.checked[name]
}

// CheckedCount returns the number of checked columns.
func (s *Selector) CheckedCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, c := range s.cols {
		if s.checked[c.Name] {
			n++
		}
	}
	return n
}

// Set checks or unchecks name. Unknown names are ignored.
func (s *Selector) Set(name string, on bool) {
	if s == nil || !s.has(name) {
		return
	}
	if on {
		s.checked[name] = true
	} else {
		delete(s.checked, name)
	}
}

// Toggle flips name and returns its new state.
func (s *Selector) Toggle(name string) bool {
	if s == nil || !s.has(name) {
		return false
	}
	on := !s.checked[name]
	s.Set(name, on)
	return on
}

// SetAll checks or unchecks every column.
func (s *Selector) SetAll(on bool) {
	if s == nil {
		return
	}
	for _, c := range s.cols {
		s.Set(c.Name, on)
	}
}

// AllSelected is the derived select-all state.
func (s *Selector) AllSelected() bool {
	total := s.Len()
	return total > 0 && s.CheckedCount() == total
}

// SelectAllEnabled reports whether the select-all control is usable.
func (s *Selector) SelectAllEnabled() bool {
	return s.Len() > 0
}

// CheckOnlyIDs checks exactly the columns whose control IDs are given and
// returns how many matched. Nothing changes when no ID matches.
func (s *Selector) CheckOnlyIDs(ids ...string) int {
	if s == nil {
		return 0
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	matched := 0
	for _, c := range s.cols {
		if want[c.ID] {
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	for _, c := range s.cols {
		s.Set(c.Name, want[c.ID])
	}
	return matched
}

// Selected returns the checked columns as backend field names in display
// order.
func (s *Selector) Selected() []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, c := range s.cols {
		if s.checked[c.Name] {
			out = append(out, FieldName(c.Name))
		}
	}
	return out
}

// Filter returns the columns fuzzily matching query, in display order. An
// empty query returns every column.
func (s *Selector) Filter(query string) []Column {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Columns()
	}
	if s == nil {
		return nil
	}
	haystack := make([]string, len(s.cols))
	for i, c := range s.cols {
		haystack[i] = c.Label + " " + c.Name
	}
	matches := fuzzy.Find(query, haystack)
	idx := make([]int, 0, len(matches))
	for _, m := range matches {
		idx = append(idx, m.Index)
	}
	sort.Ints(idx)
	out := make([]Column, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.cols[i])
	}
	return out
}

func (s *Selector) has(name string) bool {
	for _, c := range s.cols {
		if c.Name == name {
			return true
		}
	}
	return false
}
