package api

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// FileID identifies an uploaded file. The backend emits integer IDs today but
// older revisions used strings, so the client keeps the textual form.
type FileID string

// MarshalJSON emits numeric IDs as JSON numbers and everything else as strings.
func (id FileID) MarshalJSON() ([]byte, error) {
	s := strings.TrimSpace(string(id))
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// File describes one uploaded dataset as listed by GET /api/files/.
type File struct {
	ID         FileID
	Filename   string
	UploadDate time.Time
	RowCount   int64
	IsActive   bool
}

// SelectResult is returned when a file is made active.
type SelectResult struct {
	Filename string
	Columns  []string
	// RawColumns holds the columns value as sent when it was a delimited string.
	RawColumns string
}

// ColumnsInfo is the response of GET /api/columns/.
type ColumnsInfo struct {
	Columns     []string
	RawColumns  string
	CurrentFile string
}

// UploadResult is returned by a successful POST /api/upload/.
type UploadResult struct {
	FileID        FileID
	Columns       []string
	RowsProcessed int64
	Message       string
}

// ProgressStatus is the server-side upload state.
type ProgressStatus string

const (
	ProgressIdle       ProgressStatus = "idle"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressError      ProgressStatus = "error"
)

// Terminal reports whether polling should stop.
func (s ProgressStatus) Terminal() bool {
	return s == ProgressCompleted || s == ProgressError
}

// Progress mirrors GET /api/upload-progress/.
type Progress struct {
	Status        ProgressStatus
	ProcessedRows int64
	TotalRows     int64
	Columns       []string
	Error         string
	CurrentFile   string
}

// Fraction returns completion in [0,1]; zero when the total is unknown.
func (p Progress) Fraction() float64 {
	if p.Status == ProgressCompleted {
		return 1
	}
	if p.TotalRows <= 0 {
		return 0
	}
	f := float64(p.ProcessedRows) / float64(p.TotalRows)
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

// SearchRequest is the body of POST /api/search/.
type SearchRequest struct {
	Terms    []string `json:"search_terms"`
	Fields   []string `json:"fields"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
	FileID   FileID   `json:"file_id"`
	// Value duplicates the joined terms for backends that only read a single
	// search string.
	Value string `json:"value,omitempty"`
}

// Cell is one column of a result row.
type Cell struct {
	Column string
	Value  string
}

// Row is a result row with columns in the order the backend sent them.
type Row []Cell

// Get returns the value of column name.
func (r Row) Get(name string) (string, bool) {
	for _, c := range r {
		if c.Column == name {
			return c.Value, true
		}
	}
	return "", false
}

// Columns lists the row's column names in order.
func (r Row) Columns() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Column
	}
	return out
}

// SearchPage is one page of search results.
type SearchPage struct {
	Results    []Row
	TotalCount int64
	Page       int
	TotalPages int
}

// Suggestion is an autocomplete candidate.
type Suggestion struct {
	Value string
	Field string
}

// Display renders "value (field)" or just value when the field is unknown.
func (s Suggestion) Display() string {
	if s.Field == "" {
		return s.Value
	}
	return s.Value + " (" + s.Field + ")"
}

func parseFile(v gjson.Result) File {
	f := File{
		ID:       FileID(v.Get("id").String()),
		Filename: v.Get("filename").String(),
		RowCount: v.Get("row_count").Int(),
		IsActive: v.Get("is_active").Bool(),
	}
	if raw := v.Get("upload_date").String(); raw != "" {
		f.UploadDate = parseTime(raw)
	}
	return f
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTime(raw string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseColumns accepts either a JSON array or a delimited string.
func parseColumns(v gjson.Result) ([]string, string) {
	switch {
	case v.IsArray():
		var cols []string
		for _, c := range v.Array() {
			cols = append(cols, c.String())
		}
		return cols, ""
	case v.Type == gjson.String:
		return nil, v.String()
	default:
		return nil, ""
	}
}

// parseRow accepts `{"data": {...}}` wrapped rows and flat objects. Values of
// any JSON type are stringified; null becomes an empty string.
func parseRow(v gjson.Result) Row {
	obj := v
	if data := v.Get("data"); data.IsObject() {
		obj = data
	}
	var row Row
	obj.ForEach(func(key, value gjson.Result) bool {
		row = append(row, Cell{Column: key.String(), Value: stringify(value)})
		return true
	})
	return row
}

func stringify(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.String()
	default:
		return v.Raw
	}
}

func parseSuggestion(v gjson.Result) (Suggestion, bool) {
	if v.Type == gjson.String {
		s := strings.TrimSpace(v.String())
		return Suggestion{Value: s}, s != ""
	}
	value := v.Get("value")
	if !value.Exists() {
		value = v.Get("text")
	}
	s := Suggestion{
		Value: strings.TrimSpace(value.String()),
		Field: v.Get("field").String(),
	}
	return s, s.Value != ""
}

func parseProgress(v gjson.Result) Progress {
	p := Progress{
		Status:        ProgressStatus(v.Get("status").String()),
		ProcessedRows: v.Get("processed_rows").Int(),
		TotalRows:     v.Get("total_rows").Int(),
		CurrentFile:   v.Get("current_file").String(),
	}
	if p.Status == "" {
		p.Status = ProgressIdle
	}
	if e := v.Get("error"); e.Exists() && e.Type != gjson.Null {
		p.Error = e.String()
	}
	p.Columns, _ = parseColumns(v.Get("columns"))
	return p
}

// arrayOf returns the elements of v, or nil when v is not a JSON array.
// gjson's Array wraps scalars and objects in a one-element slice.
func arrayOf(v gjson.Result) []gjson.Result {
	if !v.IsArray() {
		return nil
	}
	return v.Array()
}
