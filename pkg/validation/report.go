package validation

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// SuccessMessage is rendered for a report without failures
const SuccessMessage = "Manifest passed all validation checks!"

// Category groups failures by the validator that produced them. Categories
// render in declaration order.
type Category int

const (
	CategoryGUID Category = iota
	CategoryURL
	CategoryVersion
	CategoryChecksum
	CategoryTimestamp

	numCategories = iota
)

func (c Category) String() string {
	return []string{"guid", "url", "version", "checksum", "timestamp"}[c]
}

// Categories returns every category in render order
func Categories() []Category {
	return []Category{CategoryGUID, CategoryURL, CategoryVersion, CategoryChecksum, CategoryTimestamp}
}

// Failure is one violated field occurrence
type Failure struct {
	Category Category
	Plugin   string // owning plugin name
	Version  string // raw version string, empty for GUID failures
	Err      error
}

func (f Failure) String() string {
	if f.Category == CategoryGUID {
		return fmt.Sprintf("Plugin %q: %v", f.Plugin, f.Err)
	}
	return fmt.Sprintf("Plugin %q version %q: %v", f.Plugin, f.Version, f.Err)
}

// Report collects failures per category in encounter order
type Report struct {
	failures [numCategories][]Failure
}

// NewReport creates an empty report
func NewReport() *Report {
	return &Report{}
}

// Add appends a failure to its category
func (r *Report) Add(f Failure) {
	r.failures[f.Category] = append(r.failures[f.Category], f)
}

func (r *Report) add(category Category, plugin, version string, err error) {
	if err == nil {
		return
	}
	r.Add(Failure{Category: category, Plugin: plugin, Version: version, Err: err})
}

// Failures returns the failures recorded for a category, nil if there are none
func (r *Report) Failures(category Category) []Failure {
	return r.failures[category]
}

// Len returns the total number of failures
func (r *Report) Len() int {
	n := 0
	for _, fs := range r.failures {
		n += len(fs)
	}
	return n
}

// Clean reports whether no failures were recorded
func (r *Report) Clean() bool {
	return r.Len() == 0
}

// Merge appends every failure of other after the failures already in r
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	for c := range other.failures {
		r.failures[c] = append(r.failures[c], other.failures[c]...)
	}
}

// String renders the report as text: the success message, or one line per
// failure grouped by category.
func (r *Report) String() string {
	if r.Clean() {
		return SuccessMessage
	}
	lines := make([]string, 0, r.Len())
	for _, c := range Categories() {
		for _, f := range r.failures[c] {
			lines = append(lines, strings.TrimRight(f.String(), " \t\r\n"))
		}
	}
	return strings.Join(lines, "\n")
}

// Render writes the text report followed by a newline
func (r *Report) Render(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.String())
	return err
}

type jsonFailure struct {
	Category string `json:"category"`
	Plugin   string `json:"plugin"`
	Version  string `json:"version,omitempty"`
	Message  string `json:"message"`
}

type jsonReport struct {
	Valid    bool          `json:"valid"`
	Failures []jsonFailure `json:"failures"`
}

// MarshalJSON encodes the report in render order
func (r *Report) MarshalJSON() ([]byte, error) {
	out := jsonReport{
		Valid:    r.Clean(),
		Failures: make([]jsonFailure, 0, r.Len()),
	}
	for _, c := range Categories() {
		for _, f := range r.failures[c] {
			out.Failures = append(out.Failures, jsonFailure{
				Category: c.String(),
				Plugin:   f.Plugin,
				Version:  f.Version,
				Message:  f.Err.Error(),
			})
		}
	}
	return json.Marshal(out)
}
