package analysis

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/h1bcount/internal/utils"
)

const (
	// DefaultTop is the number of ranked rows written per report.
	DefaultTop = 10

	// OccupationsHeader heads the occupations report; ';' is swapped for the report delimiter.
	OccupationsHeader = "TOP_OCCUPATIONS;NUMBER_CERTIFIED_APPLICATIONS;PERCENTAGE"
	// StatesHeader heads the states report; ';' is swapped for the report delimiter.
	StatesHeader = "TOP_STATES;NUMBER_CERTIFIED_APPLICATIONS;PERCENTAGE"
)

// Ranked is one row of a top-N report.
type Ranked struct {
	Entry
	Percentage float64 // share of all certified rows, rounded to one decimal
}

// RankTopN orders the histogram by certified count (desc), job count (desc)
// and case-insensitive key (asc), and returns the first n entries.
// Keys equal under all three fall back to first-seen order.
//
// An entry with no certified rows always reports 0.0. A positive certified
// count against a non-positive total returns ErrEmptyAggregation.
func RankTopN(h *Histogram, n int, totalCertified int) ([]Ranked, error) {
	if h == nil || n <= 0 {
		return []Ranked{}, nil
	}
	entries := h.Snapshot()
	sortEntries(entries)
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]Ranked, 0, len(entries))
	for _, e := range entries {
		pct, err := Percentage(e.Certified, totalCertified)
		if err != nil {
			return nil, fmt.Errorf("rank %s: %q: %w", h.Name(), e.Key, err)
		}
		out = append(out, Ranked{Entry: e, Percentage: pct})
	}
	return out, nil
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Certified != b.Certified {
			return a.Certified > b.Certified
		}
		if a.Jobs != b.Jobs {
			return a.Jobs > b.Jobs
		}
		return strings.ToLower(a.Key) < strings.ToLower(b.Key)
	})
}

// Percentage returns 100*certified/total rounded to one decimal place.
func Percentage(certified, total int) (float64, error) {
	if certified <= 0 {
		return 0, nil
	}
	if total <= 0 {
		return 0, ErrEmptyAggregation
	}
	raw := 100.0 * float64(certified) / float64(total)
	// round the same way %.1f formats it
	pct, err := strconv.ParseFloat(strconv.FormatFloat(raw, 'f', 1, 64), 64)
	if err != nil {
		return 0, err
	}
	return pct, nil
}

// FormatLine renders r as key<delim>jobs<delim>pct%.
func FormatLine(r Ranked, delim rune) string {
	d := string(delim)
	return r.Key + d + strconv.Itoa(r.Jobs) + d + strconv.FormatFloat(r.Percentage, 'f', 1, 64) + "%"
}

// HeaderLine renders a report header with delim in place of ';'.
func HeaderLine(header string, delim rune) string {
	if delim == 0 || delim == DefaultDelimiter {
		return header
	}
	return strings.ReplaceAll(header, string(DefaultDelimiter), string(delim))
}

// Report is a ranked histogram bound to its target file.
type Report struct {
	Header string
	Rows   []Ranked
	Path   string
}

// Render returns the file contents: the header line, then one line per row.
func (r Report) Render(delim rune) []byte {
	if delim == 0 {
		delim = DefaultDelimiter
	}
	var b strings.Builder
	b.WriteString(HeaderLine(r.Header, delim))
	b.WriteString("\n")
	for _, row := range r.Rows {
		b.WriteString(FormatLine(row, delim))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// WriteReport replaces the file at path with header followed by one line per row.
func WriteReport(header string, rows []Ranked, path string, delim rune) error {
	return WriteReports([]Report{{Header: header, Rows: rows, Path: path}}, delim)
}

// WriteReports stages every report in a temp file before renaming any of them,
// so a report that cannot be written leaves all targets untouched.
func WriteReports(reports []Report, delim rune) error {
	staged := make([]utils.StagedFile, 0, len(reports))
	discard := func(files []utils.StagedFile) {
		for _, s := range files {
			_ = s.Discard()
		}
	}
	for _, r := range reports {
		s, err := utils.StageFile(r.Path, r.Render(delim))
		if err != nil {
			discard(staged)
			return &FileAccessError{Path: r.Path, Op: "write", Err: err}
		}
		staged = append(staged, s)
	}
	for i, s := range staged {
		if err := s.Commit(); err != nil {
			discard(staged[i+1:])
			return &FileAccessError{Path: s.Path, Op: "write", Err: err}
		}
	}
	return nil
}

// ReportOptions controls a top-N report written from a census.
type ReportOptions struct {
	// Top is the number of rows; 0 means DefaultTop.
	Top int
	// Verbose echoes the header and rows to Out after the files are written.
	Verbose bool
	Out     io.Writer
	// WriteFile is the target path. When empty the report goes to
	// OutputDir/top_<top>_<histogram>.txt.
	WriteFile string
	OutputDir string
}

// TopOccupations ranks occupations and writes the report. It returns the written path.
func (c *Census) TopOccupations(opt ReportOptions) (string, error) {
	return c.top(OccupationsHeader, c.occupations, opt)
}

// TopStates ranks work-location states and writes the report. It returns the written path.
func (c *Census) TopStates(opt ReportOptions) (string, error) {
	return c.top(StatesHeader, c.states, opt)
}

// WriteTopReports ranks both histograms and writes the occupations and states
// reports together: either both files are replaced or neither is.
// opt.WriteFile is ignored; empty paths fall back to default naming.
func (c *Census) WriteTopReports(opt ReportOptions, occupationsPath, statesPath string) (occ, states string, err error) {
	opt.WriteFile = occupationsPath
	occRep, err := c.prepare(OccupationsHeader, c.occupations, opt)
	if err != nil {
		return "", "", err
	}
	opt.WriteFile = statesPath
	statesRep, err := c.prepare(StatesHeader, c.states, opt)
	if err != nil {
		return "", "", err
	}
	if err := c.write(opt, occRep, statesRep); err != nil {
		return "", "", err
	}
	return occRep.Path, statesRep.Path, nil
}

func (c *Census) top(header string, h *Histogram, opt ReportOptions) (string, error) {
	rep, err := c.prepare(header, h, opt)
	if err != nil {
		return "", err
	}
	if err := c.write(opt, rep); err != nil {
		return "", err
	}
	return rep.Path, nil
}

func (c *Census) prepare(header string, h *Histogram, opt ReportOptions) (Report, error) {
	if !c.aggregated || h == nil {
		return Report{}, ErrNotAggregated
	}
	n := opt.Top
	if n == 0 {
		n = DefaultTop
	}
	path := opt.WriteFile
	if path == "" {
		path = DefaultReportPath(opt.OutputDir, n, h.Name())
		c.log.Warn("output file not specified, using default", slog.String("path", path))
	}
	rows, err := RankTopN(h, n, c.totalCertified)
	if err != nil {
		return Report{}, err
	}
	return Report{Header: header, Rows: rows, Path: path}, nil
}

func (c *Census) write(opt ReportOptions, reports ...Report) error {
	if err := WriteReports(reports, c.delim); err != nil {
		return err
	}
	for _, r := range reports {
		c.log.Debug("wrote report", slog.String("path", r.Path), slog.Int("rows", len(r.Rows)))
		if opt.Verbose && opt.Out != nil {
			opt.Out.Write(r.Render(c.delim))
		}
	}
	return nil
}

// DefaultReportPath builds the fallback report location for a histogram.
func DefaultReportPath(dir string, top int, name string) string {
	if dir == "" {
		dir = "output"
	}
	return filepath.Join(dir, fmt.Sprintf("top_%d_%s.txt", top, name))
}
