package analysis

import (
	"log/slog"
)

// CertifiedStatus is the status value counted as a positive outcome.
const CertifiedStatus = "CERTIFIED"

// Census loads a petition table and tallies it by occupation and by work-location state.
type Census struct {
	delim   rune
	schemas []Schema
	log     *slog.Logger

	path       string
	table      *Table
	schema     Schema
	aggregated bool

	occupations    *Histogram
	states         *Histogram
	totalCertified int
}

// Option configures a Census.
type Option func(*Census)

// WithDelimiter sets the input field separator (default ';').
func WithDelimiter(d rune) Option {
	return func(c *Census) {
		if d != 0 {
			c.delim = d
		}
	}
}

// WithLogger sets the logger used for progress and warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Census) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSchemas replaces the ordered list of column conventions tried by Aggregate.
func WithSchemas(s ...Schema) Option {
	return func(c *Census) {
		if len(s) > 0 {
			c.schemas = s
		}
	}
}

// NewCensus returns an empty census.
func NewCensus(opts ...Option) *Census {
	c := &Census{
		delim:   DefaultDelimiter,
		schemas: DefaultSchemas,
		log:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Load reads the table at path and keeps it for Aggregate.
func (c *Census) Load(path string) error {
	t, err := LoadTable(path, c.delim)
	if err != nil {
		return err
	}
	c.path = path
	c.table = t
	c.log.Debug("loaded table", slog.String("path", path), slog.Int("rows", t.Rows), slog.Int("columns", len(t.Header)))
	return nil
}

// Aggregate makes the single counting pass over the loaded table.
// It may be called once; later calls return ErrAlreadyAggregated.
func (c *Census) Aggregate() error {
	if c.aggregated {
		return ErrAlreadyAggregated
	}
	if c.table == nil {
		return ErrNotLoaded
	}
	s, err := ResolveSchema(c.table.Header, c.schemas)
	if err != nil {
		return err
	}
	occ := c.table.Columns[s.Occupation]
	status := c.table.Columns[s.Status]
	state := c.table.Columns[s.State]
	n := len(status)
	if len(occ) != n {
		return &MalformedTableError{Path: c.path, Column: s.Occupation, Want: n, Got: len(occ)}
	}
	if len(state) != n {
		return &MalformedTableError{Path: c.path, Column: s.State, Want: n, Got: len(state)}
	}

	c.schema = s
	c.occupations = NewHistogram("occupations")
	c.states = NewHistogram("states")
	c.totalCertified = 0
	for i := 0; i < n; i++ {
		certified := status[i] == CertifiedStatus
		if certified {
			c.totalCertified++
		}
		c.occupations.Record(occ[i], certified)
		c.states.Record(state[i], certified)
	}
	c.aggregated = true
	c.log.Debug("aggregated census",
		slog.String("schema", s.Name),
		slog.Int("rows", n),
		slog.Int("certified", c.totalCertified),
		slog.Int("occupations", c.occupations.Len()),
		slog.Int("states", c.states.Len()),
	)
	return nil
}

// Occupations returns the occupation histogram, or nil before Aggregate.
func (c *Census) Occupations() *Histogram { return c.occupations }

// States returns the work-location state histogram, or nil before Aggregate.
func (c *Census) States() *Histogram { return c.states }

// TotalCertified is the number of certified rows across the table.
func (c *Census) TotalCertified() int { return c.totalCertified }

// Schema returns the column convention chosen by Aggregate.
func (c *Census) Schema() Schema { return c.schema }

// Rows reports the number of data rows loaded.
func (c *Census) Rows() int {
	if c.table == nil {
		return 0
	}
	return c.table.Rows
}
