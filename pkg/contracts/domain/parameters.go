package domain

import (
	"fmt"
	"strings"
)

// Parameter names one of the scalar electrical parameters of an IV curve
type Parameter string

const (
	ParamPmp Parameter = "pmp"
	ParamImp Parameter = "imp"
	ParamVmp Parameter = "vmp"
	ParamVoc Parameter = "voc"
	ParamIsc Parameter = "isc"
)

// AllParameters is the default tracked parameter set
var AllParameters = []Parameter{ParamPmp, ParamImp, ParamVmp, ParamIsc, ParamVoc}

// ParseParameter converts a column name into a Parameter
func ParseParameter(s string) (Parameter, error) {
	switch p := Parameter(strings.ToLower(strings.TrimSpace(s))); p {
	case ParamPmp, ParamImp, ParamVmp, ParamVoc, ParamIsc:
		return p, nil
	}
	return "", fmt.Errorf("unknown parameter %q", s)
}

// Derived column suffixes added by the normalization and degradation stages
const (
	SuffixPctNameplate = "_pct_nameplate"
	SuffixPctControl   = "_pct_control"
	SuffixPLR          = "_plr"
)

// PctNameplateColumn returns the nameplate ratio column for p
func (p Parameter) PctNameplateColumn() string { return string(p) + SuffixPctNameplate }

// PctControlColumn returns the control ratio column for p
func (p Parameter) PctControlColumn() string { return string(p) + SuffixPctControl }

// PLRColumn returns the performance loss rate column for p
func (p Parameter) PLRColumn() string { return string(p) + SuffixPLR }

// Base column names
const (
	ColumnIntensity       = "intensity"
	ColumnMappedIntensity = "mapped_intensity"
)

// ParameterSet holds the five scalar parameters at one intensity
type ParameterSet struct {
	Pmp float64 `json:"pmp"`
	Imp float64 `json:"imp"`
	Vmp float64 `json:"vmp"`
	Voc float64 `json:"voc"`
	Isc float64 `json:"isc"`
}

// Get returns the value of parameter p
func (s ParameterSet) Get(p Parameter) (float64, bool) {
	switch p {
	case ParamPmp:
		return s.Pmp, true
	case ParamImp:
		return s.Imp, true
	case ParamVmp:
		return s.Vmp, true
	case ParamVoc:
		return s.Voc, true
	case ParamIsc:
		return s.Isc, true
	}
	return 0, false
}

// ParameterRow is one (file, requested sun level) measurement.
// Derived columns are stored in Columns keyed by column name.
type ParameterRow struct {
	Index           int                `json:"index"`
	File            string             `json:"file"`
	SunLevel        float64            `json:"sun_level"`
	Serial          string             `json:"serial"`
	Date            string             `json:"date"`
	Time            string             `json:"time"`
	Intensity       float64            `json:"intensity"`
	MappedIntensity *float64           `json:"mapped_intensity,omitempty"`
	Params          ParameterSet       `json:"params"`
	Columns         map[string]float64 `json:"columns,omitempty"`
}

// Value resolves a column by name across base parameters, intensities and
// derived columns.
func (r ParameterRow) Value(column string) (float64, bool) {
	switch column {
	case ColumnIntensity:
		return r.Intensity, true
	case ColumnMappedIntensity:
		if r.MappedIntensity == nil {
			return 0, false
		}
		return *r.MappedIntensity, true
	}
	if v, ok := r.Params.Get(Parameter(column)); ok {
		return v, true
	}
	v, ok := r.Columns[column]
	return v, ok
}

// SetMappedIntensity records the rounded intensity of the row
func (r *ParameterRow) SetMappedIntensity(v float64) {
	r.MappedIntensity = &v
}

// SetColumn stores a derived column value
func (r *ParameterRow) SetColumn(column string, v float64) {
	if r.Columns == nil {
		r.Columns = make(map[string]float64)
	}
	r.Columns[column] = v
}

// clone copies the row including its derived columns
func (r ParameterRow) clone() ParameterRow {
	out := r
	if r.MappedIntensity != nil {
		v := *r.MappedIntensity
		out.MappedIntensity = &v
	}
	if r.Columns != nil {
		out.Columns = make(map[string]float64, len(r.Columns))
		for k, v := range r.Columns {
			out.Columns[k] = v
		}
	}
	return out
}

// ParameterTable is an ordered sequence of rows. Insertion order is
// file-iteration order and no stage re-sorts it.
type ParameterTable struct {
	Rows []ParameterRow `json:"rows"`
}

// NewParameterTable creates a table from rows, assigning a dense index
func NewParameterTable(rows []ParameterRow) *ParameterTable {
	t := &ParameterTable{Rows: rows}
	t.Reindex()
	return t
}

// Len returns the number of rows
func (t *ParameterTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Reindex assigns a dense 0..n-1 index in current order
func (t *ParameterTable) Reindex() {
	for i := range t.Rows {
		t.Rows[i].Index = i
	}
}

// Clone deep-copies the table
func (t *ParameterTable) Clone() *ParameterTable {
	out := &ParameterTable{Rows: make([]ParameterRow, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = r.clone()
	}
	return out
}

// Filter returns a new table with the rows for which keep is true.
// Relative order is preserved; the index is not reassigned.
func (t *ParameterTable) Filter(keep func(ParameterRow) bool) *ParameterTable {
	out := &ParameterTable{Rows: make([]ParameterRow, 0, len(t.Rows))}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r.clone())
		}
	}
	return out
}

// Column returns every row's value for column, in row order
func (t *ParameterTable) Column(column string) ([]float64, error) {
	values := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		v, ok := r.Value(column)
		if !ok {
			return nil, fmt.Errorf("row %d (%s): column %q not present", r.Index, r.File, column)
		}
		values = append(values, v)
	}
	return values, nil
}

// Serials returns the distinct serials in first-seen order
func (t *ParameterTable) Serials() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Rows {
		if !seen[r.Serial] {
			seen[r.Serial] = true
			out = append(out, r.Serial)
		}
	}
	return out
}

// Nameplate maps each parameter to its rated value at 1 sun
type Nameplate map[Parameter]float64

// ControlAggregate maps each parameter to the mean control-module value at
// one intensity. It is recomputed whenever the source table changes.
type ControlAggregate struct {
	Sun    float64               `json:"sun"`
	Serial string                `json:"serial"`
	Rows   int                   `json:"rows"`
	Values map[Parameter]float64 `json:"values"`
}
