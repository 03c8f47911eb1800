package domain

// Statistic is a summary statistic kind
type Statistic string

const (
	StatisticMean   Statistic = "mean"
	StatisticMedian Statistic = "median"
)

// SummaryRow is one statistic across all summarized columns
type SummaryRow struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// SummaryTable is indexed by statistic label and columned by column name
type SummaryTable struct {
	Columns []string     `json:"columns"`
	Rows    []SummaryRow `json:"rows"`
}

// Get returns the value for a statistic label and column
func (s *SummaryTable) Get(label, column string) (float64, bool) {
	col := -1
	for i, c := range s.Columns {
		if c == column {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, false
	}
	for _, r := range s.Rows {
		if r.Label == label {
			return r.Values[col], true
		}
	}
	return 0, false
}
