package session

// Result is the uniform outcome of Execute.
type Result struct {
	// RowsAffected is set for statements that reported an affected-row count.
	RowsAffected *int64 `json:"rowsAffected,omitempty"`

	// Data holds one entry per cursor, in discovery order.
	Data []ResultSet `json:"data"`
}

// ResultSet is the bounded content of one cursor.
type ResultSet struct {
	Metadata []Column `json:"metadata"`
	Rows     [][]any  `json:"rows"`
}

// Column describes one result column.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Rows returns every row of every result set, in order.
func (r *Result) Rows() [][]any {
	var rows [][]any
	for _, set := range r.Data {
		rows = append(rows, set.Rows...)
	}
	return rows
}
