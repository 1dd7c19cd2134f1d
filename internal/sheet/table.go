package sheet

import (
	"fmt"
	"sort"
	"strings"
)

// Table is one loaded source: a header and rows of cells.
// Every row has exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Value
	index   map[string]int
}

// NewTable creates an empty table. Header names are trimmed, blank names
// become "Unnamed: <i>" and repeated names get a ".<n>" suffix.
func NewTable(name string, header []string) *Table {
	t := &Table{Name: name, index: make(map[string]int, len(header))}
	seen := make(map[string]int, len(header))
	for i, h := range header {
		col := strings.TrimSpace(h)
		if col == "" {
			col = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[col]; dup {
			seen[col] = n + 1
			col = fmt.Sprintf("%s.%d", col, n+1)
		} else {
			seen[col] = 0
		}
		t.addColumn(col)
	}
	return t
}

func (t *Table) addColumn(col string) {
	if t.index == nil {
		t.index = make(map[string]int)
	}
	t.index[col] = len(t.Columns)
	t.Columns = append(t.Columns, col)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], Empty)
	}
}

// AppendRow adds a row, padding or truncating it to the header width.
func (t *Table) AppendRow(cells []Value) {
	row := make([]Value, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of col, or -1.
func (t *Table) ColumnIndex(col string) int {
	if i, ok := t.index[col]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether the table has a column named col.
func (t *Table) HasColumn(col string) bool {
	return t.ColumnIndex(col) >= 0
}

// Row returns a read-only view of row i.
func (t *Table) Row(i int) Row {
	return Row{table: t, index: i}
}

// Row is a view of one table row addressed by column name.
type Row struct {
	table *Table
	index int
}

// Index returns the row position within its table.
func (r Row) Index() int {
	return r.index
}

// Has reports whether the row's table has column col.
func (r Row) Has(col string) bool {
	return r.table.HasColumn(col)
}

// Get returns the cell in column col. Unknown columns yield Empty.
func (r Row) Get(col string) Value {
	i := r.table.ColumnIndex(col)
	if i < 0 {
		return Empty
	}
	return r.table.Rows[r.index][i]
}

// ColumnPool returns the sorted union of column names across tables.
func ColumnPool(tables []*Table) []string {
	set := make(map[string]struct{})
	for _, t := range tables {
		for _, c := range t.Columns {
			set[c] = struct{}{}
		}
	}
	pool := make([]string, 0, len(set))
	for c := range set {
		pool = append(pool, c)
	}
	sort.Strings(pool)
	return pool
}
