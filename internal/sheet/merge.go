package sheet

import (
	"log/slog"
	"sort"

	"github.com/teemow/calimport/internal/logging"
)

// Merged is the result of folding all sources together. Keys are unique.
type Merged struct {
	Table  *Table
	Schema Schema

	// Skipped lists sources without a management number column.
	Skipped []string

	// Dropped counts rows removed because start or end was empty.
	Dropped int
}

// Len returns the number of merged rows.
func (m *Merged) Len() int {
	if m == nil {
		return 0
	}
	return m.Table.Len()
}

// Merger merges tables on the cleaned management number.
type Merger struct {
	keyPrefix string
	logger    *slog.Logger
}

// NewMerger returns a Merger stripping keyPrefix from management numbers.
func NewMerger(keyPrefix string, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{
		keyPrefix: keyPrefix,
		logger:    logging.WithOperation(logger, "sheet.merge"),
	}
}

// Merge normalizes each table's key column, folds the tables with an outer
// join on the key and drops rows without start or end.
//
// Tables without a management number column are skipped. When no table
// remains the result is empty and err is nil. When the name, start or end
// column cannot be resolved the result is empty and err is a *SchemaError.
func (m *Merger) Merge(tables []*Table) (*Merged, error) {
	result := &Merged{Table: NewTable("merged", nil)}

	var keyed []*Table
	for _, t := range tables {
		nt, ok := m.normalize(t)
		if !ok {
			m.logger.Warn("source has no management number column, skipping",
				logging.Source(t.Name))
			result.Skipped = append(result.Skipped, t.Name)
			continue
		}
		keyed = append(keyed, nt)
	}
	if len(keyed) == 0 {
		return result, nil
	}

	acc := keyed[0]
	for _, next := range keyed[1:] {
		acc = outerJoin(acc, next)
	}

	schema, err := ResolveSchema(acc.Columns)
	if err != nil {
		m.logger.Warn("merged table is missing required columns",
			slog.Any("columns", ColumnPool(keyed)),
			logging.Err(err))
		return result, err
	}

	out := NewTable("merged", acc.Columns)
	for i := range acc.Rows {
		row := acc.Row(i)
		if row.Get(schema.Start).IsEmpty() || row.Get(schema.End).IsEmpty() {
			result.Dropped++
			continue
		}
		out.AppendRow(acc.Rows[i])
	}
	if result.Dropped > 0 {
		m.logger.Info("dropped rows without start or end", slog.Int("rows", result.Dropped))
	}

	result.Table = out
	result.Schema = schema
	return result, nil
}

// normalize writes the cleaned key into KeyColumn, drops rows with an empty
// key and keeps the first row of each key.
func (m *Merger) normalize(t *Table) (*Table, bool) {
	src := ResolveColumn(t.Columns, KeywordKey)
	if src == "" {
		return nil, false
	}

	out := NewTable(t.Name, t.Columns)
	if !out.HasColumn(KeyColumn) {
		out.addColumn(KeyColumn)
	}
	srcIdx := t.ColumnIndex(src)
	keyIdx := out.ColumnIndex(KeyColumn)

	seen := make(map[string]bool, len(t.Rows))
	for _, cells := range t.Rows {
		key := CleanKey(cells[srcIdx], m.keyPrefix)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		row := make([]Value, len(out.Columns))
		copy(row, cells)
		row[keyIdx] = String(key)
		out.Rows = append(out.Rows, row)
	}
	return out, true
}

// outerJoin merges right into left on KeyColumn. Non-key columns present on
// both sides get "_x" and "_y" suffixes. The union of keys is ordered
// lexicographically. Both inputs must have unique keys.
func outerJoin(left, right *Table) *Table {
	overlap := make(map[string]bool)
	for _, c := range right.Columns {
		if c != KeyColumn && left.HasColumn(c) {
			overlap[c] = true
		}
	}

	header := make([]string, 0, len(left.Columns)+len(right.Columns)-1)
	for _, c := range left.Columns {
		if overlap[c] {
			c += "_x"
		}
		header = append(header, c)
	}
	var rightCols []int
	for i, c := range right.Columns {
		if c == KeyColumn {
			continue
		}
		if overlap[c] {
			c += "_y"
		}
		header = append(header, c)
		rightCols = append(rightCols, i)
	}

	leftRows := keyIndex(left)
	rightRows := keyIndex(right)
	keys := make([]string, 0, len(leftRows)+len(rightRows))
	for k := range leftRows {
		keys = append(keys, k)
	}
	for k := range rightRows {
		if _, ok := leftRows[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &Table{Name: left.Name, index: make(map[string]int, len(header))}
	for _, c := range header {
		out.addColumn(c)
	}
	keyIdx := left.ColumnIndex(KeyColumn)
	for _, k := range keys {
		row := make([]Value, 0, len(header))
		if li, ok := leftRows[k]; ok {
			row = append(row, left.Rows[li]...)
		} else {
			row = append(row, make([]Value, len(left.Columns))...)
			row[keyIdx] = String(k)
		}
		ri, hasRight := rightRows[k]
		for _, c := range rightCols {
			if hasRight {
				row = append(row, right.Rows[ri][c])
			} else {
				row = append(row, Empty)
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func keyIndex(t *Table) map[string]int {
	idx := t.ColumnIndex(KeyColumn)
	m := make(map[string]int, len(t.Rows))
	for i, row := range t.Rows {
		m[row[idx].String()] = i
	}
	return m
}
