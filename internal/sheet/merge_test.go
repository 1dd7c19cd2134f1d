package sheet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(name string, header []string, rows ...[]Value) *Table {
	t := NewTable(name, header)
	for _, r := range rows {
		t.AppendRow(r)
	}
	return t
}

func s(v string) Value { return String(v) }

func TestMerge_TwoTablesOnCleanedKey(t *testing.T) {
	schedule := table("schedule.xlsx",
		[]string{"管理番号", "物件名", "予定開始", "予定終了"},
		[]Value{s("HK-001"), s("Alpha"), s("2024/05/01 09:00"), s("2024/05/01 10:00")},
	)
	addresses := table("addresses.csv",
		[]string{"管理番号", "住所"},
		[]Value{s("HK001"), s("北海道札幌市中央区1-1")},
	)

	merged, err := NewMerger(DefaultKeyPrefix, nil).Merge([]*Table{schedule, addresses})
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())

	row := merged.Table.Row(0)
	assert.Equal(t, "001", row.Get(merged.Schema.Key).String())
	assert.Equal(t, "Alpha", row.Get(merged.Schema.Name).String())
	assert.Equal(t, "住所", merged.Schema.Address)
	assert.Equal(t, "北海道札幌市中央区1-1", row.Get(merged.Schema.Address).String())
	assert.Empty(t, merged.Skipped)
}

func TestMerge_OuterJoinKeepsUnmatchedKeys(t *testing.T) {
	left := table("a",
		[]string{"管理番号", "物件名", "予定開始", "予定終了"},
		[]Value{s("HK-002"), s("Two"), s("2024/05/02"), s("2024/05/02")},
		[]Value{s("HK-001"), s("One"), s("2024/05/01"), s("2024/05/01")},
	)
	right := table("b",
		[]string{"管理番号", "備考"},
		[]Value{s("003"), s("only right")},
		[]Value{s("001"), s("note")},
	)

	merged, err := NewMerger(DefaultKeyPrefix, nil).Merge([]*Table{left, right})
	require.NoError(t, err)

	// 003 has no start or end after the join.
	require.Equal(t, 2, merged.Len())
	assert.Equal(t, 1, merged.Dropped)
	assert.Equal(t, "001", merged.Table.Row(0).Get(KeyColumn).String())
	assert.Equal(t, "note", merged.Table.Row(0).Get("備考").String())
	assert.Equal(t, "002", merged.Table.Row(1).Get(KeyColumn).String())
	assert.True(t, merged.Table.Row(1).Get("備考").IsEmpty())
}

func TestMerge_SingleTableKeepsRowOrder(t *testing.T) {
	only := table("a",
		[]string{"管理番号", "物件名", "予定開始", "予定終了"},
		[]Value{s("HK-009"), s("Nine"), s("2024/05/09"), s("2024/05/09")},
		[]Value{s("HK-001"), s("One"), s("2024/05/01"), s("2024/05/01")},
	)

	merged, err := NewMerger(DefaultKeyPrefix, nil).Merge([]*Table{only})
	require.NoError(t, err)
	require.Equal(t, 2, merged.Len())
	assert.Equal(t, "009", merged.Table.Row(0).Get(KeyColumn).String())
	assert.Equal(t, "001", merged.Table.Row(1).Get(KeyColumn).String())
}

func TestMerge_DuplicateKeysKeepFirst(t *testing.T) {
	tbl := table("a",
		[]string{"管理番号", "物件名", "予定開始", "予定終了"},
		[]Value{s("HK-001"), s("First"), s("2024/05/01"), s("2024/05/01")},
		[]Value{s("001"), s("Second"), s("2024/05/01"), s("2024/05/01")},
		[]Value{s("HK－001"), s("Third"), s("2024/05/01"), s("2024/05/01")},
	)

	merged, err := NewMerger(DefaultKeyPrefix, nil).Merge([]*Table{tbl})
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())
	assert.Equal(t, "First", merged.Table.Row(0).Get(merged.Schema.Name).String())
}

func TestMerge_MissingStartDropsExactlyOneRow(t *testing.T) {
	tbl := table("a",
		[]string{"管理番号", "物件名", "予定開始", "予定終了"},
		[]Value{s("1"), s("A"), s("2024/05/01"), s("2024/05/01")},
		[]Value{s("2"), s("B"), Empty, s("2024/05/02")},
		[]Value{s("3"), s("C"), s("2024/05/03"), s("2024/05/03")},
	)

	merged, err := NewMerger(DefaultKeyPrefix, nil).Merge([]*Table{tbl})
	require.NoError(t, err)
	assert.Equal(t, 2, merged.Len())
	assert.Equal(t, 1, merged.Dropped)
}

func TestMerge_EmptyKeyRowsAreDropped(t *testing.T) {
	tbl := table("a",
		[]string{"管理番号", "物件名", "予定開始", "予定終了"},
		[]Value{Empty, s("A"), s("2024/05/01"), s("2024/05/01")},
		[]Value{s("HK-"), s("B"), s("2024/05/01"), s("2024/05/01")},
		[]Value{s("HK-5"), s("C"), s("2024/05/01"), s("2024/05/01")},
	)

	merged, err := NewMerger(DefaultKeyPrefix, nil).Merge([]*Table{tbl})
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())
	assert.Equal(t, "5", merged.Table.Row(0).Get(KeyColumn).String())
}

func TestMerge_NumericKeys(t *testing.T) {
	tbl := table("a",
		[]string{"管理番号", "物件名", "予定開始", "予定終了"},
		[]Value{Number(12), s("A"), s("2024/05/01"), s("2024/05/01")},
	)

	merged, err := NewMerger(DefaultKeyPrefix, nil).Merge([]*Table{tbl})
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())
	assert.Equal(t, "12", merged.Table.Row(0).Get(KeyColumn).String())
}

func TestMerge_SkipsTablesWithoutKey(t *testing.T) {
	good := table("good",
		[]string{"管理番号", "物件名", "予定開始", "予定終了"},
		[]Value{s("1"), s("A"), s("2024/05/01"), s("2024/05/01")},
	)
	bad := table("bad", []string{"id", "name"}, []Value{s("1"), s("x")})

	merged, err := NewMerger(DefaultKeyPrefix, nil).Merge([]*Table{bad, good})
	require.NoError(t, err)
	assert.Equal(t, []string{"bad"}, merged.Skipped)
	assert.Equal(t, 1, merged.Len())
}

func TestMerge_NoKeyedTables(t *testing.T) {
	merged, err := NewMerger(DefaultKeyPrefix, nil).Merge(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, merged.Len())
}

func TestMerge_SchemaUnresolved(t *testing.T) {
	tbl := table("a",
		[]string{"管理番号", "物件名"},
		[]Value{s("1"), s("A")},
	)

	merged, err := NewMerger(DefaultKeyPrefix, nil).Merge([]*Table{tbl})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchemaUnresolved))

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{KeywordStart, KeywordEnd}, schemaErr.Missing)
	assert.Equal(t, 0, merged.Len())
}

func TestMerge_OverlappingColumnsGetSuffixes(t *testing.T) {
	left := table("a",
		[]string{"管理番号", "物件名", "予定開始", "予定終了"},
		[]Value{s("1"), s("Left"), s("2024/05/01"), s("2024/05/01")},
	)
	right := table("b",
		[]string{"管理番号", "物件名"},
		[]Value{s("1"), s("Right")},
	)

	merged, err := NewMerger(DefaultKeyPrefix, nil).Merge([]*Table{left, right})
	require.NoError(t, err)
	assert.Equal(t, "物件名_x", merged.Schema.Name)
	assert.Equal(t, "Right", merged.Table.Row(0).Get("物件名_y").String())
}

func TestMerge_RemergeIsNoOp(t *testing.T) {
	tbl := table("a",
		[]string{"管理番号", "物件名", "予定開始", "予定終了"},
		[]Value{s("HK-2"), s("B"), s("2024/05/02"), s("2024/05/02")},
		[]Value{s("HK-1"), s("A"), s("2024/05/01"), s("2024/05/01")},
	)
	m := NewMerger(DefaultKeyPrefix, nil)

	first, err := m.Merge([]*Table{tbl})
	require.NoError(t, err)
	second, err := m.Merge([]*Table{first.Table})
	require.NoError(t, err)

	assert.Equal(t, first.Table.Columns, second.Table.Columns)
	assert.Equal(t, first.Table.Rows, second.Table.Rows)
}
