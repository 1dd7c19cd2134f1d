package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveColumn(t *testing.T) {
	tests := []struct {
		name     string
		columns  []string
		keywords []string
		expected string
	}{
		{
			name:     "exact match",
			columns:  []string{"管理番号", "物件名"},
			keywords: []string{"物件名"},
			expected: "物件名",
		},
		{
			name:     "substring match",
			columns:  []string{"No", "工事管理番号(新)"},
			keywords: []string{"管理番号"},
			expected: "工事管理番号(新)",
		},
		{
			name:     "case insensitive",
			columns:  []string{"Start Date", "End Date"},
			keywords: []string{"start"},
			expected: "Start Date",
		},
		{
			name:     "first column wins for one keyword",
			columns:  []string{"予定開始日", "予定開始時刻"},
			keywords: []string{"予定開始"},
			expected: "予定開始日",
		},
		{
			name:     "keyword priority beats column order",
			columns:  []string{"所在地", "住所"},
			keywords: []string{"住所", "所在地"},
			expected: "住所",
		},
		{
			name:     "falls back to later keyword",
			columns:  []string{"所在地"},
			keywords: []string{"住所", "所在地"},
			expected: "所在地",
		},
		{
			name:     "no match",
			columns:  []string{"a", "b"},
			keywords: []string{"c"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveColumn(tt.columns, tt.keywords...))
		})
	}
}

func TestResolveSchema_AddressOptional(t *testing.T) {
	schema, err := ResolveSchema([]string{"管理番号", "物件名", "予定開始日時", "予定終了日時"})
	assert.NoError(t, err)
	assert.Equal(t, "予定開始日時", schema.Start)
	assert.Equal(t, "予定終了日時", schema.End)
	assert.Empty(t, schema.Address)
}

func TestCleanManagementNumber(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"HK-001", "001"},
		{"HK001", "001"},
		{" HK-12-3 ", "123"},
		{"ＨＫ－００１", "001"},
		{"HHKK-1", "1"},
		{"001", "001"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := CleanManagementNumber(tt.raw, DefaultKeyPrefix)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, CleanManagementNumber(got, DefaultKeyPrefix), "cleaning must be idempotent")
		})
	}
}

func TestCleanKey(t *testing.T) {
	assert.Equal(t, "", CleanKey(Empty, DefaultKeyPrefix))
	assert.Equal(t, "42", CleanKey(Number(42), DefaultKeyPrefix))
	assert.Equal(t, "7", CleanKey(String("HK-7"), DefaultKeyPrefix))
}

func TestInferValue(t *testing.T) {
	assert.Equal(t, Empty, inferValue("  "))
	assert.Equal(t, Number(45413.5), inferValue("45413.5"))
	assert.Equal(t, String("007"), inferValue("007"))
	assert.Equal(t, Number(0.5), inferValue("0.5"))
	assert.Equal(t, String("NaN"), inferValue("NaN"))
	assert.Equal(t, String("HK-1"), inferValue("HK-1"))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "5", Number(5.0).String())
	assert.Equal(t, "5.5", Number(5.5).String())
	assert.True(t, Number(5.0).IsWholeNumber())
	assert.False(t, Number(5.5).IsWholeNumber())
	assert.Equal(t, "True", Bool(true).String())
	assert.Equal(t, "", Empty.String())
}

func TestNewTable_HeaderNormalization(t *testing.T) {
	tbl := NewTable("t", []string{" a ", "", "a", "a"})
	assert.Equal(t, []string{"a", "Unnamed: 1", "a.1", "a.2"}, tbl.Columns)

	tbl.AppendRow([]Value{String("x")})
	assert.Len(t, tbl.Rows[0], 4)
	assert.True(t, tbl.Row(0).Get("a.2").IsEmpty())
	assert.True(t, tbl.Row(0).Get("missing").IsEmpty())
}

func TestColumnPool(t *testing.T) {
	a := NewTable("a", []string{"b", "a"})
	b := NewTable("b", []string{"c", "a"})
	assert.Equal(t, []string{"a", "b", "c"}, ColumnPool([]*Table{a, b}))
}
