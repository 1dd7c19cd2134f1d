package event

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calimport/internal/sheet"
)

func tokyo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return loc
}

func merged(t *testing.T, header []string, rows ...[]sheet.Value) *sheet.Merged {
	t.Helper()
	tbl := sheet.NewTable("in", header)
	for _, r := range rows {
		tbl.AppendRow(r)
	}
	m, err := sheet.NewMerger(sheet.DefaultKeyPrefix, nil).Merge([]*sheet.Table{tbl})
	require.NoError(t, err)
	return m
}

func TestBuild_TwoTableScenario(t *testing.T) {
	loc := tokyo(t)
	schedule := sheet.NewTable("schedule", []string{"管理番号", "物件名", "予定開始", "予定終了", "数量"})
	schedule.AppendRow([]sheet.Value{
		sheet.String("HK-001"), sheet.String("Alpha"),
		sheet.String("2024/05/01 09:00"), sheet.String("2024/05/01 10:30"),
		sheet.Number(5),
	})
	addresses := sheet.NewTable("addresses", []string{"管理番号", "住所"})
	addresses.AppendRow([]sheet.Value{sheet.String("HK001"), sheet.String("北海道札幌市中央区北1条")})

	m, err := sheet.NewMerger(sheet.DefaultKeyPrefix, nil).Merge([]*sheet.Table{schedule, addresses})
	require.NoError(t, err)

	records, errs := NewBuilder(loc, DefaultRegionPrefix, nil).Build(m, Options{
		DescriptionColumns: []string{"数量", "missing"},
		Private:            true,
	})
	require.Empty(t, errs)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "001", rec.Key)
	assert.Equal(t, "001Alpha", rec.Subject)
	assert.Equal(t, "中央区北1条", rec.Location)
	assert.Equal(t, "5", rec.Description)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 0, loc), rec.Start)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, loc), rec.End)
	assert.True(t, rec.Private)

	assert.Equal(t, []string{
		"001Alpha", "2024/05/01", "09:00", "2024/05/01", "10:30",
		"False", "5", "中央区北1条", "True",
	}, rec.Row())
}

func TestBuild_SerialDatesAndDescription(t *testing.T) {
	loc := tokyo(t)
	m := merged(t,
		[]string{"管理番号", "物件名", "予定開始", "予定終了", "面積", "担当"},
		[]sheet.Value{
			sheet.String("HK-7"), sheet.String("Site"),
			sheet.Number(45413.375), sheet.Number(45414),
			sheet.Number(5.5), sheet.String("田中"),
		},
	)

	records, errs := NewBuilder(loc, DefaultRegionPrefix, nil).Build(m, Options{
		DescriptionColumns: []string{"担当", "面積"},
		AllDay:             true,
	})
	require.Empty(t, errs)
	require.Len(t, records, 1)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 0, 0, loc), records[0].Start)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, loc), records[0].End)
	assert.Equal(t, "田中 / 5.5", records[0].Description)
	assert.Equal(t, "True", records[0].Row()[5])
}

func TestBuild_UnparseableRowIsSkipped(t *testing.T) {
	m := merged(t,
		[]string{"管理番号", "物件名", "予定開始", "予定終了"},
		[]sheet.Value{sheet.String("1"), sheet.String("A"), sheet.String("someday"), sheet.String("2024/05/01")},
		[]sheet.Value{sheet.String("2"), sheet.String("B"), sheet.String("2024/05/02"), sheet.String("2024/05/02")},
	)

	records, errs := NewBuilder(tokyo(t), DefaultRegionPrefix, nil).Build(m, Options{})
	require.Len(t, records, 1)
	assert.Equal(t, "2B", records[0].Subject)
	require.Len(t, errs, 1)
	assert.Equal(t, "1", errs[0].Key)

	var rowErr *RowError
	assert.True(t, errors.As(errs[0], &rowErr))
}

func TestBuild_MissingNameAndAddress(t *testing.T) {
	m := merged(t,
		[]string{"管理番号", "物件名", "予定開始", "予定終了"},
		[]sheet.Value{sheet.String("3"), sheet.Empty, sheet.String("2024/05/01"), sheet.String("2024/05/01")},
	)

	records, errs := NewBuilder(tokyo(t), DefaultRegionPrefix, nil).Build(m, Options{})
	require.Empty(t, errs)
	require.Len(t, records, 1)
	assert.Equal(t, "3", records[0].Subject)
	assert.Empty(t, records[0].Location)
}

func TestBuild_EmptyMerged(t *testing.T) {
	records, errs := NewBuilder(nil, "", nil).Build(&sheet.Merged{}, Options{})
	assert.Empty(t, records)
	assert.Empty(t, errs)
}

func TestFormatDescriptionValue(t *testing.T) {
	tests := []struct {
		name     string
		value    sheet.Value
		expected string
	}{
		{"empty", sheet.Empty, ""},
		{"whole float", sheet.Number(5.0), "5"},
		{"fraction", sheet.Number(5.5), "5.5"},
		{"negative whole", sheet.Number(-12), "-12"},
		{"text", sheet.String("abc"), "abc"},
		{"bool", sheet.Bool(false), "False"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDescriptionValue(tt.value))
		})
	}
}

func TestStripRegionPrefix(t *testing.T) {
	assert.Equal(t, "中央区1-1", StripRegionPrefix("北海道札幌市中央区1-1", DefaultRegionPrefix))
	assert.Equal(t, "東京都港区", StripRegionPrefix("東京都港区", DefaultRegionPrefix))
	assert.Equal(t, "x", StripRegionPrefix("x", ""))

	b := NewBuilder(nil, DefaultRegionPrefix, nil)
	assert.Equal(t, "1001", b.Location(sheet.Number(1001)))
	assert.Equal(t, "", b.Location(sheet.Empty))
}

func TestBuild_LogsDescriptionColumnsLostInMerge(t *testing.T) {
	schedule := sheet.NewTable("schedule", []string{"管理番号", "物件名", "予定開始", "予定終了", "備考"})
	schedule.AppendRow([]sheet.Value{
		sheet.String("HK-001"), sheet.String("Alpha"),
		sheet.String("2024/05/01 09:00"), sheet.String("2024/05/01 10:00"),
		sheet.String("gate code 12"),
	})
	notes := sheet.NewTable("notes", []string{"管理番号", "備考"})
	notes.AppendRow([]sheet.Value{sheet.String("HK-001"), sheet.String("call first")})

	m, err := sheet.NewMerger(sheet.DefaultKeyPrefix, nil).Merge([]*sheet.Table{schedule, notes})
	require.NoError(t, err)
	require.True(t, m.Table.HasColumn("備考_x"))

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	records, errs := NewBuilder(time.UTC, DefaultRegionPrefix, logger).Build(m, Options{
		DescriptionColumns: []string{"備考"},
	})
	require.Empty(t, errs)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Description)

	out := buf.String()
	assert.Contains(t, out, `"msg":"description column not in merged table"`)
	assert.Contains(t, out, `"column":"備考"`)
	assert.Contains(t, out, `"suffixed":["備考_x","備考_y"]`)
}
