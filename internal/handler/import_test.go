package handler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *excelize.File {
	t.Helper()
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	return wb
}

func TestSheetRecords(t *testing.T) {
	wb := buildWorkbook(t, [][]interface{}{
		{"Title", "URL", "Sort"},
		{"示例", "https://example.com", 3},
		{"短行"},
	})
	defer wb.Close()

	records, err := sheetRecords(wb)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// 标题行统一转小写，单元格去除首尾空白
	assert.Equal(t, "示例", records[0]["title"])
	assert.Equal(t, "https://example.com", records[0]["url"])
	assert.Equal(t, "3", records[0]["sort"])

	// 短行缺失的列补空串
	assert.Equal(t, "短行", records[1]["title"])
	assert.Equal(t, "", records[1]["url"])
}

func TestSheetRecordsEmptySheet(t *testing.T) {
	wb := buildWorkbook(t, [][]interface{}{
		{"Title", "URL"},
	})
	defer wb.Close()

	_, err := sheetRecords(wb)
	assert.Error(t, err)
}

func TestImportRowValidation(t *testing.T) {
	// 缺少必填字段
	err := validate.Struct(WebsiteImportRow{Title: "无网址"})
	assert.Error(t, err)

	// 网址格式校验
	err = validate.Struct(WebsiteImportRow{Title: "坏网址", Url: "not-a-url"})
	assert.Error(t, err)

	err = validate.Struct(WebsiteImportRow{Title: "好网址", Url: "https://example.com"})
	assert.NoError(t, err)

	err = validate.Struct(CategoryImportRow{Name: "分类"})
	assert.Error(t, err)

	err = validate.Struct(CategoryImportRow{Name: "分类", Slug: "cat"})
	assert.NoError(t, err)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 5, parseIntOrZero("5"))
	assert.Equal(t, 0, parseIntOrZero(""))
	assert.Equal(t, 0, parseIntOrZero("abc"))

	assert.True(t, parseTruthy("true"))
	assert.True(t, parseTruthy("TRUE"))
	assert.True(t, parseTruthy("1"))
	assert.True(t, parseTruthy("是"))
	assert.False(t, parseTruthy("false"))
	assert.False(t, parseTruthy(""))
	assert.False(t, parseTruthy("0"))
}

func TestTagListUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want TagList
	}{
		{name: "数组", in: `["a","b"]`, want: TagList{"a", "b"}},
		{name: "逗号字符串", in: `"a,b"`, want: TagList{"a", "b"}},
		{name: "空字符串", in: `""`, want: nil},
		{name: "空数组", in: `[]`, want: TagList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got TagList
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagListUnmarshalInvalid(t *testing.T) {
	var got TagList
	assert.Error(t, json.Unmarshal([]byte(`123`), &got))
}
