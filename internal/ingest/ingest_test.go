package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestParseCSV(t *testing.T) {
	data := []byte("text,user\nlogin is broken,alice\nbilling page hangs,bob\n")

	recs, err := Parse("feedback.csv", data)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "login is broken", recs[0]["text"])
	assert.Equal(t, "bob", recs[1]["user"])
}

func TestParseCSVRaggedRowsSkipped(t *testing.T) {
	data := []byte("text,user\nok row,alice\nshort\n")

	recs, err := Parse("feedback.csv", data)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ok row", recs[0]["text"])
}

func TestParseXLSX(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, rowData := range [][]string{
		{"text", "location"},
		{"app crashes on export", "Oslo"},
		{"great support team", "Bergen"},
	} {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	recs, err := Parse("feedback.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "app crashes on export", recs[0]["text"])
	assert.Equal(t, "Bergen", recs[1]["location"])
}

func TestParseJSONArray(t *testing.T) {
	data := []byte(`[{"text":"slow dashboard","user":"carol"},{"message":"invoice wrong"}]`)

	recs, err := Parse("feedback.json", data)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "slow dashboard", recs[0]["text"])
	assert.Equal(t, "invoice wrong", recs[1]["message"])
}

func TestParseJSONObjectBecomesSingleRecord(t *testing.T) {
	data := []byte(`{"text":"one complaint"}`)

	recs, err := Parse("feedback.json", data)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "one complaint", recs[0]["text"])
}

func TestParseTextCSVSniffing(t *testing.T) {
	data := []byte("text,user\ncheckout fails,dave\n")

	recs, err := Parse("feedback.txt", data)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "checkout fails", recs[0]["text"])
}

func TestParseTextPlainDocument(t *testing.T) {
	data := []byte("The new release keeps logging me out.\nPlease fix soon.")

	recs, err := Parse("notes.txt", data)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0]["text"], "logging me out")
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse("feedback.pdf", []byte("%PDF"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}

func TestParseMalformedJSON(t *testing.T) {
	_, err := Parse("feedback.json", []byte(`[{"text": }`))
	require.Error(t, err)
}
