package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDecodeCSV(t *testing.T) {
	input := strings.Join([]string{
		`ID,Q1,Q2`,
		`"설문 제목","<b>만족도</b>를 알려주세요","의견"`,
		`1,매우 만족,좋아요`,
		`2,보통`,
		`,,`,
	}, "\n")

	rows, err := DecodeCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, rows, 4, "trailing empty row must be trimmed")
	assert.Equal(t, []string{"ID", "Q1", "Q2"}, rows[0])
	assert.Equal(t, "만족도를 알려주세요", rows[1][1], "markup stripped")
	assert.Equal(t, []string{"2", "보통", ""}, rows[3], "short record padded")
}

func TestDecodeCSVMalformed(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("\"unterminated"))
	assert.Error(t, err)
}

func TestDecodeXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"ID", "Q1"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"질문입니다", "답변<br>두 줄"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"1"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := DecodeXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Q1"}, rows[0])
	assert.Equal(t, "답변\n두 줄", rows[1][1], "br becomes a newline")
	assert.Equal(t, []string{"1", ""}, rows[2], "short row padded to sheet width")
}

func TestDecodeXLSXNotAWorkbook(t *testing.T) {
	_, err := DecodeXLSX(strings.NewReader("plain text"))
	assert.Error(t, err)
}

func TestDecodeDispatch(t *testing.T) {
	rows, err := Decode("export.csv", strings.NewReader("a,b\nc,d"))
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = Decode("export.pdf", strings.NewReader(""))
	assert.Error(t, err)
}
