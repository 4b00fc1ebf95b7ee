package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/models"
)

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, models.ImportFormatXLSX, DetectFormat("catalog.xlsx"))
	assert.Equal(t, models.ImportFormatXLSX, DetectFormat("CATALOG.XLSX"))
	assert.Equal(t, models.ImportFormatXLSX, DetectFormat("old.xls"))
	assert.Equal(t, models.ImportFormatCSV, DetectFormat("catalog.csv"))
	assert.Equal(t, models.ImportFormatCSV, DetectFormat("noextension"))
}

func TestReadRowsCSV(t *testing.T) {
	csvData := "Nome , PRECO,Categoria\nSofá Berlim,R$ 3.499,Sofás\n,,\nMesa Oslo,1200,Mesas\n"

	rows, err := ReadRows(strings.NewReader(csvData), models.ImportFormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// headers lowercased and trimmed
	assert.Equal(t, "Sofá Berlim", rows[0]["nome"])
	assert.Equal(t, "R$ 3.499", rows[0]["preco"])
	assert.Equal(t, "Sofás", rows[0]["categoria"])

	// row numbers follow spreadsheet positions, the all-empty row is skipped
	assert.Equal(t, "2", rows[0][RowNumberKey])
	assert.Equal(t, "4", rows[1][RowNumberKey])
	assert.Equal(t, "Mesa Oslo", rows[1]["nome"])
}

func TestReadRowsCSVRaggedRecords(t *testing.T) {
	csvData := "nome,preco,categoria\nBanco Alto,89\n"

	rows, err := ReadRows(strings.NewReader(csvData), models.ImportFormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Banco Alto", rows[0]["nome"])
	assert.Equal(t, "", rows[0]["categoria"])
}

func TestReadRowsCSVEmpty(t *testing.T) {
	_, err := ReadRows(strings.NewReader(""), models.ImportFormatCSV)
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = ReadRows(strings.NewReader("nome,preco\n"), models.ImportFormatCSV)
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = ReadRows(strings.NewReader("nome,preco\n , \n"), models.ImportFormatCSV)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestReadRowsXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Nome", "Preco"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Cadeira Paris", "450"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Luminária Kyoto", "220"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	rows, err := ReadRows(&buf, models.ImportFormatXLSX)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Cadeira Paris", rows[0]["nome"])
	assert.Equal(t, "2", rows[0][RowNumberKey])
	assert.Equal(t, "Luminária Kyoto", rows[1]["nome"])
	assert.Equal(t, "3", rows[1][RowNumberKey])
}

func TestReadRowsXLSXGarbage(t *testing.T) {
	_, err := ReadRows(strings.NewReader("this is not a zip archive"), models.ImportFormatXLSX)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "xlsx", parseErr.Format)
}

func TestExtractColumns(t *testing.T) {
	rows := []models.RawRow{
		{"nome": "a", "preco": "1", RowNumberKey: "2"},
		{"nome": "b", "cores": "Azul", RowNumberKey: "3"},
	}

	cols := ExtractColumns(rows)
	assert.Equal(t, []string{"cores", "nome", "preco"}, cols)
}
