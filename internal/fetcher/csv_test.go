//go:build !integration

package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) [][]string {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	require.NoError(t, <-errCh)
	return rows
}

func TestStreamCSV_HeaderAndRows(t *testing.T) {
	input := "ciudad,barrio,precio\nmadrid,Sol,75\nmadrid,Lavapiés,90\n"
	headerCh := make(chan []string, 1)

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})

	rows := collectRows(t, rowCh, errCh)
	assert.Equal(t, []string{"ciudad", "barrio", "precio"}, <-headerCh)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"madrid", "Sol", "75"}, rows[0])
}

func TestStreamCSV_TrimSpaceAndDelimiter(t *testing.T) {
	input := "madrid; Sol ;75\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		Delimiter: ';',
		TrimSpace: true,
	})

	rows := collectRows(t, rowCh, errCh)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"madrid", "Sol", "75"}, rows[0])
}

func TestStreamCSV_Latin1Charset(t *testing.T) {
	// "Lavapiés" with é encoded as ISO 8859-1 byte 0xE9.
	input := "madrid,Lavapi\xe9s,90\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		Charset: "iso-8859-1",
	})

	rows := collectRows(t, rowCh, errCh)
	require.Len(t, rows, 1)
	assert.Equal(t, "Lavapiés", rows[0][1])
}

func TestStreamCSV_UnknownCharset(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader("a,b\n"), CSVOptions{
		Charset: "no-such-charset",
	})
	for range rowCh {
	}
	assert.Error(t, <-errCh)
}

func TestStreamCSV_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a,b\nc,d\n"), CSVOptions{})
	for range rowCh {
	}
	assert.Error(t, <-errCh)
}

func TestDecodeJSONObject(t *testing.T) {
	type doc struct {
		Type string `json:"type"`
	}
	got, err := DecodeJSONObject[doc](strings.NewReader(`{"type":"FeatureCollection"}`))
	require.NoError(t, err)
	assert.Equal(t, "FeatureCollection", got.Type)

	_, err = DecodeJSONObject[doc](strings.NewReader(`{broken`))
	assert.Error(t, err)
}

func TestReadXLSX_MissingFile(t *testing.T) {
	_, err := ReadXLSX("/nonexistent/precios.xlsx", XLSXOptions{})
	assert.Error(t, err)
}
