package exporter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		want    string
	}{
		{
			name: "headers and records",
			options: WriteOptions{
				Headers: []string{"Okul", "Şube"},
				Records: [][]string{{"Atatürk Lisesi", "9-A"}, {"Cumhuriyet, Lisesi", "10-B"}},
			},
			want: "Okul,Şube\nAtatürk Lisesi,9-A\n\"Cumhuriyet, Lisesi\",10-B\n",
		},
		{
			name: "bom prefix",
			options: WriteOptions{
				Headers:   []string{"a"},
				BOMPrefix: true,
			},
			want: "\xEF\xBB\xBFa\n",
		},
		{
			name:    "empty",
			options: WriteOptions{},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewCSVWriter(&buf).WriteCSV(tt.options))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestCSVWriter_StreamWriter(t *testing.T) {
	var buf bytes.Buffer
	stream, err := NewCSVWriter(&buf).createStream([]string{"level", "count"}, true)
	require.NoError(t, err)

	for _, rec := range [][]string{{"Basic", "1"}, {"Proficient", "2"}} {
		require.NoError(t, stream.WriteRecord(rec))
	}
	require.NoError(t, stream.Close())

	assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"level", "count"}, {"Basic", "1"}, {"Proficient", "2"}}, records)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCSVWriter_PropagatesWriteErrors(t *testing.T) {
	err := NewCSVWriter(failingWriter{}).WriteCSV(WriteOptions{Headers: []string{"a"}, BOMPrefix: true})
	assert.ErrorContains(t, err, "disk full")

	err = NewCSVWriter(failingWriter{}).WriteCSV(WriteOptions{Headers: []string{"a"}})
	assert.ErrorContains(t, err, "disk full")
}
