package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rowfinder/rowfinder/internal/api"
)

func sampleRows() []api.Row {
	return []api.Row{
		{{Column: "Product", Value: "Widget, large"}, {Column: "City", Value: "Pune"}, {Column: "_relevance", Value: "150"}},
		{{Column: "Product", Value: "Gadget"}, {Column: "Rate", Value: "1.5"}},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"CSV": CSV, " json ": JSON, "yml": YAML, "yaml": YAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
	assert.Equal(t, ".csv", CSV.Extension())
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"Product", "City", "Rate"}, Columns(sampleRows()))
	assert.Nil(t, Columns(nil))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, sampleRows()))
	assert.Equal(t, "Product,City,Rate\n\"Widget, large\",Pune,\nGadget,,1.5\n", buf.String())
}

func TestWriteJSON_PreservesOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, sampleRows()))

	out := buf.String()
	assert.Less(t, strings.Index(out, `"Product"`), strings.Index(out, `"City"`))
	assert.NotContains(t, out, "_relevance")

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Widget, large", decoded[0]["Product"])
	assert.Equal(t, "1.5", decoded[1]["Rate"])
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, JSON, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteYAML_PreservesOrderAndQuotesNumbers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, YAML, sampleRows()))

	out := buf.String()
	assert.Less(t, strings.Index(out, "Product:"), strings.Index(out, "City:"))
	assert.Contains(t, out, `Rate: "1.5"`)

	var decoded []map[string]string
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Pune", decoded[0]["City"])
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, Format("xml"), nil))
}
