package render_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/usefold/pkg/folding"
	"github.com/Sumatoshi-tech/usefold/pkg/render"
)

func sampleReports() []render.FileReport {
	return []render.FileReport{
		{
			Path:     "src/User.php",
			Language: "php",
			Size:     2048,
			Lines:    40,
			Ranges: []folding.Range{
				{StartLine: 2, EndLine: 5, Kind: folding.KindImports},
				{StartLine: 20, EndLine: 21, Kind: folding.KindImports},
			},
		},
		{Path: "src/Empty.php", Language: "php", Size: 10, Lines: 1},
	}
}

func TestWrite_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Write(&buf, sampleReports(), render.Options{Format: render.FormatText})
	require.NoError(t, err)

	assert.Equal(t,
		"src/User.php:3-6 imports (4 lines)\nsrc/User.php:21-22 imports (2 lines)\n",
		buf.String())
}

func TestWrite_TextZeroBased(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Write(&buf, sampleReports()[:1], render.Options{ZeroBased: true})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "src/User.php:2-5 imports")
}

func TestWrite_TextColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Write(&buf, sampleReports()[:1], render.Options{Format: render.FormatText, Color: true})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "\x1b[")
}

func TestWrite_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Write(&buf, sampleReports(), render.Options{Format: render.FormatTable})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "src/User.php")
	assert.Contains(t, out, "src/Empty.php")
	assert.Contains(t, out, "2.0 kB")
	assert.Contains(t, out, "TOTAL: 2 RANGES IN 2 FILES")
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Write(&buf, sampleReports(), render.Options{Format: render.FormatJSON})
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)

	ranges, ok := decoded[0]["ranges"].([]any)
	require.True(t, ok)
	require.Len(t, ranges, 2)

	first, ok := ranges[0].(map[string]any)
	require.True(t, ok)
	assert.InDelta(t, 2, first["start_line"], 0)
	assert.InDelta(t, 5, first["end_line"], 0)
	assert.Equal(t, "imports", first["kind"])

	empty, ok := decoded[1]["ranges"].([]any)
	require.True(t, ok)
	assert.Empty(t, empty)
}

func TestWrite_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.Write(&buf, sampleReports(), render.Options{Format: render.FormatYAML})
	require.NoError(t, err)

	var decoded []render.FileReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, sampleReports()[0], decoded[0])
	assert.Empty(t, decoded[1].Ranges)
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	err := render.Write(&bytes.Buffer{}, nil, render.Options{Format: "xml"})
	require.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestIsKnownFormat(t *testing.T) {
	t.Parallel()

	for _, format := range render.Formats() {
		assert.True(t, render.IsKnownFormat(format))
	}

	assert.False(t, render.IsKnownFormat("csv"))
}
