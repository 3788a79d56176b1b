package export

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/health-records/internal/domain"
	"github.com/vladimiradmaev/health-records/internal/fuzzydate"
)

func TestEscapeXML(t *testing.T) {
	assert.Equal(t, "Tom &amp; Jerry &lt;b&gt; &#34;x&#34; &#39;y&#39;", EscapeXML(`Tom & Jerry <b> "x" 'y'`))
	assert.Equal(t, "", EscapeXML(""))
	assert.Equal(t, "a\uFFFDb\uFFFDc", EscapeXML("a\x01b\x0bc"))
	assert.Equal(t, "line&#xA;next", EscapeXML("line\nnext"))
}

func TestVaccinesWorkbookWithControlCharacters(t *testing.T) {
	data, err := Vaccines([]domain.Vaccine{{Name: "Flu\x00", Notes: "pasted\x1btext\x0c"}})
	require.NoError(t, err)

	var parsed struct{ XMLName xml.Name }
	require.NoError(t, xml.Unmarshal(data, &parsed), "workbook must stay well-formed")
	assert.NotContains(t, string(data), "\x1b")
}

func TestVaccinesWorkbook(t *testing.T) {
	data, err := Vaccines([]domain.Vaccine{
		{Name: "Tetanus <Tdap>", DateTaken: fuzzydate.MustParse("2015-06"), NextDueDate: fuzzydate.MustParse("2025-06"), Notes: "Booster & more"},
		{Name: "HPV"},
	})
	require.NoError(t, err)

	doc := string(data)
	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0"?>`))
	assert.Contains(t, doc, `<Worksheet ss:Name="Vaccine History">`)
	assert.Contains(t, doc, `<Row ss:AutoFitHeight="0" ss:Height="20" ss:StyleID="sHeader">`)
	assert.Contains(t, doc, "Tetanus &lt;Tdap&gt;")
	assert.Contains(t, doc, `<Cell ss:StyleID="sNotes"><Data ss:Type="String">Booster &amp; more</Data></Cell>`)
	assert.Contains(t, doc, `<Data ss:Type="String">2015-06</Data>`)
	assert.Equal(t, 3, strings.Count(doc, "<Row"))

	var parsed struct{ XMLName xml.Name }
	require.NoError(t, xml.Unmarshal(data, &parsed), "workbook must be well-formed")
	assert.Equal(t, "Workbook", parsed.XMLName.Local)
}

func TestVaccinesEmpty(t *testing.T) {
	_, err := Vaccines(nil)
	assert.ErrorIs(t, err, domain.ErrNoVaccines)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "vaccines_history_2024-03-10.xls", FileName(time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)))
}
