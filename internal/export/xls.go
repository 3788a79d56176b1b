package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/vladimiradmaev/health-records/internal/domain"
)

// ContentType is the MIME type spreadsheet clients associate with .xls
const ContentType = "application/vnd.ms-excel"

// EscapeXML escapes s for element text and attribute values. Characters
// XML 1.0 cannot carry, such as most control characters, become U+FFFD.
func EscapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

var workbook = template.Must(template.New("workbook").Funcs(template.FuncMap{"x": EscapeXML}).Parse(`<?xml version="1.0"?>
<?mso-application progid="Excel.Sheet"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"
 xmlns:o="urn:schemas-microsoft-com:office:office"
 xmlns:x="urn:schemas-microsoft-com:office:excel"
 xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet"
 xmlns:html="http://www.w3.org/TR/REC-html40">
 <Styles>
  <Style ss:ID="Default" ss:Name="Normal">
   <Alignment ss:Vertical="Bottom"/>
   <Borders/>
   <Font ss:FontName="Calibri" x:Family="Swiss" ss:Size="11" ss:Color="#000000"/>
   <Interior/>
   <NumberFormat/>
   <Protection/>
  </Style>
  <Style ss:ID="sHeader">
   <Alignment ss:Vertical="Bottom"/>
   <Borders>
    <Border ss:Position="Bottom" ss:LineStyle="Continuous" ss:Weight="1"/>
   </Borders>
   <Font ss:FontName="Calibri" x:Family="Swiss" ss:Size="11" ss:Color="#000000" ss:Bold="1"/>
   <Interior ss:Color="#F3F4F6" ss:Pattern="Solid"/>
  </Style>
  <Style ss:ID="sNotes">
   <Alignment ss:Vertical="Top" ss:WrapText="1"/>
  </Style>
 </Styles>
 <Worksheet ss:Name="Vaccine History">
  <Table x:FullColumns="1" x:FullRows="1" ss:DefaultRowHeight="15">
   <Column ss:AutoFitWidth="0" ss:Width="200"/>
   <Column ss:AutoFitWidth="0" ss:Width="100"/>
   <Column ss:AutoFitWidth="0" ss:Width="100"/>
   <Column ss:AutoFitWidth="0" ss:Width="300"/>
   <Row ss:AutoFitHeight="0" ss:Height="20" ss:StyleID="sHeader">
    <Cell><Data ss:Type="String">Vaccine Name</Data></Cell>
    <Cell><Data ss:Type="String">Date Taken</Data></Cell>
    <Cell><Data ss:Type="String">Next Due Date</Data></Cell>
    <Cell><Data ss:Type="String">Notes</Data></Cell>
   </Row>
{{- range .}}
   <Row>
    <Cell><Data ss:Type="String">{{x .Name}}</Data></Cell>
    <Cell><Data ss:Type="String">{{x .DateTaken.String}}</Data></Cell>
    <Cell><Data ss:Type="String">{{x .NextDueDate.String}}</Data></Cell>
    <Cell ss:StyleID="sNotes"><Data ss:Type="String">{{x .Notes}}</Data></Cell>
   </Row>
{{- end}}
  </Table>
 </Worksheet>
</Workbook>
`))

// WriteVaccines renders vaccines as an XML Spreadsheet 2003 workbook
func WriteVaccines(w io.Writer, vaccines []domain.Vaccine) error {
	if len(vaccines) == 0 {
		return domain.ErrNoVaccines
	}
	if err := workbook.Execute(w, vaccines); err != nil {
		return fmt.Errorf("failed to render workbook: %w", err)
	}
	return nil
}

// Vaccines renders the workbook into memory
func Vaccines(vaccines []domain.Vaccine) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteVaccines(&buf, vaccines); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName is the download name for an export made at now
func FileName(now time.Time) string {
	return "vaccines_history_" + now.UTC().Format("2006-01-02") + ".xls"
}
