package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractExcel extracts text from .xlsx bytes as structured, marker-delimited
// output: each sheet is wrapped in [SHEET]/[END SHEET] and each row in
// [ROW]/[END ROW], with cells tab-joined inside. Downstream snippet
// extraction recognizes these markers and renders tabular excerpts instead of
// treating the text as prose.
func extractExcel(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	var buf strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		fmt.Fprintf(&buf, "[SHEET %s]\n", sheet)
		for i, row := range rows {
			fmt.Fprintf(&buf, "[ROW %d]\n", i+1)
			buf.WriteString(strings.Join(row, "\t"))
			buf.WriteByte('\n')
			fmt.Fprintf(&buf, "[END ROW %d]\n", i+1)
		}
		fmt.Fprintf(&buf, "[END SHEET %s]\n", sheet)
	}
	return strings.TrimSpace(buf.String()), nil
}
