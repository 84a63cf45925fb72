package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX concatenates cell text sheet by sheet, rows as lines.
func extractXLSX(buffer []byte) (string, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(buffer))
	if err != nil {
		return "", fmt.Errorf("open xlsx workbook: %w", err)
	}
	defer workbook.Close()

	var builder strings.Builder
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " "))
			if line == "" {
				continue
			}
			builder.WriteString(line)
			builder.WriteString("\n")
		}
	}
	return builder.String(), nil
}
