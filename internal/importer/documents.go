package importer

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// parsePDF extracts the plain text of every page, pages separated by a
// blank line.
func parsePDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if text = cleanText(text); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// parseExcel renders every non-empty sheet as a Markdown table under a
// heading with the sheet name.
func parseExcel(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var parts []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		parts = append(parts, "## "+sheet+"\n\n"+rowsToMarkdown(rows))
	}
	return strings.Join(parts, "\n"), nil
}

func rowsToMarkdown(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	maxCols := 0
	for _, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		cells := make([]string, maxCols)
		for j := range cells {
			if j < len(row) {
				cell := strings.ReplaceAll(row[j], "|", "\\|")
				cells[j] = strings.ReplaceAll(cell, "\n", " ")
			}
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	writeRow(rows[0])
	sb.WriteString("|" + strings.Repeat(" --- |", maxCols) + "\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return sb.String()
}
