package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Yuheng-Li/citation/domain"
)

const (
	SummarySheet   = "Summary"
	SelectionSheet = "Selection"
)

var selectionHeader = []interface{}{"#", "Title", "Venue", "Year", "Authors", "Author Count", "URL", "PDF", "Source File"}

// WriteXLSX stores the summary and the selected papers as a workbook with
// one sheet each.
func WriteXLSX(path string, summary Summary, papers []*domain.Paper) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// The default sheet is renamed rather than left empty.
	if err = f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	summaryRows := [][]interface{}{
		{"Metric", "Value"},
		{"Total papers", summary.TotalPapers},
		{"Target authors", summary.Targets},
		{"Selected papers", summary.Selected},
		{"Compression ratio (%)", round2(summary.CompressionRatio())},
		{"Covered authors", summary.Covered},
		{"Coverage (%)", round2(summary.CoveragePercent())},
		{"Elapsed (s)", round2(summary.Elapsed.Seconds())},
	}
	for i, row := range summaryRows {
		if err = setRow(f, SummarySheet, i+1, row); err != nil {
			return err
		}
	}

	if _, err = f.NewSheet(SelectionSheet); err != nil {
		return err
	}
	if err = setRow(f, SelectionSheet, 1, selectionHeader); err != nil {
		return err
	}
	for i, paper := range papers {
		row := []interface{}{
			i + 1,
			paper.Title,
			paper.Venue,
			paper.Year,
			strings.Join(paper.Authors, "; "),
			len(paper.Authors),
			paper.URL,
			paper.PDFURL,
			paper.SourceFile,
		}
		if err = setRow(f, SelectionSheet, i+2, row); err != nil {
			return err
		}
	}

	if err = f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %q: %s", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
