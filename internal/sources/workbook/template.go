package workbook

import (
	"fmt"

	"github.com/MrSnakeDoc/promoavail/internal/catalog"
	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Create writes a new workbook at path with both sheets, styled headers and the given rows.
// With no rows it produces the blank template handed to curators.
func Create(path string, products []domain.Product, synonyms []domain.Synonym) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", catalog.ProductsSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(catalog.SynonymsSheet); err != nil {
		return err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	// name is the only required column
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	writeHeader := func(sheet string, headers []string, width float64) error {
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return err
			}
			style := headerStyle
			if i == 0 {
				style = requiredStyle
			}
			_ = f.SetCellStyle(sheet, cell, cell, style)

			col, _ := excelize.ColumnNumberToName(i + 1)
			_ = f.SetColWidth(sheet, col, col, width)
		}
		return nil
	}

	if err := writeHeader(catalog.ProductsSheet, catalog.ProductHeaders, 20); err != nil {
		return err
	}
	if err := writeHeader(catalog.SynonymsSheet, catalog.SynonymHeaders, 30); err != nil {
		return err
	}

	for i, p := range products {
		if err := writeRow(f, catalog.ProductsSheet, i+2, catalog.ProductRow(p)); err != nil {
			return err
		}
	}
	for i, s := range synonyms {
		if err := writeRow(f, catalog.SynonymsSheet, i+2, catalog.SynonymRow(s)); err != nil {
			return err
		}
	}

	idx, _ := f.GetSheetIndex(catalog.ProductsSheet)
	f.SetActiveSheet(idx)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
