package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/dmutombo/requestdesk/internal/models"
)

const sheetName = "Demande"

// ExcelWriter produces the downloadable request summary workbook
type ExcelWriter struct {
	outputDir string
	logger    *zap.Logger
}

// NewExcelWriter creates a new Excel writer
func NewExcelWriter(outputDir string, logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{
		outputDir: outputDir,
		logger:    logger,
	}
}

// WriteFile renders the request summary and saves it under the output
// directory. Returns the path of the written file.
func (w *ExcelWriter) WriteFile(request *models.Request, items []*models.RequestItem, attachments []*models.Attachment) (string, error) {
	f, err := w.build(request, items, attachments)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(w.outputDir, fmt.Sprintf("demande_%s.xlsx", request.ID))
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	w.logger.Info("Request summary exported",
		zap.String("request_id", request.ID),
		zap.String("output_path", outputPath))

	return outputPath, nil
}

// Write renders the request summary into the given writer, used by the
// HTTP download handler
func (w *ExcelWriter) Write(out io.Writer, request *models.Request, items []*models.RequestItem, attachments []*models.Attachment) error {
	f, err := w.build(request, items, attachments)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write Excel content: %w", err)
	}
	return nil
}

// build assembles a fresh workbook for the request
func (w *ExcelWriter) build(request *models.Request, items []*models.RequestItem, attachments []*models.Attachment) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	w.setCell(f, "A1", "Demande de fonds")
	w.setCell(f, "A2", "Projet")
	w.setCell(f, "B2", request.ProjectName)
	w.setCell(f, "A3", "Province")
	w.setCell(f, "B3", request.Province)
	w.setCell(f, "A4", "Contrat")
	w.setCell(f, "B4", request.ContractRef)
	w.setCell(f, "A5", "Demandeur")
	w.setCell(f, "B5", request.Requester)
	w.setCell(f, "A6", "Statut")
	w.setCell(f, "B6", request.Status)
	if request.SubmittedAt != nil {
		w.setCell(f, "A7", "Soumis le")
		w.setCell(f, "B7", request.SubmittedAt.Format("2006-01-02"))
	}

	// Line item table
	headerRow := 9
	headers := []string{"Libellé", "Quantité", "Prix unitaire", "Taux de taxe (%)", "Régie", "Total", "Taxe", "TTC"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, headerRow)
		w.setCell(f, cell, h)
	}

	var total, taxAmount, vatIncluded float64
	row := headerRow + 1
	for _, item := range items {
		values := []any{
			item.Label,
			item.Quantity,
			item.UnitPrice,
			item.TaxRatePercent,
			item.Authority,
			item.Total,
			item.TaxAmount,
			item.VATIncluded,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			w.setCell(f, cell, v)
		}
		total += item.Total
		taxAmount += item.TaxAmount
		vatIncluded += item.VATIncluded
		row++
	}

	// Totals row
	w.setCell(f, fmt.Sprintf("A%d", row), "Totaux")
	w.setCell(f, fmt.Sprintf("F%d", row), total)
	w.setCell(f, fmt.Sprintf("G%d", row), taxAmount)
	w.setCell(f, fmt.Sprintf("H%d", row), vatIncluded)
	row++

	// Amount in words, as printed on the paper form
	w.setCell(f, fmt.Sprintf("A%d", row), "Arrêté à la somme de")
	w.setCell(f, fmt.Sprintf("B%d", row), AmountInWords(vatIncluded))
	row += 2

	// Attachment list
	if len(attachments) > 0 {
		w.setCell(f, fmt.Sprintf("A%d", row), "Pièces jointes")
		row++
		for _, att := range attachments {
			w.setCell(f, fmt.Sprintf("A%d", row), att.FileName)
			w.setCell(f, fmt.Sprintf("B%d", row), att.FileSize)
			if att.PageCount > 0 {
				w.setCell(f, fmt.Sprintf("C%d", row), fmt.Sprintf("%d page(s)", att.PageCount))
			}
			row++
		}
	}

	return f, nil
}

// setCell sets a cell value, logging failures instead of aborting the export
func (w *ExcelWriter) setCell(f *excelize.File, cell string, value any) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		w.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
