package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/dmutombo/requestdesk/internal/models"
)

func sampleExport() (*models.Request, []*models.RequestItem, []*models.Attachment) {
	submitted := time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC)
	request := &models.Request{
		ID:          "req-1",
		ProjectName: "Réhabilitation RN1",
		Province:    "Kongo-Central",
		ContractRef: "CT-2031",
		Requester:   "mutombo",
		Status:      models.RequestStatusSubmitted,
		SubmittedAt: &submitted,
	}
	items := []*models.RequestItem{
		{
			Label:          "Ciment",
			Quantity:       3,
			UnitPrice:      120,
			TaxRatePercent: 16,
			Authority:      "DGI",
			Total:          360,
			TaxAmount:      57.6,
			VATIncluded:    417.6,
		},
		{
			Label:       "Transport",
			Quantity:    1,
			UnitPrice:   50,
			Authority:   "DGDA",
			Total:       50,
			VATIncluded: 50,
		},
	}
	attachments := []*models.Attachment{
		{FileName: "facture.pdf", FileSize: 2048, PageCount: 3},
	}
	return request, items, attachments
}

func TestExcelWriter_Write(t *testing.T) {
	w := NewExcelWriter(t.TempDir(), zap.NewNop())
	request, items, attachments := sampleExport()

	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, request, items, attachments))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	get := func(cell string) string {
		v, err := f.GetCellValue(sheetName, cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Demande de fonds", get("A1"))
	assert.Equal(t, "Réhabilitation RN1", get("B2"))
	assert.Equal(t, "2026-08-12", get("B7"))

	// Item rows start under the header on row 9
	assert.Equal(t, "Libellé", get("A9"))
	assert.Equal(t, "Ciment", get("A10"))
	assert.Equal(t, "DGDA", get("E11"))

	// Totals row follows the items
	assert.Equal(t, "Totaux", get("A12"))
	assert.Equal(t, "410", get("F12"))
	assert.Equal(t, "467.6", get("H12"))

	// Amount in words and attachments
	assert.Contains(t, get("B13"), "francs")
	assert.Equal(t, "facture.pdf", get("A16"))
	assert.Equal(t, "3 page(s)", get("C16"))
}

func TestExcelWriter_WriteFile(t *testing.T) {
	dir := t.TempDir()
	w := NewExcelWriter(dir, zap.NewNop())
	request, items, attachments := sampleExport()

	path, err := w.WriteFile(request, items, attachments)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, path, "demande_req-1.xlsx")
}
