package codec

import (
	"fmt"
	"time"

	"github.com/dvloznov/hikmacash/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	infoSheet         = "Info"
	transactionsSheet = "Transactions"

	// localeDate mirrors the en-US short date the web client shows.
	localeDate = "1/2/2006"

	clientPlaceholder = "-"
)

var transactionHeader = []interface{}{"Date", "Type", "Category", "Client", "Description", "Amount"}

// Column widths are presentation hints only, in header order.
var transactionColumnWidths = []float64{12, 10, 20, 20, 40, 12}

// EncodeExcel builds an xlsx workbook. An Info sheet is added in front of the
// Transactions sheet when the snapshot carries an enterprise name.
func EncodeExcel(snap domain.Snapshot, exportedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	first := f.GetSheetName(0)
	if snap.EnterpriseName != "" {
		if err := f.SetSheetName(first, infoSheet); err != nil {
			return nil, fmt.Errorf("EncodeExcel: rename sheet: %w", err)
		}
		if err := writeInfoSheet(f, snap.EnterpriseName, exportedAt); err != nil {
			return nil, err
		}
		if _, err := f.NewSheet(transactionsSheet); err != nil {
			return nil, fmt.Errorf("EncodeExcel: add sheet: %w", err)
		}
	} else if err := f.SetSheetName(first, transactionsSheet); err != nil {
		return nil, fmt.Errorf("EncodeExcel: rename sheet: %w", err)
	}

	if err := writeTransactionsSheet(f, snap.Transactions); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("EncodeExcel: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeInfoSheet(f *excelize.File, enterpriseName string, exportedAt time.Time) error {
	rows := [][]interface{}{
		{"Enterprise", enterpriseName},
		{"Export date", exportedAt.Format(localeDate)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("writeInfoSheet: %w", err)
		}
		if err := f.SetSheetRow(infoSheet, cell, &row); err != nil {
			return fmt.Errorf("writeInfoSheet: row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(infoSheet, "A", "B", 25); err != nil {
		return fmt.Errorf("writeInfoSheet: column width: %w", err)
	}
	return nil
}

func writeTransactionsSheet(f *excelize.File, txs []domain.Transaction) error {
	header := transactionHeader
	if err := f.SetSheetRow(transactionsSheet, "A1", &header); err != nil {
		return fmt.Errorf("writeTransactionsSheet: header: %w", err)
	}

	for i, tx := range txs {
		client := tx.ClientName()
		if client == "" {
			client = clientPlaceholder
		}
		row := []interface{}{
			tx.Date.In(time.UTC).Format(localeDate),
			string(tx.Type),
			tx.Category,
			client,
			tx.Description,
			tx.Amount.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("writeTransactionsSheet: %w", err)
		}
		if err := f.SetSheetRow(transactionsSheet, cell, &row); err != nil {
			return fmt.Errorf("writeTransactionsSheet: row %d: %w", i+2, err)
		}
	}

	for i, width := range transactionColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("writeTransactionsSheet: %w", err)
		}
		if err := f.SetColWidth(transactionsSheet, col, col, width); err != nil {
			return fmt.Errorf("writeTransactionsSheet: column %s width: %w", col, err)
		}
	}
	return nil
}
