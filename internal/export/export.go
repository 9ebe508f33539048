// Package export renders report rows as spreadsheet files
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/salao-caixa/caixa-backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Format is a supported export file format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat returns the format for a query value. Empty means xlsx.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case "", FormatXLSX:
		return FormatXLSX, true
	case FormatCSV:
		return FormatCSV, true
	}
	return "", false
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename builds the download name, e.g. relatorio_2026-03-10.xlsx
func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("relatorio_%s.%s", now.Format("2006-01-02"), f)
}

const (
	sheetName      = "Dados"
	currencyFormat = `"R$" #,##0.00`
)

var headers = []string{"Tipo", "Categoria", "Serviço", "Valor", "Descrição", "Forma de pagamento", "Data", "Horário"}

var kindLabels = map[domain.MovementKind]string{
	domain.MovementKindEntry: "Entrada",
	domain.MovementKindExit:  "Saída",
}

var paymentLabels = map[domain.PaymentMethod]string{
	domain.PaymentMethodCash:   "Dinheiro",
	domain.PaymentMethodCard:   "Cartão",
	domain.PaymentMethodPIX:    "PIX",
	domain.PaymentMethodDebit:  "Débito",
	domain.PaymentMethodCredit: "Crédito",
}

// KindLabel returns the display label of a movement kind
func KindLabel(k domain.MovementKind) string {
	if label, ok := kindLabels[k]; ok {
		return label
	}
	return string(k)
}

// PaymentLabel returns the display label of a payment method
func PaymentLabel(p domain.PaymentMethod) string {
	if label, ok := paymentLabels[p]; ok {
		return label
	}
	return string(p)
}

// record is one row as text. Date and time are rendered in loc.
func record(row *domain.ReportRow, loc *time.Location) []string {
	ts := row.Timestamp.In(loc)
	serviceName := ""
	if row.ServiceName != nil {
		serviceName = *row.ServiceName
	}
	return []string{
		KindLabel(row.Kind),
		row.Category,
		serviceName,
		row.Amount.StringFixed(2),
		row.Description,
		PaymentLabel(row.PaymentMethod),
		ts.Format("02/01/2006"),
		ts.Format("15:04"),
	}
}

// Write renders rows in the given format
func Write(w io.Writer, f Format, rows []*domain.ReportRow, loc *time.Location) error {
	if f == FormatCSV {
		return WriteCSV(w, rows, loc)
	}
	return WriteXLSX(w, rows, loc)
}

// WriteCSV renders rows as CSV with a UTF-8 BOM so spreadsheet apps keep the accents
func WriteCSV(w io.Writer, rows []*domain.ReportRow, loc *time.Location) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(record(row, loc)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX renders rows as a single-sheet workbook with the amount column
// stored as a number in BRL currency format
func WriteXLSX(w io.Writer, rows []*domain.ReportRow, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for idx, row := range rows {
		values := record(row, loc)
		line := idx + 2
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, line)
			if err != nil {
				return err
			}
			var value interface{} = v
			if i == 3 {
				value = row.Amount.InexactFloat64()
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}

	if len(rows) > 0 {
		numFmt := currencyFormat
		style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, "D2", fmt.Sprintf("D%d", len(rows)+1), style); err != nil {
			return err
		}
	}

	widths := map[string]float64{"A": 10, "B": 25, "C": 25, "D": 12, "E": 35, "F": 18, "G": 12, "H": 10}
	for col, width := range widths {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}

	return f.Write(w)
}
