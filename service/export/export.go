// Package export выгружает последние записи журнала в JSON, CSV или PDF.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/FausT-VX/tasklog-server/models"
	"github.com/FausT-VX/tasklog-server/service/processing"
	"github.com/FausT-VX/tasklog-server/storage"
	"github.com/jung-kurt/gofpdf"
)

// Форматы выгрузки
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// ContentType возвращает MIME тип для формата выгрузки
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/json"
}

// шрифты с кириллицей, которые ищутся, если шрифт для PDF не задан в настройках
var systemFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	"C:\\Windows\\Fonts\\arial.ttf",
}

type Exporter struct {
	st     storage.Store
	locale processing.Locale
	font   string // TTF шрифт для PDF; пусто - встроенный Arial (только cp1252)
}

// NewExporter создает выгрузку поверх хранилища st. fontPath - TTF шрифт для PDF;
// если он не задан или не найден, используется первый найденный из systemFonts.
func NewExporter(st storage.Store, locale processing.Locale, fontPath string) *Exporter {
	return &Exporter{st: st, locale: locale, font: findFont(fontPath)}
}

func findFont(fontPath string) string {
	if fontPath != "" {
		if fi, err := os.Stat(fontPath); err == nil && !fi.IsDir() {
			return fontPath
		}
		log.Printf("PDF font %s not found", fontPath)
	}
	for _, p := range systemFonts {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	log.Println("No unicode font for PDF, non-Latin characters will be replaced")
	return ""
}

// Export читает не более count последних записей и выгружает их в формате format
func (e *Exporter) Export(ctx context.Context, format string, count int) ([]byte, error) {
	records, err := e.st.ReadLast(ctx, count)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		return json.MarshalIndent(records, "", "  ")
	case FormatCSV:
		return e.csv(records)
	case FormatPDF:
		return e.pdf(records)
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}

func (e *Exporter) csv(records []models.Record) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write(e.locale.Headers[:])
	for _, r := range records {
		_ = w.Write([]string{r.Date, r.Time, r.Weekday, r.PartOfDay, r.TaskType, r.Description, r.Difficulty})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func (e *Exporter) pdf(records []models.Record) ([]byte, error) {
	var pdf *gofpdf.Fpdf
	family := "Arial"
	tr := func(s string) string { return s }
	if e.font != "" {
		pdf = gofpdf.New("P", "mm", "A4", filepath.Dir(e.font))
		family = "Unicode"
		pdf.AddUTF8Font(family, "", filepath.Base(e.font))
	} else {
		pdf = gofpdf.New("P", "mm", "A4", "")
		// встроенные шрифты поддерживают только cp1252, остальные символы заменяются
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AddPage()
	pdf.SetFont(family, "", 14)
	pdf.Cell(40, 10, "Task log")
	pdf.Ln(12)
	pdf.SetFont(family, "", 10)
	for _, r := range records {
		line := fmt.Sprintf("%s %s [%s] %s (%s)", r.Date, r.Time, r.TaskType, r.Description, r.Difficulty)
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}
	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
