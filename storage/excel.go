package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/FausT-VX/tasklog-server/models"
	"github.com/FausT-VX/tasklog-server/service/processing"
	"github.com/xuri/excelize/v2"
)

// максимальная ширина колонки при создании файла
const maxColWidth = 50

// ExcelStore - журнал задач в файле xlsx. Первая строка файла - заголовок,
// каждая следующая строка - одна запись. Файл открывается и закрывается на каждую операцию.
type ExcelStore struct {
	path   string
	locale processing.Locale
}

func NewExcelStore(path string, locale processing.Locale) *ExcelStore {
	return &ExcelStore{path: path, locale: locale}
}

// Path возвращает путь к файлу хранилища
func (s *ExcelStore) Path() string {
	return s.path
}

func (s *ExcelStore) writeErr(err error) error {
	return &StorageWriteError{Kind: KindExcel, Path: s.path, Err: err}
}

// Initialize создает каталог для файла и, если файла нет, создает его только со строкой заголовка
func (s *ExcelStore) Initialize(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return s.writeErr(err)
	}
	if fi, err := os.Stat(s.path); err == nil {
		if fi.IsDir() {
			return s.writeErr(fmt.Errorf("%s is a directory", s.path))
		}
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return s.writeErr(err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	headers := s.locale.Headers[:]
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return s.writeErr(err)
	}
	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return s.writeErr(err)
		}
		width := min(float64(utf8.RuneCountInString(h)+2), maxColWidth)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return s.writeErr(err)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return s.writeErr(err)
	}
	info.Printf("Created new spreadsheet: %s", s.path)
	return nil
}

// open открывает существующий файл или создает новую пустую книгу
func (s *ExcelStore) open() (*excelize.File, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), nil
	}
	return excelize.OpenFile(s.path)
}

// Append дописывает одну строку после последней заполненной и сохраняет файл
func (s *ExcelStore) Append(_ context.Context, rec models.Record) error {
	f, err := s.open()
	if err != nil {
		log.Printf("ExcelStore.Append: open %s: %v", s.path, err)
		return s.writeErr(err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return s.writeErr(err)
	}
	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return s.writeErr(err)
	}
	row := rec.Row()
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return s.writeErr(err)
	}

	if err := f.SaveAs(s.path); err != nil {
		log.Printf("ExcelStore.Append: save %s: %v", s.path, err)
		return s.writeErr(err)
	}
	info.Printf("Task saved to spreadsheet: %v", rec)
	return nil
}

// ReadLast возвращает не более count последних записей. Отсутствие файла
// и ошибки чтения не считаются ошибкой - возвращается пустой список.
func (s *ExcelStore) ReadLast(_ context.Context, count int) ([]models.Record, error) {
	if _, err := os.Stat(s.path); err != nil {
		info.Printf("Spreadsheet not found: %s", s.path)
		return []models.Record{}, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		log.Printf("ExcelStore.ReadLast: open %s: %v", s.path, err)
		return []models.Record{}, nil
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		log.Printf("ExcelStore.ReadLast: read %s: %v", s.path, err)
		return []models.Record{}, nil
	}
	return Tail(rows, count, s.locale.DateLabel()), nil
}
