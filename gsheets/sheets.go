// Package gsheets хранит журнал задач в таблице Google Sheets.
// Лист используется так же, как файл xlsx: строка 1 - заголовок, далее по строке на запись.
package gsheets

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/FausT-VX/tasklog-server/models"
	"github.com/FausT-VX/tasklog-server/service/processing"
	"github.com/FausT-VX/tasklog-server/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	headerRange = "A1:G1"
	dataRange   = "A:G"
)

// Config - параметры подключения к таблице
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string // JSON ключ сервисного аккаунта
}

// SheetsStore - журнал задач в листе Google Sheets
type SheetsStore struct {
	srv    *sheets.Service
	cfg    Config
	locale processing.Locale
}

// NewSheetsStore создает клиент Sheets API. Если opts не переданы,
// учетные данные читаются из cfg.CredentialsFile.
func NewSheetsStore(ctx context.Context, cfg Config, locale processing.Locale, opts ...option.ClientOption) (*SheetsStore, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id is not set", storage.ErrInvalidConfiguration)
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}

	if len(opts) == 0 {
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("%w: unable to read credentials: %v", storage.ErrInvalidConfiguration, err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("%w: unable to parse credentials: %v", storage.ErrInvalidConfiguration, err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Sheets client: %w", err)
	}
	return &SheetsStore{srv: srv, cfg: cfg, locale: locale}, nil
}

// a1 возвращает диапазон в нотации A1 с экранированным именем листа
func (s *SheetsStore) a1(cells string) string {
	return "'" + strings.ReplaceAll(s.cfg.SheetName, "'", "''") + "'!" + cells
}

func (s *SheetsStore) writeErr(err error) error {
	return &storage.StorageWriteError{Kind: storage.KindSheets, Path: s.cfg.SpreadsheetID, Err: err}
}

// Initialize записывает строку заголовка, если лист пуст
func (s *SheetsStore) Initialize(ctx context.Context) error {
	resp, err := s.srv.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, s.a1(headerRange)).Context(ctx).Do()
	if err != nil {
		return s.writeErr(err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	header := make([]interface{}, 0, len(s.locale.Headers))
	for _, h := range s.locale.Headers {
		header = append(header, h)
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{header}}
	if _, err := s.srv.Spreadsheets.Values.Update(s.cfg.SpreadsheetID, s.a1(headerRange), vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return s.writeErr(err)
	}
	log.Printf("Created header in spreadsheet %s", s.cfg.SpreadsheetID)
	return nil
}

// Append добавляет строку после последней заполненной
func (s *SheetsStore) Append(ctx context.Context, rec models.Record) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{rec.Row()}}
	_, err := s.srv.Spreadsheets.Values.Append(s.cfg.SpreadsheetID, s.a1(dataRange), vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		log.Printf("SheetsStore.Append: %v", err)
		return s.writeErr(err)
	}
	return nil
}

// ReadLast читает лист целиком и выбирает не более count последних записей.
// Ошибки API только логируются.
func (s *SheetsStore) ReadLast(ctx context.Context, count int) ([]models.Record, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, s.a1(dataRange)).Context(ctx).Do()
	if err != nil {
		log.Printf("SheetsStore.ReadLast: %v", err)
		return []models.Record{}, nil
	}

	rows := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		rows[i] = make([]string, len(values))
		for j, v := range values {
			rows[i][j] = fmt.Sprint(v)
		}
	}
	return storage.Tail(rows, count, s.locale.DateLabel()), nil
}
