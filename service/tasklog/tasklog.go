// Package tasklog выбирает и открывает хранилище журнала задач по настройкам.
package tasklog

import (
	"context"
	"io"
	"log"

	"github.com/FausT-VX/tasklog-server/database"
	"github.com/FausT-VX/tasklog-server/gsheets"
	"github.com/FausT-VX/tasklog-server/service/processing"
	"github.com/FausT-VX/tasklog-server/settings"
	"github.com/FausT-VX/tasklog-server/storage"
)

// OpenStore создает хранилище по типу cfg.StorageType и инициализирует его.
// Неизвестный тип - storage.ErrInvalidConfiguration; тип database известен, но не реализован,
// для него возвращается storage.Unsupported, все операции которого завершаются ошибкой.
// Возвращаемый io.Closer освобождает ресурсы хранилища (для файловых хранилищ ничего не делает).
func OpenStore(ctx context.Context, cfg settings.Settings) (storage.Store, io.Closer, error) {
	kind, err := storage.ParseKind(cfg.StorageType)
	if err != nil {
		return nil, nil, err
	}
	locale := processing.LocaleFor(cfg.Locale)

	var (
		store  storage.Store
		closer io.Closer = nopCloser{}
	)
	switch kind {
	case storage.KindExcel:
		store = storage.NewExcelStore(cfg.ExcelPath(), locale)
	case storage.KindSQLite:
		db, err := database.Open(cfg.DBPath())
		if err != nil {
			return nil, nil, err
		}
		store, closer = db, db
	case storage.KindSheets:
		sh, err := gsheets.NewSheetsStore(ctx, gsheets.Config{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			SheetName:       cfg.Sheets.SheetName,
			CredentialsFile: cfg.Sheets.CredentialsFile,
		}, locale)
		if err != nil {
			return nil, nil, err
		}
		store = sh
	default:
		log.Printf("Storage type %q is not implemented yet", kind)
		return storage.Unsupported{Kind: kind}, closer, nil
	}

	if err := store.Initialize(ctx); err != nil {
		closer.Close()
		return nil, nil, err
	}
	return store, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
