// Package storage описывает хранилище журнала задач и его файловый (xlsx) вариант.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/FausT-VX/tasklog-server/models"
)

// Kind - тип хранилища
type Kind string

const (
	KindExcel    Kind = "excel"
	KindSQLite   Kind = "sqlite"
	KindSheets   Kind = "sheets"
	KindDatabase Kind = "database" // зарезервирован под серверную БД, не реализован
)

var (
	ErrInvalidConfiguration   = errors.New("invalid storage configuration")
	ErrUnsupportedStorageKind = errors.New("storage kind is not implemented")
)

// Store - журнал задач, доступный только на добавление.
//
// Append сохраняет запись синхронно и возвращает *StorageWriteError, если хранилище
// не удалось открыть или сохранить. ReadLast возвращает не более count последних записей
// в порядке добавления; ошибки чтения только логируются, результатом будет пустой список.
type Store interface {
	Initialize(ctx context.Context) error
	Append(ctx context.Context, rec models.Record) error
	ReadLast(ctx context.Context, count int) ([]models.Record, error)
}

// StorageWriteError - ошибка открытия или сохранения хранилища при записи
type StorageWriteError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("%s storage: write to %s failed: %v", e.Kind, e.Path, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

var info = log.New(os.Stdout, "tasklog-server INF: ", log.Ldate|log.Ltime)

// ParseKind разбирает тип хранилища из настроек
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindExcel, KindSQLite, KindSheets, KindDatabase:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown storage type %q", ErrInvalidConfiguration, s)
}

// HasHeader проверяет, является ли строка заголовком: первая ячейка содержит
// подпись колонки даты без учета регистра
func HasHeader(row []string, dateLabel string) bool {
	if len(row) == 0 || dateLabel == "" {
		return false
	}
	return strings.Contains(strings.ToLower(row[0]), strings.ToLower(dateLabel))
}

// Tail выбирает из таблицы rows не более count последних записей.
// Строки просматриваются с конца до max(start, total-count+1), где start - первая строка данных
// после заголовка. Ширина таблицы - длина самой длинной строки: пустые ячейки в конце строки
// не возвращаются при чтении, поэтому строка дополняется до этой ширины. Если в таблице
// меньше семи колонок, записей в ней нет. Результат упорядочен от старых к новым.
func Tail(rows [][]string, count int, dateLabel string) []models.Record {
	records := []models.Record{}
	if count <= 0 || len(rows) == 0 {
		return records
	}

	start := 0
	if HasHeader(rows[0], dateLabel) {
		start = 1
	}
	total := len(rows) - 1
	if total < start {
		return records
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	for i := total; i >= max(start, total-count+1); i-- {
		row := rows[i]
		if len(row) < width {
			row = append(slices.Clip(row), make([]string, width-len(row))...)
		}
		if len(row) < models.NumFields {
			continue
		}
		records = append(records, models.FromRow(row))
		if len(records) >= count {
			break
		}
	}
	// читали с конца, поэтому переворачиваем
	slices.Reverse(records)
	return records
}

// Unsupported - хранилище известного, но не реализованного типа.
// Любая операция завершается ошибкой ErrUnsupportedStorageKind.
type Unsupported struct {
	Kind Kind
}

func (u Unsupported) err() error {
	return fmt.Errorf("%w: %q", ErrUnsupportedStorageKind, u.Kind)
}

func (u Unsupported) Initialize(context.Context) error { return u.err() }

func (u Unsupported) Append(context.Context, models.Record) error { return u.err() }

func (u Unsupported) ReadLast(context.Context, int) ([]models.Record, error) {
	return nil, u.err()
}
