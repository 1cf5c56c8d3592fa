package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/FausT-VX/tasklog-server/models"
	"github.com/FausT-VX/tasklog-server/service/processing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newExcelStore(t *testing.T) *ExcelStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "tasks.xlsx")
	s := NewExcelStore(path, processing.Russian)
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	require.NoError(t, err)
	return rows
}

func record(date, clock, desc, difficulty string) models.Record {
	return models.Record{
		Date:        date,
		Time:        clock,
		Weekday:     processing.Weekday(date, processing.Russian),
		PartOfDay:   processing.PartOfDayFromTime(clock, processing.Russian),
		TaskType:    models.DefaultTaskType,
		Description: desc,
		Difficulty:  difficulty,
	}
}

func TestExcelInitializeCreatesHeaderOnly(t *testing.T) {
	s := newExcelStore(t)

	rows := readRows(t, s.Path())
	require.Len(t, rows, 1)
	assert.Equal(t, processing.Russian.Headers[:], rows[0])

	got, err := s.ReadLast(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	// повторная инициализация не трогает файл
	require.NoError(t, s.Append(context.Background(), record("01.01.2024", "09:00", "desc1", "1")))
	require.NoError(t, s.Initialize(context.Background()))
	assert.Len(t, readRows(t, s.Path()), 2)
}

func TestExcelAppendReadLast(t *testing.T) {
	ctx := context.Background()
	s := newExcelStore(t)

	a := record("01.01.2024", "09:00", "desc1", "1")
	b := record("01.01.2024", "10:00", "desc2", "2")
	require.NoError(t, s.Append(ctx, a))
	require.NoError(t, s.Append(ctx, b))

	got, err := s.ReadLast(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []models.Record{b}, got)

	got, err = s.ReadLast(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []models.Record{a, b}, got)
}

func TestExcelReadLastOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s := newExcelStore(t)

	descs := []string{"one", "two", "three", "four"}
	for _, d := range descs {
		require.NoError(t, s.Append(ctx, record("02.01.2024", "12:00", d, "1")))
	}

	got, err := s.ReadLast(ctx, len(descs))
	require.NoError(t, err)
	require.Len(t, got, len(descs))
	for i, d := range descs {
		assert.Equal(t, d, got[i].Description)
	}

	got, err = s.ReadLast(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "three", got[0].Description)
	assert.Equal(t, "four", got[1].Description)
}

func TestExcelAppendFlattensDescription(t *testing.T) {
	ctx := context.Background()
	s := newExcelStore(t)

	require.NoError(t, s.Append(ctx, record("01.01.2024", "18:30", "first\nsecond\rthird", "1")))

	got, err := s.ReadLast(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "first second third", got[0].Description)
	assert.Equal(t, "После работы", got[0].PartOfDay)
	assert.Equal(t, "пн", got[0].Weekday)
}

func TestExcelDifficultyTypes(t *testing.T) {
	ctx := context.Background()
	s := newExcelStore(t)

	require.NoError(t, s.Append(ctx, record("01.01.2024", "09:00", "numeric", "3")))
	require.NoError(t, s.Append(ctx, record("01.01.2024", "09:00", "text", "high")))

	f, err := excelize.OpenFile(s.Path())
	require.NoError(t, err)
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	numType, err := f.GetCellType(sheet, "G2")
	require.NoError(t, err)
	textType, err := f.GetCellType(sheet, "G3")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.NotContains(t, []excelize.CellType{excelize.CellTypeSharedString, excelize.CellTypeInlineString}, numType)
	assert.Contains(t, []excelize.CellType{excelize.CellTypeSharedString, excelize.CellTypeInlineString}, textType)

	got, err := s.ReadLast(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].Difficulty)
	assert.Equal(t, "high", got[1].Difficulty)
}

func TestExcelReadLastMissingFile(t *testing.T) {
	s := NewExcelStore(filepath.Join(t.TempDir(), "missing.xlsx"), processing.Russian)

	got, err := s.ReadLast(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExcelReadLastCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a spreadsheet"), 0o644))
	s := NewExcelStore(path, processing.Russian)

	got, err := s.ReadLast(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestExcelAppendWithoutInitialize(t *testing.T) {
	ctx := context.Background()
	s := NewExcelStore(filepath.Join(t.TempDir(), "fresh.xlsx"), processing.Russian)

	require.NoError(t, s.Append(ctx, record("01.01.2024", "09:00", "desc1", "1")))
	rows := readRows(t, s.Path())
	require.Len(t, rows, 1)

	got, err := s.ReadLast(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "desc1", got[0].Description)
}

func TestExcelAppendWriteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.xlsx")
	// каталог на месте файла: книгу невозможно ни открыть, ни сохранить
	require.NoError(t, os.Mkdir(path, 0o755))
	s := NewExcelStore(path, processing.Russian)

	err := s.Append(context.Background(), record("01.01.2024", "09:00", "desc1", "1"))
	var swe *StorageWriteError
	require.ErrorAs(t, err, &swe)
	assert.Equal(t, KindExcel, swe.Kind)
	assert.Equal(t, path, swe.Path)
}

func TestExcelInitializeDirectoryAtPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.xlsx")
	require.NoError(t, os.Mkdir(path, 0o755))
	s := NewExcelStore(path, processing.Russian)

	err := s.Initialize(context.Background())
	var swe *StorageWriteError
	require.ErrorAs(t, err, &swe)
	assert.Equal(t, path, swe.Path)
}

func TestExcelEmptyTrailingFieldsReadBackAsDefaults(t *testing.T) {
	ctx := context.Background()
	s := newExcelStore(t)

	rec := record("01.01.2024", "09:00", "kept", "")
	rec.TaskType = ""
	require.NoError(t, s.Append(ctx, rec))

	got, err := s.ReadLast(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0].Description)
	assert.Equal(t, models.DefaultDifficulty, got[0].Difficulty)
	assert.Equal(t, models.DefaultTaskType, got[0].TaskType)
}

func TestExcelReadLastTruncatedRow(t *testing.T) {
	ctx := context.Background()
	s := newExcelStore(t)
	require.NoError(t, s.Append(ctx, record("01.01.2024", "09:00", "full", "2")))

	f, err := excelize.OpenFile(s.Path())
	require.NoError(t, err)
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"02.01.2024", "10:00", "вт"}))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	got, err := s.ReadLast(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "full", got[0].Description)
	assert.Equal(t, "02.01.2024", got[1].Date)
	assert.Equal(t, models.DefaultDifficulty, got[1].Difficulty)
}

func TestExcelReadLastNarrowSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "narrow.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Дата", "Время", "День недели"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"02.01.2024", "10:00", "вт"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := NewExcelStore(path, processing.Russian).ReadLast(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}
