// database/database.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"

	"github.com/FausT-VX/tasklog-server/models"
	"github.com/FausT-VX/tasklog-server/storage"
	"github.com/jmoiron/sqlx"
)

// DriverName - имя драйвера SQLite (modernc.org/sqlite, регистрируется в main и тестах)
const DriverName = "sqlite"

// TasksStore - журнал задач в таблице SQLite, используемой как лог только на добавление
type TasksStore struct {
	db   *sqlx.DB
	path string
}

func NewTasksStore(db *sqlx.DB, path string) TasksStore {
	return TasksStore{db: db, path: path}
}

// параметры для запросов
type params struct {
	Limit int `db:"limit"`
}

// строка таблицы tasklog; difficulty хранится как INTEGER, если это число, иначе как TEXT
type row struct {
	Date        string `db:"date"`
	Time        string `db:"time"`
	Weekday     string `db:"weekday"`
	PartOfDay   string `db:"part_of_day"`
	TaskType    string `db:"task_type"`
	Description string `db:"description"`
	Difficulty  any    `db:"difficulty"`
}

func newRow(rec models.Record) row {
	return row{
		Date:        rec.Date,
		Time:        rec.Time,
		Weekday:     rec.Weekday,
		PartOfDay:   rec.PartOfDay,
		TaskType:    rec.TaskType,
		Description: rec.SingleLineDescription(),
		Difficulty:  rec.DifficultyValue(),
	}
}

var info = log.New(os.Stdout, "tasklog-server INF: ", log.Ldate|log.Ltime)

// Создание таблицы tasklog; у колонки difficulty нет объявленного типа,
// чтобы число и текст сохранялись как есть
const queryCreate = `
	CREATE TABLE IF NOT EXISTS tasklog (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date VARCHAR(10) NOT NULL DEFAULT '',
		time VARCHAR(5) NOT NULL DEFAULT '',
		weekday VARCHAR(16) NOT NULL DEFAULT '',
		part_of_day VARCHAR(64) NOT NULL DEFAULT '',
		task_type VARCHAR(8) NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		difficulty NOT NULL DEFAULT 1
	);
	`

// CreateDB - создает базу данных по указанному пути dbPath
func CreateDB(dbPath string) error {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		log.Printf("func CreateDB. Error: %v", err)
		return err
	}
	defer db.Close()

	_, err = db.Exec(queryCreate)
	if err != nil {
		log.Printf("func CreateDB. Error creating table: %v", err)
		return err
	}

	return nil
}

// ConnectDB создает подключение к базе данных по указанному пути dbPath;
// если файла базы нет, то он создается вместе с таблицей
func ConnectDB(dbPath string) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	_, err := os.Stat(dbPath)
	install := errors.Is(err, fs.ErrNotExist)
	// при install после открытия БД нужно выполнить CREATE TABLE
	if install {
		if err := CreateDB(dbPath); err != nil {
			return nil, err
		}
		info.Println("Database has been successfully created")
	} else {
		info.Println("Database already exists")
	}

	db, err := sqlx.Connect(DriverName, dbPath)
	if err != nil {
		return nil, err
	}
	// SQLite не поддерживает параллельную запись из нескольких соединений
	db.SetMaxOpenConns(1)
	return db, nil
}

// Open подключается к базе по пути dbPath и возвращает хранилище
func Open(dbPath string) (TasksStore, error) {
	db, err := ConnectDB(dbPath)
	if err != nil {
		return TasksStore{}, &storage.StorageWriteError{Kind: storage.KindSQLite, Path: dbPath, Err: err}
	}
	return NewTasksStore(db, dbPath), nil
}

// Close закрывает соединение с базой
func (s TasksStore) Close() error {
	return s.db.Close()
}

// Initialize создает таблицу, если ее нет. Повторный вызов ничего не меняет.
func (s TasksStore) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, queryCreate); err != nil {
		log.Printf("func Initialize. Error creating table: %v", err)
		return &storage.StorageWriteError{Kind: storage.KindSQLite, Path: s.path, Err: err}
	}
	return nil
}

// InsertTask - добавление записи, возвращает id вставленной строки
func (s TasksStore) InsertTask(ctx context.Context, rec models.Record) (lastInsertId int64, err error) {
	r := newRow(rec)
	resultDB, err := s.db.NamedExecContext(ctx, `INSERT INTO tasklog (date, time, weekday, part_of_day, task_type, description, difficulty)
		VALUES (:date, :time, :weekday, :part_of_day, :task_type, :description, :difficulty)`, &r)
	if err != nil {
		return 0, err
	}
	// Получаем ID последней вставленной записи
	lastInsertId, err = resultDB.LastInsertId()
	if err != nil {
		return 0, err
	}
	return lastInsertId, nil
}

// Append добавляет запись в журнал
func (s TasksStore) Append(ctx context.Context, rec models.Record) error {
	if _, err := s.InsertTask(ctx, rec); err != nil {
		log.Printf("func Append. Error: %v", err)
		return &storage.StorageWriteError{Kind: storage.KindSQLite, Path: s.path, Err: err}
	}
	info.Printf("Task saved to database: %v", rec)
	return nil
}

// GetLastTasks - получение не более limit последних записей в порядке добавления
func (s TasksStore) GetLastTasks(ctx context.Context, limit int) ([]models.Record, error) {
	query := `SELECT date, time, weekday, part_of_day, task_type, description, CAST(difficulty AS TEXT) AS difficulty
		FROM tasklog ORDER BY id DESC LIMIT :limit`

	tasks := []models.Record{}
	rows, err := s.db.NamedQueryContext(ctx, query, params{Limit: limit})
	if err != nil {
		return []models.Record{}, err
	}
	defer rows.Close()
	for rows.Next() {
		task := models.Record{}
		if err = rows.StructScan(&task); err != nil {
			return []models.Record{}, err
		}
		if task.TaskType == "" {
			task.TaskType = models.DefaultTaskType
		}
		if task.Difficulty == "" {
			task.Difficulty = models.DefaultDifficulty
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		return []models.Record{}, err
	}

	// выбирали с конца, поэтому переворачиваем
	slices.Reverse(tasks)
	return tasks, nil
}

// ReadLast возвращает не более count последних записей; ошибки только логируются
func (s TasksStore) ReadLast(ctx context.Context, count int) ([]models.Record, error) {
	if count <= 0 {
		return []models.Record{}, nil
	}
	tasks, err := s.GetLastTasks(ctx, count)
	if err != nil {
		log.Printf("func ReadLast. Error: %v", err)
		return []models.Record{}, nil
	}
	return tasks, nil
}

// String нужен для логов
func (s TasksStore) String() string {
	return fmt.Sprintf("sqlite:%s", s.path)
}
