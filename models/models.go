// models/models.go
package models

import (
	"errors"
	"strconv"
	"strings"
)

// Значения по умолчанию для полей записи
const (
	DefaultTaskType   = "Р" // маркер вида задачи "Р" (рабочая)
	DefaultDifficulty = "1"
)

// Ключи полей записи, общие для JSON, map и порядка колонок хранилища
const (
	KeyDate        = "date"
	KeyTime        = "time"
	KeyWeekday     = "weekday"
	KeyPartOfDay   = "part_of_day"
	KeyTaskType    = "task_type"
	KeyDescription = "description"
	KeyDifficulty  = "difficulty"
)

// Keys - порядок полей записи, совпадает с порядком колонок в хранилище
var Keys = []string{KeyDate, KeyTime, KeyWeekday, KeyPartOfDay, KeyTaskType, KeyDescription, KeyDifficulty}

// NumFields - количество полей записи (и колонок в строке хранилища)
const NumFields = 7

var ErrEmptyDescription = errors.New("task description is empty")

// Record - одна запись журнала задач
type Record struct {
	Date        string `json:"date"        db:"date"`
	Time        string `json:"time"        db:"time"`
	Weekday     string `json:"weekday"     db:"weekday"`
	PartOfDay   string `json:"part_of_day" db:"part_of_day"`
	TaskType    string `json:"task_type"   db:"task_type"`
	Description string `json:"description" db:"description"`
	Difficulty  string `json:"difficulty"  db:"difficulty"`
}

// FromMap создает запись из map с подстановкой значений по умолчанию:
// task_type - маркер DefaultTaskType, difficulty - "1", остальные поля - пустая строка
func FromMap(data map[string]string) Record {
	r := Record{
		Date:        data[KeyDate],
		Time:        data[KeyTime],
		Weekday:     data[KeyWeekday],
		PartOfDay:   data[KeyPartOfDay],
		TaskType:    DefaultTaskType,
		Description: data[KeyDescription],
		Difficulty:  DefaultDifficulty,
	}
	if v, ok := data[KeyTaskType]; ok {
		r.TaskType = v
	}
	if v, ok := data[KeyDifficulty]; ok {
		r.Difficulty = v
	}
	return r
}

// FromRow создает запись из строки хранилища в фиксированном порядке колонок.
// Пустые ячейки task_type и difficulty заменяются значениями по умолчанию.
func FromRow(row []string) Record {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	r := Record{
		Date:        cell(0),
		Time:        cell(1),
		Weekday:     cell(2),
		PartOfDay:   cell(3),
		TaskType:    cell(4),
		Description: cell(5),
		Difficulty:  cell(6),
	}
	if r.TaskType == "" {
		r.TaskType = DefaultTaskType
	}
	if r.Difficulty == "" {
		r.Difficulty = DefaultDifficulty
	}
	return r
}

// ToMap преобразует запись в map из семи полей
func (r Record) ToMap() map[string]string {
	return map[string]string{
		KeyDate:        r.Date,
		KeyTime:        r.Time,
		KeyWeekday:     r.Weekday,
		KeyPartOfDay:   r.PartOfDay,
		KeyTaskType:    r.TaskType,
		KeyDescription: r.Description,
		KeyDifficulty:  r.Difficulty,
	}
}

// Validate проверяет, что описание задачи не пустое после обрезки пробелов
func (r Record) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// SingleLineDescription возвращает описание, в котором переносы строк заменены пробелами
func (r Record) SingleLineDescription() string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(r.Description)
}

// DifficultyValue возвращает сложность числом, если она является целым числом, иначе строкой
func (r Record) DifficultyValue() any {
	if n, err := strconv.Atoi(strings.TrimSpace(r.Difficulty)); err == nil {
		return n
	}
	return r.Difficulty
}

// Row возвращает значения колонок строки хранилища в фиксированном порядке
func (r Record) Row() []any {
	return []any{
		r.Date,
		r.Time,
		r.Weekday,
		r.PartOfDay,
		r.TaskType,
		r.SingleLineDescription(),
		r.DifficultyValue(),
	}
}

func (r Record) String() string {
	desc := []rune(r.Description)
	if len(desc) > 20 {
		desc = desc[:20]
	}
	return "<Record date='" + r.Date + "' task_type='" + r.TaskType + "' description='" + string(desc) + "...'>"
}
