package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Настройки по умолчанию
const (
	Port         = ":5000"        // Порт сервера
	WebDir       = "./web"        // Директория для web файлов
	DataDir      = "./data"       // Директория для файлов хранилища
	ExcelFile    = "Фотодня.xlsx" // Файл Excel для хранения записей
	DBFile       = "tasklog.db"   // Файл БД для хранилища sqlite
	StorageType  = "excel"        // Тип хранилища: excel, sqlite, sheets или database
	Locale       = "ru"
	SheetName    = "Sheet1"
	EnvProduct   = "production"
	EnvDevelop   = "development"
	JwtSecretKey = "you-will-never-guess-this-secret-key-change-it"
)

// Лимиты на количество возвращаемых записей
const (
	Limit50          int = 50 // максимальное количество отображаемых последних задач
	DefaultLastTasks int = 5
)

// Переменные окружения
const (
	EnvConfig      = "TASKLOG_CONFIG"
	EnvPort        = "TASKLOG_PORT"
	EnvWebDir      = "TASKLOG_WEB_DIR"
	EnvDataDir     = "TASKLOG_DATA_DIR"
	EnvExcelFile   = "TASKLOG_FILE"
	EnvDBFile      = "TASKLOG_DBFILE"
	EnvStorage     = "TASKLOG_STORAGE"
	EnvMaxLast     = "TASKLOG_MAX_LAST"
	EnvLocale      = "TASKLOG_LOCALE"
	EnvDebug       = "TASKLOG_DEBUG"
	EnvMode        = "TASKLOG_ENV"
	EnvPassword    = "TASKLOG_PASSWORD"
	EnvSecret      = "TASKLOG_SECRET"
	EnvSheetID     = "TASKLOG_SHEET_ID"
	EnvSheetName   = "TASKLOG_SHEET_NAME"
	EnvCredentials = "TASKLOG_CREDENTIALS"
	EnvPDFFont     = "TASKLOG_PDF_FONT"
)

var ErrInvalidSettings = errors.New("invalid settings")

// SheetsSettings - параметры хранилища Google Sheets
type SheetsSettings struct {
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	SheetName       string `yaml:"sheet_name"`
	CredentialsFile string `yaml:"credentials_file"`
}

// Settings - настройки приложения.
// Приоритет: переменные окружения > файл TASKLOG_CONFIG > значения по умолчанию.
type Settings struct {
	Port         string         `yaml:"port"`
	WebDir       string         `yaml:"web_dir"`
	DataDir      string         `yaml:"data_dir"`
	ExcelFile    string         `yaml:"excel_file"`
	DBFile       string         `yaml:"db_file"`
	StorageType  string         `yaml:"storage_type"`
	MaxLastTasks int            `yaml:"max_last_tasks"`
	Locale       string         `yaml:"locale"`
	Env          string         `yaml:"env"`
	Debug        *bool          `yaml:"debug"`
	Password     string         `yaml:"password"`
	SecretKey    string         `yaml:"secret_key"`
	Sheets       SheetsSettings `yaml:"sheets"`
	PDFFont      string         `yaml:"pdf_font"` // TTF шрифт для выгрузки в PDF
}

// Default возвращает настройки по умолчанию
func Default() Settings {
	return Settings{
		Port:         Port,
		WebDir:       WebDir,
		DataDir:      DataDir,
		ExcelFile:    ExcelFile,
		DBFile:       DBFile,
		StorageType:  StorageType,
		MaxLastTasks: Limit50,
		Locale:       Locale,
		Env:          EnvDevelop,
		SecretKey:    JwtSecretKey,
		Sheets:       SheetsSettings{SheetName: SheetName},
	}
}

// Load загружает настройки
func Load() (Settings, error) {
	s := Default()

	if path := os.Getenv(EnvConfig); path != "" {
		if err := s.loadFile(path); err != nil {
			return Settings{}, err
		}
	}
	if err := s.loadEnv(); err != nil {
		return Settings{}, err
	}

	s.Port = normalizePort(s.Port)
	if s.MaxLastTasks <= 0 {
		return Settings{}, fmt.Errorf("%w: max last tasks must be positive, got %d", ErrInvalidSettings, s.MaxLastTasks)
	}
	return s, nil
}

// loadFile поверх текущих значений накладывает заданные в YAML файле
func (s *Settings) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalidSettings, path, err)
	}
	return nil
}

func (s *Settings) loadEnv() error {
	setString := func(dst *string, env string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	setString(&s.Port, EnvPort)
	setString(&s.WebDir, EnvWebDir)
	setString(&s.DataDir, EnvDataDir)
	setString(&s.ExcelFile, EnvExcelFile)
	setString(&s.DBFile, EnvDBFile)
	setString(&s.StorageType, EnvStorage)
	setString(&s.Locale, EnvLocale)
	setString(&s.Env, EnvMode)
	setString(&s.Password, EnvPassword)
	setString(&s.SecretKey, EnvSecret)
	setString(&s.Sheets.SpreadsheetID, EnvSheetID)
	setString(&s.Sheets.SheetName, EnvSheetName)
	setString(&s.Sheets.CredentialsFile, EnvCredentials)
	setString(&s.PDFFont, EnvPDFFont)

	if v := os.Getenv(EnvMaxLast); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidSettings, EnvMaxLast, err)
		}
		s.MaxLastTasks = n
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug := parseBool(v)
		s.Debug = &debug
	}
	return nil
}

// IsDebug - режим отладки: задается явно либо включен везде, кроме production
func (s Settings) IsDebug() bool {
	if s.Debug != nil {
		return *s.Debug
	}
	return s.Env != EnvProduct
}

// ExcelPath - полный путь к файлу Excel
func (s Settings) ExcelPath() string {
	return filepath.Join(s.DataDir, s.ExcelFile)
}

// DBPath - полный путь к файлу БД; абсолютный TASKLOG_DBFILE используется как есть
func (s Settings) DBPath() string {
	if filepath.IsAbs(s.DBFile) {
		return s.DBFile
	}
	return filepath.Join(s.DataDir, s.DBFile)
}

func normalizePort(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return Port
	}
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "t", "yes", "on":
		return true
	}
	return false
}
