// handlers/handlers.go
package handlers

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/FausT-VX/tasklog-server/models"
	"github.com/FausT-VX/tasklog-server/service/export"
	"github.com/FausT-VX/tasklog-server/service/processing"
	"github.com/FausT-VX/tasklog-server/settings"
	"github.com/FausT-VX/tasklog-server/storage"
	"github.com/golang-jwt/jwt"
	"github.com/sahilm/fuzzy"
)

// Статусы ответа API
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response - конверт ответа API
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
}

// Handler - обработчики API журнала задач
type Handler struct {
	store    storage.Store
	exporter *export.Exporter
	locale   processing.Locale
	maxLast  int
	password string
	secret   []byte
}

// New создает обработчики поверх хранилища store
func New(store storage.Store, cfg settings.Settings) *Handler {
	locale := processing.LocaleFor(cfg.Locale)
	maxLast := cfg.MaxLastTasks
	if maxLast <= 0 {
		maxLast = settings.Limit50
	}
	return &Handler{
		store:    store,
		exporter: export.NewExporter(store, locale, cfg.PDFFont),
		locale:   locale,
		maxLast:  maxLast,
		password: cfg.Password,
		secret:   []byte(cfg.SecretKey),
	}
}

// count возвращает параметр count из запроса, ограниченный сверху maxLast;
// некорректное или отсутствующее значение заменяется на settings.DefaultLastTasks
func (h *Handler) count(r *http.Request) int {
	count := settings.DefaultLastTasks
	if c := strings.TrimSpace(r.URL.Query().Get("count")); c != "" {
		if n, err := strconv.Atoi(c); err == nil {
			count = n
		}
	}
	return min(count, h.maxLast)
}

// GetTasks обработчик возвращает последние count записей журнала;
// при наличии параметра search оставляет только записи, описание которых нечетко совпадает с search
func (h *Handler) GetTasks(w http.ResponseWriter, r *http.Request) {
	count := h.count(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))

	tasks, err := h.store.ReadLast(r.Context(), count)
	if err != nil {
		log.Printf("Handler GetTasks: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if search != "" {
		tasks = filterTasks(tasks, search)
	}
	log.Printf("Handler GetTasks: count = %v; search = %q; found = %v\n", count, search, len(tasks))

	writeJSON(w, http.StatusOK, Response{Status: StatusSuccess, Data: tasks})
}

// descriptions - источник строк для нечеткого поиска по описаниям задач
type descriptions []models.Record

func (d descriptions) String(i int) string { return d[i].Description }

func (d descriptions) Len() int { return len(d) }

// filterTasks оставляет записи, подходящие под search, сохраняя порядок добавления
func filterTasks(tasks []models.Record, search string) []models.Record {
	matches := fuzzy.FindFrom(search, descriptions(tasks))
	idx := make([]int, 0, len(matches))
	for _, m := range matches {
		idx = append(idx, m.Index)
	}
	slices.Sort(idx)

	found := make([]models.Record, 0, len(idx))
	for _, i := range idx {
		found = append(found, tasks[i])
	}
	return found
}

// decodeRecord читает запись из тела запроса. Значения полей могут быть строками или числами,
// отсутствующие поля получают значения по умолчанию.
func decodeRecord(r *http.Request) (models.Record, error) {
	var raw map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return models.Record{}, err
	}
	if len(raw) == 0 {
		return models.Record{}, errors.New("empty request payload")
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
		case string:
			fields[k] = v
		case json.Number:
			fields[k] = v.String()
		case bool:
			fields[k] = strconv.FormatBool(v)
		default:
			return models.Record{}, fmt.Errorf("field %q has unsupported type", k)
		}
	}
	return models.FromMap(fields), nil
}

// PostTask обработчик добавляет задачу в журнал. День недели и часть дня,
// если они не переданы, вычисляются по дате и времени.
func (h *Handler) PostTask(w http.ResponseWriter, r *http.Request) {
	task, err := decodeRecord(r)
	if err != nil {
		log.Printf("Handler PostTask: %v", err)
		writeError(w, http.StatusBadRequest, errors.New("invalid request payload"))
		return
	}

	task.Description = strings.TrimSpace(task.Description)
	if err := task.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		log.Println(err)
		return
	}
	if task.Weekday == "" && task.Date != "" {
		task.Weekday = processing.Weekday(task.Date, h.locale)
	}
	if task.PartOfDay == "" {
		task.PartOfDay = processing.PartOfDayFromTime(task.Time, h.locale)
	}
	log.Printf("Handler PostTask: task = %v\n", task)

	if err := h.store.Append(r.Context(), task); err != nil {
		log.Printf("Handler PostTask: %v", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}

	writeJSON(w, http.StatusCreated, Response{Status: StatusSuccess, Message: "task saved"})
}

// SaveAll обработчик подтверждает сохранение: записи попадают в хранилище сразу при добавлении
func (h *Handler) SaveAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{Status: StatusSuccess, Message: "all tasks saved"})
}

// ExportTasks обработчик выгружает последние count записей в формате format (json, csv, pdf)
func (h *Handler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatJSON
	}
	if !slices.Contains([]string{export.FormatJSON, export.FormatCSV, export.FormatPDF}, format) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format %s", format))
		return
	}

	b, err := h.exporter.Export(r.Context(), format, h.count(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tasklog.%s"`, format))
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// WeekdayHandler возвращает сокращение дня недели для даты dd.mm.yyyy
func (h *Handler) WeekdayHandler(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if strings.TrimSpace(date) == "" {
		writeError(w, http.StatusBadRequest, errors.New("date not specified"))
		return
	}
	writeJSON(w, http.StatusOK, Response{Status: StatusSuccess, Data: processing.Weekday(date, h.locale)})
}

// PartOfDayHandler возвращает часть дня по параметру time (HH:MM) или hour
func (h *Handler) PartOfDayHandler(w http.ResponseWriter, r *http.Request) {
	var part string
	if hour := r.URL.Query().Get("hour"); hour != "" {
		n, err := strconv.Atoi(hour)
		if err != nil || n < 0 || n > 23 {
			writeError(w, http.StatusBadRequest, errors.New("hour must be between 0 and 23"))
			return
		}
		part = processing.PartOfDay(n, h.locale)
	} else {
		part = processing.PartOfDayFromTime(r.URL.Query().Get("time"), h.locale)
	}
	if part == "" {
		writeError(w, http.StatusBadRequest, errors.New("time not specified"))
		return
	}
	writeJSON(w, http.StatusOK, Response{Status: StatusSuccess, Data: part})
}

type Credentials struct {
	Password string `json:"password"`
}

// AuthHandler обработчик аутентификации пользователя по паролю
func (h *Handler) AuthHandler(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	err := json.NewDecoder(r.Body).Decode(&creds)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request payload"))
		return
	}

	if h.password == "" || creds.Password != h.password {
		writeError(w, http.StatusUnauthorized, errors.New("invalid password"))
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"checksum": checksum(creds.Password),
	})
	tokenString, err := token.SignedString(h.secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.New("failed to generate token"))
		return
	}

	writeJSON(w, http.StatusCreated, Response{Status: StatusSuccess, Token: tokenString})
}

// AuthMiddleware проверяет JWT-токен из куки token; работает только если задан пароль
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(h.password) > 0 {
			var tokenString string
			if cookie, err := r.Cookie("token"); err == nil {
				tokenString = cookie.Value
			}
			jwtToken, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return h.secret, nil
			})
			if err != nil || !jwtToken.Valid {
				writeError(w, http.StatusUnauthorized, errors.New("authentification required"))
				return
			}
			// проверяем контрольную сумму пароля
			claims, ok := jwtToken.Claims.(jwt.MapClaims)
			if !ok || claims["checksum"] != checksum(h.password) {
				writeError(w, http.StatusUnauthorized, errors.New("authentification required"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func checksum(password string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(password)))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON: %v", err)
	}
}

// writeError возвращает ответ с ошибкой
func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, Response{Status: StatusError, Message: err.Error()})
}
