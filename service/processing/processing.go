package processing

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Форматы даты и времени, которые используются в записях журнала
const (
	DateFormat = "02.01.2006"
	TimeFormat = "15:04"
)

// UnknownWeekday - значение дня недели для нераспознанной даты
const UnknownWeekday = "??"

// Границы частей дня в часах: [0,9) [9,12) [12,15) [15,18) [18,24)
var dayPartBounds = [...]int{9, 12, 15, 18}

// Locale - набор локализованных подписей.
// Передается явно во все функции вместо глобальной установки локали процесса.
type Locale struct {
	Tag      language.Tag
	Weekdays [7]string // сокращения дней недели, начиная с воскресенья (как time.Weekday)
	DayParts [5]string // до начала дня, утро, обед, вечер, после работы
	Headers  [7]string // заголовки колонок хранилища
}

// DateLabel возвращает заголовок колонки даты, по нему определяется строка заголовка
func (l Locale) DateLabel() string {
	return l.Headers[0]
}

var Russian = Locale{
	Tag:      language.Russian,
	Weekdays: [7]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"},
	DayParts: [5]string{"До начала дня", "Утро", "Обед", "Вечер", "После работы"},
	Headers:  [7]string{"Дата", "Время", "День недели", "Часть дня", "Вид задачи", "Задача", "Сложность"},
}

var English = Locale{
	Tag:      language.English,
	Weekdays: [7]string{"su", "mo", "tu", "we", "th", "fr", "sa"},
	DayParts: [5]string{"Before start", "Morning", "Midday", "Evening", "After work"},
	Headers:  [7]string{"Date", "Time", "Weekday", "Part of day", "Task type", "Task", "Difficulty"},
}

// первый тег - локаль по умолчанию
var matcher = language.NewMatcher([]language.Tag{language.Russian, language.English})

// LocaleFor подбирает локаль по тегу языка или значению заголовка Accept-Language.
// Если подходящей нет, возвращается Russian.
func LocaleFor(tags ...string) Locale {
	tag, _ := language.MatchStrings(matcher, tags...)
	if base, _ := tag.Base(); base.String() == "en" {
		return English
	}
	return Russian
}

// PartOfDay определяет часть дня по часу hour
func PartOfDay(hour int, loc Locale) string {
	if hour < 0 {
		hour = 0
	}
	for i, bound := range dayPartBounds {
		if hour < bound {
			return loc.DayParts[i]
		}
	}
	return loc.DayParts[len(loc.DayParts)-1]
}

// PartOfDayFromTime определяет часть дня по строке времени HH:MM.
// Возвращает пустую строку, если час не удалось разобрать.
func PartOfDayFromTime(hhmm string, loc Locale) string {
	hourStr, _, _ := strings.Cut(strings.TrimSpace(hhmm), ":")
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return ""
	}
	return PartOfDay(hour, loc)
}

// Weekday возвращает двухбуквенное сокращение дня недели в нижнем регистре
// для даты в формате dd.mm.yyyy либо UnknownWeekday, если дату не удалось разобрать
func Weekday(date string, loc Locale) string {
	dt, err := time.Parse(DateFormat, strings.TrimSpace(date))
	if err != nil {
		return UnknownWeekday
	}
	return loc.Weekdays[dt.Weekday()]
}

// ValidDate проверяет, что строка соответствует формату dd.mm.yyyy
func ValidDate(date string) bool {
	_, err := time.Parse(DateFormat, date)
	return err == nil
}

// ValidTime проверяет, что строка соответствует формату HH:MM
func ValidTime(hhmm string) bool {
	h, m, ok := strings.Cut(hhmm, ":")
	if !ok {
		return false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return false
	}
	return true
}
