package calendar

import (
	"sync"
	"time"
)

// fixedHoliday は毎年同じ日付の祝日です。
type fixedHoliday struct {
	day   int
	month time.Month
	name  string
}

// ポルトガルの固定国民祝日です。
var fixedHolidays = []fixedHoliday{
	{1, time.January, "Ano Novo"},
	{25, time.April, "Dia da Liberdade"},
	{1, time.May, "Dia do Trabalhador"},
	{10, time.June, "Dia de Portugal"},
	{15, time.August, "Assunção de Nossa Senhora"},
	{5, time.October, "Implantação da República"},
	{1, time.November, "Todos os Santos"},
	{1, time.December, "Restauração da Independência"},
	{8, time.December, "Imaculada Conceição"},
	{25, time.December, "Natal"},
}

// 復活祭を基準とする移動祝日のオフセット(日数)です。
var movableHolidays = []struct {
	offset int
	name   string
}{
	{-47, "Carnaval"},
	{-2, "Sexta-feira Santa"},
	{0, "Páscoa"},
	{60, "Corpo de Deus"},
}

var (
	holidayCacheMu sync.Mutex
	holidayCache   = make(map[int]map[time.Time]string)
)

// Date は UTC の 0 時に正規化した日付を返します。
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize は時刻情報を落とし UTC の日付へ正規化します。
func Normalize(t time.Time) time.Time {
	u := t.UTC()
	return Date(u.Year(), u.Month(), u.Day())
}

// EasterSunday は Anonymous Gregorian アルゴリズムで復活祭の日曜日を計算します。
// 計算結果が暦上不正な日付となる年は ok=false を返します。
func EasterSunday(year int) (time.Time, bool) {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1

	if month < 1 || month > 12 {
		return time.Time{}, false
	}
	candidate := Date(year, time.Month(month), day)
	if candidate.Day() != day || candidate.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return candidate, true
}

// HolidaysForYear は指定年の祝日(固定 + 移動)を日付から名称への写像で返します。
// 結果は年ごとにキャッシュされます。呼び出し側は返り値を変更してはいけません。
func HolidaysForYear(year int) map[time.Time]string {
	holidayCacheMu.Lock()
	defer holidayCacheMu.Unlock()

	if cached, ok := holidayCache[year]; ok {
		return cached
	}

	holidays := make(map[time.Time]string, len(fixedHolidays)+len(movableHolidays))
	for _, h := range fixedHolidays {
		d := Date(year, h.month, h.day)
		if d.Day() != h.day || d.Month() != h.month {
			continue
		}
		holidays[d] = h.name
	}

	if easter, ok := EasterSunday(year); ok {
		for _, h := range movableHolidays {
			holidays[easter.AddDate(0, 0, h.offset)] = h.name
		}
	}

	holidayCache[year] = holidays
	return holidays
}

// IsHoliday は指定日が祝日かどうかを判定します。
func IsHoliday(t time.Time) bool {
	d := Normalize(t)
	_, ok := HolidaysForYear(d.Year())[d]
	return ok
}

// CountWorkingDays は [start, end] に含まれる営業日数を返します。
// 両端を含み、土日と範囲が跨る全年の祝日を除外します。start > end の場合は 0 を返します。
func CountWorkingDays(start, end time.Time) int {
	start = Normalize(start)
	end = Normalize(end)
	if start.After(end) {
		return 0
	}

	holidays := make(map[time.Time]string)
	for y := start.Year(); y <= end.Year(); y++ {
		for d, name := range HolidaysForYear(y) {
			holidays[d] = name
		}
	}

	count := 0
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		wd := current.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if _, ok := holidays[current]; ok {
			continue
		}
		count++
	}
	return count
}

// CalendarDays は [start, end] に含まれる暦日数を返します。start > end の場合は 0 を返します。
func CalendarDays(start, end time.Time) int {
	start = Normalize(start)
	end = Normalize(end)
	if start.After(end) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}
