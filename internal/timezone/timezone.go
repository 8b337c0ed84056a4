package timezone

import "time"

const DefaultTimezone = "America/Sao_Paulo"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location resolve o fuso da empresa, caindo no padrão quando inválido.
func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// --------------------------------------------------
// Parsing no fuso da empresa
// --------------------------------------------------

func ParseDate(loc *time.Location, date string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", date, loc)
}

// DayBounds devolve [00:00, 00:00 do dia seguinte) da data em loc.
func DayBounds(loc *time.Location, date string) (time.Time, time.Time, error) {
	start, err := ParseDate(loc, date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}

// MonthBounds devolve [dia 1, dia 1 do mês seguinte) em loc.
func MonthBounds(loc *time.Location, year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// ClockOn combina a data de day com um horário "HH:MM".
func ClockOn(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), 0, 0,
		day.Location(),
	), nil
}
