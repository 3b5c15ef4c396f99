package usecase

import (
	"errors"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Epoch は日付を回帰の説明変数に変換する基準日です。
var Epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// dateLayouts は受け付ける日付フォーマットです。先頭から順に試します。
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006/01/02",
	"01/02/2006",
}

var errEmptyDate = errors.New("empty date")

// ParseDate は文字列を暦日（UTCの0時）に変換します。時刻部分は切り捨てられます。
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmptyDate
	}
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return CalendarDate(t), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// CalendarDate は t の年月日のみを残した UTC の時刻を返します。
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysSinceEpoch は 1970-01-01 からの経過日数を返します。1970年より前は負になります。
func DaysSinceEpoch(t time.Time) int64 {
	return CalendarDate(t).Unix() / secondsPerDay
}
