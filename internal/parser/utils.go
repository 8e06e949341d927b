package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeColumnName 컬럼명 정규화 (공백/개행 제거)
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "\ufeff")
	return whitespaceRe.ReplaceAllString(name, "")
}

// ContainsAny 키워드 중 하나라도 포함하는지 검사
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ParseInt 셀 값을 정수로 변환. 숫자가 아니면 0.
// 천 단위 구분자, "₩" 접두사, "원" 접미사, 소수점(반올림), 회계식 음수 "(1,000)" 를 허용한다.
func ParseInt(val string) int64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	negative := false
	if strings.HasPrefix(val, "(") && strings.HasSuffix(val, ")") {
		negative = true
		val = strings.TrimSpace(val[1 : len(val)-1])
	}
	val = strings.ReplaceAll(val, ",", "")
	val = strings.TrimSuffix(val, "원")
	if rest := strings.TrimPrefix(val, "-"); rest != val {
		val = "-" + strings.TrimSpace(strings.TrimPrefix(rest, "₩"))
	} else {
		val = strings.TrimPrefix(val, "₩")
	}
	val = strings.TrimSpace(val)

	n, ok := parseNumber(val)
	if !ok {
		return 0
	}
	if negative {
		if n < 0 {
			return 0
		}
		return -n
	}
	return n
}

func parseNumber(val string) (int64, bool) {
	if i, err := strconv.ParseInt(val, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(math.Round(f)), true
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
	"2006.01.02",
	"2006.01.02.",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"20060102",
	"2006-01-02T15:04:05",
	"01-02-06",
	"1/2/06 15:04",
	"1/2/06",
}

// ParseDate 셀 값을 날짜로 변환 (시각은 버림). 인식할 수 없으면 nil.
func ParseDate(val string) *time.Time {
	val = strings.TrimSpace(val)
	if val == "" || val == "-" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}

	// 엑셀 날짜 일련번호 (서식 없는 셀)
	if serial, err := strconv.ParseFloat(val, 64); err == nil && serial > 0 && serial < 2958466 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil
		}
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	return nil
}

// NormalizeOption "라벨: 값" 형태면 첫 구분자 뒤의 값을, 아니면 원문을 trim 해서 반환
func NormalizeOption(text string) string {
	if idx := strings.Index(text, ":"); idx >= 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return strings.TrimSpace(text)
}
