package settlement

import (
	"time"

	"github.com/smc020412/naverSmartStore/internal/model"
)

// Filter 집계 전 행 필터 (날짜 범위, 선택 상품)
type Filter struct {
	From     *time.Time // 포함
	To       *time.Time // 포함
	Products []string   // 상품번호; 비어 있으면 전체
}

// IsZero 필터 조건이 없는지
func (f Filter) IsZero() bool {
	return f.From == nil && f.To == nil && len(f.Products) == 0
}

// Apply 조건에 맞는 행만 남긴다. 날짜가 없는 행은 날짜 조건을 통과한다.
func (f Filter) Apply(lines []model.RawOrderLine) []model.RawOrderLine {
	if f.IsZero() {
		return lines
	}

	selected := make(map[string]struct{}, len(f.Products))
	for _, p := range f.Products {
		selected[p] = struct{}{}
	}

	from := dayOf(f.From)
	to := dayOf(f.To)

	out := make([]model.RawOrderLine, 0, len(lines))
	for _, l := range lines {
		if len(selected) > 0 {
			if _, ok := selected[l.ProductCode]; !ok {
				continue
			}
		}
		if l.SettlementDate != nil {
			d := dayOf(l.SettlementDate)
			if from != nil && d.Before(*from) {
				continue
			}
			if to != nil && d.After(*to) {
				continue
			}
		}
		out = append(out, l)
	}
	return out
}

func dayOf(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
