package settlement

import (
	"github.com/smc020412/naverSmartStore/internal/parser"
)

// ConsolidateFees 존재하는 수수료 세부 컬럼을 합산 (없으면 0).
// 부호는 내보낸 값 그대로 둔다. 공제 수수료는 음수이므로 순액은 판매금액 + 수수료 + 택배비.
// 원본 표의 행에 대해 컬럼 정리 전에 호출해야 한다.
func ConsolidateFees(row []string, fees []parser.FeeColumn) int64 {
	var total int64
	for _, fc := range fees {
		if fc.ColumnIndex < 0 || fc.ColumnIndex >= len(row) {
			continue
		}
		total += parser.ParseInt(row[fc.ColumnIndex])
	}
	return total
}
