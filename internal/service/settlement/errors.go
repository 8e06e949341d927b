package settlement

import (
	"fmt"
	"strings"

	"github.com/smc020412/naverSmartStore/internal/model"
)

// SchemaError 파일에 주문번호 등 필수 컬럼이 없음 (파일 단위로 건너뜀)
type SchemaError struct {
	File   string
	Sheet  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("schema error in %s [%s]: %s", e.File, e.Sheet, e.Reason)
	}
	return fmt.Sprintf("schema error in %s: %s", e.File, e.Reason)
}

// EmptyBatchError 사용할 수 있는 행이 하나도 없음 (실행 전체 실패)
type EmptyBatchError struct {
	Failures []model.FileFailure
}

func (e *EmptyBatchError) Error() string {
	if len(e.Failures) == 0 {
		return "no usable rows in batch"
	}
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, f.Name)
	}
	return fmt.Sprintf("no usable rows in batch (%d file(s) failed: %s)", len(e.Failures), strings.Join(names, ", "))
}
