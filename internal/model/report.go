package model

import "time"

// StatusQuantity 상태 라벨별 수량 합계
type StatusQuantity struct {
	Label    string `json:"label"`
	Quantity int64  `json:"quantity"`
}

// Summary 섹션 합계
type Summary struct {
	TotalQuantity     int64            `json:"totalQuantity"`
	TotalSaleAmount   int64            `json:"totalSaleAmount"`
	TotalCommission   int64            `json:"totalCommission"`
	TotalShippingCost int64            `json:"totalShippingCost"`
	TotalOutlay       int64            `json:"totalOutlay"`
	TotalProfit       int64            `json:"totalProfit"`
	StatusQuantities  []StatusQuantity `json:"statusQuantities"`
}

// Section 정상/문제 구분 결과
type Section struct {
	Name    string             `json:"name"`
	Orders  []*AggregatedOrder `json:"orders"`
	Summary Summary            `json:"summary"`
}

// FileStatus 파일 처리 결과 상태
type FileStatus string

const (
	FileImported FileStatus = "imported"
	FileSkipped  FileStatus = "skipped"
)

// FileResult 파일 단위 처리 결과
type FileResult struct {
	FileID string        `json:"fileId"`
	Name   string        `json:"name"`
	Kind   string        `json:"kind"` // orders/prices
	Status FileStatus    `json:"status"`
	Sheet  string        `json:"sheet,omitempty"`
	Rows   int           `json:"rows"`
	Error  string        `json:"error,omitempty"`
	Took   time.Duration `json:"took"`
}

// FileFailure 건너뛴 파일의 진단 기록 (파일당 정확히 1건)
type FileFailure struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"` // file_access/schema
	Reason string `json:"reason"`
}

// Report 배치 1회 실행 결과
type Report struct {
	RunID       string        `json:"runId"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Valid       Section       `json:"valid"`
	Invalid     Section       `json:"invalid"`
	Files       []FileResult  `json:"files"`
	Failures    []FileFailure `json:"failures"`
}
