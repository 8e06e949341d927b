package excel

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/smc020412/naverSmartStore/internal/model"
	"github.com/smc020412/naverSmartStore/internal/parser"
)

// ErrNoSheet 읽을 수 있는 시트가 없음
var ErrNoSheet = errors.New("no readable sheet")

// FileAccessError 파일을 열 수 없음 (복호화 시도 포함)
type FileAccessError struct {
	File      string
	Encrypted bool // 비밀번호로도 시도했는지
	Err       error
}

func (e *FileAccessError) Error() string {
	if e.Encrypted {
		return fmt.Sprintf("cannot open %s (plain and encrypted attempts failed): %v", e.File, e.Err)
	}
	return fmt.Sprintf("cannot open %s: %v", e.File, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// Decoder 엑셀 파일 디코더
type Decoder struct {
	recognizer *parser.SheetRecognizer
}

// NewDecoder 디코더 생성
func NewDecoder() *Decoder {
	return &Decoder{recognizer: parser.NewSheetRecognizer()}
}

// Open 평문으로 먼저 열고, 실패하면 비밀번호로 다시 연다
func (d *Decoder) Open(name string, data []byte, password string) (*excelize.File, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err == nil {
		return f, nil
	}
	if password == "" {
		return nil, &FileAccessError{File: name, Err: err}
	}

	f, encErr := excelize.OpenReader(bytes.NewReader(data), excelize.Options{Password: password})
	if encErr != nil {
		return nil, &FileAccessError{File: name, Encrypted: true, Err: encErr}
	}
	return f, nil
}

// Decode 파일을 열어 요청한 종류에 가장 잘 맞는 시트를 표로 반환.
// 맞는 시트가 없으면 첫 번째 비어 있지 않은 시트를 (헤더 = 첫 행) 반환한다.
func (d *Decoder) Decode(name string, data []byte, password string, kind parser.SheetKind) (*model.Table, error) {
	f, err := d.Open(name, data, password)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		best      *model.Table
		bestScore float64
		fallback  *model.Table
	)

	for _, sheet := range f.GetSheetList() {
		// 날짜 셀은 표시 서식 대신 일련번호로 받는다
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil || len(rows) == 0 {
			continue
		}

		rec := d.recognizer.Recognize(sheet, rows)
		if fallback == nil {
			fallback = buildTable(name, sheet, rows, 0)
		}
		if rec.Kind != kind {
			continue
		}
		if best == nil || rec.Confidence > bestScore {
			best = buildTable(name, sheet, rows, rec.HeaderRow)
			bestScore = rec.Confidence
		}
	}

	if best != nil {
		return best, nil
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, &FileAccessError{File: name, Err: ErrNoSheet}
}

// NewFileID 업로드 파일 식별자
func NewFileID() string {
	return uuid.New().String()
}

func buildTable(name, sheet string, rows [][]string, headerRow int) *model.Table {
	t := &model.Table{
		Name:      name,
		Sheet:     sheet,
		Header:    rows[headerRow],
		HeaderRow: headerRow + 1,
		Rows:      [][]string{},
	}
	if headerRow+1 < len(rows) {
		t.Rows = rows[headerRow+1:]
	}
	return t
}
