package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const fileName = "config.toml"

// AppConfig 애플리케이션 설정
type AppConfig struct {
	Server ServerConfig `toml:"server" json:"server"`
	Data   DataConfig   `toml:"data" json:"data"`
	Report ReportConfig `toml:"report" json:"report"`
	Log    LogConfig    `toml:"log" json:"log"`
	Trace  TraceConfig  `toml:"trace" json:"trace"`
}

// ServerConfig 서버 설정
type ServerConfig struct {
	Port    int  `toml:"port" json:"port"`
	DevMode bool `toml:"dev_mode" json:"devMode"`
}

// DataConfig 데이터 디렉터리 설정
type DataConfig struct {
	ExportDir string `toml:"export_dir" json:"exportDir"`
}

// ReportConfig 정산 리포트 설정
type ReportConfig struct {
	StatusLabels       []string `toml:"status_labels" json:"statusLabels"`
	DefaultShippingFee int64    `toml:"default_shipping_fee" json:"defaultShippingFee"`
	ValidSheet         string   `toml:"valid_sheet" json:"validSheet"`
	InvalidSheet       string   `toml:"invalid_sheet" json:"invalidSheet"`
}

// LogConfig 로그 설정
type LogConfig struct {
	Level string `toml:"level" json:"level"` // debug/info/warn/error
}

// TraceConfig 트레이스 설정
type TraceConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
}

// LoadConfigInfo 설정 로드 메타 정보
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 기본 설정
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			ExportDir: "exports",
		},
		Report: ReportConfig{
			StatusLabels:       []string{"배송중", "배송완료", "구매확정", "빠른정산"},
			DefaultShippingFee: 0,
			ValidSheet:         "정상",
			InvalidSheet:       "문제",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 실행 파일 디렉터리
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath 실행 파일 옆의 config.toml 경로
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, fileName)
}

// LoadConfigWithInfo 실행 파일 옆의 config.toml 로드
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom 지정 경로에서 로드. 파일이 없으면 기본값에 환경 변수만 반영.
func LoadFrom(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("%s 파싱 실패: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, info, err
	}

	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// LoadConfig config.toml 로드
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo()
	return config, err
}

// 환경 변수 덮어쓰기 (NAVERSETTLE_*)
func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := strings.TrimSpace(os.Getenv("NAVERSETTLE_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("NAVERSETTLE_PORT 값이 올바르지 않습니다: %q", v)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := strings.TrimSpace(os.Getenv("NAVERSETTLE_DEV_MODE")); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NAVERSETTLE_DEV_MODE 값이 올바르지 않습니다: %q", v)
		}
		config.Server.DevMode = on
	}
	if v := strings.TrimSpace(os.Getenv("NAVERSETTLE_EXPORT_DIR")); v != "" {
		config.Data.ExportDir = v
	}
	if v := strings.TrimSpace(os.Getenv("NAVERSETTLE_DEFAULT_SHIPPING_FEE")); v != "" {
		fee, err := strconv.ParseInt(v, 10, 64)
		if err != nil || fee < 0 {
			return fmt.Errorf("NAVERSETTLE_DEFAULT_SHIPPING_FEE 값이 올바르지 않습니다: %q", v)
		}
		config.Report.DefaultShippingFee = fee
	}
	if v := strings.TrimSpace(os.Getenv("NAVERSETTLE_LOG_LEVEL")); v != "" {
		config.Log.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("NAVERSETTLE_TRACE")); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NAVERSETTLE_TRACE 값이 올바르지 않습니다: %q", v)
		}
		config.Trace.Enabled = on
	}
	return nil
}

// SaveConfig config.toml 저장
func SaveConfig(config *AppConfig, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EnsureExportDir 출력 디렉터리 생성. 상대 경로는 실행 파일 기준.
func EnsureExportDir(config *AppConfig) (string, error) {
	dir := config.Data.ExportDir
	if !filepath.IsAbs(dir) {
		exeDir, err := GetExeDir()
		if err != nil {
			exeDir = "."
		}
		dir = filepath.Join(exeDir, dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
