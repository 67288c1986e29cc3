package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그, 에러, 결과 요약에서 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   S0 → S1 → S2
//   Fetch  Analysis  Format

// Stage represents a pipeline stage
type Stage string

const (
	// StageFetch S0: 가격/재무 데이터 수집
	// 책임: 티커별 데이터 조회, 누락 티커 명시
	// 위치: internal/s0_fetch/
	StageFetch Stage = "S0_FETCH"

	// StageAnalysis S1: DCF 범위 및 팩터 점수 분석
	// 책임: 추론 백엔드에 분석 요청 (검증 없음)
	// 위치: internal/s1_analysis/
	StageAnalysis Stage = "S1_ANALYSIS"

	// StageFormat S2: JSON 아티팩트 생성
	// 책임: 스키마 검증, lastUpdated 기록, 파일 저장
	// 위치: internal/s2_format/
	StageFormat Stage = "S2_FORMAT"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageFetch:
		return "S0"
	case StageAnalysis:
		return "S1"
	case StageFormat:
		return "S2"
	default:
		return "UNKNOWN"
	}
}

// Description returns a human readable description of the stage
func (s Stage) Description() string {
	switch s {
	case StageFetch:
		return "Fetch prices and financial metrics"
	case StageAnalysis:
		return "DCF ranges and factor scores"
	case StageFormat:
		return "Format and write the JSON report"
	default:
		return "unknown"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageFetch,
		StageAnalysis,
		StageFormat,
	}
}

// StageReport is the opaque text a stage hands to the next one.
// Nothing downstream parses it except the format stage's backend response.
type StageReport struct {
	Stage Stage  `json:"stage"`
	Text  string `json:"text"`
}

// PipelineResult represents the result of a pipeline stage execution
type PipelineResult struct {
	Stage       Stage  `json:"stage"`
	Success     bool   `json:"success"`
	InputCount  int    `json:"input_count"`  // bytes of upstream context (tickers for S0)
	OutputCount int    `json:"output_count"` // bytes of report text (records for S2)
	Duration    int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}
