package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Severity classifies how serious a crack is.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Severities lists every level from least to most serious.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Valid reports whether s is one of the four known levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// CrackReport is one uploaded and analyzed crack image.
type CrackReport struct {
	ID             uint         `gorm:"primarykey" json:"id"`
	UserID         uint         `gorm:"not null;index:idx_reports_user_upload,priority:1" json:"user_id"`
	Filename       string       `gorm:"size:255;not null" json:"filename"`
	ImagePath      string       `gorm:"size:512;not null" json:"image_path"`
	UploadDate     time.Time    `gorm:"not null;index:idx_reports_user_upload,priority:2" json:"upload_date"`
	LengthMM       float64      `gorm:"not null" json:"length_mm"`
	WidthMM        float64      `gorm:"not null" json:"width_mm"`
	DepthMM        float64      `gorm:"not null" json:"depth_mm"`
	Severity       Severity     `gorm:"size:16;not null" json:"severity"`
	Recommendation string       `gorm:"type:text;not null" json:"recommendation"`
	AnalysisData   AnalysisData `gorm:"type:text" json:"analysis_data"`
	CreatedAt      time.Time    `json:"created_at"`
}

// TableName overrides the gorm table name.
func (CrackReport) TableName() string {
	return "crack_reports"
}

// AnalysisData is an opaque JSON document kept exactly as received.
// It is never decoded; an empty value is stored and returned as {}.
type AnalysisData []byte

var emptyAnalysis = []byte("{}")

// MarshalJSON emits the stored document verbatim.
func (a AnalysisData) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return emptyAnalysis, nil
	}
	return a, nil
}

// UnmarshalJSON keeps a copy of the raw document. JSON null becomes empty.
func (a *AnalysisData) UnmarshalJSON(data []byte) error {
	if a == nil {
		return fmt.Errorf("models.AnalysisData: UnmarshalJSON on nil pointer")
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = nil
		return nil
	}
	*a = append((*a)[0:0], data...)
	return nil
}

// Scan implements sql.Scanner.
func (a *AnalysisData) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*a = nil
	case []byte:
		*a = append(AnalysisData(nil), v...)
	case string:
		*a = AnalysisData(v)
	default:
		return fmt.Errorf("unsupported analysis_data type %T", value)
	}
	return nil
}

// Value implements driver.Valuer.
func (a AnalysisData) Value() (driver.Value, error) {
	if len(a) == 0 {
		return string(emptyAnalysis), nil
	}
	if !json.Valid(a) {
		return nil, fmt.Errorf("analysis_data is not valid JSON")
	}
	return string(a), nil
}
