package models

import "time"

// ErrorLog is a batched server-side error record. Entries are buffered by the
// error log batcher and written in groups; Fingerprint is the dedupe key used
// to suppress repeats of the same error within the dedupe window.
type ErrorLog struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Source      string `json:"source" gorm:"not null;size:100;index"`
	Message     string `json:"message" gorm:"not null;type:text"`
	StackTrace  string `json:"stack_trace" gorm:"type:text"`
	Fingerprint string `json:"fingerprint" gorm:"not null;size:64;index"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (ErrorLog) TableName() string {
	return "error_logs"
}
