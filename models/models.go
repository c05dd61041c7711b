// models/models.go
package models

import (
	"time"
)

// FloorRecord 楼层生成记录
type FloorRecord struct {
	RunID     string         `json:"run_id"`
	Floor     int            `json:"floor"`
	Seed      int64          `json:"seed"`
	StartRow  int            `json:"start_row"`
	StartCol  int            `json:"start_col"`
	Bounds    string         `json:"bounds"`
	Rooms     map[string]int `json:"rooms"` // role -> count
	Warnings  string         `json:"warnings,omitempty"`
	Dump      string         `json:"dump"`
	CreatedAt time.Time      `json:"created_at"`
}

// RunSummary 一次运行的概要
type RunSummary struct {
	RunID     string    `json:"run_id"`
	Seed      int64     `json:"seed"`
	Floors    int       `json:"floors"`  // 已生成楼层数
	Deepest   int       `json:"deepest"` // 最深楼层
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Apply 将新楼层计入概要
func (s *RunSummary) Apply(r *FloorRecord) {
	if s.Floors == 0 {
		s.RunID = r.RunID
		s.Seed = r.Seed
		s.StartedAt = r.CreatedAt
		s.Deepest = r.Floor
	}
	s.Floors++
	s.Deepest = max(s.Deepest, r.Floor)
	s.UpdatedAt = r.CreatedAt
}
