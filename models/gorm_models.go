// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormFloorRecord 楼层记录模型
type GormFloorRecord struct {
	gorm.Model
	RunID    string         `gorm:"index;not null"`
	Floor    int            `gorm:"not null"`
	Seed     int64          `gorm:"not null"`
	StartRow int            `gorm:"not null"`
	StartCol int            `gorm:"not null"`
	Bounds   string         `gorm:"not null"`
	Rooms    map[string]int `gorm:"serializer:json;type:jsonb"`
	Warnings string
	Dump     string `gorm:"type:text"`
}

func (GormFloorRecord) TableName() string {
	return "floor_records"
}

// GormRun 运行概要模型
type GormRun struct {
	gorm.Model
	RunID   string `gorm:"uniqueIndex;not null"`
	Seed    int64  `gorm:"not null"`
	Floors  int    `gorm:"default:0"`
	Deepest int    `gorm:"default:0"`
}

func (GormRun) TableName() string {
	return "runs"
}

func NewGormFloorRecord(r *FloorRecord) *GormFloorRecord {
	return &GormFloorRecord{
		RunID:    r.RunID,
		Floor:    r.Floor,
		Seed:     r.Seed,
		StartRow: r.StartRow,
		StartCol: r.StartCol,
		Bounds:   r.Bounds,
		Rooms:    r.Rooms,
		Warnings: r.Warnings,
		Dump:     r.Dump,
	}
}

func (g *GormFloorRecord) Record() FloorRecord {
	return FloorRecord{
		RunID:     g.RunID,
		Floor:     g.Floor,
		Seed:      g.Seed,
		StartRow:  g.StartRow,
		StartCol:  g.StartCol,
		Bounds:    g.Bounds,
		Rooms:     g.Rooms,
		Warnings:  g.Warnings,
		Dump:      g.Dump,
		CreatedAt: g.CreatedAt,
	}
}

func (g *GormRun) Summary() RunSummary {
	return RunSummary{
		RunID:     g.RunID,
		Seed:      g.Seed,
		Floors:    g.Floors,
		Deepest:   g.Deepest,
		StartedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}
