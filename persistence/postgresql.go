// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq" // PostgreSQL 驱动

	"github.com/wfunc/dungeonfloor/models"
)

// PostgreSQL 数据库实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 初始化表结构
	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	// 楼层记录表
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS floor_records (
            id SERIAL PRIMARY KEY,
            run_id VARCHAR(64) NOT NULL,
            floor INTEGER NOT NULL,
            seed BIGINT NOT NULL,
            start_row INTEGER NOT NULL,
            start_col INTEGER NOT NULL,
            bounds VARCHAR(64) NOT NULL,
            rooms JSONB NOT NULL,
            warnings TEXT NOT NULL DEFAULT '',
            dump TEXT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	// 运行概要表
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS runs (
            id SERIAL PRIMARY KEY,
            run_id VARCHAR(64) UNIQUE NOT NULL,
            seed BIGINT NOT NULL,
            floors INTEGER NOT NULL DEFAULT 0,
            deepest INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	// 创建索引以提高查询性能
	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_floor_records_run_id ON floor_records(run_id);
        CREATE INDEX IF NOT EXISTS idx_runs_run_id ON runs(run_id);
    `)

	return err
}

// SaveFloorRecord 保存楼层记录并更新运行概要
func (p *PostgreSQL) SaveFloorRecord(record *models.FloorRecord) error {
	rooms, err := json.Marshal(record.Rooms)
	if err != nil {
		return err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO floor_records (run_id, floor, seed, start_row, start_col, bounds, rooms, warnings, dump, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, record.RunID, record.Floor, record.Seed, record.StartRow, record.StartCol,
		record.Bounds, rooms, record.Warnings, record.Dump, record.CreatedAt)
	if err != nil {
		return err
	}

	// 使用 UPSERT 操作 (PostgreSQL 9.5+)
	_, err = tx.ExecContext(ctx, `
        INSERT INTO runs (run_id, seed, floors, deepest)
        VALUES ($1, $2, 1, $3)
        ON CONFLICT (run_id)
        DO UPDATE SET floors = runs.floors + 1,
                      deepest = GREATEST(runs.deepest, $3),
                      updated_at = CURRENT_TIMESTAMP
    `, record.RunID, record.Seed, record.Floor)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadFloorRecords 按生成顺序加载一次运行的全部楼层
func (p *PostgreSQL) LoadFloorRecords(runID string) ([]models.FloorRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
        SELECT run_id, floor, seed, start_row, start_col, bounds, rooms, warnings, dump, created_at
        FROM floor_records WHERE run_id = $1 ORDER BY id
    `, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.FloorRecord
	for rows.Next() {
		var (
			r     models.FloorRecord
			rooms []byte
		)
		if err := rows.Scan(&r.RunID, &r.Floor, &r.Seed, &r.StartRow, &r.StartCol,
			&r.Bounds, &rooms, &r.Warnings, &r.Dump, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rooms, &r.Rooms); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrRecordNotFound
	}
	return records, nil
}

// LoadRunSummary 加载运行概要
func (p *PostgreSQL) LoadRunSummary(runID string) (models.RunSummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var s models.RunSummary
	query := `SELECT run_id, seed, floors, deepest, created_at, updated_at FROM runs WHERE run_id = $1`
	err := p.db.QueryRowContext(ctx, query, runID).
		Scan(&s.RunID, &s.Seed, &s.Floors, &s.Deepest, &s.StartedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, ErrRecordNotFound
		}
		return s, err
	}
	return s, nil
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
