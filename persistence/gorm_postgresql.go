// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/wfunc/dungeonfloor/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold: time.Second,   // 慢SQL阈值
			LogLevel:      logger.Silent, // 日志级别
			Colorful:      false,         // 禁用彩色打印
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// 获取通用数据库对象 sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.GormFloorRecord{}, &models.GormRun{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveFloorRecord 在事务中写入楼层记录并更新运行概要
func (p *GormPostgreSQL) SaveFloorRecord(record *models.FloorRecord) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		row := models.NewGormFloorRecord(record)
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		record.CreatedAt = row.CreatedAt

		// 行锁，避免并发更新丢失
		var run models.GormRun
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("run_id = ?", record.RunID).First(&run).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			run = models.GormRun{RunID: record.RunID, Seed: record.Seed, Floors: 1, Deepest: record.Floor}
			return tx.Create(&run).Error
		} else if err != nil {
			return err
		}

		run.Floors++
		run.Deepest = max(run.Deepest, record.Floor)
		return tx.Save(&run).Error
	})
}

// LoadFloorRecords 加载一次运行的全部楼层
func (p *GormPostgreSQL) LoadFloorRecords(runID string) ([]models.FloorRecord, error) {
	var rows []models.GormFloorRecord
	if err := p.db.Where("run_id = ?", runID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrRecordNotFound
	}

	records := make([]models.FloorRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].Record())
	}
	return records, nil
}

// LoadRunSummary 加载运行概要
func (p *GormPostgreSQL) LoadRunSummary(runID string) (models.RunSummary, error) {
	var run models.GormRun
	if err := p.db.Where("run_id = ?", runID).First(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RunSummary{}, ErrRecordNotFound
		}
		return models.RunSummary{}, err
	}
	return run.Summary(), nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
