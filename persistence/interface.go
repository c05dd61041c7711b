// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/dungeonfloor/config"
	"github.com/wfunc/dungeonfloor/models"
)

// Store 楼层生成记录存储接口，只追加不回放
type Store interface {
	SaveFloorRecord(record *models.FloorRecord) error
	LoadFloorRecords(runID string) ([]models.FloorRecord, error)
	LoadRunSummary(runID string) (models.RunSummary, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
	ErrUnknownDriver  = fmt.Errorf("unknown database driver")
)

// Open 按配置创建存储
func Open(cfg config.DatabaseConfig) (Store, error) {
	pg := cfg.Postgres
	switch cfg.Driver {
	case "", config.DriverMemory:
		return NewMemory(), nil
	case config.DriverPostgres:
		return NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case config.DriverGorm:
		return NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case config.DriverBolt:
		return NewBolt(cfg.Bolt.Path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
