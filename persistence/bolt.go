package persistence

import (
	"encoding/binary"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/wfunc/dungeonfloor/models"
)

var (
	floorsBucket = []byte("floors") // runID -> seq -> FloorRecord
	runsBucket   = []byte("runs")   // runID -> RunSummary
)

// Bolt 嵌入式文件存储，无需数据库服务
type Bolt struct {
	db *bolt.DB
}

// NewBolt 打开或创建 path 处的数据文件
func NewBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(floorsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

// SaveFloorRecord 在同一事务中追加记录并更新概要
func (b *Bolt) SaveFloorRecord(record *models.FloorRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		floors, err := tx.Bucket(floorsBucket).CreateBucketIfNotExists([]byte(record.RunID))
		if err != nil {
			return err
		}
		seq, err := floors.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		if err := floors.Put(key, data); err != nil {
			return err
		}

		runs := tx.Bucket(runsBucket)
		var summary models.RunSummary
		if raw := runs.Get([]byte(record.RunID)); raw != nil {
			if err := json.Unmarshal(raw, &summary); err != nil {
				return err
			}
		}
		summary.Apply(record)
		raw, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		return runs.Put([]byte(record.RunID), raw)
	})
}

func (b *Bolt) LoadFloorRecords(runID string) ([]models.FloorRecord, error) {
	var records []models.FloorRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		floors := tx.Bucket(floorsBucket).Bucket([]byte(runID))
		if floors == nil {
			return ErrRecordNotFound
		}
		// 键为大端序号，游标顺序即写入顺序
		return floors.ForEach(func(_, v []byte) error {
			var r models.FloorRecord
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			records = append(records, r)
			return nil
		})
	})
	return records, err
}

func (b *Bolt) LoadRunSummary(runID string) (models.RunSummary, error) {
	var summary models.RunSummary
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(runsBucket).Get([]byte(runID))
		if raw == nil {
			return ErrRecordNotFound
		}
		return json.Unmarshal(raw, &summary)
	})
	return summary, err
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
