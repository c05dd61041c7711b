package persistence

import (
	"sync"
	"time"

	"github.com/wfunc/dungeonfloor/models"
)

// Memory 内存存储，进程退出即丢失
type Memory struct {
	records map[string][]models.FloorRecord // runID -> records
	mutex   sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string][]models.FloorRecord)}
}

func (m *Memory) SaveFloorRecord(record *models.FloorRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	saved := *record
	saved.Rooms = make(map[string]int, len(record.Rooms))
	for role, n := range record.Rooms {
		saved.Rooms[role] = n
	}
	m.records[record.RunID] = append(m.records[record.RunID], saved)
	return nil
}

func (m *Memory) LoadFloorRecords(runID string) ([]models.FloorRecord, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	records, ok := m.records[runID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return append([]models.FloorRecord(nil), records...), nil
}

func (m *Memory) LoadRunSummary(runID string) (models.RunSummary, error) {
	records, err := m.LoadFloorRecords(runID)
	if err != nil {
		return models.RunSummary{}, err
	}
	var summary models.RunSummary
	for i := range records {
		summary.Apply(&records[i])
	}
	return summary, nil
}

func (m *Memory) Close() error {
	return nil
}
