package memory

import (
	"fmt"
	"sync"
	"time"

	"panorama-stitcher/internal/logger"
	"panorama-stitcher/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Manager owns every Mat created through it and closes the ones still alive
// at Cleanup.
type Manager struct {
	allocations map[uint64]*AllocationRecord
	mu          sync.Mutex
	stats       Stats
	logger      logger.Logger
}

type AllocationRecord struct {
	Mat       *safe.Mat
	Tag       string
	CreatedAt time.Time
	Size      int64
}

type Stats struct {
	TotalAllocated int64
	TotalReleased  int64
	ActiveMats     int64
	PeakMats       int64
}

func NewManager(log logger.Logger) *Manager {
	return &Manager{
		allocations: make(map[uint64]*AllocationRecord),
		logger:      log,
	}
}

// GetMat allocates a zero-filled Mat.
func (m *Manager) GetMat(rows, cols int, matType gocv.MatType, tag string) (*safe.Mat, error) {
	mat, err := safe.NewMatWithTracker(rows, cols, matType, m, tag)
	if err != nil {
		return nil, err
	}
	m.attach(mat)
	return mat, nil
}

// Adopt clones src into a tracked Mat. src stays owned by the caller.
func (m *Manager) Adopt(src gocv.Mat, tag string) (*safe.Mat, error) {
	mat, err := safe.NewMatFromMatWithTracker(src, m, tag)
	if err != nil {
		return nil, err
	}
	m.attach(mat)
	return mat, nil
}

func (m *Manager) attach(mat *safe.Mat) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record, ok := m.allocations[mat.ID()]; ok {
		record.Mat = mat
	}
}

func (m *Manager) TrackAllocation(id uint64, size int64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.allocations[id] = &AllocationRecord{Tag: tag, CreatedAt: time.Now(), Size: size}
	m.stats.TotalAllocated += size
	m.stats.ActiveMats++
	if m.stats.ActiveMats > m.stats.PeakMats {
		m.stats.PeakMats = m.stats.ActiveMats
	}
}

func (m *Manager) TrackDeallocation(id uint64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.allocations[id]
	if !ok {
		m.logger.Warning("MemoryManager", "release of untracked Mat", map[string]interface{}{
			"tag": tag,
		})
		return
	}

	delete(m.allocations, id)
	m.stats.TotalReleased += record.Size
	m.stats.ActiveMats--
}

func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Cleanup closes every Mat still alive.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	leaked := make([]*safe.Mat, 0, len(m.allocations))
	for _, record := range m.allocations {
		if record.Mat != nil {
			leaked = append(leaked, record.Mat)
		}
	}
	m.mu.Unlock()

	// Close re-enters TrackDeallocation, so the lock is not held here.
	for _, mat := range leaked {
		mat.Close()
	}

	stats := m.GetStats()
	m.logger.Debug("MemoryManager", fmt.Sprintf("cleaned up %d Mats", len(leaked)), map[string]interface{}{
		"total_allocated": stats.TotalAllocated,
		"total_released":  stats.TotalReleased,
		"peak_mats":       stats.PeakMats,
	})
}

// Shutdown satisfies shutdown.Shutdownable.
func (m *Manager) Shutdown() {
	m.Cleanup()
}
