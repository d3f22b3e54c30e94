// Package memory implements the paged virtual-memory manager: a fixed
// table of frames shared by every process, with FIFO/LRU/PFF page
// replacement.
package memory

import "github.com/eldux123/kernel-simulator/internal/logging"

// Algorithm selects the page-replacement policy.
type Algorithm int

const (
	FIFO Algorithm = iota
	LRU
	PFF
)

var algorithmNames = [...]string{
	FIFO: "FIFO",
	LRU:  "LRU",
	PFF:  "PFF",
}

func (a Algorithm) String() string {
	if int(a) < 0 || int(a) >= len(algorithmNames) {
		return "Unknown"
	}
	return algorithmNames[a]
}

// ParseAlgorithm maps a case-sensitive lowercase token onto an Algorithm,
// for an external CLI to translate its own input without this package
// doing any parsing of its own.
func ParseAlgorithm(token string) (Algorithm, bool) {
	switch token {
	case "fifo":
		return FIFO, true
	case "lru":
		return LRU, true
	case "pff":
		return PFF, true
	default:
		return 0, false
	}
}

const noOwner = -1

type key struct {
	pid  int
	page int
}

// Frame is one slot of physical memory.
type Frame struct {
	PID  int
	Page int
}

func (f Frame) Free() bool { return f.PID == noOwner }

// Manager owns the frame table and every page-replacement bookkeeping
// structure. It is not safe for concurrent use; the scheduler is the
// only owner.
type Manager struct {
	frames    []Frame
	algorithm Algorithm

	mapping map[key]int // (pid,page) -> frame index
	lastUse map[key]int // (pid,page) -> logical timestamp of last access
	fifo    []int       // frame indices in load order

	pidFrameCount map[int]int
	pidFaultCount map[int]int

	totalAccesses int
	totalFaults   int

	pffThresholdHigh int
	pffThresholdLow  int
}

// NewManager builds a manager over numFrames frames using algo.
func NewManager(numFrames int, algo Algorithm) *Manager {
	m := &Manager{
		algorithm:        algo,
		pffThresholdHigh: 3,
		pffThresholdLow:  1,
		pidFrameCount:    make(map[int]int),
		pidFaultCount:    make(map[int]int),
	}
	m.resetFrames(numFrames)
	return m
}

func (m *Manager) resetFrames(numFrames int) {
	m.frames = make([]Frame, numFrames)
	for i := range m.frames {
		m.frames[i] = Frame{PID: noOwner, Page: -1}
	}
	m.mapping = make(map[key]int)
	m.lastUse = make(map[key]int)
	m.fifo = nil
}

// NumFrames returns the size of the frame table.
func (m *Manager) NumFrames() int { return len(m.frames) }

// Algorithm returns the currently active replacement policy.
func (m *Manager) Algorithm() Algorithm { return m.algorithm }

// Frames returns a copy of the current frame table, for reporting.
func (m *Manager) Frames() []Frame {
	out := make([]Frame, len(m.frames))
	copy(out, m.frames)
	return out
}

// Access touches (pid, page). It returns true if this was a page fault.
func (m *Manager) Access(pid, page int) bool {
	m.totalAccesses++
	k := key{pid, page}

	if idx, ok := m.mapping[k]; ok {
		m.lastUse[k] = m.totalAccesses
		logging.Logger().WithFields(logging.Event{"pid": pid, "page": page, "frame": idx}).Debug("page hit")
		return false
	}

	m.totalFaults++
	m.pidFaultCount[pid]++

	if freeIdx := m.findFreeFrame(); freeIdx != -1 {
		m.assign(freeIdx, pid, page)
		m.fifo = append(m.fifo, freeIdx)
		m.pidFrameCount[pid]++
		logging.Logger().WithFields(logging.Event{"pid": pid, "page": page, "frame": freeIdx}).Debug("page fault, filled free frame")
		return true
	}

	victim := m.selectVictim(pid)
	victimKey := key{m.frames[victim].PID, m.frames[victim].Page}
	delete(m.mapping, victimKey)
	delete(m.lastUse, victimKey)
	m.pidFrameCount[m.frames[victim].PID]--

	logging.Logger().WithFields(logging.Event{
		"victim_pid": victimKey.pid, "victim_page": victimKey.page, "frame": victim,
		"new_pid": pid, "new_page": page, "algorithm": m.algorithm.String(),
	}).Debug("page fault, evicting victim")

	m.assign(victim, pid, page)
	m.fifo = append(m.fifo, victim)
	m.pidFrameCount[pid]++
	return true
}

func (m *Manager) assign(idx, pid, page int) {
	m.frames[idx] = Frame{PID: pid, Page: page}
	k := key{pid, page}
	m.mapping[k] = idx
	m.lastUse[k] = m.totalAccesses
}

func (m *Manager) findFreeFrame() int {
	for i, f := range m.frames {
		if f.Free() {
			return i
		}
	}
	return -1
}

func (m *Manager) selectVictim(pid int) int {
	switch m.algorithm {
	case FIFO:
		return m.selectVictimFIFO()
	case LRU:
		return m.selectVictimLRU()
	case PFF:
		return m.selectVictimPFF(pid)
	default:
		return m.selectVictimFIFO()
	}
}

func (m *Manager) selectVictimFIFO() int {
	victim := m.fifo[0]
	m.fifo = m.fifo[1:]
	return victim
}

func (m *Manager) selectVictimLRU() int {
	oldest := -1
	victim := -1
	for k, idx := range m.mapping {
		if oldest == -1 || m.lastUse[k] < oldest {
			oldest = m.lastUse[k]
			victim = idx
		}
	}
	return victim
}

// selectVictimPFF picks a frame belonging to another process whose
// cumulative fault count is below the low threshold, when pid's own
// cumulative fault count exceeds the high threshold; otherwise it falls
// back to LRU.
func (m *Manager) selectVictimPFF(pid int) int {
	if m.pidFaultCount[pid] > m.pffThresholdHigh {
		for _, idx := range m.mapping {
			victimPid := m.frames[idx].PID
			if victimPid != pid && m.pidFaultCount[victimPid] < m.pffThresholdLow {
				return idx
			}
		}
	}
	return m.selectVictimLRU()
}

// FreeFramesOfPid releases every frame owned by pid and clears its
// per-pid bookkeeping, used when a process terminates.
func (m *Manager) FreeFramesOfPid(pid int) {
	for i := range m.frames {
		if m.frames[i].PID == pid {
			k := key{m.frames[i].PID, m.frames[i].Page}
			delete(m.mapping, k)
			delete(m.lastUse, k)
			m.frames[i] = Frame{PID: noOwner, Page: -1}
		}
	}
	delete(m.pidFrameCount, pid)
	delete(m.pidFaultCount, pid)

	filtered := m.fifo[:0]
	for _, idx := range m.fifo {
		if m.frames[idx].PID != noOwner {
			filtered = append(filtered, idx)
		}
	}
	m.fifo = filtered
}

// SetNumFrames resizes the frame table, discarding residency state but
// preserving cumulative access/fault counters.
func (m *Manager) SetNumFrames(numFrames int) {
	m.resetFrames(numFrames)
}

// SetAlgorithm switches the replacement policy, discarding residency
// state but preserving cumulative access/fault counters.
func (m *Manager) SetAlgorithm(algo Algorithm) {
	m.algorithm = algo
	for i := range m.frames {
		m.frames[i] = Frame{PID: noOwner, Page: -1}
	}
	m.mapping = make(map[key]int)
	m.lastUse = make(map[key]int)
	m.fifo = nil
}

// Stats is the plain-data reporting surface for the manager.
type Stats struct {
	Algorithm     Algorithm
	NumFrames     int
	TotalAccesses int
	TotalFaults   int
	HitRate       float64
}

// Report summarizes the manager's cumulative counters.
func (m *Manager) Report() Stats {
	return Stats{
		Algorithm:     m.algorithm,
		NumFrames:     len(m.frames),
		TotalAccesses: m.totalAccesses,
		TotalFaults:   m.totalFaults,
		HitRate:       m.HitRate(),
	}
}

// HitRate returns the percentage of accesses that were not faults.
func (m *Manager) HitRate() float64 {
	if m.totalAccesses == 0 {
		return 0
	}
	return (1.0 - float64(m.totalFaults)/float64(m.totalAccesses)) * 100
}
