// Package disk implements an FCFS/SSTF/SCAN disk-arm scheduler over a
// fixed cylinder range.
package disk

import "github.com/eldux123/kernel-simulator/internal/logging"

// Algorithm selects the disk-arm scheduling policy.
type Algorithm int

const (
	FCFS Algorithm = iota
	SSTF
	SCAN
)

var algorithmNames = [...]string{
	FCFS: "FCFS",
	SSTF: "SSTF",
	SCAN: "SCAN",
}

func (a Algorithm) String() string {
	if int(a) < 0 || int(a) >= len(algorithmNames) {
		return "Unknown"
	}
	return algorithmNames[a]
}

// ParseAlgorithm maps a lowercase token onto an Algorithm.
func ParseAlgorithm(token string) (Algorithm, bool) {
	switch token {
	case "fcfs":
		return FCFS, true
	case "sstf":
		return SSTF, true
	case "scan":
		return SCAN, true
	default:
		return 0, false
	}
}

// Scheduler services a queue of pending cylinder requests with a movable
// head, using the configured Algorithm.
type Scheduler struct {
	headPosition  int
	maxCylinder   int
	algorithm     Algorithm
	direction     int // +1 moving toward higher cylinders, -1 toward lower
	requestQueue  []int
	totalMovement int
	accessHistory []int
}

// NewScheduler builds a scheduler over cylinders [0, maxCylinder) with
// the head starting at 0.
func NewScheduler(maxCylinder int, algo Algorithm) *Scheduler {
	return &Scheduler{maxCylinder: maxCylinder, algorithm: algo, direction: 1}
}

// HeadPosition returns the current head cylinder.
func (s *Scheduler) HeadPosition() int { return s.headPosition }

// TotalMovement returns the cumulative head movement in cylinders.
func (s *Scheduler) TotalMovement() int { return s.totalMovement }

// Pending returns the number of requests not yet serviced.
func (s *Scheduler) Pending() int { return len(s.requestQueue) }

// AddRequest enqueues a cylinder request, ignoring anything outside
// [0, maxCylinder).
func (s *Scheduler) AddRequest(cylinder int) {
	if cylinder >= 0 && cylinder < s.maxCylinder {
		s.requestQueue = append(s.requestQueue, cylinder)
	}
}

// ProcessNext services one request chosen by the active algorithm,
// moving the head there. It returns -1 if the queue is empty.
func (s *Scheduler) ProcessNext() int {
	if len(s.requestQueue) == 0 {
		return -1
	}

	var target int
	switch s.algorithm {
	case FCFS:
		target = s.processNextFCFS()
	case SSTF:
		target = s.processNextSSTF()
	case SCAN:
		target = s.processNextSCAN()
	}

	if target != -1 {
		movement := abs(target - s.headPosition)
		s.totalMovement += movement
		s.headPosition = target
		s.accessHistory = append(s.accessHistory, target)
		logging.Logger().WithFields(logging.Event{
			"algorithm": s.algorithm.String(), "target": target, "movement": movement,
		}).Debug("disk head moved")
	}
	return target
}

func (s *Scheduler) processNextFCFS() int {
	target := s.requestQueue[0]
	s.requestQueue = s.requestQueue[1:]
	return target
}

func (s *Scheduler) processNextSSTF() int {
	minDist := -1
	minIdx := -1
	for i, req := range s.requestQueue {
		dist := abs(req - s.headPosition)
		if minIdx == -1 || dist < minDist {
			minDist = dist
			minIdx = i
		}
	}
	if minIdx == -1 {
		return -1
	}
	target := s.requestQueue[minIdx]
	s.requestQueue = append(s.requestQueue[:minIdx], s.requestQueue[minIdx+1:]...)
	return target
}

func (s *Scheduler) processNextSCAN() int {
	var ahead, behind []int
	for _, req := range s.requestQueue {
		switch {
		case s.direction == 1 && req >= s.headPosition:
			ahead = append(ahead, req)
		case s.direction == -1 && req <= s.headPosition:
			behind = append(behind, req)
		case s.direction == 1:
			behind = append(behind, req)
		default:
			ahead = append(ahead, req)
		}
	}

	target := -1
	switch {
	case s.direction == 1 && len(ahead) > 0:
		target = minInt(ahead)
	case s.direction == -1 && len(behind) > 0:
		target = maxInt(behind)
	default:
		s.direction *= -1
		if len(ahead) > 0 {
			target = minInt(ahead)
		} else if len(behind) > 0 {
			target = maxInt(behind)
		}
	}

	for i, req := range s.requestQueue {
		if req == target {
			s.requestQueue = append(s.requestQueue[:i], s.requestQueue[i+1:]...)
			break
		}
	}
	return target
}

// SetAlgorithm switches the active policy and resets sweep direction.
func (s *Scheduler) SetAlgorithm(algo Algorithm) {
	s.algorithm = algo
	s.direction = 1
}

// Reset clears movement accounting and returns the head to cylinder 0,
// but leaves the pending request queue untouched.
func (s *Scheduler) Reset() {
	s.totalMovement = 0
	s.headPosition = 0
	s.accessHistory = nil
	s.direction = 1
}

// Compare simulates FCFS, SSTF, and SCAN independently over the same
// pending requests from headStart, and reports total head movement per
// algorithm, without mutating requests.
func Compare(headStart, maxCylinder int, requests []int) map[Algorithm]int {
	movements := make(map[Algorithm]int, 3)
	for _, algo := range []Algorithm{FCFS, SSTF, SCAN} {
		temp := NewScheduler(maxCylinder, algo)
		temp.headPosition = headStart
		for _, req := range requests {
			temp.AddRequest(req)
		}
		for temp.Pending() > 0 {
			temp.ProcessNext()
		}
		movements[algo] = temp.TotalMovement()
	}
	return movements
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func minInt(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxInt(xs []int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
