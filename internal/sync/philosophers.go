package sync

import "github.com/eldux123/kernel-simulator/internal/logging"

// NumPhilosophers is the fixed table size for DiningPhilosophers.
const NumPhilosophers = 5

// DiningPhilosophers is the classic deadlock-avoidance exercise: each
// fork is a binary semaphore, and even-numbered philosophers pick up
// their left fork first while odd-numbered ones pick up their right
// fork first, breaking the circular-wait condition.
type DiningPhilosophers struct {
	forks    [NumPhilosophers]*Semaphore
	eating   [NumPhilosophers]bool
	eatCount [NumPhilosophers]int
}

// NewDiningPhilosophers builds the table with all forks free.
func NewDiningPhilosophers() *DiningPhilosophers {
	dp := &DiningPhilosophers{}
	for i := range dp.forks {
		dp.forks[i] = NewSemaphore("fork", 1)
	}
	return dp
}

func (dp *DiningPhilosophers) neighbors(id int) (left, right int) {
	return id, (id + 1) % NumPhilosophers
}

// TryEat attempts to seat philosopher id with both forks. It returns
// false if id is out of range or either fork it needs is unavailable.
func (dp *DiningPhilosophers) TryEat(id int) bool {
	if id < 0 || id >= NumPhilosophers {
		return false
	}
	left, right := dp.neighbors(id)

	if id%2 == 0 {
		if !dp.forks[left].TryWait(id) {
			return false
		}
		if !dp.forks[right].TryWait(id) {
			dp.forks[left].Signal()
			return false
		}
	} else {
		if !dp.forks[right].TryWait(id) {
			return false
		}
		if !dp.forks[left].TryWait(id) {
			dp.forks[right].Signal()
			return false
		}
	}

	dp.eating[id] = true
	dp.eatCount[id]++
	logging.Logger().WithFields(logging.Event{"philosopher": id, "eat_count": dp.eatCount[id]}).Debug("philosopher started eating")
	return true
}

// FinishEating releases both forks id was holding and returns it to
// thinking.
func (dp *DiningPhilosophers) FinishEating(id int) {
	if id < 0 || id >= NumPhilosophers {
		return
	}
	left, right := dp.neighbors(id)
	dp.forks[left].Signal()
	dp.forks[right].Signal()
	dp.eating[id] = false
}

// IsEating reports whether philosopher id currently holds both forks.
func (dp *DiningPhilosophers) IsEating(id int) bool {
	if id < 0 || id >= NumPhilosophers {
		return false
	}
	return dp.eating[id]
}

// EatCount returns how many times philosopher id has successfully eaten.
func (dp *DiningPhilosophers) EatCount(id int) int {
	if id < 0 || id >= NumPhilosophers {
		return 0
	}
	return dp.eatCount[id]
}
