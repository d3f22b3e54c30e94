package scheduler

import (
	"sort"

	"github.com/eldux123/kernel-simulator/internal/logging"
	"github.com/eldux123/kernel-simulator/internal/memory"
	"github.com/eldux123/kernel-simulator/internal/process"
)

// SchedulerSJF is a non-preemptive shortest-job-first scheduler: no
// quantum, no threads, no producer/consumer integration, just page
// access bookkeeping against a shared memory manager.
type SchedulerSJF struct {
	globalTick int
	nextPid    int
	processes  map[int]*process.PCB
	readyQueue []int
	runningPid int

	mem *memory.Manager
}

// NewSchedulerSJF builds a scheduler over mm.
func NewSchedulerSJF(mm *memory.Manager) *SchedulerSJF {
	return &SchedulerSJF{
		nextPid:    1,
		runningPid: noRunning,
		processes:  make(map[int]*process.PCB),
		mem:        mm,
	}
}

// Tick returns the current global tick counter.
func (s *SchedulerSJF) Tick() int { return s.globalTick }

// CreateProcess admits a new Normal-role process in Ready state.
func (s *SchedulerSJF) CreateProcess(burst, pages int) int {
	pid := s.nextPid
	s.nextPid++
	p := process.NewPCB(pid, burst, s.globalTick, pages, process.Normal)
	p.State = process.Ready
	s.processes[pid] = p
	s.readyQueue = append(s.readyQueue, pid)
	logging.Logger().WithFields(logging.Event{"pid": pid, "burst": burst}).Info("process created")
	return pid
}

// Process exposes the live PCB for pid.
func (s *SchedulerSJF) Process(pid int) (*process.PCB, bool) {
	p, ok := s.processes[pid]
	return p, ok
}

func (s *SchedulerSJF) scheduleNext() {
	filtered := s.readyQueue[:0]
	for _, pid := range s.readyQueue {
		if s.processes[pid].State != process.Terminated {
			filtered = append(filtered, pid)
		}
	}
	s.readyQueue = filtered

	if len(s.readyQueue) == 0 {
		return
	}

	best := s.readyQueue[0]
	for _, pid := range s.readyQueue {
		if s.processes[pid].BurstRemaining < s.processes[best].BurstRemaining {
			best = pid
		}
	}

	next := s.readyQueue[:0]
	for _, pid := range s.readyQueue {
		if pid != best {
			next = append(next, pid)
		}
	}
	s.readyQueue = next
	s.runningPid = best
	// Marked Running here, before the waiting-time sweep runs, so the
	// process just selected this tick is not credited a waiting tick for
	// the tick it starts running.
	s.processes[best].State = process.Running
}

// RunTicks advances the scheduler by n ticks.
func (s *SchedulerSJF) RunTicks(n int) {
	for i := 0; i < n; i++ {
		s.tickOnce()
	}
}

func (s *SchedulerSJF) tickOnce() {
	s.globalTick++
	if s.runningPid == noRunning {
		s.scheduleNext()
	}

	for _, p := range s.processes {
		if p.State == process.Ready {
			p.WaitingTicks++
		}
	}

	if s.runningPid == noRunning {
		return
	}

	p := s.processes[s.runningPid]
	p.BurstRemaining--

	page := p.NextPageAndAdvance()
	if fault := s.mem.Access(p.PID, page); fault {
		p.PageFaults++
	}
	p.PageAccesses++

	if p.BurstRemaining <= 0 {
		p.State = process.Terminated
		p.FinishTick = s.globalTick
		s.mem.FreeFramesOfPid(p.PID)
		s.runningPid = noRunning
		logging.Logger().WithFields(logging.Event{"pid": p.PID, "tick": s.globalTick}).Info("process terminated")
	}
}

func (s *SchedulerSJF) sortedPIDs() []int {
	pids := make([]int, 0, len(s.processes))
	for pid := range s.processes {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}

// ListProcesses reports every known process, in ascending PID order.
func (s *SchedulerSJF) ListProcesses() []ProcessSummary {
	out := make([]ProcessSummary, 0, len(s.processes))
	for _, pid := range s.sortedPIDs() {
		p := s.processes[pid]
		out = append(out, ProcessSummary{
			PID: p.PID, Role: p.Role, State: p.State, BurstRemaining: p.BurstRemaining,
			WaitingTicks: p.WaitingTicks, NumPages: p.NumPages, PageFaults: p.PageFaults,
			PageAccesses: p.PageAccesses, Turnaround: p.Turnaround(),
		})
	}
	return out
}

// Report summarizes the scheduler's process population.
func (s *SchedulerSJF) Report() Stats {
	st := Stats{GlobalTick: s.globalTick, TotalProcesses: len(s.processes)}
	var waitSum, turnSum float64
	for _, p := range s.processes {
		if p.State == process.Terminated {
			st.FinishedProcesses++
			waitSum += float64(p.WaitingTicks)
			turnSum += float64(p.Turnaround())
		}
	}
	if st.FinishedProcesses > 0 {
		st.AvgWaiting = waitSum / float64(st.FinishedProcesses)
		st.AvgTurnaround = turnSum / float64(st.FinishedProcesses)
	}
	return st
}
