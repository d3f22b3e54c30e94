// Package scheduler implements the two CPU scheduling policies this
// simulator drives every tick: round-robin (with thread and
// producer/consumer integration) and non-preemptive shortest-job-first.
package scheduler

import (
	"sort"

	"github.com/eldux123/kernel-simulator/internal/logging"
	"github.com/eldux123/kernel-simulator/internal/memory"
	"github.com/eldux123/kernel-simulator/internal/process"
	syncpkg "github.com/eldux123/kernel-simulator/internal/sync"
)

// DefaultQuantum is used when a non-positive quantum is requested.
const DefaultQuantum = 3

const noRunning = -1

// SchedulerRR is a round-robin scheduler with thread support and
// producer/consumer-driven blocking. It holds exclusive references to
// the memory manager and bounded buffer it was built with.
type SchedulerRR struct {
	quantum     int
	globalTick  int
	nextPid     int
	processes   map[int]*process.PCB
	readyQueue  []int
	runningPid  int
	quantumUsed int

	mem *memory.Manager
	pc  *syncpkg.ProducerConsumer
}

// NewSchedulerRR builds a scheduler over mm and pc with the given
// quantum (DefaultQuantum if quantum <= 0).
func NewSchedulerRR(mm *memory.Manager, pc *syncpkg.ProducerConsumer, quantum int) *SchedulerRR {
	if quantum <= 0 {
		quantum = DefaultQuantum
	}
	return &SchedulerRR{
		quantum:    quantum,
		nextPid:    1,
		runningPid: noRunning,
		processes:  make(map[int]*process.PCB),
		mem:        mm,
		pc:         pc,
	}
}

// Tick returns the current global tick counter.
func (s *SchedulerRR) Tick() int { return s.globalTick }

func (s *SchedulerRR) sortedPIDs() []int {
	pids := make([]int, 0, len(s.processes))
	for pid := range s.processes {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}

// CreateProcess admits a new process in Ready state at the back of the
// ready queue.
func (s *SchedulerRR) CreateProcess(burst, pages int, role process.Role) int {
	pid := s.nextPid
	s.nextPid++
	p := process.NewPCB(pid, burst, s.globalTick, pages, role)
	p.State = process.Ready
	s.processes[pid] = p
	s.readyQueue = append(s.readyQueue, pid)
	logging.Logger().WithFields(logging.Event{"pid": pid, "burst": burst, "role": role.String()}).Info("process created")
	return pid
}

// CreateThreadInProcess spawns a new thread in pid, failing if pid is
// unknown or already holds process.MaxThreadsPerProcess threads.
func (s *SchedulerRR) CreateThreadInProcess(pid, burstPerThread int) (int, bool) {
	p, ok := s.processes[pid]
	if !ok {
		return -1, false
	}
	t, ok := p.AddThread(burstPerThread)
	if !ok {
		return -1, false
	}
	t.State = process.ThreadReady
	return t.TID, true
}

// KillProcess forcibly terminates pid, releasing its frames.
func (s *SchedulerRR) KillProcess(pid int) bool {
	p, ok := s.processes[pid]
	if !ok {
		return false
	}
	p.State = process.Terminated
	p.FinishTick = s.globalTick
	s.mem.FreeFramesOfPid(pid)
	if s.runningPid == pid {
		s.runningPid = noRunning
		s.quantumUsed = 0
	}
	return true
}

// SuspendProcess moves pid to Suspended, pulling it off the CPU if it
// was running. It fails for unknown, already-terminated, or
// already-suspended processes.
func (s *SchedulerRR) SuspendProcess(pid int) bool {
	p, ok := s.processes[pid]
	if !ok || p.State == process.Terminated || p.State == process.Suspended {
		return false
	}
	if s.runningPid == pid {
		s.runningPid = noRunning
		s.quantumUsed = 0
	}
	remaining := s.readyQueue[:0]
	for _, queued := range s.readyQueue {
		if queued != pid {
			remaining = append(remaining, queued)
		}
	}
	s.readyQueue = remaining
	p.State = process.Suspended
	return true
}

// ResumeProcess moves a Suspended process back to Ready, at the back of
// the ready queue.
func (s *SchedulerRR) ResumeProcess(pid int) bool {
	p, ok := s.processes[pid]
	if !ok || p.State != process.Suspended {
		return false
	}
	p.State = process.Ready
	s.readyQueue = append(s.readyQueue, pid)
	return true
}

// Process exposes the live PCB for pid for inspection, e.g. by the
// reporting surface or a test.
func (s *SchedulerRR) Process(pid int) (*process.PCB, bool) {
	p, ok := s.processes[pid]
	return p, ok
}

func (s *SchedulerRR) scheduleNext() {
	for len(s.readyQueue) > 0 && s.processes[s.readyQueue[0]].State == process.Terminated {
		s.readyQueue = s.readyQueue[1:]
	}
	if len(s.readyQueue) == 0 {
		return
	}
	pid := s.readyQueue[0]
	s.readyQueue = s.readyQueue[1:]
	p := s.processes[pid]
	if p.BurstRemaining > 0 {
		s.runningPid = pid
		s.quantumUsed = 0
		// Marked Running here, before the waiting-time sweep runs, so the
		// process just selected this tick is not credited a waiting tick
		// for the tick it starts running.
		p.State = process.Running
	} else {
		p.State = process.Terminated
	}
}

// RunTicks advances the scheduler by n ticks.
func (s *SchedulerRR) RunTicks(n int) {
	for i := 0; i < n; i++ {
		s.tickOnce()
	}
}

func (s *SchedulerRR) tickOnce() {
	s.globalTick++
	if s.runningPid == noRunning {
		s.scheduleNext()
	}

	for _, p := range s.processes {
		if p.State == process.Ready || p.State == process.Waiting {
			p.WaitingTicks++
		}
	}

	if s.runningPid != noRunning {
		p := s.processes[s.runningPid]
		s.quantumUsed++

		page := p.NextPageAndAdvance()
		if fault := s.mem.Access(p.PID, page); fault {
			p.PageFaults++
		}
		p.PageAccesses++

		if p.HasThreads() {
			s.executeThreadTick(p)
			if p.BurstRemaining <= 0 {
				s.finishRunning(p)
			} else if s.quantumUsed >= s.quantum {
				s.preemptRunning(p)
			}
		} else {
			p.BurstRemaining--

			switch p.Role {
			case process.Producer:
				code := s.pc.TryProduce(p.PID)
				if code == syncpkg.OK {
					p.ItemsProduced++
				} else {
					s.blockRunning(p, code)
					return
				}
			case process.Consumer:
				if _, code := s.pc.TryConsume(p.PID); code == syncpkg.OK {
					p.ItemsConsumed++
				} else {
					s.blockRunning(p, code)
					return
				}
			}

			if p.BurstRemaining <= 0 {
				s.finishRunning(p)
			} else if s.quantumUsed >= s.quantum {
				s.preemptRunning(p)
			}
		}
	}

	s.unblockWaitingProcesses()
}

func (s *SchedulerRR) finishRunning(p *process.PCB) {
	p.State = process.Terminated
	p.FinishTick = s.globalTick
	s.mem.FreeFramesOfPid(p.PID)
	s.runningPid = noRunning
	s.quantumUsed = 0
	logging.Logger().WithFields(logging.Event{"pid": p.PID, "tick": s.globalTick}).Info("process terminated")
}

func (s *SchedulerRR) preemptRunning(p *process.PCB) {
	p.State = process.Ready
	s.readyQueue = append(s.readyQueue, p.PID)
	s.runningPid = noRunning
	s.quantumUsed = 0
}

func (s *SchedulerRR) blockRunning(p *process.PCB, resultCode int) {
	p.State = process.Waiting
	p.BlockedOnSemaphore = resultCode - 1
	s.runningPid = noRunning
	s.quantumUsed = 0
}

// executeThreadTick runs one cooperative step of the first Ready/Running
// thread in p, mirroring the process-level producer/consumer dispatch at
// thread granularity.
func (s *SchedulerRR) executeThreadTick(p *process.PCB) {
	active := p.ActiveThread()
	if active == nil {
		return
	}

	active.State = process.ThreadRunning
	active.BurstRemaining--

	switch p.Role {
	case process.Producer:
		code := s.pc.TryProduce(p.PID)
		if code == syncpkg.OK {
			active.ItemsProduced++
			p.ItemsProduced++
		} else {
			active.State = process.ThreadWaiting
			active.BlockedOnSemaphore = code - 1
			return
		}
	case process.Consumer:
		if _, code := s.pc.TryConsume(p.PID); code == syncpkg.OK {
			active.ItemsConsumed++
			p.ItemsConsumed++
		} else {
			active.State = process.ThreadWaiting
			active.BlockedOnSemaphore = code - 1
			return
		}
	}

	for _, t := range p.Threads {
		if t.TID != active.TID && (t.State == process.ThreadReady || t.State == process.ThreadWaiting) {
			t.WaitingTicks++
		}
	}

	if active.BurstRemaining <= 0 {
		active.State = process.ThreadTerminated
		if p.AllThreadsTerminated() {
			p.BurstRemaining = 0
		}
	} else {
		active.State = process.ThreadReady
	}
}

// unblockWaitingProcesses retries the blocked operation for every
// Waiting process (and every Waiting thread in threaded processes), in
// ascending PID order, moving whoever now succeeds back to Ready.
func (s *SchedulerRR) unblockWaitingProcesses() {
	for _, pid := range s.sortedPIDs() {
		p := s.processes[pid]

		if !p.HasThreads() && p.State == process.Waiting {
			var code int
			switch p.Role {
			case process.Producer:
				code = s.pc.TryProduce(p.PID)
				if code == syncpkg.OK {
					p.ItemsProduced++
				}
			case process.Consumer:
				_, code = s.pc.TryConsume(p.PID)
				if code == syncpkg.OK {
					p.ItemsConsumed++
				}
			}
			if code == syncpkg.OK {
				p.State = process.Ready
				p.BlockedOnSemaphore = process.NoSemaphore
				s.readyQueue = append(s.readyQueue, p.PID)
			}
		}

		if p.HasThreads() {
			for _, t := range p.Threads {
				if t.State != process.ThreadWaiting {
					continue
				}
				unblocked := false
				switch p.Role {
				case process.Producer:
					if code := s.pc.TryProduce(p.PID); code == syncpkg.OK {
						t.ItemsProduced++
						p.ItemsProduced++
						t.State = process.ThreadReady
						t.BlockedOnSemaphore = process.NoSemaphore
						unblocked = true
					}
				case process.Consumer:
					if _, code := s.pc.TryConsume(p.PID); code == syncpkg.OK {
						t.ItemsConsumed++
						p.ItemsConsumed++
						t.State = process.ThreadReady
						t.BlockedOnSemaphore = process.NoSemaphore
						unblocked = true
					}
				}
				if unblocked && p.State == process.Waiting {
					p.State = process.Ready
					s.readyQueue = append(s.readyQueue, p.PID)
				}
			}
		}
	}
}

// ProcessSummary is the plain-data row reported per process.
type ProcessSummary struct {
	PID                int
	Role               process.Role
	State              process.State
	BurstRemaining     int
	WaitingTicks       int
	NumPages           int
	PageFaults         int
	PageAccesses       int
	ItemsProduced      int
	ItemsConsumed      int
	BlockedOnSemaphore int
	NumThreads         int
	Turnaround         int
}

// ListProcesses reports every known process, in ascending PID order.
func (s *SchedulerRR) ListProcesses() []ProcessSummary {
	out := make([]ProcessSummary, 0, len(s.processes))
	for _, pid := range s.sortedPIDs() {
		p := s.processes[pid]
		out = append(out, ProcessSummary{
			PID: p.PID, Role: p.Role, State: p.State, BurstRemaining: p.BurstRemaining,
			WaitingTicks: p.WaitingTicks, NumPages: p.NumPages, PageFaults: p.PageFaults,
			PageAccesses: p.PageAccesses, ItemsProduced: p.ItemsProduced, ItemsConsumed: p.ItemsConsumed,
			BlockedOnSemaphore: p.BlockedOnSemaphore, NumThreads: len(p.Threads), Turnaround: p.Turnaround(),
		})
	}
	return out
}

// Stats is the plain-data summary report across all processes.
type Stats struct {
	GlobalTick        int
	TotalProcesses    int
	FinishedProcesses int
	AvgWaiting        float64
	AvgTurnaround     float64
}

// Report summarizes the scheduler's process population.
func (s *SchedulerRR) Report() Stats {
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
