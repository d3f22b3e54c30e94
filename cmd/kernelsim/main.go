// Command kernelsim is a thin, non-interactive demo binary: it wires the
// core engines together in the order the scheduler depends on them, runs
// one fixed scenario for its configured number of ticks (whether or not
// every process has finished by then), and logs every significant event.
// It is not the interactive menu this module deliberately leaves out —
// there is no command parser and no terminal rendering here, only a
// scenario and a final set of plain-data reports.
package main

import (
	"fmt"
	"os"

	"github.com/eldux123/kernel-simulator/internal/config"
	"github.com/eldux123/kernel-simulator/internal/disk"
	"github.com/eldux123/kernel-simulator/internal/heap"
	kernelio "github.com/eldux123/kernel-simulator/internal/io"
	"github.com/eldux123/kernel-simulator/internal/logging"
	"github.com/eldux123/kernel-simulator/internal/memory"
	"github.com/eldux123/kernel-simulator/internal/process"
	"github.com/eldux123/kernel-simulator/internal/scheduler"
	syncpkg "github.com/eldux123/kernel-simulator/internal/sync"
)

// Scenario holds every tunable parameter for a run; cmd/kernelsim loads it
// from an optional JSON file so a scenario can be swapped without a
// rebuild.
type Scenario struct {
	Quantum         int    `json:"quantum"`
	Ticks           int    `json:"ticks"`
	MemoryFrames    int    `json:"memory_frames"`
	MemoryAlgorithm string `json:"memory_algorithm"`
	BufferCapacity  int    `json:"buffer_capacity"`
	HeapTotalSize   uint64 `json:"heap_total_size"`
	HeapMinBlock    uint64 `json:"heap_min_block"`
	DiskMaxCylinder int    `json:"disk_max_cylinder"`
	DiskAlgorithm   string `json:"disk_algorithm"`
	LogLevel        string `json:"log_level"`
}

func defaultScenario() Scenario {
	return Scenario{
		Quantum:         2,
		Ticks:           20,
		MemoryFrames:    4,
		MemoryAlgorithm: "lru",
		BufferCapacity:  2,
		HeapTotalSize:   1024,
		HeapMinBlock:    32,
		DiskMaxCylinder: 200,
		DiskAlgorithm:   "scan",
		LogLevel:        "info",
	}
}

func main() {
	scn := defaultScenario()
	if len(os.Args) > 1 {
		if err := config.Load(os.Args[1], &scn); err != nil {
			fmt.Fprintln(os.Stderr, "kernelsim: failed to load scenario:", err)
			os.Exit(1)
		}
	}
	logging.SetLevel(scn.LogLevel)
	log := logging.Logger()

	memAlgo, ok := memory.ParseAlgorithm(scn.MemoryAlgorithm)
	if !ok {
		log.WithFields(logging.Event{"algorithm": scn.MemoryAlgorithm}).Warn("unknown memory algorithm, defaulting to LRU")
		memAlgo = memory.LRU
	}
	diskAlgo, ok := disk.ParseAlgorithm(scn.DiskAlgorithm)
	if !ok {
		log.WithFields(logging.Event{"algorithm": scn.DiskAlgorithm}).Warn("unknown disk algorithm, defaulting to SCAN")
		diskAlgo = disk.SCAN
	}

	mm := memory.NewManager(scn.MemoryFrames, memAlgo)
	pc := syncpkg.NewProducerConsumer(scn.BufferCapacity)
	cpu := scheduler.NewSchedulerRR(mm, pc, scn.Quantum)

	alloc := heap.NewAllocator(scn.HeapTotalSize, scn.HeapMinBlock)
	diskSched := disk.NewScheduler(scn.DiskMaxCylinder, diskAlgo)
	ioMgr := kernelio.NewManager()

	log.Info("scenario starting")

	// A small mixed workload: a couple of normal processes, a
	// producer/consumer pair sharing pc, one process driven entirely by
	// worker threads, and a handful of allocator/disk/IO requests issued
	// up front so their engines have something to service alongside the
	// CPU schedule.
	cpu.CreateProcess(6, 3, process.Normal)
	cpu.CreateProcess(5, 2, process.Normal)
	producer := cpu.CreateProcess(8, 2, process.Producer)
	cpu.CreateProcess(6, 2, process.Consumer)

	threaded := cpu.CreateProcess(1, 2, process.Normal)
	if _, ok := cpu.CreateThreadInProcess(threaded, 3); !ok {
		log.Warn("failed to spawn first worker thread")
	}
	if _, ok := cpu.CreateThreadInProcess(threaded, 3); !ok {
		log.Warn("failed to spawn second worker thread")
	}

	if block, ok := alloc.Allocate(128); ok {
		log.WithFields(logging.Event{"address": block.Address, "size": block.Size}).Info("heap block reserved for demo workload")
	}

	for _, cyl := range []int{98, 183, 37, 122, 14, 124, 65, 67} {
		diskSched.AddRequest(cyl)
	}

	ioMgr.SubmitRequest(producer, kernelio.Medium, kernelio.Printer, 12) // bytes, serviced at Printer's fixed rate
	ioMgr.SubmitRequest(producer, kernelio.High, kernelio.Disk, 32)

	for tick := 0; tick < scn.Ticks; tick++ {
		cpu.RunTicks(1)
		ioMgr.Tick()
		if diskSched.Pending() > 0 {
			diskSched.ProcessNext()
		}
	}

	fmt.Println("scheduler report:", cpu.Report())
	for _, p := range cpu.ListProcesses() {
		fmt.Printf("  %+v\n", p)
	}
	fmt.Println("memory report:", mm.Report())
	fmt.Println("heap report:", alloc.Report())
	fmt.Println("disk head position:", diskSched.HeadPosition(), "total movement:", diskSched.TotalMovement())
	fmt.Println("io report:", ioMgr.Report())

	log.Info("scenario finished")
}
