// Package io implements the multi-device I/O manager: independent
// per-device priority queues for the Printer, Disk, and Network devices,
// each serviced by a single-request-at-a-time busy/free state machine
// advanced one tick at a time.
package io

import (
	"sort"

	"github.com/eldux123/kernel-simulator/internal/logging"
)

// Device identifies one of the fixed set of I/O devices.
type Device int

const (
	Printer Device = iota
	Disk
	Network
)

var devices = [...]Device{Printer, Disk, Network}

var deviceNames = [...]string{
	Printer: "Printer",
	Disk:    "Disk",
	Network: "Network",
}

func (d Device) String() string {
	if int(d) < 0 || int(d) >= len(deviceNames) {
		return "Unknown"
	}
	return deviceNames[d]
}

// ParseDevice maps a lowercase token onto a Device.
func ParseDevice(token string) (Device, bool) {
	switch token {
	case "printer":
		return Printer, true
	case "disk":
		return Disk, true
	case "network":
		return Network, true
	default:
		return 0, false
	}
}

// Priority orders pending requests within a device's queue; lower value
// is serviced first.
type Priority int

const (
	High Priority = iota
	Medium
	Low
)

var priorityNames = [...]string{
	High:   "High",
	Medium: "Medium",
	Low:    "Low",
}

func (p Priority) String() string {
	if int(p) < 0 || int(p) >= len(priorityNames) {
		return "Unknown"
	}
	return priorityNames[p]
}

// ParsePriority maps a lowercase token onto a Priority.
func ParsePriority(token string) (Priority, bool) {
	switch token {
	case "high":
		return High, true
	case "medium":
		return Medium, true
	case "low":
		return Low, true
	default:
		return 0, false
	}
}

// Request is one pending or in-service I/O operation. Size is the
// remaining number of bytes left to transfer; it is decremented by the
// owning device's service rate on every tick the request is in service.
type Request struct {
	PID          int
	Priority     Priority
	Device       Device
	Size         int
	Arrival      int
	CompleteTick int
	WaitTicks    int
}

// byPriorityThenArrival orders a device's pending requests by ascending
// Priority and, within a priority, by arrival order (FIFO), the same
// composite-key ordering style the teacher uses for its sort.Interface
// implementations.
type byPriorityThenArrival []Request

func (o byPriorityThenArrival) Len() int      { return len(o) }
func (o byPriorityThenArrival) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o byPriorityThenArrival) Less(i, j int) bool {
	if o[i].Priority != o[j].Priority {
		return o[i].Priority < o[j].Priority
	}
	return o[i].Arrival < o[j].Arrival
}

type deviceState struct {
	pending         []Request
	rate            int
	current         Request
	serving         bool
	totalProcessing int
}

// DefaultRates gives each device a plausible fixed service rate in bytes
// per tick, used by NewManager. Printer is the slowest device, Network
// the fastest, matching the relative ordering original_source assumes.
var DefaultRates = map[Device]int{
	Printer: 4,
	Disk:    16,
	Network: 32,
}

// Manager owns one independent queue+service loop per device.
type Manager struct {
	devices           map[Device]*deviceState
	globalTime        int
	totalRequests     int
	completedRequests int
	admittedRequests  int
	totalWaitTicks    int
}

// NewManager builds a manager with all devices idle, serviced at
// DefaultRates.
func NewManager() *Manager {
	return NewManagerWithRates(DefaultRates)
}

// NewManagerWithRates builds a manager whose devices are serviced at the
// given per-device rates (bytes per tick); a device missing from rates
// falls back to its DefaultRates entry.
func NewManagerWithRates(rates map[Device]int) *Manager {
	m := &Manager{devices: make(map[Device]*deviceState, len(devices))}
	for _, d := range devices {
		rate := rates[d]
		if rate <= 0 {
			rate = DefaultRates[d]
		}
		m.devices[d] = &deviceState{rate: rate}
	}
	return m
}

// SubmitRequest enqueues a request for pid on the given device, size
// bytes long.
func (m *Manager) SubmitRequest(pid int, priority Priority, device Device, size int) {
	dev := m.devices[device]
	dev.pending = append(dev.pending, Request{
		PID: pid, Priority: priority, Device: device, Size: size, Arrival: m.globalTime,
	})
	m.totalRequests++
	logging.Logger().WithFields(logging.Event{
		"pid": pid, "device": device.String(), "priority": priority.String(), "size": size,
	}).Debug("io request submitted")
}

// Tick advances every device by one tick: subtract its rate from
// whichever request is in service, freeing the device when the request's
// size reaches zero, then admit the highest-priority pending request
// into any now-idle device.
func (m *Manager) Tick() {
	m.globalTime++

	for _, d := range devices {
		dev := m.devices[d]
		if !dev.serving {
			continue
		}
		dev.current.Size -= dev.rate
		if dev.current.Size <= 0 {
			dev.current.CompleteTick = m.globalTime
			dev.totalProcessing += m.globalTime - dev.current.Arrival
			m.completedRequests++
			logging.Logger().WithFields(logging.Event{
				"device": d.String(), "pid": dev.current.PID, "waitTicks": dev.current.WaitTicks,
			}).Debug("io request completed")
			dev.serving = false
		}
	}

	for _, d := range devices {
		dev := m.devices[d]
		if dev.serving || len(dev.pending) == 0 {
			continue
		}
		sort.Stable(byPriorityThenArrival(dev.pending))
		next := dev.pending[0]
		dev.pending = dev.pending[1:]
		next.WaitTicks = m.globalTime - next.Arrival
		m.totalWaitTicks += next.WaitTicks
		m.admittedRequests++
		dev.current = next
		dev.serving = true
		logging.Logger().WithFields(logging.Event{
			"device": d.String(), "pid": next.PID, "size": next.Size, "waitTicks": next.WaitTicks,
		}).Debug("io request admitted into service")
	}
}

// DeviceStatus is the plain-data reporting surface for one device.
type DeviceStatus struct {
	Device          Device
	Busy            bool
	RemainingSize   int
	ServingPID      int
	Pending         int
	Rate            int
	TotalProcessing int
}

// Status reports the current state of every device.
func (m *Manager) Status() []DeviceStatus {
	out := make([]DeviceStatus, 0, len(devices))
	for _, d := range devices {
		dev := m.devices[d]
		servingPID := noServing
		remaining := 0
		if dev.serving {
			servingPID = dev.current.PID
			remaining = dev.current.Size
		}
		out = append(out, DeviceStatus{
			Device:          d,
			Busy:            dev.serving,
			RemainingSize:   remaining,
			ServingPID:      servingPID,
			Pending:         len(dev.pending),
			Rate:            dev.rate,
			TotalProcessing: dev.totalProcessing,
		})
	}
	return out
}

const noServing = -1

// Stats is the plain-data reporting surface for the manager as a whole.
type Stats struct {
	TotalRequests     int
	CompletedRequests int
	PendingRequests   int
	GlobalTime        int
	Throughput        float64
	AvgWaitTicks      float64
	TotalProcessing   int
}

// Report summarizes cumulative manager counters.
func (m *Manager) Report() Stats {
	pending := 0
	totalProcessing := 0
	for _, dev := range m.devices {
		pending += len(dev.pending)
		totalProcessing += dev.totalProcessing
	}
	var throughput float64
	if m.globalTime > 0 {
		throughput = float64(m.completedRequests) / float64(m.globalTime)
	}
	var avgWait float64
	if m.admittedRequests > 0 {
		avgWait = float64(m.totalWaitTicks) / float64(m.admittedRequests)
	}
	return Stats{
		TotalRequests:     m.totalRequests,
		CompletedRequests: m.completedRequests,
		PendingRequests:   pending,
		GlobalTime:        m.globalTime,
		Throughput:        throughput,
		AvgWaitTicks:      avgWait,
		TotalProcessing:   totalProcessing,
	}
}
