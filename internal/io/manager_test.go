package io

import "testing"

func TestSubmitAndServiceOneRequest(t *testing.T) {
	m := NewManagerWithRates(map[Device]int{Printer: 1, Disk: 1, Network: 1})
	m.SubmitRequest(1, High, Printer, 3)
	m.Tick() // admits the request; service (size -= rate) starts next tick

	status := findStatus(t, m, Printer)
	if !status.Busy || status.ServingPID != 1 {
		t.Fatalf("expected Printer busy serving pid 1, got %+v", status)
	}

	m.Tick() // 3 - 1 = 2
	m.Tick() // 2 - 1 = 1
	m.Tick() // 1 - 1 = 0, completes

	status = findStatus(t, m, Printer)
	if status.Busy {
		t.Fatalf("expected Printer idle after servicing its size, got %+v", status)
	}
	if m.Report().CompletedRequests != 1 {
		t.Fatalf("CompletedRequests = %d, want 1", m.Report().CompletedRequests)
	}
}

func TestRequestSizeDrivesCompletionNotTickCount(t *testing.T) {
	m := NewManagerWithRates(map[Device]int{Printer: 4, Disk: 1, Network: 1})
	m.SubmitRequest(1, High, Printer, 10)
	m.Tick() // admits this tick; not yet serviced

	m.Tick() // 10 - 4 = 6 bytes remaining
	status := findStatus(t, m, Printer)
	if status.RemainingSize != 6 {
		t.Fatalf("RemainingSize = %d, want 6", status.RemainingSize)
	}

	m.Tick() // 6 - 4 = 2 remaining
	m.Tick() // 2 - 4 <= 0, completes

	if m.Report().CompletedRequests != 1 {
		t.Fatalf("CompletedRequests = %d, want 1", m.Report().CompletedRequests)
	}
	if m.Report().GlobalTime != 4 {
		t.Fatalf("GlobalTime = %d, want 4", m.Report().GlobalTime)
	}
}

func TestHigherPriorityServicedFirst(t *testing.T) {
	m := NewManager()
	m.SubmitRequest(1, Low, Disk, 2)
	m.SubmitRequest(2, High, Disk, 2)
	m.Tick()

	status := findStatus(t, m, Disk)
	if status.ServingPID != 2 {
		t.Fatalf("expected the High-priority pid 2 admitted first, got serving pid %d", status.ServingPID)
	}
}

func TestDevicesAreIndependent(t *testing.T) {
	m := NewManager()
	m.SubmitRequest(1, High, Printer, 5)
	m.SubmitRequest(2, High, Network, 1)
	m.Tick()

	printerStatus := findStatus(t, m, Printer)
	networkStatus := findStatus(t, m, Network)
	if !printerStatus.Busy || !networkStatus.Busy {
		t.Fatalf("both devices should admit their own request independently: printer=%+v network=%+v", printerStatus, networkStatus)
	}
}

func TestPendingQueueDrainsFIFOWithinSamePriority(t *testing.T) {
	m := NewManager()
	m.SubmitRequest(1, Medium, Disk, 1)
	m.SubmitRequest(2, Medium, Disk, 1)
	m.Tick() // admits pid 1 (arrived first within Medium)

	status := findStatus(t, m, Disk)
	if status.ServingPID != 1 {
		t.Fatalf("expected FIFO within same priority to admit pid 1 first, got %d", status.ServingPID)
	}
}

// TestWaitTicksRecordedAtAdmission covers spec §4.6 step 2: a request's
// wait time is currentTick - arrivalTime, frozen the tick it is admitted
// into service, not recomputed afterward.
func TestWaitTicksRecordedAtAdmission(t *testing.T) {
	m := NewManagerWithRates(map[Device]int{Printer: 1, Disk: 1, Network: 1})
	m.SubmitRequest(1, High, Disk, 1)
	m.Tick() // admitted on the first tick after submission: wait = 1 - 0 = 1

	m.SubmitRequest(2, High, Disk, 1)
	// pid 1 is still in service (size 1, rate 1, completes next tick), so
	// pid 2 stays pending until pid 1 frees the device.
	m.Tick() // pid 1 completes; pid 2 admitted: wait = 2 - 1 = 1
	m.SubmitRequest(3, High, Disk, 1)
	m.Tick() // pid 2 completes; pid 3 admitted: wait = 3 - 2 = 1

	report := m.Report()
	if report.AvgWaitTicks <= 0 {
		t.Fatalf("AvgWaitTicks = %v, want > 0 once requests have queued", report.AvgWaitTicks)
	}
}

// TestTotalProcessingTimeAccumulatesOnCompletion covers spec §4.6 step 1's
// "update total processing time" clause: the manager must track more than
// raw throughput.
func TestTotalProcessingTimeAccumulatesOnCompletion(t *testing.T) {
	m := NewManagerWithRates(map[Device]int{Printer: 2, Disk: 1, Network: 1})
	m.SubmitRequest(1, High, Printer, 4)
	m.Tick() // admits; the request isn't serviced until the next tick
	m.Tick() // 4 - 2 = 2 remaining
	m.Tick() // 2 - 2 <= 0, completes at tick 3 (arrived at tick 0)

	if got := m.Report().TotalProcessing; got != 3 {
		t.Fatalf("TotalProcessing = %d, want 3", got)
	}
}

func findStatus(t *testing.T, m *Manager, d Device) DeviceStatus {
	t.Helper()
	for _, s := range m.Status() {
		if s.Device == d {
			return s
		}
	}
	t.Fatalf("no status entry for device %v", d)
	return DeviceStatus{}
}
