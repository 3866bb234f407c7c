package probe

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"mirrorlab/internal/domain"
)

// fakeProber returns canned verdicts keyed by device name
type fakeProber struct {
	mu       sync.Mutex
	verdicts map[string]error
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	block    chan struct{}
}

func (f *fakeProber) Name() string { return "fake" }

func (f *fakeProber) Probe(ctx context.Context, device *domain.Device) error {
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if cur <= seen || f.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verdicts[device.Name]
}

func TestPartition(t *testing.T) {
	devices := []*domain.Device{
		domain.NewDevice("leaf1", "10.0.0.1", "access-leaf"),
		domain.NewDevice("leaf2", "10.0.0.2", "access-leaf"),
		domain.NewDevice("spine1", "10.0.0.3", "spine"),
		domain.NewDevice("orphan", "", "spine"),
	}

	prober := &fakeProber{verdicts: map[string]error{
		"leaf1":  nil,
		"leaf2":  domain.NewFault(domain.FaultTimeout, "leaf2", "tcp probe", errors.New("i/o timeout")),
		"spine1": nil,
	}}

	result := NewPrechecker(prober, 2).Partition(context.Background(), devices)

	if len(result.Reachable) != 2 {
		t.Fatalf("expected 2 reachable devices, got %d", len(result.Reachable))
	}
	if len(result.Excluded) != 2 {
		t.Fatalf("expected 2 exclusions, got %d", len(result.Excluded))
	}

	for _, d := range result.Reachable {
		if d.Status != domain.DeviceStatusReachable {
			t.Errorf("device %s status = %s, expected reachable", d.Name, d.Status)
		}
	}

	byDevice := make(map[string]domain.Exclusion)
	for _, e := range result.Excluded {
		if e.Phase != domain.PhasePrecheck {
			t.Errorf("exclusion for %s has phase %s, expected precheck", e.Device, e.Phase)
		}
		byDevice[e.Device] = e
	}
	if _, ok := byDevice["leaf2"]; !ok {
		t.Error("expected leaf2 to be excluded")
	}
	orphan, ok := byDevice["orphan"]
	if !ok {
		t.Fatal("expected orphan to be excluded")
	}
	if !strings.Contains(orphan.Reason, "no management address") {
		t.Errorf("orphan exclusion reason = %q, expected address complaint", orphan.Reason)
	}
	if devices[3].Status != domain.DeviceStatusUnreachable {
		t.Errorf("orphan status = %s, expected unreachable", devices[3].Status)
	}
}

func TestPartitionPreservesInventoryOrder(t *testing.T) {
	devices := []*domain.Device{
		domain.NewDevice("c", "10.0.0.3", "spine"),
		domain.NewDevice("a", "10.0.0.1", "spine"),
		domain.NewDevice("b", "10.0.0.2", "spine"),
	}
	prober := &fakeProber{verdicts: map[string]error{}}

	result := NewPrechecker(prober, 3).Partition(context.Background(), devices)

	want := []string{"c", "a", "b"}
	if len(result.Reachable) != len(want) {
		t.Fatalf("expected %d reachable, got %d", len(want), len(result.Reachable))
	}
	for i, name := range want {
		if result.Reachable[i].Name != name {
			t.Errorf("reachable[%d] = %s, expected %s", i, result.Reachable[i].Name, name)
		}
	}
}

func TestPartitionConcurrencyBound(t *testing.T) {
	const bound = 3
	var devices []*domain.Device
	verdicts := make(map[string]error)
	for _, name := range []string{"d1", "d2", "d3", "d4", "d5", "d6", "d7", "d8", "d9", "d10"} {
		devices = append(devices, domain.NewDevice(name, "10.0.0.1", "spine"))
		verdicts[name] = nil
	}

	block := make(chan struct{})
	prober := &fakeProber{verdicts: verdicts, block: block}

	done := make(chan *Result, 1)
	go func() {
		done <- NewPrechecker(prober, bound).Partition(context.Background(), devices)
	}()

	// Release all probes once the pool has had a chance to saturate
	for i := 0; i < len(devices); i++ {
		block <- struct{}{}
	}
	result := <-done

	if got := prober.maxSeen.Load(); got > bound {
		t.Errorf("observed %d concurrent probes, bound is %d", got, bound)
	}
	if len(result.Reachable) != len(devices) {
		t.Errorf("expected all %d devices reachable, got %d", len(devices), len(result.Reachable))
	}
}

func TestPartitionEmptyInventory(t *testing.T) {
	prober := &fakeProber{verdicts: map[string]error{}}
	result := NewPrechecker(prober, 5).Partition(context.Background(), nil)
	if len(result.Reachable) != 0 || len(result.Excluded) != 0 {
		t.Errorf("expected empty result, got %d reachable and %d excluded",
			len(result.Reachable), len(result.Excluded))
	}
}

func TestPartitionCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	devices := []*domain.Device{
		domain.NewDevice("leaf1", "10.0.0.1", "spine"),
		domain.NewDevice("leaf2", "10.0.0.2", "spine"),
	}
	prober := &fakeProber{verdicts: map[string]error{}}

	result := NewPrechecker(prober, 1).Partition(ctx, devices)

	if len(result.Reachable) != 0 {
		t.Errorf("expected no reachable devices after cancel, got %d", len(result.Reachable))
	}
	if len(result.Excluded) != len(devices) {
		t.Errorf("expected %d exclusions after cancel, got %d", len(devices), len(result.Excluded))
	}
}

func TestPassAll(t *testing.T) {
	devices := []*domain.Device{
		domain.NewDevice("leaf1", "10.0.0.1", "spine"),
		domain.NewDevice("leaf2", "", "spine"),
	}

	result := PassAll(devices)

	if len(result.Reachable) != 2 {
		t.Fatalf("expected 2 reachable devices, got %d", len(result.Reachable))
	}
	if len(result.Excluded) != 0 {
		t.Errorf("expected no exclusions, got %d", len(result.Excluded))
	}
	for _, d := range devices {
		if d.Status != domain.DeviceStatusReachable {
			t.Errorf("device %s status = %s, expected reachable", d.Name, d.Status)
		}
	}
}
