package collect

import (
	"context"
	"errors"
	"testing"

	"mirrorlab/internal/domain"
)

// fakeSource returns canned neighbor tables keyed by device name
type fakeSource struct {
	tables map[string][]domain.NeighborRecord
	errs   map[string]error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Neighbors(ctx context.Context, device *domain.Device) ([]domain.NeighborRecord, error) {
	if err := f.errs[device.Name]; err != nil {
		return nil, err
	}
	return f.tables[device.Name], nil
}

func TestPoll(t *testing.T) {
	devices := []*domain.Device{
		domain.NewDevice("leaf1", "10.0.0.1", "access-leaf"),
		domain.NewDevice("leaf2", "10.0.0.2", "access-leaf"),
		domain.NewDevice("spine1", "10.0.0.3", "spine"),
	}

	source := &fakeSource{
		tables: map[string][]domain.NeighborRecord{
			"leaf1": {
				{LocalDevice: "leaf1", LocalInterface: "Ethernet1", RemoteName: "spine1", RemoteInterface: "Ethernet1"},
			},
			"spine1": {
				{LocalDevice: "spine1", LocalInterface: "Ethernet1", RemoteName: "leaf1", RemoteInterface: "Ethernet1"},
				{LocalDevice: "spine1", LocalInterface: "Ethernet2", RemoteName: "leaf2", RemoteInterface: "Ethernet1"},
			},
		},
		errs: map[string]error{
			"leaf2": domain.NewFault(domain.FaultTimeout, "leaf2", "run command", errors.New("i/o timeout")),
		},
	}

	result := NewPoller(source, DefaultConfig()).Poll(context.Background(), devices)

	if len(result.Survivors) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(result.Survivors))
	}
	if len(result.Excluded) != 1 || result.Excluded[0].Device != "leaf2" {
		t.Fatalf("expected leaf2 excluded, got %+v", result.Excluded)
	}
	if result.Excluded[0].Phase != domain.PhasePoll {
		t.Errorf("exclusion phase = %s, expected neighbor-poll", result.Excluded[0].Phase)
	}

	// records merged in inventory order: leaf1's first, then spine1's
	if len(result.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(result.Records))
	}
	if result.Records[0].LocalDevice != "leaf1" {
		t.Errorf("first record from %s, expected leaf1", result.Records[0].LocalDevice)
	}
	if result.Records[1].LocalDevice != "spine1" || result.Records[2].LocalDevice != "spine1" {
		t.Errorf("expected spine1 records after leaf1's")
	}
}

func TestPollEmptyTableIsValid(t *testing.T) {
	devices := []*domain.Device{domain.NewDevice("lonely", "10.0.0.9", "spine")}
	source := &fakeSource{tables: map[string][]domain.NeighborRecord{}}

	result := NewPoller(source, DefaultConfig()).Poll(context.Background(), devices)

	if len(result.Survivors) != 1 {
		t.Fatalf("expected the isolated device to survive, got %d survivors", len(result.Survivors))
	}
	if len(result.Records) != 0 {
		t.Errorf("expected no records, got %d", len(result.Records))
	}
	if len(result.Excluded) != 0 {
		t.Errorf("expected no exclusions, got %+v", result.Excluded)
	}
}

func TestPollEmptyInventory(t *testing.T) {
	source := &fakeSource{}
	result := NewPoller(source, DefaultConfig()).Poll(context.Background(), nil)
	if len(result.Records) != 0 || len(result.Survivors) != 0 || len(result.Excluded) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestSSHSourceClassifiesParseFailure(t *testing.T) {
	runner := runnerFunc(func(ctx context.Context, device *domain.Device, command string) (string, error) {
		return "% Invalid input", nil
	})
	device := domain.NewDevice("leaf1", "10.0.0.1", "access-leaf")

	_, err := NewSSHSource(runner, DefaultConfig()).Neighbors(context.Background(), device)
	if err == nil {
		t.Fatal("expected a parse failure")
	}
	if !domain.IsFault(err, domain.FaultCommand) {
		t.Errorf("expected command_error fault, got %v", err)
	}
}

func TestSSHSourceEmptyOutputIsCommandError(t *testing.T) {
	runner := runnerFunc(func(ctx context.Context, device *domain.Device, command string) (string, error) {
		return "", nil
	})
	device := domain.NewDevice("leaf1", "10.0.0.1", "access-leaf")

	_, err := NewSSHSource(runner, DefaultConfig()).Neighbors(context.Background(), device)
	if err == nil {
		t.Fatal("expected empty output to fail")
	}
	if !domain.IsFault(err, domain.FaultCommand) {
		t.Errorf("expected command_error fault, got %v", err)
	}
}

func TestSSHSourcePassesThroughSessionFault(t *testing.T) {
	sessionFault := domain.NewFault(domain.FaultAuth, "leaf1", "open session", errors.New("permission denied"))
	runner := runnerFunc(func(ctx context.Context, device *domain.Device, command string) (string, error) {
		return "", sessionFault
	})
	device := domain.NewDevice("leaf1", "10.0.0.1", "access-leaf")

	_, err := NewSSHSource(runner, DefaultConfig()).Neighbors(context.Background(), device)
	if !domain.IsFault(err, domain.FaultAuth) {
		t.Errorf("expected authentication fault passed through, got %v", err)
	}
}
