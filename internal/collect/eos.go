package collect

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"mirrorlab/internal/domain"
)

// EOS CLI commands issued over the management session
const (
	cmdShowRunningConfig = "show running-config"
	cmdShowVersion       = "show version | json"
	cmdShowLLDPNeighbors = "show lldp neighbors detail | json"
)

// Identity holds the hardware identity fields recovered from a device
type Identity struct {
	Serial    string
	SystemMAC string
}

// eosVersion mirrors the fields of "show version | json" we consume
type eosVersion struct {
	SerialNumber     string `json:"serialNumber"`
	SystemMACAddress string `json:"systemMacAddress"`
	ModelName        string `json:"modelName"`
	Version          string `json:"version"`
}

// ParseVersion extracts the hardware identity from "show version | json"
// output. Missing fields fall back to UNKNOWN so identity artifacts are
// always complete.
func ParseVersion(raw string) (Identity, error) {
	if strings.TrimSpace(raw) == "" {
		return Identity{}, errors.New("empty version output")
	}

	var v eosVersion
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Identity{}, fmt.Errorf("malformed version output: %w", err)
	}

	id := Identity{
		Serial:    strings.TrimSpace(v.SerialNumber),
		SystemMAC: strings.TrimSpace(v.SystemMACAddress),
	}
	if id.Serial == "" {
		id.Serial = "UNKNOWN"
	}
	if id.SystemMAC == "" {
		id.SystemMAC = "UNKNOWN"
	}
	return id, nil
}

// eosLLDPDetail mirrors "show lldp neighbors detail | json"
type eosLLDPDetail struct {
	LLDPNeighbors map[string]eosLLDPInterface `json:"lldpNeighbors"`
}

type eosLLDPInterface struct {
	LLDPNeighborInfo []eosLLDPNeighbor `json:"lldpNeighborInfo"`
}

type eosLLDPNeighbor struct {
	ChassisID             string               `json:"chassisId"`
	SystemName            string               `json:"systemName"`
	NeighborInterfaceInfo eosNeighborInterface `json:"neighborInterfaceInfo"`
}

type eosNeighborInterface struct {
	// InterfaceID carries literal quote characters on EOS;
	// InterfaceIDv2 is the clean form on recent releases
	InterfaceID   string `json:"interfaceId"`
	InterfaceIDv2 string `json:"interfaceId_v2"`
}

// ParseLLDPNeighbors converts "show lldp neighbors detail | json" output
// into neighbor records attributed to the reporting device. Empty raw
// output is an error; an empty neighbor table in well-formed output is a
// valid zero-record result.
func ParseLLDPNeighbors(device, raw string) ([]domain.NeighborRecord, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty neighbor table output")
	}

	var detail eosLLDPDetail
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		return nil, fmt.Errorf("malformed neighbor table output: %w", err)
	}

	interfaces := make([]string, 0, len(detail.LLDPNeighbors))
	for name := range detail.LLDPNeighbors {
		interfaces = append(interfaces, name)
	}
	sort.Strings(interfaces)

	var records []domain.NeighborRecord
	for _, localIf := range interfaces {
		for _, neighbor := range detail.LLDPNeighbors[localIf].LLDPNeighborInfo {
			records = append(records, domain.NeighborRecord{
				LocalDevice:     device,
				LocalInterface:  localIf,
				RemoteName:      strings.TrimSpace(neighbor.SystemName),
				RemoteInterface: neighbor.NeighborInterfaceInfo.interfaceName(),
				RemoteChassisID: strings.TrimSpace(neighbor.ChassisID),
			})
		}
	}
	return records, nil
}

// interfaceName prefers the v2 field and strips the quote characters the
// v1 field embeds
func (n eosNeighborInterface) interfaceName() string {
	if v2 := strings.TrimSpace(n.InterfaceIDv2); v2 != "" {
		return v2
	}
	return strings.Trim(strings.TrimSpace(n.InterfaceID), `"`)
}
