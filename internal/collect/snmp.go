package collect

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"mirrorlab/internal/domain"
	"mirrorlab/internal/session"
)

// LLDP-MIB columns. Remote rows are indexed by
// timeMark.localPortNum.remIndex; local port IDs by localPortNum.
const (
	oidLLDPLocPortID    = "1.0.8802.1.1.2.1.3.7.1.3"
	oidLLDPRemChassisID = "1.0.8802.1.1.2.1.4.1.1.5"
	oidLLDPRemPortID    = "1.0.8802.1.1.2.1.4.1.1.7"
	oidLLDPRemSysName   = "1.0.8802.1.1.2.1.4.1.1.9"
)

// SNMPConfig holds the SNMP neighbor source settings
type SNMPConfig struct {
	Community string
	Port      uint16
	Timeout   time.Duration
	Retries   int
}

// DefaultSNMPConfig returns sensible defaults
func DefaultSNMPConfig() SNMPConfig {
	return SNMPConfig{
		Community: "public",
		Port:      161,
		Timeout:   5 * time.Second,
		Retries:   1,
	}
}

// SNMPSource reads the LLDP remote table over SNMPv2c, for devices
// where CLI access is unavailable but the LLDP-MIB is exposed
type SNMPSource struct {
	config SNMPConfig
}

// NewSNMPSource creates an SNMP-backed neighbor source
func NewSNMPSource(config SNMPConfig) *SNMPSource {
	return &SNMPSource{config: config}
}

// Name returns the source name
func (s *SNMPSource) Name() string { return "snmp" }

// Neighbors walks the LLDP-MIB remote table and joins it against the
// local port table to produce neighbor records
func (s *SNMPSource) Neighbors(ctx context.Context, device *domain.Device) ([]domain.NeighborRecord, error) {
	client := &gosnmp.GoSNMP{
		Target:    device.Addr,
		Port:      s.config.Port,
		Community: s.config.Community,
		Version:   gosnmp.Version2c,
		Timeout:   s.config.Timeout,
		Retries:   s.config.Retries,
		Context:   ctx,
	}
	if err := client.Connect(); err != nil {
		return nil, domain.NewFault(domain.FaultConnection, device.Name, "snmp connect", err)
	}
	defer client.Conn.Close()

	locals, err := walkColumn(client, oidLLDPLocPortID)
	if err != nil {
		return nil, session.Classify(err, device.Name, "walk lldpLocPortId")
	}
	portIDs, err := walkColumn(client, oidLLDPRemPortID)
	if err != nil {
		return nil, session.Classify(err, device.Name, "walk lldpRemPortId")
	}
	sysNames, err := walkColumn(client, oidLLDPRemSysName)
	if err != nil {
		return nil, session.Classify(err, device.Name, "walk lldpRemSysName")
	}
	chassisIDs, err := walkColumn(client, oidLLDPRemChassisID)
	if err != nil {
		return nil, session.Classify(err, device.Name, "walk lldpRemChassisId")
	}

	rows := make(map[string]struct{}, len(portIDs))
	for index := range portIDs {
		rows[remoteRowKey(index)] = struct{}{}
	}
	keys := make([]string, 0, len(rows))
	for key := range rows {
		if key != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	byRow := func(column map[string]string) map[string]string {
		out := make(map[string]string, len(column))
		for index, value := range column {
			if key := remoteRowKey(index); key != "" {
				out[key] = value
			}
		}
		return out
	}
	portByRow := byRow(portIDs)
	nameByRow := byRow(sysNames)
	chassisByRow := byRow(chassisIDs)

	var records []domain.NeighborRecord
	for _, key := range keys {
		portNum, _, _ := strings.Cut(key, ".")
		localIf := locals[portNum]
		if localIf == "" {
			localIf = fmt.Sprintf("port%s", portNum)
		}
		records = append(records, domain.NeighborRecord{
			LocalDevice:     device.Name,
			LocalInterface:  localIf,
			RemoteName:      nameByRow[key],
			RemoteInterface: portByRow[key],
			RemoteChassisID: chassisByRow[key],
		})
	}
	return records, nil
}

// walkColumn walks one column and keys each value by its index suffix
func walkColumn(client *gosnmp.GoSNMP, oid string) (map[string]string, error) {
	pdus, err := client.BulkWalkAll(oid)
	if err != nil {
		return nil, err
	}
	column := make(map[string]string, len(pdus))
	for _, pdu := range pdus {
		name := strings.TrimPrefix(pdu.Name, ".")
		index := strings.TrimPrefix(strings.TrimPrefix(name, oid), ".")
		if index == "" {
			continue
		}
		column[index] = pduString(pdu)
	}
	return column, nil
}

// remoteRowKey drops the volatile time mark from a remote table index so
// rows line up across columns
func remoteRowKey(index string) string {
	parts := strings.Split(index, ".")
	if len(parts) != 3 {
		return ""
	}
	return parts[1] + "." + parts[2]
}

func pduString(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		return decodeOctets(v)
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

// decodeOctets renders printable octet strings as text and binary ones
// (chassis IDs arrive as raw MACs) in address notation
func decodeOctets(b []byte) string {
	printable := true
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			printable = false
			break
		}
	}
	if printable {
		return strings.TrimSpace(string(b))
	}
	if len(b) == 6 {
		return net.HardwareAddr(b).String()
	}
	return hex.EncodeToString(b)
}
