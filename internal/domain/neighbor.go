package domain

// NeighborRecord is one row of a device's neighbor-discovery table,
// kept exactly as reported. RemoteName may not match any inventory
// hostname; resolution happens later and is a separate concern.
type NeighborRecord struct {
	LocalDevice     string `json:"local_device"`
	LocalInterface  string `json:"local_interface"`
	RemoteName      string `json:"remote_name"`
	RemoteInterface string `json:"remote_interface"`
	RemoteChassisID string `json:"remote_chassis_id,omitempty"`
}

// SelfReported reports whether the record names its own device as the
// neighbor, which happens with loopbacks and misconfigured interfaces
func (r NeighborRecord) SelfReported() bool {
	return equalFoldTrim(r.LocalDevice, r.RemoteName)
}
