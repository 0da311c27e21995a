package model

// MonitorState is the single persisted record of the monitor.
// PullCount is the sequence number of the most recent report artifact.
type MonitorState struct {
	PullCount uint64 `json:"pull_count"`
}

// Next returns the successor state after one more report.
func (s MonitorState) Next() MonitorState {
	return MonitorState{PullCount: s.PullCount + 1}
}
