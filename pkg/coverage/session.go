package coverage

import "time"

// SessionInfo describes one recording session that contributed execution
// data.
type SessionInfo struct {
	ID    string    `yaml:"id" json:"id"`
	Start time.Time `yaml:"start" json:"start"`
	Dump  time.Time `yaml:"dump" json:"dump"`
}

// ExecutionData identifies a class that was executed during a session.
type ExecutionData struct {
	ID   uint64 `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}
