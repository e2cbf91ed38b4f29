/*
	This file contains a logger useful for testing in other packages.  It is
	exported so test files in external packages can check what was logged.
*/

package portal

import (
	"fmt"
	"strings"
	"sync"
)

// MemoryLogger records formatted log lines in memory.
type MemoryLogger struct {
	mu    sync.Mutex
	lines []string
}

func (m *MemoryLogger) add(level, format string, args ...interface{}) {
	m.mu.Lock()
	m.lines = append(m.lines, level+" "+strings.TrimSuffix(fmt.Sprintf(format, args...), "\n"))
	m.mu.Unlock()
}

func (m *MemoryLogger) Debugf(format string, args ...interface{}) { m.add("DEBUG", format, args...) }
func (m *MemoryLogger) Infof(format string, args ...interface{}) { m.add("INFO", format, args...) }
func (m *MemoryLogger) Warningf(format string, args ...interface{}) { m.add("WARNING", format, args...) }
func (m *MemoryLogger) Errorf(format string, args ...interface{}) { m.add("ERROR", format, args...) }
func (m *MemoryLogger) Criticalf(format string, args ...interface{}) { m.add("CRITICAL", format, args...) }
func (m *MemoryLogger) Shutdown() {}

// Lines returns a copy of the recorded lines, each prefixed by its level.
func (m *MemoryLogger) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

// Contains returns true if any recorded line at the given level contains substr.
func (m *MemoryLogger) Contains(level, substr string) bool {
	for _, line := range m.Lines() {
		if strings.HasPrefix(line, level+" ") && strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// UseMemoryLogger installs a fresh MemoryLogger at debug level and returns it along
// with a function restoring the previous logger and mode.
func UseMemoryLogger() (*MemoryLogger, func()) {
	m := &MemoryLogger{}
	prevMode := mode
	prev := SetLogger(m)
	SetLogMode(DebugMode)
	return m, func() {
		SetLogger(prev)
		SetLogMode(prevMode)
	}
}
