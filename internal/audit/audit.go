// Package audit writes the append-only plain-text trading trail. The format
// is one line per event with a leading `[YYYY-MM-DD HH:MM:SS]` timestamp;
// downstream tooling greps these files, so the layout must stay stable.
package audit

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Logger struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
}

func New(path string, log *zap.Logger) *Logger {
	return &Logger{path: path, log: log}
}

// Append writes one timestamped line. Write failures are logged and
// swallowed; the audit trail must never take down the trader.
func (l *Logger) Append(content string) {
	l.write(fmt.Sprintf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), content))
}

// AppendRaw writes a line without a timestamp, for separators and
// free-form notes.
func (l *Logger) AppendRaw(content string) {
	l.write(content + "\n")
}

func (l *Logger) Appendf(format string, args ...any) {
	l.Append(fmt.Sprintf(format, args...))
}

func (l *Logger) write(line string) {
	if l == nil || l.path == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		if l.log != nil {
			l.log.Warn("audit log open failed", zap.String("path", l.path), zap.Error(err))
		}
		return
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil && l.log != nil {
		l.log.Warn("audit log write failed", zap.String("path", l.path), zap.Error(err))
	}
}
