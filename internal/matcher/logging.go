package matcher

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

type LogMode int

const (
	LogModeQuiet LogMode = iota
	LogModeSummary
	LogModeVerbose
)

func ParseLogMode(input string) LogMode {
	switch strings.ToLower(input) {
	case "summary":
		return LogModeSummary
	case "verbose":
		return LogModeVerbose
	default:
		return LogModeQuiet
	}
}

// Logger records accepted matches to stdout and appends them to matches.log
// for offline review of matcher precision.
type Logger struct {
	mode LogMode
	path string
}

func NewLogger(mode LogMode) *Logger {
	return &Logger{mode: mode, path: "matches.log"}
}

func (l *Logger) Enabled() bool {
	return l != nil && l.mode != LogModeQuiet
}

func (l *Logger) LogMatch(source, target string, score, threshold float64) {
	if !l.Enabled() {
		return
	}
	verb := "matched"
	if l.mode == LogModeVerbose {
		verb = "match accepted"
	}
	fmt.Printf("[matcher] %s %q -> %q sim=%.4f threshold=%.4f\n",
		verb, source, target, score, threshold)
	l.appendToFile(source, target, score, threshold)
}

func (l *Logger) appendToFile(source, target string, score, threshold float64) {
	entry := map[string]any{
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		"similarity": score,
		"threshold":  threshold,
		"source":     source,
		"target":     target,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Printf("[matcher] log file marshal error: %v\n", err)
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Printf("[matcher] log file open error: %v\n", err)
		return
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		fmt.Printf("[matcher] log file write error: %v\n", err)
	}
}
