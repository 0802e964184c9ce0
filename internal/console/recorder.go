package console

import (
	"strings"
	"sync"
)

// Level classifies a recorded message.
type Level string

// Message levels.
const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelPrint   Level = "print"
	LevelPanel   Level = "panel"
)

// Entry is one recorded message.
type Entry struct {
	Level Level
	Text  string
}

// Recorder is a Sink that keeps every message in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Text: text})
}

// Success implements Sink.
func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }

// Error implements Sink.
func (r *Recorder) Error(msg string) { r.add(LevelError, msg) }

// Info implements Sink.
func (r *Recorder) Info(msg string) { r.add(LevelInfo, msg) }

// Warning implements Sink.
func (r *Recorder) Warning(msg string) { r.add(LevelWarning, msg) }

// Print implements Sink.
func (r *Recorder) Print(msg string) { r.add(LevelPrint, msg) }

// Panel implements Sink. Each row is recorded as "key: value".
func (r *Recorder) Panel(title string, rows []Row) {
	lines := []string{title}
	for _, row := range rows {
		lines = append(lines, row.Key+": "+row.Value)
	}
	r.add(LevelPanel, strings.Join(lines, "\n"))
}

// Entries returns a copy of the recorded messages.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Texts returns the text of every message recorded at level.
func (r *Recorder) Texts(level Level) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Text)
		}
	}
	return out
}

// Contains reports whether any message contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, e := range r.Entries() {
		if strings.Contains(e.Text, substr) {
			return true
		}
	}
	return false
}

// Banner records the title and version as one panel entry.
func (r *Recorder) Banner(title, version string) {
	r.add(LevelPanel, title+" "+version)
}
