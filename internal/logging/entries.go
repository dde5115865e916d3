package logging

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/webdiag/internal/filter"
)

// LogEntry represents a parsed log entry with all structured fields.
type LogEntry struct {
	Timestamp time.Time      `json:"time"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	Category  string         `json:"category,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// LogFilter defines criteria for filtering log entries.
type LogFilter struct {
	// Level filters to entries at or above this level.
	// Empty string means no level filtering.
	Level string

	// Category filters to entries whose category starts with this prefix.
	// Empty string means no category filtering.
	Category string

	// StartTime filters to entries at or after this time.
	// Zero value means no start time filtering.
	StartTime time.Time

	// EndTime filters to entries at or before this time.
	// Zero value means no end time filtering.
	EndTime time.Time

	// MessageContains filters to entries whose message contains this substring.
	// Empty string means no message filtering.
	MessageContains string
}

// ReadEntries reads and parses the log file at path together with its rolled
// copies (path.1, path.2.gz, ...). Lines that are not JSON are skipped.
// Entries are returned sorted by timestamp in ascending order.
func ReadEntries(fs afero.Fs, path string) ([]LogEntry, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("no log file found at %s: %w", path, os.ErrNotExist)
	}

	var entries []LogEntry
	for _, p := range rolledFiles(fs, path) {
		parsed, err := readFile(fs, p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}

	// Sort entries by timestamp
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	return entries, nil
}

// rolledFiles lists path's rolled copies, oldest first, followed by path.
func rolledFiles(fs afero.Fs, path string) []string {
	var backups []string
	for n := 1; ; n++ {
		p := BackupPath(path, n)
		if ok, _ := afero.Exists(fs, p+".gz"); ok {
			backups = append(backups, p+".gz")
			continue
		}
		if ok, _ := afero.Exists(fs, p); ok {
			backups = append(backups, p)
			continue
		}
		break
	}

	files := make([]string, 0, len(backups)+1)
	for i := len(backups) - 1; i >= 0; i-- {
		files = append(files, backups[i])
	}
	return append(files, path)
}

func readFile(fs afero.Fs, path string) ([]LogEntry, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed log %s: %w", path, err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var entries []LogEntry
	scanner := bufio.NewScanner(r)

	// Increase buffer size for potentially long log lines
	const maxScanTokenSize = 1024 * 1024 // 1MB
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		entry, err := parseLogEntry(line)
		if err != nil {
			// Skip corrupted lines so a torn write does not hide the rest
			continue
		}

		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}
	return entries, nil
}

// parseLogEntry parses a single JSON log line into a LogEntry.
func parseLogEntry(line string) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return LogEntry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	entry := LogEntry{
		Attrs: make(map[string]any),
	}

	// Extract standard fields
	if timeStr, ok := raw["time"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, timeStr); err == nil {
			entry.Timestamp = t
		}
	}

	if level, ok := raw["level"].(string); ok {
		entry.Level = level
	}

	if msg, ok := raw["msg"].(string); ok {
		entry.Message = msg
	}

	if category, ok := raw["category"].(string); ok {
		entry.Category = category
	}

	// Collect remaining fields as attrs
	for k, v := range raw {
		switch k {
		case "time", "level", "msg", "category":
		default:
			entry.Attrs[k] = v
		}
	}

	return entry, nil
}

// FilterEntries filters log entries based on the provided filter criteria.
// Multiple filter criteria are combined with AND logic.
func FilterEntries(entries []LogEntry, f LogFilter) []LogEntry {
	if f == (LogFilter{}) {
		return entries
	}

	var filtered []LogEntry
	for _, entry := range entries {
		if matchesFilter(entry, f) {
			filtered = append(filtered, entry)
		}
	}

	return filtered
}

// matchesFilter checks if an entry matches all filter criteria.
func matchesFilter(entry LogEntry, f LogFilter) bool {
	// Level filter: entry level must be >= filter level. Entries with a level
	// that cannot be parsed are kept.
	if f.Level != "" {
		want, wantErr := filter.ParseLevel(f.Level)
		got, gotErr := filter.ParseLevel(entry.Level)
		if wantErr == nil && gotErr == nil && got < want {
			return false
		}
	}

	if f.Category != "" && !strings.HasPrefix(strings.ToLower(entry.Category), strings.ToLower(f.Category)) {
		return false
	}

	// Time range filters
	if !f.StartTime.IsZero() && entry.Timestamp.Before(f.StartTime) {
		return false
	}
	if !f.EndTime.IsZero() && entry.Timestamp.After(f.EndTime) {
		return false
	}

	// Message contains filter
	if f.MessageContains != "" && !strings.Contains(entry.Message, f.MessageContains) {
		return false
	}

	return true
}

// ExportFormats returns the formats ExportEntries accepts.
func ExportFormats() []string {
	return []string{"json", "text", "csv"}
}

// ExportEntries writes entries to w in the given format.
// Supported formats: "json", "text", "csv".
func ExportEntries(w io.Writer, entries []LogEntry, format string) error {
	switch strings.ToLower(format) {
	case "json":
		return exportJSON(w, entries)
	case "text":
		return exportText(w, entries)
	case "csv":
		return exportCSV(w, entries)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: %s)", format, strings.Join(ExportFormats(), ", "))
	}
}

// exportJSON writes entries as a JSON array.
func exportJSON(w io.Writer, entries []LogEntry) error {
	if entries == nil {
		entries = []LogEntry{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

// exportText writes entries in a human-readable text format.
func exportText(w io.Writer, entries []LogEntry) error {
	for _, entry := range entries {
		// Format: [TIMESTAMP] LEVEL category - MESSAGE {attrs}
		var parts []string

		ts := entry.Timestamp.Format("2006-01-02 15:04:05.000")
		parts = append(parts, fmt.Sprintf("[%s]", ts), strings.ToUpper(entry.Level))

		if entry.Category != "" {
			parts = append(parts, entry.Category)
		}

		parts = append(parts, "-", entry.Message)

		// Add extra attrs if present
		if len(entry.Attrs) > 0 {
			attrsJSON, _ := json.Marshal(entry.Attrs)
			parts = append(parts, string(attrsJSON))
		}

		line := strings.Join(parts, " ") + "\n"
		if _, err := io.WriteString(w, line); err != nil {
			return fmt.Errorf("failed to write text entry: %w", err)
		}
	}

	return nil
}

// exportCSV writes entries as CSV with headers.
func exportCSV(w io.Writer, entries []LogEntry) error {
	writer := csv.NewWriter(w)

	// Write header
	headers := []string{"timestamp", "level", "category", "message", "attrs"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write entries
	for _, entry := range entries {
		attrsJSON := ""
		if len(entry.Attrs) > 0 {
			if b, err := json.Marshal(entry.Attrs); err == nil {
				attrsJSON = string(b)
			}
		}

		record := []string{
			entry.Timestamp.Format(time.RFC3339Nano),
			entry.Level,
			entry.Category,
			entry.Message,
			attrsJSON,
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
