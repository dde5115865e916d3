package logging

import (
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/webdiag/internal/filter"
)

type staticFilters filter.Options

func (s staticFilters) Get() filter.Options { return filter.Options(s) }

func newTestProvider(t *testing.T, fs afero.Fs, name, file string, period time.Duration) *FileProvider {
	t.Helper()
	p, err := NewFileProvider(fs, name, FileOptions{
		Directory:   "/home/LogFiles/Application",
		FileName:    file,
		FlushPeriod: period,
	})
	if err != nil {
		t.Fatalf("NewFileProvider failed: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func readRecords(t *testing.T, fs afero.Fs, path string) []map[string]any {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("line is not JSON: %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestNewFileProvider(t *testing.T) {
	t.Run("requires file name", func(t *testing.T) {
		_, err := NewFileProvider(afero.NewMemMapFs(), "diagnostics", FileOptions{Directory: "/logs"})
		if err == nil {
			t.Fatal("expected error for empty file name")
		}
	})

	t.Run("creates file under directory", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		p := newTestProvider(t, fs, "diagnostics", "diagnostics.txt", 0)

		want := "/home/LogFiles/Application/diagnostics.txt"
		if p.Path() != want {
			t.Errorf("Path() = %q, want %q", p.Path(), want)
		}
		if p.Name() != "diagnostics" {
			t.Errorf("Name() = %q, want %q", p.Name(), "diagnostics")
		}
		if ok, _ := afero.Exists(fs, want); !ok {
			t.Errorf("log file was not created at %s", want)
		}
	})
}

func TestFileProviderWritesLevelNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := newTestProvider(t, fs, "diagnostics", "diagnostics.txt", 0)
	logger := slog.New(p.Handler())

	logger.Log(t.Context(), filter.LevelTrace, "tracing")
	logger.Log(t.Context(), slog.LevelInfo, "informing")
	logger.Log(t.Context(), filter.LevelCritical, "failing")

	records := readRecords(t, fs, p.Path())
	want := []string{"trace", "information", "critical"}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i, w := range want {
		if records[i]["level"] != w {
			t.Errorf("records[%d].level = %v, want %q", i, records[i]["level"], w)
		}
	}
}

func TestFileProviderBatching(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := newTestProvider(t, fs, "diagnostics", "diagnostics.txt", time.Hour)
	logger := slog.New(p.Handler())

	logger.Warn("queued")
	if records := readRecords(t, fs, p.Path()); len(records) != 0 {
		t.Fatalf("got %d records before flush, want 0", len(records))
	}

	if err := p.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if records := readRecords(t, fs, p.Path()); len(records) != 1 {
		t.Fatalf("got %d records after flush, want 1", len(records))
	}

	logger.Warn("pending at close")
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}
	if records := readRecords(t, fs, p.Path()); len(records) != 2 {
		t.Errorf("got %d records after close, want 2", len(records))
	}
}

func TestFactory(t *testing.T) {
	t.Run("nil filters admit information and above", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		p := newTestProvider(t, fs, "diagnostics", "diagnostics.txt", 0)
		logger := NewFactory(nil, p).Logger("app")

		logger.Debug("hidden")
		logger.Info("shown")

		records := readRecords(t, fs, p.Path())
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0]["msg"] != "shown" {
			t.Errorf("msg = %v, want shown", records[0]["msg"])
		}
		if records[0]["category"] != "app" {
			t.Errorf("category = %v, want app", records[0]["category"])
		}
	})

	t.Run("rules apply per provider", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		def := newTestProvider(t, fs, "diagnostics", "diagnostics.txt", 0)
		pre := newTestProvider(t, fs, "diagnostics:api", "api-diagnostics.txt", 0)

		opts := filter.Options{MinLevel: slog.LevelInfo}
		opts.AddRule(filter.Rule{Provider: "diagnostics", Level: slog.LevelWarn})
		opts.AddRule(filter.Rule{Provider: "diagnostics:api", Category: "app.http", Level: slog.LevelDebug})

		f := NewFactory(staticFilters(opts), def, pre)
		if got := len(f.Providers()); got != 2 {
			t.Fatalf("Providers() returned %d, want 2", got)
		}

		f.Logger("app.http").Debug("debug http")
		f.Logger("app.http").Warn("warn http")
		f.Logger("app.db").Debug("debug db")

		if got := len(readRecords(t, fs, def.Path())); got != 1 {
			t.Errorf("default provider got %d records, want 1", got)
		}
		if got := len(readRecords(t, fs, pre.Path())); got != 2 {
			t.Errorf("prefixed provider got %d records, want 2", got)
		}
	})

	t.Run("none disables a provider", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		p := newTestProvider(t, fs, "diagnostics", "diagnostics.txt", 0)

		opts := filter.Options{MinLevel: slog.LevelInfo}
		opts.AddRule(filter.Rule{Provider: "diagnostics", Level: filter.LevelNone})
		logger := NewFactory(staticFilters(opts), p).Logger("app")

		if logger.Enabled(filter.LevelCritical) {
			t.Error("Enabled(critical) = true, want false")
		}
		logger.Log(filter.LevelCritical, "dropped")
		if got := len(readRecords(t, fs, p.Path())); got != 0 {
			t.Errorf("got %d records, want 0", got)
		}
	})

	t.Run("attrs and groups reach every provider", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		p := newTestProvider(t, fs, "diagnostics", "diagnostics.txt", 0)
		f := NewFactory(nil, p)

		h := &fanoutHandler{factory: f, category: "app"}
		slog.New(h).With("host", "web-1").WithGroup("req").Info("served", "id", 7)

		records := readRecords(t, fs, p.Path())
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if records[0]["host"] != "web-1" {
			t.Errorf("host = %v, want web-1", records[0]["host"])
		}
		req, ok := records[0]["req"].(map[string]any)
		if !ok {
			t.Fatalf("req group missing: %v", records[0])
		}
		if req["id"] != float64(7) {
			t.Errorf("req.id = %v, want 7", req["id"])
		}
	})
}
