package logging

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/afero"
)

func TestNewRotatingWriter(t *testing.T) {
	t.Run("creates log file", func(t *testing.T) {
		dir := t.TempDir()
		logPath := filepath.Join(dir, "test.log")

		rw, err := NewRotatingWriter(afero.NewOsFs(), logPath, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		defer func() { _ = rw.Close() }()

		if _, err := os.Stat(logPath); os.IsNotExist(err) {
			t.Errorf("log file was not created at %s", logPath)
		}
	})

	t.Run("creates nested directories", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		logPath := "/home/LogFiles/Application/test.log"

		rw, err := NewRotatingWriter(fs, logPath, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		defer func() { _ = rw.Close() }()

		if ok, _ := afero.Exists(fs, logPath); !ok {
			t.Errorf("log file was not created at %s", logPath)
		}
	})

	t.Run("appends to existing file", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		logPath := "/logs/test.log"

		// Write some initial content
		if err := afero.WriteFile(fs, logPath, []byte("initial content\n"), 0o644); err != nil {
			t.Fatalf("failed to write initial content: %v", err)
		}

		rw, err := NewRotatingWriter(fs, logPath, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		if rw.CurrentSize() != int64(len("initial content\n")) {
			t.Errorf("CurrentSize() = %d, want existing file size", rw.CurrentSize())
		}

		if _, err := rw.Write([]byte("appended content\n")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		_ = rw.Close()

		content, err := afero.ReadFile(fs, logPath)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}

		if !strings.Contains(string(content), "initial content") {
			t.Error("initial content was lost")
		}
		if !strings.Contains(string(content), "appended content") {
			t.Error("appended content was not written")
		}
	})
}

func TestRotatingWriterWrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	logPath := "/logs/test.log"

	rw, err := NewRotatingWriter(fs, logPath, DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}

	if rw.CurrentSize() != 0 {
		t.Errorf("expected initial size 0, got %d", rw.CurrentSize())
	}

	data := []byte("test message\n")
	n, err := rw.Write(data)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(data) {
		t.Errorf("expected to write %d bytes, wrote %d", len(data), n)
	}
	if rw.CurrentSize() != int64(len(data)) {
		t.Errorf("expected size %d, got %d", len(data), rw.CurrentSize())
	}

	_ = rw.Close()

	content, err := afero.ReadFile(fs, logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if string(content) != string(data) {
		t.Errorf("expected %q, got %q", data, content)
	}

	if _, err := rw.Write(data); err == nil {
		t.Error("Write after Close should fail")
	}
}

func TestRotatingWriterRotation(t *testing.T) {
	msg := []byte("this message will trigger rotation\n") // 35 bytes

	t.Run("rotates when size exceeds max", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		logPath := "/logs/test.log"

		rw, err := NewRotatingWriter(fs, logPath, RotationConfig{MaxSize: 50, MaxBackups: 3})
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}

		for range 3 {
			_, _ = rw.Write(msg)
		}
		_ = rw.Close()

		// Each write after the first lands in a fresh file.
		for _, p := range []string{logPath, logPath + ".1", logPath + ".2"} {
			content, err := afero.ReadFile(fs, p)
			if err != nil {
				t.Errorf("%s: %v", p, err)
				continue
			}
			if string(content) != string(msg) {
				t.Errorf("%s = %q, want one message", p, content)
			}
		}
	})

	t.Run("keeps only maxBackups files", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		logPath := "/logs/test.log"

		rw, err := NewRotatingWriter(fs, logPath, RotationConfig{MaxSize: 50, MaxBackups: 2})
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}

		for range 10 {
			_, _ = rw.Write(msg)
		}
		_ = rw.Close()

		// Should have .1 and .2, but not .3
		for _, p := range []string{logPath + ".1", logPath + ".2"} {
			if ok, _ := afero.Exists(fs, p); !ok {
				t.Errorf("backup file %s should exist", p)
			}
		}
		if ok, _ := afero.Exists(fs, logPath+".3"); ok {
			t.Error("backup file .3 should not exist")
		}
	})

	t.Run("zero backups truncates", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		logPath := "/logs/test.log"

		rw, err := NewRotatingWriter(fs, logPath, RotationConfig{MaxSize: 50})
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		for range 4 {
			_, _ = rw.Write(msg)
		}
		_ = rw.Close()

		if ok, _ := afero.Exists(fs, logPath+".1"); ok {
			t.Error("no backup should be kept")
		}
		content, _ := afero.ReadFile(fs, logPath)
		if string(content) != string(msg) {
			t.Errorf("log file = %q, want only the last message", content)
		}
	})

	t.Run("no rotation when MaxSize is 0", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		logPath := "/logs/test.log"

		rw, err := NewRotatingWriter(fs, logPath, RotationConfig{MaxBackups: 3})
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		for range 100 {
			_, _ = rw.Write(msg)
		}
		_ = rw.Close()

		if ok, _ := afero.Exists(fs, logPath+".1"); ok {
			t.Error("backup file should not exist when rotation is disabled")
		}
	})
}

func TestRotatingWriterCompression(t *testing.T) {
	fs := afero.NewMemMapFs()
	logPath := "/logs/test.log"

	rw, err := NewRotatingWriter(fs, logPath, RotationConfig{MaxSize: 50, MaxBackups: 3, Compress: true})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}

	// Two writes: the first fits, the second triggers exactly one rotation.
	for range 2 {
		_, _ = rw.Write([]byte("test message for compression test\n"))
	}

	// Close waits for the compression to finish.
	_ = rw.Close()

	if ok, _ := afero.Exists(fs, logPath+".1"); ok {
		t.Error("uncompressed backup should be removed after compression")
	}

	gzFile, err := fs.Open(logPath + ".1.gz")
	if err != nil {
		t.Fatalf("failed to open gzip file: %v", err)
	}
	defer func() { _ = gzFile.Close() }()

	gzReader, err := gzip.NewReader(gzFile)
	if err != nil {
		t.Fatalf("failed to create gzip reader: %v", err)
	}
	defer func() { _ = gzReader.Close() }()

	content, err := io.ReadAll(gzReader)
	if err != nil {
		t.Fatalf("failed to read gzip content: %v", err)
	}
	if string(content) != "test message for compression test\n" {
		t.Errorf("decompressed content = %q", content)
	}
}

func TestRotatingWriterConcurrency(t *testing.T) {
	fs := afero.NewMemMapFs()
	logPath := "/logs/test.log"

	rw, err := NewRotatingWriter(fs, logPath, RotationConfig{MaxSize: 1024, MaxBackups: 50})
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			for range 50 {
				_, _ = rw.Write([]byte("concurrent line\n"))
			}
		})
	}
	wg.Wait()
	_ = rw.Close()

	var total int
	for i := 0; i <= 50; i++ {
		p := logPath
		if i > 0 {
			p = BackupPath(logPath, i)
		}
		content, err := afero.ReadFile(fs, p)
		if err != nil {
			continue
		}
		total += strings.Count(string(content), "concurrent line\n")
	}
	if total != 500 {
		t.Errorf("found %d lines across files, want 500", total)
	}
}

func TestDefaultRotationConfig(t *testing.T) {
	config := DefaultRotationConfig()

	if config.MaxSize != 10*1024*1024 {
		t.Errorf("expected MaxSize=10MB, got %d", config.MaxSize)
	}
	if config.MaxBackups != 3 {
		t.Errorf("expected MaxBackups=3, got %d", config.MaxBackups)
	}
	if config.Compress {
		t.Error("expected Compress=false")
	}
}

func TestRotatingWriterFilePath(t *testing.T) {
	rw, err := NewRotatingWriter(afero.NewMemMapFs(), "/logs/test.log", DefaultRotationConfig())
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer func() { _ = rw.Close() }()

	if rw.FilePath() != "/logs/test.log" {
		t.Errorf("FilePath() = %q", rw.FilePath())
	}
	if err := rw.Sync(); err != nil {
		t.Errorf("Sync() = %v", err)
	}
}
