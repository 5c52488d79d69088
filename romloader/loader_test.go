package romloader

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// createTestROMFile creates a temporary ROM file with test data
func createTestROMFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to create test ROM file: %v", err)
	}
	return path
}

// createTestZipFile creates a temporary .zip file containing a ROM file
func createTestZipFile(t *testing.T, romData []byte, romName string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	fw, err := w.Create(romName)
	if err != nil {
		t.Fatalf("Failed to create file in zip: %v", err)
	}
	if _, err := fw.Write(romData); err != nil {
		t.Fatalf("Failed to write to zip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return path
}

// createTestGzipFile creates a temporary .gz file containing ROM data
func createTestGzipFile(t *testing.T, romData []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sms.gz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create gzip file: %v", err)
	}
	defer f.Close()

	w := gzip.NewWriter(f)
	if _, err := w.Write(romData); err != nil {
		t.Fatalf("Failed to write to gzip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close gzip: %v", err)
	}
	return path
}

// TestLoader_RawROMLoad tests loading plain ROM files
func TestLoader_RawROMLoad(t *testing.T) {
	testData := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	path := createTestROMFile(t, "test.sms", testData)

	data, name, err := LoadROM(path)
	if err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}

	if !bytes.Equal(data, testData) {
		t.Errorf("Data mismatch: expected %v, got %v", testData, data)
	}

	if name != "test.sms" {
		t.Errorf("Name mismatch: expected test.sms, got %s", name)
	}
}

// TestLoader_ZipLoad tests loading a ROM from ZIP archives
func TestLoader_ZipLoad(t *testing.T) {
	testData := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	path := createTestZipFile(t, testData, "game.sms")

	data, name, err := LoadROM(path)
	if err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}

	if !bytes.Equal(data, testData) {
		t.Errorf("Data mismatch: expected %v, got %v", testData, data)
	}

	if name != "game.sms" {
		t.Errorf("Name mismatch: expected game.sms, got %s", name)
	}
}

// TestLoader_GzipLoad tests loading a ROM from gzip files
func TestLoader_GzipLoad(t *testing.T) {
	testData := []byte{0x11, 0x22, 0x33, 0x44, 0x55}
	path := createTestGzipFile(t, testData)

	data, _, err := LoadROM(path)
	if err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}

	if !bytes.Equal(data, testData) {
		t.Errorf("Data mismatch: expected %v, got %v", testData, data)
	}
}

// TestLoader_FormatDetectionMagic tests detection via magic bytes
func TestLoader_FormatDetectionMagic(t *testing.T) {
	testCases := []struct {
		header   []byte
		path     string
		expected formatType
	}{
		{[]byte{0x50, 0x4B, 0x03, 0x04}, "file.dat", formatZIP},
		{[]byte{0x50, 0x4B, 0x05, 0x06}, "file.dat", formatZIP},
		{[]byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, "file.dat", format7z},
		{[]byte{0x1F, 0x8B}, "file.dat", formatGzip},
		{[]byte{0x52, 0x61, 0x72, 0x21}, "file.dat", formatRAR},
	}

	for _, tc := range testCases {
		result := detectFormat(tc.header, tc.path)
		if result != tc.expected {
			t.Errorf("detectFormat(%v, %s): expected %d, got %d", tc.header, tc.path, tc.expected, result)
		}
	}
}

// TestLoader_FormatDetectionExtension tests fallback to extension
func TestLoader_FormatDetectionExtension(t *testing.T) {
	testCases := []struct {
		path     string
		expected formatType
	}{
		{"game.sms", formatRawROM},
		{"game.SMS", formatRawROM},
		{"game.gg", formatRawROM},
		{"game.zip", formatZIP},
		{"game.ZIP", formatZIP},
		{"game.7z", format7z},
		{"game.gz", formatGzip},
		{"game.tgz", formatGzip},
		{"game.tar.gz", formatGzip},
		{"game.rar", formatRAR},
		{"game.unknown", formatUnknown},
	}

	for _, tc := range testCases {
		// Use empty header to force extension-based detection
		result := detectFormat([]byte{}, tc.path)
		if result != tc.expected {
			t.Errorf("detectFormat([], %s): expected %d, got %d", tc.path, tc.expected, result)
		}
	}
}

// TestLoader_NoROMInArchive tests the error when an archive has no ROM
func TestLoader_NoROMInArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip: %v", err)
	}

	w := zip.NewWriter(f)
	fw, _ := w.Create("readme.txt")
	fw.Write([]byte("hello"))
	w.Close()
	f.Close()

	_, _, err = LoadROM(path)
	if !errors.Is(err, ErrNoROMFile) {
		t.Errorf("Expected ErrNoROMFile, got %v", err)
	}
}

// TestLoader_FileTooLarge tests rejection of files exceeding size limit
func TestLoader_FileTooLarge(t *testing.T) {
	largeData := make([]byte, maxROMSize+1)

	gzPath := filepath.Join(t.TempDir(), "large.sms.gz")
	f, err := os.Create(gzPath)
	if err != nil {
		t.Fatalf("Failed to create gzip: %v", err)
	}

	w := gzip.NewWriter(f)
	w.Write(largeData)
	w.Close()
	f.Close()

	_, _, err = LoadROM(gzPath)
	if err == nil {
		t.Error("Expected error for oversized file")
	}
}

// TestLoader_FileNotFound tests error for missing files
func TestLoader_FileNotFound(t *testing.T) {
	_, _, err := LoadROM("/nonexistent/path/game.sms")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

// TestLoader_IsROMFile tests the ROM extension check
func TestLoader_IsROMFile(t *testing.T) {
	testCases := []struct {
		name     string
		expected bool
	}{
		{"game.sms", true},
		{"game.SMS", true},
		{"game.Sms", true},
		{"game.gg", true},
		{"game.bin", true},
		{"game.txt", false},
		{"game.sms.bak", false},
		{"game", false},
		{"sms", false},
		{".sms", true},
	}

	for _, tc := range testCases {
		result := isROMFile(tc.name)
		if result != tc.expected {
			t.Errorf("isROMFile(%q): expected %v, got %v", tc.name, tc.expected, result)
		}
	}
}

// TestLoader_ZipWithSubdirectory tests extracting a ROM from a nested directory
func TestLoader_ZipWithSubdirectory(t *testing.T) {
	testData := []byte{0x12, 0x34, 0x56}
	path := filepath.Join(t.TempDir(), "test.zip")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create zip: %v", err)
	}

	w := zip.NewWriter(f)
	fw, _ := w.Create("roms/games/test.sms")
	fw.Write(testData)
	w.Close()
	f.Close()

	data, name, err := LoadROM(path)
	if err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}

	if !bytes.Equal(data, testData) {
		t.Errorf("Data mismatch: expected %v, got %v", testData, data)
	}

	if name != "test.sms" {
		t.Errorf("Name should be just the filename, got %s", name)
	}
}

// TestLoader_EmptyFile tests handling of empty files
func TestLoader_EmptyFile(t *testing.T) {
	path := createTestROMFile(t, "test.sms", []byte{})

	data, _, err := LoadROM(path)
	if err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}

	if len(data) != 0 {
		t.Errorf("Expected empty data, got %d bytes", len(data))
	}
}

// TestLoader_GzipNamePreserved tests that the embedded gzip name wins
func TestLoader_GzipNamePreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create gzip: %v", err)
	}

	w := gzip.NewWriter(f)
	w.Name = "inner.sms"
	w.Write([]byte{0x01})
	w.Close()
	f.Close()

	_, name, err := LoadROM(path)
	if err != nil {
		t.Fatalf("LoadROM failed: %v", err)
	}
	if name != "inner.sms" {
		t.Errorf("Expected embedded name, got %s", name)
	}
}
