package objectreader

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Heimdall-SBOM/heimdall-sub003/format"
)

func TestReadSelfELF(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("self-ELF fixture only available on linux")
	}
	path, err := os.Executable()
	if err != nil {
		t.Skipf("os.Executable: %v", err)
	}
	r := New()
	info, err := r.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if info.Format != format.ELF {
		t.Errorf("Format = %v, want ELF", info.Format)
	}
}

func TestReadUnknownFormatIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unknown.bin")
	if err := os.WriteFile(path, []byte{0, 0, 0, 0, 0, 0, 0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}
	r := New()
	if _, err := r.Read(path); err == nil {
		t.Error("Read(unclassifiable file) should return an error")
	}
}

func TestReadMissingFileIsAnError(t *testing.T) {
	r := New()
	if _, err := r.Read(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Error("Read(missing file) should return an error")
	}
}

func TestReadArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.a")
	// Minimal ar magic with no members: enough for format.Classify to
	// recognise it, and for the archive branch to report zero symbols
	// rather than erroring.
	if err := os.WriteFile(path, []byte("!<arch>\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := New()
	info, err := r.Read(path)
	if err != nil {
		t.Fatalf("Read(archive): %v", err)
	}
	if info.Format != format.Archive {
		t.Errorf("Format = %v, want Archive", info.Format)
	}
}
