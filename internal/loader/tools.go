package loader

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Tools holds the resolved flashing executables and their reported
// versions. Empty paths mean the tool was not found; the Load page
// surfaces that as a warning and Plan refuses to use it.
type Tools struct {
	BossacPath    string
	TycmdPath     string
	BossacVersion string
	TycmdVersion  string
}

// Resolver locates the bundled or system bossac/tycmd executables.
// All host interactions are injectable for tests.
type Resolver struct {
	Goos    string // runtime.GOOS equivalent
	BaseDir string // directory holding the bundled third_party tree

	// Overrides from configuration; used verbatim when the file exists.
	BossacOverride string
	TycmdOverride  string

	LookPath   func(file string) (string, error)
	FileExists func(path string) bool
	RunOutput  func(name string, args ...string) (string, error)
}

// DefaultResolver returns a Resolver bound to the real host, with BaseDir
// next to the running executable.
func DefaultResolver(goos string) Resolver {
	baseDir := ""
	if exe, err := os.Executable(); err == nil {
		baseDir = filepath.Dir(exe)
	}
	return Resolver{
		Goos:     goos,
		BaseDir:  baseDir,
		LookPath: exec.LookPath,
		FileExists: func(path string) bool {
			info, err := os.Stat(path)
			return err == nil && !info.IsDir()
		},
		RunOutput: func(name string, args ...string) (string, error) {
			out, err := exec.Command(name, args...).CombinedOutput()
			return string(out), err
		},
	}
}

// Resolve locates both tools and probes their versions.
//
// bossac: Windows always uses the bundled copy; elsewhere the system PATH
// is consulted. tycmd: the system PATH is consulted first, the bundled
// per-OS binary is the Windows default and the Unix fallback.
func (r Resolver) Resolve() Tools {
	t := Tools{
		BossacPath: r.bossacPath(),
		TycmdPath:  r.tycmdPath(),
	}
	t.BossacVersion = r.bossacVersion(t.BossacPath)
	t.TycmdVersion = r.tycmdVersion(t.TycmdPath)
	return t
}

func (r Resolver) bossacPath() string {
	if r.BossacOverride != "" && r.FileExists(r.BossacOverride) {
		return r.BossacOverride
	}

	path := ""
	if p, err := r.LookPath("bossac"); err == nil {
		path = p
	}
	if r.Goos == "windows" {
		path = filepath.Join(r.BaseDir, "third_party", "bossac", "bossac.exe")
	}
	if path != "" && r.FileExists(path) {
		return path
	}
	return ""
}

func (r Resolver) tycmdPath() string {
	if r.TycmdOverride != "" && r.FileExists(r.TycmdOverride) {
		return r.TycmdOverride
	}

	path := ""
	if p, err := r.LookPath("tycmd"); err == nil {
		path = p
	}
	if r.Goos == "windows" {
		path = filepath.Join(r.BaseDir, "third_party", "tycmd", "tycmd.exe")
	}
	if path == "" {
		switch r.Goos {
		case "linux":
			path = filepath.Join(r.BaseDir, "third_party", "tycmd", "tycmd_linux64")
		case "darwin":
			path = filepath.Join(r.BaseDir, "third_party", "tycmd", "tycmd_osx")
		}
	}
	if path != "" && r.FileExists(path) {
		return path
	}
	return ""
}

// bossacVersion extracts the version from the `bossac --help` banner,
// which carries a "Basic Open Source SAM-BA Application (BOSSA) Version x.y.z" line.
func (r Resolver) bossacVersion(path string) string {
	if path == "" {
		return ""
	}
	out, _ := r.RunOutput(path, "--help")
	for _, line := range strings.Split(out, "\n") {
		if idx := strings.Index(line, " Version "); idx >= 0 {
			return strings.TrimSpace(line[idx+len(" Version "):])
		}
	}
	return ""
}

// tycmdVersion extracts the last field of `tycmd --version` ("tycmd x.y.z").
func (r Resolver) tycmdVersion(path string) string {
	if path == "" {
		return ""
	}
	out, err := r.RunOutput(path, "--version")
	if err != nil {
		return ""
	}
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
