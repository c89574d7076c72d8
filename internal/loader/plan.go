package loader

import (
	"errors"
	"fmt"

	"github.com/seriallab/fwload/internal/firmware"
)

var (
	// ErrToolNotFound means the loader executable for the chosen firmware
	// could not be resolved on this host.
	ErrToolNotFound = errors.New("loader: tool not found")
	// ErrUnsupportedPlatform means no bundled loader variant exists for
	// this operating system.
	ErrUnsupportedPlatform = errors.New("loader: unsupported platform")
	// ErrUnknownLoader means the record carries a loader kind the planner
	// does not handle. Unreachable for records produced by firmware.Scan.
	ErrUnknownLoader = errors.New("loader: unknown loader kind")
)

// tycmdPlatforms are the OS families a bundled tycmd exists for.
var tycmdPlatforms = map[string]bool{
	"windows": true,
	"linux":   true,
	"darwin":  true,
}

// Plan returns the ordered shell commands that flash rec onto the device
// at devicePath. Plans are built fresh per attempt and never reused: a
// rescan or a different version pick may change the tool path or flags.
func Plan(t Tools, rec firmware.Record, devicePath, goos string) ([]string, error) {
	switch rec.Loader {
	case firmware.Bossac:
		if t.BossacPath == "" {
			return nil, fmt.Errorf("%w: bossac", ErrToolNotFound)
		}
		if goos == "windows" {
			// The 1200-baud touch resets the board into its bootloader;
			// the ping is a blocking delay that lets the port re-enumerate
			// before bossac opens it.
			return []string{
				fmt.Sprintf("mode %s:1200,N,8,1", devicePath),
				"PING -n 3 127.0.0.1>NUL",
				fmt.Sprintf("%s -i -U true -e -w -v -b %s -R", t.BossacPath, rec.Path),
			}, nil
		}
		return []string{
			fmt.Sprintf("%s -i -d -U=true -e -w -v -b %s -R", t.BossacPath, rec.Path),
		}, nil

	case firmware.Tycmd:
		if t.TycmdPath == "" {
			if !tycmdPlatforms[goos] {
				return nil, fmt.Errorf("%w: no tycmd build for %s", ErrUnsupportedPlatform, goos)
			}
			return nil, fmt.Errorf("%w: tycmd", ErrToolNotFound)
		}
		board := "@" + devicePath
		if isDigits(devicePath) {
			board = devicePath
		}
		return []string{
			fmt.Sprintf("%s upload %s --board %s", t.TycmdPath, rec.Path, board),
		}, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrUnknownLoader, rec.Loader)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
