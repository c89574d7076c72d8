package device

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// labelSeparator joins the device path and its descriptor in a display
// label. ResolvePath splits on its first occurrence, so descriptors may
// contain "->" only when padded differently.
const labelSeparator = " -> "

// Vendor IDs used to classify USB serial devices.
const (
	vidFTDI     = "0403"
	vidProlific = "067B"
	vidArduino  = "2341"
	vidTeensy   = "16C0"
)

// Descriptor is one candidate flash target.
type Descriptor struct {
	Path  string // addressable identifier: port name or tycmd board tag
	Label string // Path plus identifying suffix, reversible via ResolvePath
}

// Enumerator discovers candidate devices. Both sources are injectable so
// tests can run without hardware.
type Enumerator struct {
	// Ports lists serial ports. Defaults to ListPorts when nil.
	Ports func() ([]PortInfo, error)
	// TycmdList returns the output of `tycmd list`, used to find Teensy
	// RawHID boards that have not yet enumerated as serial devices.
	// Nil when tycmd is unavailable.
	TycmdList func() (string, error)
}

// TycmdLister returns a TycmdList source for the given tycmd path,
// or nil when the path is empty.
func TycmdLister(tycmdPath string) func() (string, error) {
	if tycmdPath == "" {
		return nil
	}
	return func() (string, error) {
		out, err := exec.Command(tycmdPath, "list").Output()
		return string(out), err
	}
}

// List returns display descriptors for all candidate devices, ordered
// ascending by the digits in the device path so listings stay stable
// across rescans.
func (e Enumerator) List() ([]Descriptor, error) {
	listPorts := e.Ports
	if listPorts == nil {
		listPorts = ListPorts
	}

	ports, err := listPorts()
	if err != nil {
		return nil, err
	}

	var devices []Descriptor
	for _, p := range ports {
		if d, ok := describe(p); ok {
			devices = append(devices, d)
		}
	}

	if e.TycmdList != nil {
		if out, err := e.TycmdList(); err == nil {
			devices = append(devices, rawHIDBoards(out)...)
		}
	}

	sort.SliceStable(devices, func(i, j int) bool {
		return lessNumeric(digits(devices[i].Path), digits(devices[j].Path))
	})
	return devices, nil
}

// describe builds a display descriptor for one serial port. Non-USB ports
// and USB-to-serial converters (FTDI, Prolific) are excluded: they are
// never flash targets and only clutter the listing.
func describe(p PortInfo) (Descriptor, bool) {
	if !p.IsUSB || p.VID == "" || p.PID == "" {
		return Descriptor{}, false
	}

	vid := strings.ToUpper(p.VID)
	pid := strings.ToUpper(p.PID)
	if vid == vidFTDI || vid == vidProlific {
		return Descriptor{}, false
	}

	var desc string
	switch vid {
	case vidArduino:
		desc = "Arduino"
		if p.SerialNumber != "" {
			// Windows composite-device serials carry '&' noise.
			desc = fmt.Sprintf("Arduino (SN# %s)", strings.ReplaceAll(p.SerialNumber, "&", ""))
		}
	case vidTeensy:
		desc = "Teensy"
		if p.SerialNumber != "" {
			desc = fmt.Sprintf("Teensy (SN# %s)", p.SerialNumber)
		}
	default:
		desc = vid + ":" + pid
		if p.SerialNumber != "" {
			desc = fmt.Sprintf("%s:%s (SN# %s)", vid, pid, p.SerialNumber)
		}
	}

	return Descriptor{Path: p.Name, Label: p.Name + labelSeparator + desc}, true
}

// rawHIDBoards parses `tycmd list` output for Teensyduino RawHID entries,
// i.e. Teensies awaiting their first program. Lines look like:
//
//	add 1234560-Teensy Teensy 3.2 (Teensyduino RawHID)
//
// The 8 columns after "add " are the board tag; the model text starts at
// column 21.
func rawHIDBoards(output string) []Descriptor {
	var boards []Descriptor
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "add ") || !strings.Contains(line, "(Teensyduino RawHID)") {
			continue
		}
		if len(line) < 21 {
			continue
		}
		path := strings.TrimSpace(line[4:12])
		boards = append(boards, Descriptor{
			Path:  path,
			Label: path + labelSeparator + line[20:],
		})
	}
	return boards
}

// ResolvePath recovers the device path from a display label. Exact inverse
// of the label construction: everything left of the first " -> ", trimmed.
// Labels without a separator are bare paths already.
func ResolvePath(label string) string {
	left, _, _ := strings.Cut(label, labelSeparator)
	return strings.TrimSpace(left)
}

// digits concatenates the decimal digits of s, leading zeros stripped.
func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), "0")
}

// lessNumeric compares two digit strings numerically without parsing,
// so arbitrarily long serial numbers cannot overflow. Empty means zero.
func lessNumeric(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
