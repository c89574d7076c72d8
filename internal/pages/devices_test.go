package pages

import (
	"errors"
	"strings"
	"testing"

	"github.com/seriallab/fwload/internal/device"
)

func TestDevicesPageListsDevices(t *testing.T) {
	p := NewDevicesPage(&Deps{})
	p.SetSize(80, 24)

	p.Update(devicesLoadedMsg{devices: []device.Descriptor{
		{Path: "/dev/ttyACM0", Label: "/dev/ttyACM0 -> Arduino (SN# 95536)"},
		{Path: "COM7", Label: "COM7 -> Teensy"},
	}})

	view := p.View()
	if !strings.Contains(view, "/dev/ttyACM0") || !strings.Contains(view, "COM7") {
		t.Errorf("expected both devices listed:\n%s", view)
	}
	if !strings.Contains(view, "2 devices") {
		t.Errorf("expected device count:\n%s", view)
	}
}

func TestDevicesPageEmptyWarning(t *testing.T) {
	p := NewDevicesPage(&Deps{})
	p.SetSize(80, 24)

	p.Update(devicesLoadedMsg{})

	if !strings.Contains(p.View(), "NO SERIAL DEVICES DETECTED") {
		t.Errorf("expected no-device warning:\n%s", p.View())
	}
}

func TestDevicesPageShowsScanError(t *testing.T) {
	p := NewDevicesPage(&Deps{})
	p.SetSize(80, 24)

	p.Update(devicesLoadedMsg{err: errors.New("enumerator exploded")})

	if !strings.Contains(p.View(), "enumerator exploded") {
		t.Errorf("expected scan error surfaced:\n%s", p.View())
	}
}

func TestDevicesPageRescanTriggersEnumerator(t *testing.T) {
	called := 0
	deps := &Deps{Enumerator: device.Enumerator{
		Ports: func() ([]device.PortInfo, error) {
			called++
			return nil, nil
		},
	}}
	p := NewDevicesPage(deps)

	_, cmd := p.Update(keyMsg('r'))
	if cmd == nil {
		t.Fatal("expected rescan command")
	}
	if _, ok := cmd().(devicesLoadedMsg); !ok {
		t.Fatal("expected devicesLoadedMsg")
	}
	if called != 1 {
		t.Fatalf("expected enumerator called once, got %d", called)
	}
}
