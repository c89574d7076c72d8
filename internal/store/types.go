package store

import "time"

// FlashRecord captures the result of one flashing run.
type FlashRecord struct {
	Firmware  string    `json:"firmware"`
	Version   string    `json:"version"`
	Device    string    `json:"device"`
	Loader    string    `json:"loader"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Duration  string    `json:"duration"`
	Steps     []bool    `json:"steps"`
}
