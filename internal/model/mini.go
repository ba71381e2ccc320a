// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// MiniStatus is the pile status of an inventory item.
type MiniStatus string

// Mini statuses.
const (
	StatusShame MiniStatus = "SHAME"
	StatusWIP   MiniStatus = "WIP"
	StatusFame  MiniStatus = "FAME"
)

// StageFinished is the stage value that marks a mini as done.
const StageFinished = "FINISHED"

// IsMiniStatus reports whether s is a recognized mini status.
func IsMiniStatus(s string) bool {
	switch MiniStatus(s) {
	case StatusShame, StatusWIP, StatusFame:
		return true
	}
	return false
}

// AutoFame reports whether a progress/stage combination promotes a mini
// to FAME regardless of the caller-supplied status.
func AutoFame(progressPercent int64, stage string) bool {
	return progressPercent >= 100 || stage == StageFinished
}

// StringChange records a before/after value for one string field.
type StringChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// IntChange records a before/after value for one integer field.
type IntChange struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// MiniDelta is the snapshot of the stage/progress/status change applied
// to a target mini as a side effect of completing a session. Fields are
// nil when the session did not touch them.
type MiniDelta struct {
	Stage           *StringChange `json:"stage,omitempty"`
	ProgressPercent *IntChange    `json:"progressPercent,omitempty"`
	Status          *StringChange `json:"status,omitempty"`
}

// Empty reports whether the delta records no change at all.
func (d MiniDelta) Empty() bool {
	return d.Stage == nil && d.ProgressPercent == nil && d.Status == nil
}
