// Copyright The wcs-go Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import "time"

// TimerHandle cancels a scheduled callback. Stop is idempotent.
type TimerHandle interface {
	Stop()
}

// TimerService schedules retry-pause callbacks. Abstracted so pipeline
// tests can use a fake clock instead of real timers.
type TimerService interface {
	AfterFunc(d time.Duration, f func()) TimerHandle
}

// realTimerService is the default TimerService, backed by time.AfterFunc.
type realTimerService struct{}

// NewRealTimerService builds the default, wall-clock-backed TimerService.
func NewRealTimerService() TimerService { return realTimerService{} }

func (realTimerService) AfterFunc(d time.Duration, f func()) TimerHandle {
	return &realTimerHandle{t: time.AfterFunc(d, f)}
}

type realTimerHandle struct{ t *time.Timer }

func (h *realTimerHandle) Stop() { h.t.Stop() }
