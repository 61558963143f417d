// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package ds2480

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/grid-x/serial"
)

const (
	serialTimeout     = 500 * time.Millisecond
	serialIdleTimeout = 60 * time.Second
)

// serialPort owns the line to the DS2480B: configuration, the lazily
// opened port and an idle-close timer so an unused adapter does not
// hold the device node forever.
type serialPort struct {
	serial.Config

	IdleTimeout time.Duration

	mu           sync.Mutex
	port         io.ReadWriteCloser
	lastActivity time.Time
	closeTimer   *time.Timer
}

// connect opens the serial port if it is not open. Caller must hold
// the mutex.
func (sp *serialPort) connect() error {
	if sp.port == nil {
		port, err := serial.Open(&sp.Config)
		if err != nil {
			return fmt.Errorf("could not open %s: %w", sp.Config.Address, err)
		}
		sp.port = port
	}
	return nil
}

func (sp *serialPort) Close() error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.close()
}

// close closes the serial port if it is connected. Caller must hold
// the mutex.
func (sp *serialPort) close() (err error) {
	if sp.port != nil {
		err = sp.port.Close()
		sp.port = nil
	}
	return
}

func (sp *serialPort) startCloseTimer() {
	if sp.IdleTimeout <= 0 {
		return
	}
	if sp.closeTimer == nil {
		sp.closeTimer = time.AfterFunc(sp.IdleTimeout, sp.closeIdle)
	} else {
		sp.closeTimer.Reset(sp.IdleTimeout)
	}
}

// closeIdle closes the connection if last activity is passed behind IdleTimeout.
func (sp *serialPort) closeIdle() {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.IdleTimeout <= 0 {
		return
	}

	if idle := time.Since(sp.lastActivity); idle >= sp.IdleTimeout {
		slog.Debug("ds2480: closing port after idle timeout", "idle", idle)
		sp.close()
	}
}

// exchange writes out and reads back exactly len(in) bytes. Caller
// must hold the mutex.
func (sp *serialPort) exchange(out, in []byte) error {
	if err := sp.connect(); err != nil {
		return err
	}
	sp.lastActivity = time.Now()
	sp.startCloseTimer()

	if len(out) > 0 {
		if _, err := sp.port.Write(out); err != nil {
			return fmt.Errorf("ds2480: write: %w", err)
		}
	}
	if len(in) > 0 {
		if _, err := io.ReadFull(sp.port, in); err != nil {
			return fmt.Errorf("ds2480: read: %w", err)
		}
	}
	return nil
}
