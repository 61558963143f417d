// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package eprom

import "time"

// Pin is a digital output capable of driving the EPROM programming
// pulse line. Implementations must tolerate microsecond-scale toggling.
type Pin interface {
	Set(high bool)
}

// Clock supplies the blocking delays of the programming protocol, so
// tests can substitute a recording fake for real sleeps.
type Clock interface {
	Sleep(d time.Duration)
}

type sysClock struct{}

func (sysClock) Sleep(d time.Duration) { time.Sleep(d) }

// Programming protocol delays. The pulse width and settle time gate
// the fuse burn on EPROMs; the commit delay covers the EEPROM internal
// write cycle after a scratchpad copy.
const (
	pulseWidth  = 500 * time.Microsecond
	pulseSettle = 500 * time.Microsecond
	commitDelay = 10 * time.Millisecond
)
