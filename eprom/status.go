// Copyright (c) 2026 The dallasmem authors. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package eprom

import "fmt"

// Status is the result of a page operation. OK is zero; every failure
// is negative and terminal for the call that produced it. The engine
// never retries a command phase; callers retry whole operations if
// they want to.
type Status int

const (
	OK                 Status = 0
	CRCMismatch        Status = -1
	InvalidPage        Status = -2
	PageLocked         Status = -3 // reserved, not currently raised
	BadIntegrity       Status = -4
	CopyFailure        Status = -5
	UnsupportedDevice  Status = -64 // reserved, not currently raised
	DeviceDisconnected Status = -127
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case CRCMismatch:
		return "crc mismatch"
	case InvalidPage:
		return "invalid page"
	case PageLocked:
		return "page locked"
	case BadIntegrity:
		return "scratchpad integrity check failed"
	case CopyFailure:
		return "copy to memory failed"
	case UnsupportedDevice:
		return "unsupported device"
	case DeviceDisconnected:
		return "device disconnected"
	}
	return fmt.Sprintf("status(%d)", int(s))
}
