// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by every
// papersync component that waits or stamps time: the mailbox poll loop,
// browser URL polling, commit message timestamps, and registry entry
// creation times.
//
// Production code holds a [Clock] field set to [Real]. Tests use [Fake],
// which only moves when [FakeClock.Advance] is called:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go poll(fake)
//	fake.WaitForTimers(1)       // poll loop is now blocked in After
//	fake.Advance(3 * time.Second)
//
// WaitForTimers closes the race between a goroutine registering a wait
// and the test advancing time.
package clock
