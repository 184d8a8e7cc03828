// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"

	"github.com/bureau-foundation/papersync/lib/testutil"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFake_NowStandsStill(t *testing.T) {
	fake := Fake(epoch)
	if got := fake.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	fake.Advance(90 * time.Second)
	if got, want := fake.Now(), epoch.Add(90*time.Second); !got.Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFake_AfterNonPositiveFiresImmediately(t *testing.T) {
	fake := Fake(epoch)
	select {
	case fired := <-fake.After(0):
		if !fired.Equal(epoch) {
			t.Errorf("fired at %v, want %v", fired, epoch)
		}
	default:
		t.Fatal("After(0) channel was not ready")
	}
	if fake.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d, want 0", fake.PendingCount())
	}
}

func TestFake_AfterFiresOnlyAtDeadline(t *testing.T) {
	fake := Fake(epoch)
	channel := fake.After(3 * time.Second)

	fake.Advance(2 * time.Second)
	select {
	case <-channel:
		t.Fatal("fired before the deadline")
	default:
	}

	fake.Advance(time.Second)
	select {
	case fired := <-channel:
		if want := epoch.Add(3 * time.Second); !fired.Equal(want) {
			t.Errorf("fired at %v, want %v", fired, want)
		}
	default:
		t.Fatal("did not fire at the deadline")
	}
	if fake.PendingCount() != 0 {
		t.Errorf("PendingCount() = %d, want 0", fake.PendingCount())
	}
}

func TestFake_SleepWithWaitForTimers(t *testing.T) {
	fake := Fake(epoch)
	done := make(chan struct{})
	go func() {
		fake.Sleep(5 * time.Second)
		close(done)
	}()

	fake.WaitForTimers(1)
	fake.Advance(5 * time.Second)

	testutil.RequireClosed(t, done, 5*time.Second, "Sleep did not return after Advance")
}
