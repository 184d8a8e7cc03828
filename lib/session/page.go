// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import "context"

// Page is one browser tab. Every method blocks until its action
// completes or ctx is done; element methods wait for the element to be
// present first.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Fill(ctx context.Context, selector Selector, value string) error
	Click(ctx context.Context, selector Selector) error
	WaitVisible(ctx context.Context, selector Selector) error

	// WaitURL blocks until the current URL satisfies match and returns
	// that URL.
	WaitURL(ctx context.Context, match func(url string) bool) (string, error)

	URL(ctx context.Context) (string, error)
	Attribute(ctx context.Context, selector Selector, name string) (string, error)

	// Close releases the tab and its browser. Safe to call more than
	// once.
	Close() error
}

// Launcher starts a browser and opens a page in it.
type Launcher interface {
	Launch(ctx context.Context) (Page, error)
}
