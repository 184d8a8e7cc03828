// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/bureau-foundation/papersync/lib/clock"
	"github.com/bureau-foundation/papersync/lib/session"
)

// matchAttribute tags elements found by a text-filtered CSS selector
// so that chromedp can target them with a plain query.
const matchAttribute = "data-papersync-match"

type page struct {
	browserCtx      context.Context
	cancelBrowser   context.CancelFunc
	cancelAllocator context.CancelFunc
	clock           clock.Clock
	pollInterval    time.Duration

	matchSequence atomic.Int64
	closeOnce     sync.Once
	closeErr      error
}

var _ session.Page = (*page)(nil)

// run executes actions on the tab, bounded by ctx.
func (p *page) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.browserCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// query translates a selector into a chromedp query. Text-filtered CSS
// selectors are resolved in the page first and tagged, which waits
// until a matching element exists.
func (p *page) query(ctx context.Context, selector session.Selector) (string, []chromedp.QueryOption, error) {
	switch {
	case selector.CSS != "" && selector.Text != "":
		id := strconv.FormatInt(p.matchSequence.Add(1), 10)
		script := markScript(selector.CSS, selector.Text, id)
		for {
			var found bool
			if err := p.run(ctx, chromedp.Evaluate(script, &found)); err != nil {
				return "", nil, fmt.Errorf("locating %s: %w", selector, err)
			}
			if found {
				return fmt.Sprintf(`[%s=%q]`, matchAttribute, id), []chromedp.QueryOption{chromedp.ByQuery}, nil
			}
			select {
			case <-p.clock.After(p.pollInterval):
			case <-ctx.Done():
				return "", nil, fmt.Errorf("locating %s: %w", selector, ctx.Err())
			}
		}
	case selector.Text != "":
		return textXPath(selector.Text), []chromedp.QueryOption{chromedp.BySearch}, nil
	case selector.CSS != "":
		return selector.CSS, []chromedp.QueryOption{chromedp.ByQuery}, nil
	default:
		return "", nil, fmt.Errorf("empty selector")
	}
}

func (p *page) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (p *page) Fill(ctx context.Context, selector session.Selector, value string) error {
	query, options, err := p.query(ctx, selector)
	if err != nil {
		return err
	}
	err = p.run(ctx,
		chromedp.WaitVisible(query, options...),
		chromedp.Clear(query, options...),
		chromedp.SendKeys(query, value, options...),
	)
	if err != nil {
		return fmt.Errorf("filling %s: %w", selector, err)
	}
	return nil
}

func (p *page) Click(ctx context.Context, selector session.Selector) error {
	query, options, err := p.query(ctx, selector)
	if err != nil {
		return err
	}
	if err := p.run(ctx, chromedp.Click(query, append(options, chromedp.NodeVisible)...)); err != nil {
		return fmt.Errorf("clicking %s: %w", selector, err)
	}
	return nil
}

func (p *page) WaitVisible(ctx context.Context, selector session.Selector) error {
	query, options, err := p.query(ctx, selector)
	if err != nil {
		return err
	}
	if err := p.run(ctx, chromedp.WaitVisible(query, options...)); err != nil {
		return fmt.Errorf("waiting for %s: %w", selector, err)
	}
	return nil
}

func (p *page) WaitURL(ctx context.Context, match func(string) bool) (string, error) {
	var current string
	for {
		if err := p.run(ctx, chromedp.Location(&current)); err != nil {
			return "", fmt.Errorf("reading location: %w", err)
		}
		if match(current) {
			return current, nil
		}
		select {
		case <-p.clock.After(p.pollInterval):
		case <-ctx.Done():
			return "", fmt.Errorf("location still %s: %w", current, ctx.Err())
		}
	}
}

func (p *page) URL(ctx context.Context) (string, error) {
	var current string
	if err := p.run(ctx, chromedp.Location(&current)); err != nil {
		return "", fmt.Errorf("reading location: %w", err)
	}
	return current, nil
}

func (p *page) Attribute(ctx context.Context, selector session.Selector, name string) (string, error) {
	query, options, err := p.query(ctx, selector)
	if err != nil {
		return "", err
	}
	var value string
	var ok bool
	if err := p.run(ctx, chromedp.AttributeValue(query, name, &value, &ok, options...)); err != nil {
		return "", fmt.Errorf("reading %s of %s: %w", name, selector, err)
	}
	if !ok && name == "value" {
		// Inputs filled by script carry the value as a property only.
		if err := p.run(ctx, chromedp.Value(query, &value, options...)); err != nil {
			return "", fmt.Errorf("reading value of %s: %w", selector, err)
		}
		ok = value != ""
	}
	if !ok {
		return "", fmt.Errorf("%s has no %s attribute", selector, name)
	}
	return value, nil
}

func (p *page) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = chromedp.Cancel(p.browserCtx)
		p.cancelBrowser()
		p.cancelAllocator()
	})
	return p.closeErr
}

// textXPath matches the innermost element whose normalized text
// contains text.
func textXPath(text string) string {
	literal := xpathLiteral(text)
	return fmt.Sprintf(`//*[contains(normalize-space(.), %s) and not(.//*[contains(normalize-space(.), %s)])]`, literal, literal)
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts))
	for index, part := range parts {
		if index > 0 {
			quoted = append(quoted, `"'"`)
		}
		if part != "" {
			quoted = append(quoted, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// markScript returns a JavaScript expression that tags the first
// element matching css whose text contains text and reports whether
// one was found.
func markScript(css, text, id string) string {
	encode := func(value string) string {
		encoded, _ := json.Marshal(value)
		return string(encoded)
	}
	return fmt.Sprintf(`(function(css, text, attribute, id) {
  for (const node of document.querySelectorAll(css)) {
    if ((node.innerText || node.textContent || "").includes(text)) {
      node.setAttribute(attribute, id);
      return true;
    }
  }
  return false;
})(%s, %s, %s, %s)`, encode(css), encode(text), encode(matchAttribute), encode(id))
}
