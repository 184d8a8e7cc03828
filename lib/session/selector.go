// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"regexp"
	"strings"
)

// Selector locates an element. CSS alone is a CSS query; Text alone
// matches the innermost element whose text contains Text; both
// together match CSS elements whose text contains Text.
type Selector struct {
	CSS  string
	Text string
}

// hasText matches a trailing-or-embedded :has-text('...') pseudo-class.
var hasText = regexp.MustCompile(`:has-text\((?:'([^']*)'|"([^"]*)")\)`)

// ParseSelector parses the selector notation used in configuration:
//
//	text=Blank Project                      text match
//	button:has-text('Create'):not([disabled]) CSS filtered by text
//	input[name='email']                     plain CSS
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}
	if text, ok := strings.CutPrefix(raw, "text="); ok {
		text = strings.Trim(strings.TrimSpace(text), `"'`)
		if text == "" {
			return Selector{}, fmt.Errorf("selector %q has no text", raw)
		}
		return Selector{Text: text}, nil
	}

	matches := hasText.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) > 1 {
		return Selector{}, fmt.Errorf("selector %q: only one :has-text() is supported", raw)
	}
	if len(matches) == 1 {
		match := matches[0]
		var text string
		if match[2] >= 0 {
			text = raw[match[2]:match[3]]
		} else {
			text = raw[match[4]:match[5]]
		}
		css := strings.TrimSpace(raw[:match[0]] + raw[match[1]:])
		if css == "" {
			css = "*"
		}
		return Selector{CSS: css, Text: text}, nil
	}
	return Selector{CSS: raw}, nil
}

// MustParseSelector is ParseSelector for compile-time constants.
func MustParseSelector(raw string) Selector {
	selector, err := ParseSelector(raw)
	if err != nil {
		panic(err)
	}
	return selector
}

func (s Selector) String() string {
	switch {
	case s.CSS != "" && s.Text != "":
		return fmt.Sprintf("%s:has-text(%q)", s.CSS, s.Text)
	case s.Text != "":
		return "text=" + s.Text
	default:
		return s.CSS
	}
}

// IsZero reports whether the selector is unset.
func (s Selector) IsZero() bool { return s.CSS == "" && s.Text == "" }

// Selectors are the UI controls the flows touch.
type Selectors struct {
	Email        Selector
	ConfirmEmail Selector
	Password     Selector
	Submit       Selector
	BlankProject Selector
	ProjectName  Selector
	Create       Selector
	Menu         Selector
	GitMenuItem  Selector
	GitPanel     Selector
	GitURLInput  Selector
}

// DefaultSelectorStrings returns the selector notation for the host UI
// as of this writing, keyed by the Selectors field names used in
// configuration.
func DefaultSelectorStrings() map[string]string {
	return map[string]string{
		"email":         "input[name='email']",
		"confirm_email": "input[name='confirmEmail']",
		"password":      "input[name='password']",
		"submit":        "button[type='submit']",
		"blank_project": "text=Blank Project",
		"project_name":  "input[placeholder*='Project Name']",
		"create":        "button:has-text('Create'):not([disabled])",
		"menu":          "button[aria-label*='Menu']",
		"git_menu_item": "text=Git",
		"git_panel":     "text=Git Integration",
		"git_url_input": "input[value*='git.overleaf.com']",
	}
}

// ParseSelectors builds Selectors from configuration notation. Keys
// missing from raw take their default.
func ParseSelectors(raw map[string]string) (Selectors, error) {
	merged := DefaultSelectorStrings()
	for key, value := range raw {
		if _, known := merged[key]; !known {
			return Selectors{}, fmt.Errorf("unknown selector %q", key)
		}
		merged[key] = value
	}

	var selectors Selectors
	fields := map[string]*Selector{
		"email":         &selectors.Email,
		"confirm_email": &selectors.ConfirmEmail,
		"password":      &selectors.Password,
		"submit":        &selectors.Submit,
		"blank_project": &selectors.BlankProject,
		"project_name":  &selectors.ProjectName,
		"create":        &selectors.Create,
		"menu":          &selectors.Menu,
		"git_menu_item": &selectors.GitMenuItem,
		"git_panel":     &selectors.GitPanel,
		"git_url_input": &selectors.GitURLInput,
	}
	for key, target := range fields {
		parsed, err := ParseSelector(merged[key])
		if err != nil {
			return Selectors{}, fmt.Errorf("selector %s: %w", key, err)
		}
		*target = parsed
	}
	return selectors, nil
}

// DefaultSelectors returns the parsed default selectors.
func DefaultSelectors() Selectors {
	selectors, err := ParseSelectors(nil)
	if err != nil {
		panic(err)
	}
	return selectors
}
