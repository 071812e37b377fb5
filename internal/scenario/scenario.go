// Package scenario replays scripted visits against a simulated page so the
// tracking library can be exercised end to end without a browser.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidScenario = errors.New("invalid scenario")

type Action string

const (
	ActionLoad    Action = "load"
	ActionClick   Action = "click"
	ActionPush    Action = "push"
	ActionReplace Action = "replace"
	ActionHash    Action = "hash"
	ActionBack    Action = "back"
	ActionForward Action = "forward"
	ActionHide    Action = "hide"
	ActionShow    Action = "show"
	ActionUnload  Action = "unload"
	ActionWait    Action = "wait"
)

type Element struct {
	ID       string            `yaml:"id"`
	Tag      string            `yaml:"tag"`
	Attrs    map[string]string `yaml:"attrs"`
	Children []Element         `yaml:"children"`
}

type Step struct {
	Action Action        `yaml:"action"`
	URL    string        `yaml:"url"`
	Target string        `yaml:"target"`
	Wait   time.Duration `yaml:"wait"`
}

type Scenario struct {
	Project        string    `yaml:"project"`
	ReportURL      string    `yaml:"reportUrl"`
	StartURL       string    `yaml:"startUrl"`
	Referrer       string    `yaml:"referrer"`
	ClickAttribute string    `yaml:"clickAttribute"`
	RetentionDays  int       `yaml:"retentionDays"`
	Elements       []Element `yaml:"elements"`
	Steps          []Step    `yaml:"steps"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func collectIDs(elements []Element, ids map[string]bool) error {
	for _, el := range elements {
		if el.Tag == "" {
			return fmt.Errorf("%w: element %q has no tag", ErrInvalidScenario, el.ID)
		}
		if el.ID != "" {
			if ids[el.ID] {
				return fmt.Errorf("%w: duplicate element id %q", ErrInvalidScenario, el.ID)
			}
			ids[el.ID] = true
		}
		if err := collectIDs(el.Children, ids); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks everything that can be checked before the page exists.
// Project and report URL may be left empty and filled in by the caller.
func (sc *Scenario) Validate() error {
	if sc.StartURL == "" {
		return fmt.Errorf("%w: startUrl is required", ErrInvalidScenario)
	}

	ids := map[string]bool{}
	if err := collectIDs(sc.Elements, ids); err != nil {
		return err
	}

	for i, step := range sc.Steps {
		switch step.Action {
		case ActionLoad, ActionBack, ActionForward, ActionHide, ActionShow, ActionUnload:
		case ActionPush, ActionReplace:
			if step.URL == "" {
				return fmt.Errorf("%w: step %d (%s) needs a url", ErrInvalidScenario, i+1, step.Action)
			}
		case ActionHash:
		case ActionClick:
			if step.Target != "" && !ids[step.Target] {
				return fmt.Errorf("%w: step %d clicks unknown element %q", ErrInvalidScenario, i+1, step.Target)
			}
		case ActionWait:
			if step.Wait <= 0 {
				return fmt.Errorf("%w: step %d waits for %s", ErrInvalidScenario, i+1, step.Wait)
			}
		default:
			return fmt.Errorf("%w: step %d has unknown action %q", ErrInvalidScenario, i+1, step.Action)
		}
	}
	return nil
}
