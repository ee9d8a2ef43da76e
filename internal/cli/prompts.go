package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/cortexfund/internal/models"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.-]+$`)

// PromptForTickers interactively collects one or more ticker symbols,
// adapted from the teacher's PromptForTicker (internal/cli/prompts.go) to
// cortexfund's multi-ticker run instead of the teacher's single symbol.
func PromptForTickers() ([]models.Ticker, error) {
	var raw string
	prompt := &survey.Input{
		Message: "Enter comma-separated ticker symbols (e.g., AAPL,MSFT,GOOGL):",
		Help:    "Every selected analyst and the portfolio manager run against this ticker set.",
	}

	err := survey.AskOne(prompt, &raw, survey.WithValidator(func(val interface{}) error {
		str, _ := val.(string)
		if strings.TrimSpace(str) == "" {
			return fmt.Errorf("at least one ticker is required")
		}
		for _, s := range strings.Split(str, ",") {
			s = strings.TrimSpace(strings.ToUpper(s))
			if s == "" {
				continue
			}
			if !tickerPattern.MatchString(s) {
				return fmt.Errorf("invalid ticker %q (use letters, numbers, dots, and hyphens only)", s)
			}
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}

	var tickers []models.Ticker
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(strings.ToUpper(s))
		if s != "" {
			tickers = append(tickers, models.Ticker(s))
		}
	}
	return tickers, nil
}

// AnalystOption is one selectable entry in PromptForAnalysts, decoupling the
// prompt from internal/registry's concrete Entry type.
type AnalystOption struct {
	Key         string
	DisplayName string
}

// PromptForAnalysts prompts the user to pick which registered analysts run
// this invocation, adapted from the teacher's PromptForAnalysts
// (internal/cli/prompts.go) against cortexfund's open analyst registry
// instead of the teacher's fixed four-member team.
func PromptForAnalysts(options []AnalystOption) ([]string, error) {
	displayToKey := make(map[string]string, len(options))
	names := make([]string, len(options))
	for i, o := range options {
		names[i] = o.DisplayName
		displayToKey[o.DisplayName] = o.Key
	}

	var selected []string
	prompt := &survey.MultiSelect{
		Message: "Select analysts to run:",
		Options: names,
		Help:    "Use space to select, enter to confirm.",
		Default: names,
	}

	err := survey.AskOne(prompt, &selected, survey.WithValidator(func(val interface{}) error {
		opts, ok := val.([]survey.OptionAnswer)
		if !ok {
			return fmt.Errorf("invalid selection type")
		}
		if len(opts) == 0 {
			return fmt.Errorf("select at least one analyst")
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(selected))
	for _, name := range selected {
		if key, ok := displayToKey[name]; ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
