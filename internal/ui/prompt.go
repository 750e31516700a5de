package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/thesavant42/countrysearch/internal/app"
)

// ErrNoHistory is returned by PromptHistoryPick when there is nothing to pick
var ErrNoHistory = errors.New("search history is empty")

// sanitizeInput removes null bytes and other invisible control characters
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 || (r < 32 && r != '\t' && r != '\n' && r != '\r') {
			return -1
		}
		return r
	}, s)
}

// PromptHistoryPick lets the user pick one of the recent searches
func PromptHistoryPick(history []string) (string, error) {
	if len(history) == 0 {
		return "", ErrNoHistory
	}

	opts := make([]huh.Option[string], len(history))
	for i, q := range history {
		opts[i] = huh.NewOption(q, q)
	}

	var picked string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Recent searches").
				Description(fmt.Sprintf("%d entries, most recent first", len(history))).
				Options(opts...).
				Value(&picked),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return picked, nil
}

// PromptForQuery asks for a country name of at least minLength characters
func PromptForQuery(minLength int) (string, error) {
	var query string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Search countries").
				Description(fmt.Sprintf("Type at least %d characters", minLength)).
				Placeholder("e.g. land").
				Value(&query).
				Validate(func(s string) error {
					if len([]rune(strings.TrimSpace(s))) < minLength {
						return fmt.Errorf("type at least %d characters", minLength)
					}
					return nil
				}),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return strings.TrimSpace(sanitizeInput(query)), nil
}

// LoadWithSpinner loads the catalog while showing a spinner
func LoadWithSpinner(ctx context.Context, svc *app.Service) error {
	var loadErr error

	err := spinner.New().
		Title(app.MsgLoading + "...").
		Context(ctx).
		Action(func() {
			loadErr = svc.LoadCatalog(ctx)
		}).
		Run()

	if err != nil {
		return fmt.Errorf("spinner error: %w", err)
	}
	return loadErr
}
