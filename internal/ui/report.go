package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/thesavant42/countrysearch/internal/app"
	"github.com/thesavant42/countrysearch/internal/pager"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	nameStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	cellStyle = lipgloss.NewStyle().
			Foreground(ColorText)
)

// WriteResults prints one page of countries as a plain table followed by
// the page buttons
func WriteResults(w io.Writer, view app.View, isFavorite func(string) bool) {
	if len(view.Items) == 0 {
		fmt.Fprintln(w, HintStyle.Render(app.MsgNothing))
		return
	}

	if view.Query != "" {
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Countries matching %q", view.Query)))
	} else {
		fmt.Fprintln(w, headerStyle.Render("All countries"))
	}
	fmt.Fprintln(w)

	nameW := len("Country")
	capW := len("Capital")
	for _, c := range view.Items {
		nameW = max(nameW, StringWidth(c.Name.Common)+2)
		capW = max(capW, StringWidth(c.Capital.String()))
	}

	fmt.Fprintf(w, "%s  %s  %14s  %s\n",
		padRight("Country", nameW), padRight("Capital", capW), "Population", "Languages")
	fmt.Fprintln(w, strings.Repeat("─", nameW+capW+14+6+20))

	for _, c := range view.Items {
		name := c.Name.Common
		if isFavorite != nil && isFavorite(name) {
			name += " ★"
		}
		fmt.Fprintf(w, "%s  %s  %14s  %s\n",
			nameStyle.Render(padRight(name, nameW)),
			cellStyle.Render(padRight(c.Capital.String(), capW)),
			FormatPopulation(c.Population),
			cellStyle.Render(joinOrDash(c.LanguageNames())),
		)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderDim(fmt.Sprintf("%d results • Page %d/%d", view.Paging.Total, view.Paging.CurrentPage, view.Paging.TotalPages)))
	if buttons := pager.RenderButtons(view.Paging); buttons != "" {
		fmt.Fprintln(w, RenderDim(buttons))
	}
}

// WriteList prints a numbered list under title, or empty when there is nothing
func WriteList(w io.Writer, title string, items []string, empty string) {
	fmt.Fprintln(w, headerStyle.Render(title))
	if len(items) == 0 {
		fmt.Fprintln(w, HintStyle.Render(empty))
		return
	}
	for i, item := range items {
		fmt.Fprintf(w, "%3d. %s\n", i+1, cellStyle.Render(item))
	}
}

func padRight(s string, width int) string {
	if pad := width - StringWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println(SuccessStyle.Render(message))
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Println(ErrorStyle.Render("Error: " + message))
}

// PrintStatus prints a service status, in red when it is an error
func PrintStatus(st app.Status) {
	if st.Message == "" {
		return
	}
	if st.IsError() {
		fmt.Println(ErrorStyle.Render(st.Message))
		return
	}
	fmt.Println(HintStyle.Render(st.Message))
}
