package ui

// view_helpers.go provides common View() rendering helpers.

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/thesavant42/countrysearch/internal/models"
	"github.com/thesavant42/countrysearch/internal/pager"
	"golang.org/x/net/publicsuffix"
)

// ViewHeader renders title + full-width divider + spacing
func ViewHeader(title string, innerWidth int) string {
	var b strings.Builder
	b.WriteString(RenderTitle(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", innerWidth))
	b.WriteString("\n")
	return b.String()
}

// CenterText centers text within width
func CenterText(text string, width int) string {
	textW := StringWidth(text)
	if textW >= width {
		return text
	}
	left := (width - textW) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", width-textW-left)
}

// RenderPageButtons renders the styled page button row. Nothing is
// rendered for a single page.
func RenderPageButtons(d pager.Descriptor) string {
	if d.TotalPages <= 1 {
		return ""
	}

	parts := make([]string, 0, 12)
	if d.HasPrev() {
		parts = append(parts, ArrowStyle.Render("«"))
	}
	for _, b := range pager.BuildPageButtons(d.TotalPages, d.CurrentPage) {
		switch {
		case b.Ellipsis:
			parts = append(parts, RenderDim("…"))
		case b.Active:
			parts = append(parts, PageActiveStyle.Render(fmt.Sprint(b.Page)))
		default:
			parts = append(parts, PageStyle.Render(fmt.Sprint(b.Page)))
		}
	}
	if d.HasNext() {
		parts = append(parts, ArrowStyle.Render("»"))
	}
	return strings.Join(parts, " ")
}

// MapHost returns the registrable domain of a map link, e.g. "goo.gl" or
// "openstreetmap.org". It returns "" for an unparsable link.
func MapHost(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := u.Hostname()
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// RenderCountryDetail renders the detail box for one country
func RenderCountryDetail(c models.Country, favorite bool, width int) string {
	var b strings.Builder

	title := c.Name.Common
	if favorite {
		title += " ★"
	}
	b.WriteString(AccentStyle.Render(title))
	if c.Name.Official != "" && c.Name.Official != c.Name.Common {
		b.WriteString("  " + RenderDim(c.Name.Official))
	}
	b.WriteString("\n")

	field := func(label, value string) {
		b.WriteString(RenderDim(fmt.Sprintf("%-11s", label)))
		b.WriteString(RenderNormal(value))
		b.WriteString("\n")
	}
	field("Capital", c.Capital.String())
	field("Population", FormatPopulation(c.Population))
	field("Languages", joinOrDash(c.LanguageNames()))
	field("Currencies", joinOrDash(c.CurrencyNames()))
	if flag := c.FlagURL(); flag != "" {
		field("Flag", LinkStyle.Render(flag))
	}
	if c.Flags.Alt != "" {
		b.WriteString(HintStyle.Render(truncate(c.Flags.Alt, max(width-6, 10))))
		b.WriteString("\n")
	}
	if link := c.Maps.GoogleMaps; link != "" {
		label := "Map"
		if host := MapHost(link); host != "" {
			label = "Map (" + host + ")"
		}
		field(label, LinkStyle.Render(link))
	}

	return DetailBoxStyle.Width(max(width-2, 20)).Render(strings.TrimRight(b.String(), "\n"))
}
