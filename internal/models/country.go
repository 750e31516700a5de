package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Country represents a single record from the restcountries v3.1 API.
// Field tags follow the API payload so cached records keep the same shape.
type Country struct {
	Name       CountryName         `json:"name"`
	Capital    Capitals            `json:"capital,omitempty"`
	Population int64               `json:"population"`
	Languages  map[string]string   `json:"languages,omitempty"`
	Currencies map[string]Currency `json:"currencies,omitempty"`
	Flags      Flags               `json:"flags"`
	Maps       Maps                `json:"maps"`
}

// CountryName holds the common and official names
type CountryName struct {
	Common   string `json:"common"`
	Official string `json:"official,omitempty"`
}

// Currency is a single entry of the currencies mapping
type Currency struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol,omitempty"`
}

// Flags holds the flag image URIs
type Flags struct {
	SVG string `json:"svg,omitempty"`
	PNG string `json:"png,omitempty"`
	Alt string `json:"alt,omitempty"`
}

// Maps holds the map link URIs
type Maps struct {
	GoogleMaps     string `json:"googleMaps,omitempty"`
	OpenStreetMaps string `json:"openStreetMaps,omitempty"`
}

// Capitals is the capital field. The API sends a list, older payloads
// and hand-written fixtures sometimes send a bare string.
type Capitals []string

// UnmarshalJSON accepts null, a string, or a list of strings
func (c *Capitals) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}

	if data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("invalid capital: %w", err)
		}
		if single == "" {
			*c = nil
			return nil
		}
		*c = Capitals{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("invalid capital list: %w", err)
	}
	*c = list
	return nil
}

// String joins the capitals for display, "-" when there are none
func (c Capitals) String() string {
	if len(c) == 0 {
		return "-"
	}
	return strings.Join(c, ", ")
}

// LanguageNames returns the language names sorted alphabetically
func (c Country) LanguageNames() []string {
	names := make([]string, 0, len(c.Languages))
	for _, name := range c.Languages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CurrencyNames returns "Name (SYM)" entries sorted by currency code
func (c Country) CurrencyNames() []string {
	codes := make([]string, 0, len(c.Currencies))
	for code := range c.Currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	names := make([]string, 0, len(codes))
	for _, code := range codes {
		cur := c.Currencies[code]
		name := cur.Name
		if name == "" {
			name = code
		}
		if cur.Symbol != "" {
			name = fmt.Sprintf("%s (%s)", name, cur.Symbol)
		}
		names = append(names, name)
	}
	return names
}

// FlagURL prefers the SVG flag and falls back to PNG
func (c Country) FlagURL() string {
	if c.Flags.SVG != "" {
		return c.Flags.SVG
	}
	return c.Flags.PNG
}
