package bgg

import (
	"math"
	"strconv"
	"strings"
)

// toAttributes converts a thing item into GameAttributes. Missing or
// malformed fields become zero values; it never fails.
func toAttributes(item itemXML) GameAttributes {
	attrs := GameAttributes{
		ID:            item.ID,
		Name:          primaryName(item.Names),
		Description:   item.Description,
		Categories:    []string{},
		Mechanics:     []string{},
		Themes:        []string{},
		Weight:        parseFloat(item.AverageWeight.Value),
		YearPublished: parseInt(item.YearPublished.Value),
		MinPlayers:    parseInt(item.MinPlayers.Value),
		MaxPlayers:    parseInt(item.MaxPlayers.Value),
		PlayingTime:   parseInt(item.PlayingTime.Value),
	}

	for _, link := range item.Links {
		switch link.Type {
		case linkCategory:
			attrs.Categories = append(attrs.Categories, link.Value)
		case linkMechanic:
			attrs.Mechanics = append(attrs.Mechanics, link.Value)
		case linkFamily:
			// Families are a loose bucket; only ones that name a theme count.
			if strings.Contains(strings.ToLower(link.Value), "theme") {
				attrs.Themes = append(attrs.Themes, link.Value)
			}
		}
	}

	return attrs
}

func toSearchResult(item itemXML) SearchResult {
	return SearchResult{
		ID:            item.ID,
		Name:          primaryName(item.Names),
		YearPublished: item.YearPublished.Value,
		Thumbnail:     strings.TrimSpace(item.Thumbnail),
	}
}

// primaryName prefers the name tagged "primary", then the first one.
func primaryName(names []nameXML) string {
	for _, n := range names {
		if n.Type == "primary" {
			return n.Value
		}
	}
	if len(names) > 0 {
		return names[0].Value
	}
	return ""
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
