package bgg

import "encoding/xml"

// GameAttributes is the normalized record for one board game.
type GameAttributes struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	Mechanics     []string `json:"mechanics"`
	Themes        []string `json:"themes"`
	Weight        float64  `json:"weight"` // community complexity, 1 (light) to 5 (heavy)
	YearPublished int      `json:"yearPublished"`
	MinPlayers    int      `json:"minPlayers"`
	MaxPlayers    int      `json:"maxPlayers"`
	PlayingTime   int      `json:"playingTime"`
}

// SearchResult is one entry of a search response. Fields stay strings as
// BoardGameGeek returns them.
type SearchResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	YearPublished string `json:"yearpublished"`
	Thumbnail     string `json:"thumbnail"`
}

// Link types used to classify a game's links.
const (
	linkCategory = "boardgamecategory"
	linkMechanic = "boardgamemechanic"
	linkFamily   = "boardgamefamily"
)

// itemsXML is the <items> envelope shared by the search and thing endpoints.
// Items, names and links decode into slices, so one element and many elements
// take the same path.
type itemsXML struct {
	XMLName xml.Name  `xml:"items"`
	Items   []itemXML `xml:"item"`
}

type itemXML struct {
	ID            string    `xml:"id,attr"`
	Type          string    `xml:"type,attr"`
	Thumbnail     string    `xml:"thumbnail"`
	Names         []nameXML `xml:"name"`
	Description   string    `xml:"description"`
	YearPublished valueXML  `xml:"yearpublished"`
	MinPlayers    valueXML  `xml:"minplayers"`
	MaxPlayers    valueXML  `xml:"maxplayers"`
	PlayingTime   valueXML  `xml:"playingtime"`
	Links         []linkXML `xml:"link"`
	AverageWeight valueXML  `xml:"statistics>ratings>averageweight"`
}

type nameXML struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

type valueXML struct {
	Value string `xml:"value,attr"`
}

type linkXML struct {
	Type  string `xml:"type,attr"`
	ID    string `xml:"id,attr"`
	Value string `xml:"value,attr"`
}
