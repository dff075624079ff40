package config

var sectoralIndices = []string{
	"https://www.niftyindices.com/indices/equity/sectoral-indices/nifty-it",
	"https://www.niftyindices.com/indices/equity/sectoral-indices/nifty-realty",
	"https://www.niftyindices.com/indices/equity/sectoral-indices/nifty-psu-bank",
	"https://www.niftyindices.com/indices/equity/thematic-indices/nifty-pse",
	"https://www.niftyindices.com/indices/equity/sectoral-indices/nifty-pharma",
	"https://www.niftyindices.com/indices/equity/sectoral-indices/nifty-oil-and-gas-index",
	"https://www.niftyindices.com/indices/equity/sectoral-indices/nifty-metal",
	"https://www.niftyindices.com/indices/equity/sectoral-indices/nifty-media",
}

// Empty until the broad market pages are confirmed to carry the same layout.
var broadIndices = []string{}
