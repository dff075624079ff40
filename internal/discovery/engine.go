// Package discovery locates the constituent file link inside an index page.
//
// No single selector works across every page of the target site, so the
// engine runs an ordered list of independent strategies, most reliable first,
// and returns the first candidate any of them produces.
package discovery

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
)

// StrategyFunc inspects a parsed page and returns a candidate link resolved
// against base. It must not mutate the document.
type StrategyFunc func(doc *goquery.Document, base *url.URL) (string, bool)

// Strategy is a named StrategyFunc.
type Strategy struct {
	Name string
	Find StrategyFunc
}

// DefaultStrategies returns the built-in strategies in priority order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "direct-link", Find: DirectLink},
		{Name: "download-section", Find: DownloadSection},
		{Name: "data-attribute", Find: DataAttribute},
		{Name: "inline-script", Find: InlineScript},
		{Name: "known-pattern", Find: KnownPattern},
	}
}

// Engine runs strategies in order and stops at the first match.
type Engine struct {
	strategies []Strategy
	log        *log.Logger
}

// New creates an Engine. With no strategies given the defaults are used.
func New(logger *log.Logger, strategies ...Strategy) *Engine {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Engine{
		strategies: strategies,
		log:        logger,
	}
}

// Find returns the first candidate link and the name of the strategy that
// produced it. ok is false when every strategy came up empty.
func (e *Engine) Find(doc *goquery.Document, baseURL string) (link, strategy string, ok bool) {
	base, err := url.Parse(baseURL)
	if err != nil {
		e.log.Warn("Unparseable base URL, links stay unresolved", "url", baseURL, "error", err)
		base = nil
	}

	for _, s := range e.strategies {
		if candidate, found := s.Find(doc, base); found {
			e.log.Info("Found constituent link", "strategy", s.Name, "link", candidate)
			return candidate, s.Name, true
		}
		e.log.Debug("Strategy found nothing", "strategy", s.Name)
	}
	return "", "", false
}
