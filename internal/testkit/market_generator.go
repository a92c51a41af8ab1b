// Package testkit generates synthetic Google Play and App Store data sets.
package testkit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"
)

// MarketGeneratorConfig configures the synthetic market
type MarketGeneratorConfig struct {
	AppCount    int       `json:"app_count"`
	OverlapRate float64   `json:"overlap_rate"` // share of apps published on both stores
	PaidRate    float64   `json:"paid_rate"`
	MissingRate float64   `json:"missing_rate"` // share of blank Android ratings
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Seed        int64     `json:"seed"`
}

// DefaultMarketConfig returns sensible defaults for market generation
func DefaultMarketConfig() MarketGeneratorConfig {
	return MarketGeneratorConfig{
		AppCount:    200,
		OverlapRate: 0.4,
		PaidRate:    0.1,
		MissingRate: 0.05,
		StartDate:   time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		Seed:        42,
	}
}

// AndroidHeader is the Google Play export header
var AndroidHeader = []string{
	"App", "Category", "Rating", "Reviews", "Size", "Installs", "Type", "Price",
	"Content Rating", "Genres", "Last Updated", "Current Ver", "Android Ver",
}

var categories = []struct {
	play, store string
}{
	{"GAME", "Games"},
	{"SOCIAL", "Social Networking"},
	{"PRODUCTIVITY", "Productivity"},
	{"PHOTOGRAPHY", "Photo & Video"},
	{"HEALTH_AND_FITNESS", "Health & Fitness"},
	{"FINANCE", "Finance"},
	{"EDUCATION", "Education"},
}

var installBuckets = []int64{1000, 10000, 100000, 1000000, 10000000, 100000000}

var contentRatings = []struct {
	play, store string
}{
	{"Everyone", "4+"},
	{"Teen", "12+"},
	{"Mature 17+", "17+"},
}

// MarketApp is one generated application before it is rendered per store
type MarketApp struct {
	Name     string
	Index    int
	Category int
	OnIOS    bool
	Paid     bool
	Price    float64
	Rating   float64
	Reviews  int64
	SizeMB   float64
	Content  int
	Updated  time.Time
}

// MarketGenerator generates a reproducible two-store market
type MarketGenerator struct {
	config MarketGeneratorConfig
	rng    *rand.Rand
	apps   []MarketApp
}

// NewMarketGenerator creates a new market generator
func NewMarketGenerator(config MarketGeneratorConfig) *MarketGenerator {
	g := &MarketGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
	g.apps = g.generateApps()
	return g
}

// Apps returns the generated applications
func (g *MarketGenerator) Apps() []MarketApp {
	return g.apps
}

// OverlapCount returns how many apps are listed on both stores
func (g *MarketGenerator) OverlapCount() int {
	n := 0
	for _, a := range g.apps {
		if a.OnIOS {
			n++
		}
	}
	return n
}

func (g *MarketGenerator) generateApps() []MarketApp {
	out := make([]MarketApp, g.config.AppCount)
	for i := range out {
		a := MarketApp{
			Name:     fmt.Sprintf("App %04d", i+1),
			Index:    i,
			Category: g.rng.Intn(len(categories)),
			OnIOS:    g.rng.Float64() < g.config.OverlapRate,
			Paid:     g.rng.Float64() < g.config.PaidRate,
			Rating:   clamp(g.rng.NormFloat64()*0.4+4.1, 1, 5),
			Reviews:  int64(math.Exp(g.rng.Float64()*12 + 2)),
			SizeMB:   math.Round((g.rng.Float64()*120+2)*10) / 10,
			Content:  g.rng.Intn(len(contentRatings)),
			Updated:  g.randomTimeInRange(g.config.StartDate, g.config.EndDate),
		}
		if a.Paid {
			a.Price = float64(g.rng.Intn(10)) + 0.99
		}
		out[i] = a
	}
	return out
}

// AndroidCSV renders the Google Play export. Some apps get a blank rating
// and a "Varies with device" size, the way real exports do.
func (g *MarketGenerator) AndroidCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(AndroidHeader); err != nil {
		return nil, err
	}
	for _, a := range g.apps {
		rating := strconv.FormatFloat(round(a.Rating, 1), 'f', 1, 64)
		if g.rng.Float64() < g.config.MissingRate {
			rating = ""
		}
		size := strconv.FormatFloat(a.SizeMB, 'f', -1, 64) + "M"
		if a.Index%17 == 0 {
			size = "Varies with device"
		}
		typ, price := "Free", "0"
		if a.Paid {
			typ, price = "Paid", fmt.Sprintf("$%.2f", a.Price)
		}
		installs := installBuckets[a.Index%len(installBuckets)]
		record := []string{
			a.Name + " - " + categories[a.Category].store,
			categories[a.Category].play,
			rating,
			strconv.FormatInt(a.Reviews, 10),
			size,
			formatInstalls(installs),
			typ,
			price,
			contentRatings[a.Content].play,
			categories[a.Category].store,
			a.Updated.Format("January 2, 2006"),
			fmt.Sprintf("%d.%d", 1+a.Index%5, a.Index%10),
			"4.1 and up",
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// IOSJSON renders an App Store search response holding the apps listed on
// both stores. iOS ratings drift from Android ones by a small offset.
func (g *MarketGenerator) IOSJSON() ([]byte, error) {
	items := make([]map[string]interface{}, 0, g.OverlapCount())
	for _, a := range g.apps {
		if !a.OnIOS {
			continue
		}
		items = append(items, map[string]interface{}{
			"title":            a.Name + ": " + categories[a.Category].store,
			"primaryGenreName": categories[a.Category].store,
			"score":            round(clamp(a.Rating+g.rng.NormFloat64()*0.2, 0, 5), 2),
			"reviews":          a.Reviews / 3,
			"size":             int64(a.SizeMB * 1024 * 1024),
			"free":             !a.Paid,
			"price":            a.Price,
			"updated":          a.Updated.Unix(),
			"contentRating":    contentRatings[a.Content].store,
		})
	}
	return json.Marshal(items)
}

func (g *MarketGenerator) randomTimeInRange(start, end time.Time) time.Time {
	span := end.Sub(start)
	if span <= 0 {
		return start
	}
	return start.Add(time.Duration(g.rng.Int63n(int64(span)))).Truncate(24 * time.Hour)
}

func formatInstalls(n int64) string {
	s := strconv.FormatInt(n, 10)
	var b []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			b = append(b, ',')
		}
		b = append(b, c)
	}
	return string(b) + "+"
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
