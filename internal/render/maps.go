// Package render generates the HTML map artifacts for a pipeline run:
// a density heatmap, a risk-level marker map, and a top-locations map,
// all as self-contained Leaflet pages.
package render

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/crisiswatch/crisiswatch/internal/models"
	"github.com/crisiswatch/crisiswatch/pkg/logging"
)

const mapsDir = "maps"

// topLocationCount caps how many aggregated places appear on the
// top-locations map and in reports.
const topLocationCount = 5

// riskColors maps each risk level to its marker color
var riskColors = map[models.RiskLevel]string{
	models.RiskHigh:     "#d73027",
	models.RiskModerate: "#fc8d59",
	models.RiskLow:      "#fee08b",
	models.RiskUnknown:  "#999999",
}

// heatPoint is one [lat, lng, weight] triple for the heat layer
type heatPoint [3]float64

// marker is one plotted post on the risk map
type marker struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Color string  `json:"color"`
	Popup string  `json:"popup"`
}

// Place is one aggregated location on the top-locations map
type Place struct {
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Count int     `json:"count"`
}

// Renderer writes map pages beneath an output directory.
type Renderer struct {
	outputDir string
	logger    *zap.Logger
}

// NewRenderer creates a renderer rooted at outputDir
func NewRenderer(outputDir string) *Renderer {
	return &Renderer{
		outputDir: outputDir,
		logger:    logging.WithComponent("render"),
	}
}

// RenderAll writes the three map artifacts for one platform and
// returns their paths. Records without coordinates are skipped.
func (r *Renderer) RenderAll(platform models.Platform, records []models.GeocodedRecord) ([]string, error) {
	located := withCoordinates(records)

	var paths []string
	for _, render := range []struct {
		name string
		fn   func(models.Platform, []models.GeocodedRecord) (string, error)
	}{
		{"heatmap", r.Heatmap},
		{"risk map", r.RiskMap},
		{"top locations", r.TopLocations},
	} {
		path, err := render.fn(platform, located)
		if err != nil {
			return paths, fmt.Errorf("rendering %s: %w", render.name, err)
		}
		paths = append(paths, path)
	}

	r.logger.Info("Maps rendered",
		zap.String("platform", string(platform)),
		zap.Int("points", len(located)))
	return paths, nil
}

// Heatmap renders a post-density heat layer
func (r *Renderer) Heatmap(platform models.Platform, records []models.GeocodedRecord) (string, error) {
	points := make([]heatPoint, 0, len(records))
	for _, rec := range withCoordinates(records) {
		weight := 0.5
		if rec.RiskLevel == models.RiskHigh {
			weight = 1.0
		}
		points = append(points, heatPoint{*rec.Latitude, *rec.Longitude, weight})
	}

	return r.writePage(platform, "heatmap", heatmapTemplate, map[string]interface{}{
		"Title":  fmt.Sprintf("Crisis Post Density - %s", platform),
		"Points": jsData(points),
	})
}

// RiskMap renders per-post markers colored by risk level
func (r *Renderer) RiskMap(platform models.Platform, records []models.GeocodedRecord) (string, error) {
	markers := make([]marker, 0, len(records))
	for _, rec := range withCoordinates(records) {
		markers = append(markers, marker{
			Lat:   *rec.Latitude,
			Lng:   *rec.Longitude,
			Color: riskColors[rec.RiskLevel],
			Popup: popupText(rec),
		})
	}

	return r.writePage(platform, "risk_map", riskMapTemplate, map[string]interface{}{
		"Title":   fmt.Sprintf("Crisis Posts by Risk Level - %s", platform),
		"Markers": jsData(markers),
	})
}

// TopLocations renders the most frequent places, sized by post count
func (r *Renderer) TopLocations(platform models.Platform, records []models.GeocodedRecord) (string, error) {
	places := TopPlaces(records, topLocationCount)

	return r.writePage(platform, "top_locations", topLocationsTemplate, map[string]interface{}{
		"Title":  fmt.Sprintf("Top Crisis Locations - %s", platform),
		"Places": jsData(places),
	})
}

// TopPlaces aggregates located records by place name and returns the n
// most frequent, ties broken alphabetically.
func TopPlaces(records []models.GeocodedRecord, n int) []Place {
	type agg struct {
		lat, lng float64
		count    int
	}
	byName := make(map[string]*agg)
	for _, rec := range withCoordinates(records) {
		if rec.Location == "" {
			continue
		}
		a, ok := byName[rec.Location]
		if !ok {
			a = &agg{lat: *rec.Latitude, lng: *rec.Longitude}
			byName[rec.Location] = a
		}
		a.count++
	}

	places := make([]Place, 0, len(byName))
	for name, a := range byName {
		places = append(places, Place{Name: name, Lat: a.lat, Lng: a.lng, Count: a.count})
	}
	sort.Slice(places, func(i, j int) bool {
		if places[i].Count != places[j].Count {
			return places[i].Count > places[j].Count
		}
		return places[i].Name < places[j].Name
	})
	if len(places) > n {
		places = places[:n]
	}
	return places
}

func withCoordinates(records []models.GeocodedRecord) []models.GeocodedRecord {
	located := make([]models.GeocodedRecord, 0, len(records))
	for _, rec := range records {
		if rec.HasCoordinates() {
			located = append(located, rec)
		}
	}
	return located
}

// popupText builds the short marker popup shown on click
func popupText(rec models.GeocodedRecord) string {
	text := rec.CleanText
	if len(text) > 120 {
		text = text[:120] + "..."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Risk: %s", rec.RiskLevel)
	if rec.Location != "" {
		fmt.Fprintf(&b, " | %s", rec.Location)
	}
	fmt.Fprintf(&b, " | Sentiment: %.2f", rec.Compound)
	if text != "" {
		fmt.Fprintf(&b, "\n%s", text)
	}
	return b.String()
}

// jsData marshals a value for embedding in an inline script
func jsData(v interface{}) template.JS {
	data, err := json.Marshal(v)
	if err != nil {
		return template.JS("[]")
	}
	return template.JS(data)
}

func (r *Renderer) writePage(platform models.Platform, kind string, tmpl *template.Template, data map[string]interface{}) (string, error) {
	dir := filepath.Join(r.outputDir, mapsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating maps directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.html", platform, kind))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating map file: %w", err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("executing map template: %w", err)
	}
	return path, nil
}

var pageHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([20, 0], 2);
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
`

var pageFoot = `</script>
</body>
</html>
`

var heatmapTemplate = template.Must(template.New("heatmap").Parse(pageHead + `
</script>
<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
<script>
var points = {{.Points}};
if (points.length > 0) {
  L.heatLayer(points, {radius: 15}).addTo(map);
  map.fitBounds(points.map(function (p) { return [p[0], p[1]]; }));
}
` + pageFoot))

var riskMapTemplate = template.Must(template.New("risk_map").Parse(pageHead + `
var markers = {{.Markers}};
markers.forEach(function (m) {
  L.circleMarker([m.lat, m.lng], {
    radius: 6, color: m.color, fillColor: m.color, fillOpacity: 0.7
  }).bindPopup(m.popup).addTo(map);
});
if (markers.length > 0) {
  map.fitBounds(markers.map(function (m) { return [m.lat, m.lng]; }));
}
` + pageFoot))

var topLocationsTemplate = template.Must(template.New("top_locations").Parse(pageHead + `
var places = {{.Places}};
places.forEach(function (p) {
  L.circleMarker([p.lat, p.lng], {
    radius: Math.min(8 + p.count * 2, 30),
    color: '#4575b4', fillColor: '#4575b4', fillOpacity: 0.6
  }).bindPopup(p.name + ': ' + p.count + ' posts').addTo(map);
});
if (places.length > 0) {
  map.fitBounds(places.map(function (p) { return [p.lat, p.lng]; }));
}
` + pageFoot))
