// Package lightmap renders a self-contained HTML snapshot of the pin map.
package lightmap

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"github.com/goccy/go-json"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/pkg/geospatial"
)

// Canvas size of the embedded SVG in user units.
const (
	Width  = 1000.0
	Height = 500.0
)

// padding in degrees around the pins' bounding box.
const padding = 2.0

type marker struct {
	X, Y float64
	Pin  domain.Pin
}

type curve struct {
	X1, Y1, CX, CY, X2, Y2 float64
}

type view struct {
	GeneratedAt string
	Count       int
	DistanceKm  string
	ViewBox     string
	Markers     []marker
	Curves      []curve
	Rows        []row
	PinsJSON    template.JS
}

type row struct {
	N        int
	Time     string
	Name     string
	Location string
	Coords   string
}

// project maps a coordinate onto the equirectangular canvas.
func project(lat, lng float64) (x, y float64) {
	return (lng + 180) / 360 * Width, (90 - lat) / 180 * Height
}

// viewBox frames the pins, or the whole world when there are none.
func viewBox(pins []domain.Pin) string {
	if len(pins) == 0 {
		return fmt.Sprintf("0 0 %g %g", Width, Height)
	}
	points := make([]domain.GeoPoint, len(pins))
	for i, p := range pins {
		points[i] = p.Point()
	}
	b := domain.BoundsOf(points)
	minLat := math.Max(b.MinLat-padding, -90)
	maxLat := math.Min(b.MaxLat+padding, 90)
	minLon := math.Max(b.MinLon-padding, -180)
	maxLon := math.Min(b.MaxLon+padding, 180)

	x0, y0 := project(maxLat, minLon)
	x1, y1 := project(minLat, maxLon)
	return fmt.Sprintf("%.2f %.2f %.2f %.2f", x0, y0, x1-x0, y1-y0)
}

// arc bends the segment between a and b into a quadratic curve whose control
// point sits off the midpoint, perpendicular to the segment.
func arc(a, b marker) curve {
	mx, my := (a.X+b.X)/2, (a.Y+b.Y)/2
	dx, dy := b.X-a.X, b.Y-a.Y
	const bend = 0.2
	return curve{
		X1: a.X, Y1: a.Y,
		CX: mx - dy*bend, CY: my + dx*bend,
		X2: b.X, Y2: b.Y,
	}
}

// Render writes the map for pins, which should already be in time order.
func Render(w io.Writer, pins []domain.Pin, generatedAt time.Time) error {
	if pins == nil {
		pins = []domain.Pin{}
	}
	// Marshal escapes <, > and &, so the payload cannot close its script element.
	raw, err := json.Marshal(pins)
	if err != nil {
		return fmt.Errorf("encode pins: %w", err)
	}

	v := view{
		GeneratedAt: generatedAt.UTC().Format(time.RFC1123),
		Count:       len(pins),
		ViewBox:     viewBox(pins),
		PinsJSON:    template.JS(raw),
	}

	points := make([]domain.GeoPoint, 0, len(pins))
	for i, p := range pins {
		x, y := project(p.Lat, p.Lng)
		m := marker{X: x, Y: y, Pin: p}
		v.Markers = append(v.Markers, m)
		if i > 0 {
			v.Curves = append(v.Curves, arc(v.Markers[i-1], m))
		}
		points = append(points, p.Point())
		v.Rows = append(v.Rows, row{
			N:        i + 1,
			Time:     p.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			Name:     p.Name,
			Location: p.Location,
			Coords:   fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lng),
		})
	}
	v.DistanceKm = fmt.Sprintf("%.1f", geospatial.PathLength(points)/1000)

	return page.Execute(w, v)
}

var page = template.Must(template.New("lightmap").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Pin Map</title>
  <style>
    body{margin:0;font-family:system-ui,sans-serif;background:#f7f7f5;color:#222}
    header{padding:16px 24px;border-bottom:1px solid #ddd}
    h1{margin:0;font-size:20px}
    .meta{color:#666;font-size:13px;margin-top:4px}
    svg{display:block;width:100%;height:60vh;background:#dfe9f3}
    .graticule{stroke:#c5d3e0;stroke-width:0.5}
    .route{fill:none;stroke:#e4572e;stroke-width:1.2;stroke-dasharray:4 2;opacity:.8}
    .pin{fill:#29335c;stroke:#fff;stroke-width:.8}
    table{border-collapse:collapse;margin:16px 24px;font-size:14px}
    th,td{padding:4px 12px;text-align:left;border-bottom:1px solid #e5e5e5}
    th{color:#555;font-weight:600}
  </style>
</head>
<body>
  <header>
    <h1>Pin Map</h1>
    <div class="meta">{{.Count}} pins &middot; {{.DistanceKm}} km travelled &middot; generated {{.GeneratedAt}}</div>
  </header>
  <svg xmlns="http://www.w3.org/2000/svg" viewBox="{{.ViewBox}}" preserveAspectRatio="xMidYMid meet">
    <g class="graticule">
      <line x1="0" y1="250" x2="1000" y2="250"/>
      <line x1="500" y1="0" x2="500" y2="500"/>
    </g>
    {{range .Curves}}<path class="route" d="M {{printf "%.2f" .X1}} {{printf "%.2f" .Y1}} Q {{printf "%.2f" .CX}} {{printf "%.2f" .CY}} {{printf "%.2f" .X2}} {{printf "%.2f" .Y2}}"/>
    {{end}}{{range .Markers}}<circle class="pin" cx="{{printf "%.2f" .X}}" cy="{{printf "%.2f" .Y}}" r="2.5"><title>{{.Pin.Name}} ({{.Pin.Location}})</title></circle>
    {{end}}
  </svg>
  <table>
    <thead><tr><th>#</th><th>Time (UTC)</th><th>Name</th><th>Location</th><th>Coordinates</th></tr></thead>
    <tbody>
    {{range .Rows}}<tr><td>{{.N}}</td><td>{{.Time}}</td><td>{{.Name}}</td><td>{{.Location}}</td><td>{{.Coords}}</td></tr>
    {{end}}</tbody>
  </table>
  <script type="application/json" id="pins">{{.PinsJSON}}</script>
</body>
</html>
`
