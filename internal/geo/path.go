// Package geo produces the animatable flight paths and live positions for
// the map: great-circle interpolation for normal routes, a Bezier arc for
// routes crossing the antimeridian.
package geo

import (
	"math"
	"time"

	"github.com/hackclub/shipwrecked-sub001/internal/model"
)

// pathPointCount is how many points each rendered path carries.
const pathPointCount = 100

// PathPoints returns the full renderable path between two points. Routes
// whose raw longitude delta exceeds 180 degrees cross the antimeridian and
// are drawn as a Bezier arc instead, which avoids the polyline wrapping the
// wrong way around the globe.
func PathPoints(origin, dest model.LatLng) []model.LatLng {
	if math.Abs(dest.Lng-origin.Lng) > 180 {
		return bezierPoints(origin, dest)
	}
	return greatCirclePoints(origin, dest)
}

// greatCirclePoints slerps between the two points on the unit sphere and
// unwraps longitudes so consecutive points never jump more than 180 degrees.
func greatCirclePoints(origin, dest model.LatLng) []model.LatLng {
	ox, oy, oz := toCartesian(origin)
	dx, dy, dz := toCartesian(dest)

	dot := ox*dx + oy*dy + oz*dz
	dot = math.Max(-1, math.Min(1, dot))
	angle := math.Acos(dot)

	points := make([]model.LatLng, pathPointCount)
	for i := 0; i < pathPointCount; i++ {
		t := float64(i) / float64(pathPointCount-1)

		var x, y, z float64
		if angle < 1e-9 {
			// Identical (or antipodal-degenerate) endpoints: slerp would
			// divide by sin(0), so hold the origin.
			x, y, z = ox, oy, oz
		} else {
			a := math.Sin((1-t)*angle) / math.Sin(angle)
			b := math.Sin(t*angle) / math.Sin(angle)
			x = a*ox + b*dx
			y = a*oy + b*dy
			z = a*oz + b*dz
		}

		p := fromCartesian(x, y, z)
		if i > 0 {
			p.Lng = unwrapLng(points[i-1].Lng, p.Lng)
		}
		points[i] = p
	}
	return points
}

// bezierPoints draws a quadratic Bezier through a control point lifted off
// the midpoint, after shifting the destination longitude into the same
// 360-degree window as the origin.
func bezierPoints(origin, dest model.LatLng) []model.LatLng {
	if dest.Lng-origin.Lng > 180 {
		dest.Lng -= 360
	} else if dest.Lng-origin.Lng < -180 {
		dest.Lng += 360
	}

	midLat := (origin.Lat + dest.Lat) / 2
	midLng := (origin.Lng + dest.Lng) / 2

	// Bow toward the nearer pole, proportionally to the span.
	bulge := math.Min(math.Abs(dest.Lng-origin.Lng)/6, 25)
	if midLat < 0 {
		bulge = -bulge
	}
	ctrl := model.LatLng{Lat: midLat + bulge, Lng: midLng}

	points := make([]model.LatLng, pathPointCount)
	for i := 0; i < pathPointCount; i++ {
		t := float64(i) / float64(pathPointCount-1)
		u := 1 - t
		points[i] = model.LatLng{
			Lat: u*u*origin.Lat + 2*u*t*ctrl.Lat + t*t*dest.Lat,
			Lng: u*u*origin.Lng + 2*u*t*ctrl.Lng + t*t*dest.Lng,
		}
	}
	return points
}

func toCartesian(p model.LatLng) (x, y, z float64) {
	lat := p.Lat * math.Pi / 180
	lng := p.Lng * math.Pi / 180
	return math.Cos(lat) * math.Cos(lng), math.Cos(lat) * math.Sin(lng), math.Sin(lat)
}

func fromCartesian(x, y, z float64) model.LatLng {
	norm := math.Sqrt(x*x + y*y + z*z)
	if norm == 0 {
		return model.LatLng{}
	}
	return model.LatLng{
		Lat: math.Asin(z/norm) * 180 / math.Pi,
		Lng: math.Atan2(y, x) * 180 / math.Pi,
	}
}

func unwrapLng(prev, next float64) float64 {
	for next-prev > 180 {
		next -= 360
	}
	for next-prev < -180 {
		next += 360
	}
	return next
}

// Progress derives how far along its route a flight is right now. While in
// flight the scraped elapsed distance is extrapolated by groundspeed since
// the scrape, clamped so it never passes the total.
func Progress(data *model.ServerData, status model.FlightStatus, now time.Time) (elapsed, total, ratio float64) {
	total = data.ElapsedDistance + data.RemainingDistance
	elapsed = data.ElapsedDistance

	if status == model.StatusInFlight {
		since := float64(now.Unix() - data.ScrapedAt)
		if since > 0 {
			elapsed += since * data.GroundspeedKnots / 3600
		}
	}
	if elapsed > total {
		elapsed = total
	}
	if total == 0 {
		return elapsed, total, 0
	}
	return elapsed, total, elapsed / total
}

// PositionAt locates the marker along a path for a ratio in [0,1] and splits
// the path into the flown prefix and remaining suffix at that point. Both
// halves include the interpolated position so the two polylines join.
func PositionAt(points []model.LatLng, ratio float64) (pos model.LatLng, flown, remaining []model.LatLng) {
	if len(points) == 0 {
		return model.LatLng{}, nil, nil
	}
	ratio = math.Max(0, math.Min(1, ratio))

	f := ratio * float64(len(points)-1)
	i := int(math.Floor(f))
	if i >= len(points)-1 {
		last := points[len(points)-1]
		return last, append([]model.LatLng{}, points...), []model.LatLng{last}
	}
	frac := f - float64(i)
	pos = model.LatLng{
		Lat: points[i].Lat + (points[i+1].Lat-points[i].Lat)*frac,
		Lng: points[i].Lng + (points[i+1].Lng-points[i].Lng)*frac,
	}

	flown = make([]model.LatLng, 0, i+2)
	flown = append(flown, points[:i+1]...)
	flown = append(flown, pos)

	remaining = make([]model.LatLng, 0, len(points)-i)
	remaining = append(remaining, pos)
	remaining = append(remaining, points[i+1:]...)
	return pos, flown, remaining
}

// Calculate assembles the full render payload for one resolved leg at the
// given instant. Legs without telemetry cannot be drawn and return nil.
func Calculate(leg model.FlightLeg, now time.Time) *model.CalculatedFlight {
	if leg.ServerData == nil {
		return nil
	}
	data := leg.ServerData

	elapsed, total, ratio := Progress(data, leg.Status, now)
	points := PathPoints(data.Origin, data.Destination)
	pos, flown, remaining := PositionAt(points, ratio)

	return &model.CalculatedFlight{
		FlightLeg:       leg,
		ElapsedDistance: elapsed,
		TotalDistance:   total,
		ElapsedRatio:    ratio,
		FullPathPoints:  points,
		Position:        pos,
		ElapsedPath:     flown,
		RemainingPath:   remaining,
	}
}
