package model

import "time"

// LegRelation encodes a leg's position within a connecting itinerary.
type LegRelation string

const (
	RelationSingle          LegRelation = "SINGLE"
	RelationConnectingAfter LegRelation = "CONNECTING_AFTER" // first leg, another follows
	RelationConnectingBoth  LegRelation = "CONNECTING_BOTH"  // middle leg
	RelationConnectingBefore LegRelation = "CONNECTING_BEFORE" // last leg, another precedes
)

// FlightDirection marks which half of a reservation a leg belongs to.
type FlightDirection string

const (
	DirectionInbound  FlightDirection = "INBOUND"
	DirectionOutbound FlightDirection = "OUTBOUND"
)

// FlightStatus is a leg's lifecycle state derived from fused telemetry.
// A leg without telemetry has no status at all.
type FlightStatus string

const (
	StatusUpcoming      FlightStatus = "UPCOMING"
	StatusDepartingSoon FlightStatus = "DEPARTING_SOON"
	StatusInFlight      FlightStatus = "IN_FLIGHT"
	StatusArrived       FlightStatus = "ARRIVED"
	StatusPastFlight    FlightStatus = "PAST_FLIGHT"
)

// ReservationRow is one raw reservation as yielded by the reservation source.
// Flight number fields may hold several semicolon-separated legs.
type ReservationRow struct {
	SlackID              string    `json:"slackId"`
	InboundFlightNumber  string    `json:"inboundFlightNumber"`
	InboundTime          time.Time `json:"inboundTime"`
	OutboundFlightNumber string    `json:"outboundFlightNumber"`
	OutboundTime         time.Time `json:"outboundTime"`
}

// DisplayUser is the name/avatar pair shown next to a flight on the map.
type DisplayUser struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// LatLng is a point in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ServerData is one scraped telemetry record for a flight. Epoch fields are
// seconds; actual times are 0 when the tracker has not reported them yet.
type ServerData struct {
	Origin             LatLng  `json:"origin"`
	Destination        LatLng  `json:"destination"`
	ScheduledDeparture int64   `json:"scheduled_departure"`
	ActualDeparture    int64   `json:"actual_departure"`
	ScheduledArrival   int64   `json:"scheduled_arrival"`
	ActualArrival      int64   `json:"actual_arrival"`
	ElapsedDistance    float64 `json:"elapsed_distance"`
	RemainingDistance  float64 `json:"remaining_distance"`
	GroundspeedKnots   float64 `json:"groundspeed_knots"`
	ScrapedAt          int64   `json:"scraped_at"`
}

// DepartureEpoch prefers the actual departure time over the scheduled one.
func (d *ServerData) DepartureEpoch() int64 {
	if d.ActualDeparture > 0 {
		return d.ActualDeparture
	}
	return d.ScheduledDeparture
}

// ArrivalEpoch prefers the actual arrival time over the scheduled one.
func (d *ServerData) ArrivalEpoch() int64 {
	if d.ActualArrival > 0 {
		return d.ActualArrival
	}
	return d.ScheduledArrival
}

// TrackedFlight pairs a flight number with its telemetry record.
type TrackedFlight struct {
	FlightNumber string     `json:"flight_number"`
	Data         ServerData `json:"result"`
}

// FlightLeg is one flight number out of a (possibly multi-leg) reservation,
// tagged with its itinerary position. Status, ServerData and User are filled
// in by telemetry fusion; until then the leg is "not yet resolved".
type FlightLeg struct {
	FlightNumber  string          `json:"flightNumber"`
	Relation      LegRelation     `json:"relation"`
	Direction     FlightDirection `json:"direction"`
	DepartureTime time.Time       `json:"departureTime"`
	FlightTime    time.Time       `json:"flightTime"`
	SlackID       string          `json:"slackId"`
	LegIndex      int             `json:"legIndex"` // 1-based position within the itinerary
	LegCount      int             `json:"legCount"`
	Status        FlightStatus    `json:"status,omitempty"`
	ServerData    *ServerData     `json:"serverData,omitempty"`
	User          *DisplayUser    `json:"user,omitempty"`
}

// CalculatedFlight is a resolved leg plus everything the map needs to draw
// it at the current instant. Recomputed from wall-clock time on every tick.
type CalculatedFlight struct {
	FlightLeg
	ElapsedDistance float64  `json:"elapsedDistance"`
	TotalDistance   float64  `json:"totalDistance"`
	ElapsedRatio    float64  `json:"elapsedRatio"`
	FullPathPoints  []LatLng `json:"fullPathPoints"`
	Position        LatLng   `json:"position"`
	ElapsedPath     []LatLng `json:"elapsedPath"`
	RemainingPath   []LatLng `json:"remainingPath"`
}
