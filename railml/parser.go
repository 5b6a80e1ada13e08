package railml

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/railwayai/railwayai/railerr"
)

// timeLayout is the timestamp format used in arrival/departure
// attributes. Real RailML splits timetable days from times of day; this
// package keeps a single RFC3339 instant per stop, which is enough to
// round-trip a schedule.TrainSchedule without a separate calendar model.
const timeLayout = time.RFC3339

// DetectVersion inspects the root element and its version attribute,
// matching the original parser's rule: a "2." prefix means Legacy, a
// "3." prefix means Current, anything else fails detection.
func DetectVersion(data []byte) (Version, error) {
	var root docRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return AutoDetect, railerr.Wrap(railerr.InvalidArgument, "railml.DetectVersion", err)
	}
	switch {
	case strings.HasPrefix(root.Version, "2."):
		return Legacy, nil
	case strings.HasPrefix(root.Version, "3."):
		return Current, nil
	default:
		return AutoDetect, railerr.New(railerr.InvalidArgument, "railml.DetectVersion")
	}
}

// Parse parses a RailML document, auto-detecting the version when
// version == AutoDetect.
func Parse(data []byte, version Version) (ParseResult, error) {
	if version == AutoDetect {
		detected, err := DetectVersion(data)
		if err != nil {
			return ParseResult{}, err
		}
		version = detected
	}
	switch version {
	case Legacy:
		return ParseLegacy(data)
	case Current:
		return ParseCurrent(data)
	default:
		return ParseResult{}, railerr.New(railerr.InvalidArgument, "railml.Parse")
	}
}

// ParseLegacy parses a RailML 2.x document.
func ParseLegacy(data []byte) (ParseResult, error) {
	var doc railml2Doc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return ParseResult{}, railerr.Wrap(railerr.InvalidArgument, "railml.ParseLegacy", err)
	}

	var nd NetworkData
	for _, ocp := range doc.Infrastructure.OCPs {
		nd.Nodes = append(nd.Nodes, NodeData{
			ID:            ocp.ID,
			Name:          ocp.Name,
			Kind:          legacyNodeKind(ocp.Type),
			Lat:           ocp.Lat,
			Lon:           ocp.Lon,
			Capacity:      ocp.Capacity,
			PlatformCount: ocp.Platforms,
		})
	}
	for _, tr := range doc.Infrastructure.Tracks {
		nd.Edges = append(nd.Edges, EdgeData{
			ID:            tr.ID,
			From:          tr.OCPRef,
			To:            tr.OCPRef2,
			LengthKm:      tr.Length,
			Kind:          legacyTrackKind(tr.TrackType),
			MaxSpeedKmh:   tr.MaxSpeed,
			Capacity:      tr.Capacity,
			Bidirectional: tr.Bidirectional,
		})
	}

	var scheds []ScheduleData
	for _, tp := range doc.Timetable.TrainParts {
		sd := ScheduleData{ScheduleID: tp.ID, TrainID: tp.TrainRef, TrainName: tp.Name, TrainKind: tp.Category}
		for _, ocptt := range tp.Stops {
			arr, dep, err := parseStopTimes(ocptt.Arrival, ocptt.Departure)
			if err != nil {
				return ParseResult{}, railerr.Wrap(railerr.InvalidArgument, "railml.ParseLegacy", err)
			}
			sd.Stops = append(sd.Stops, StopData{
				NodeID:    ocptt.OCPRef,
				Arrival:   arr,
				Departure: dep,
				IsStop:    ocptt.StopDesc != "passing",
				Platform:  ocptt.Platform,
			})
		}
		scheds = append(scheds, sd)
	}

	return ParseResult{
		Network:   nd,
		Schedules: scheds,
		Version:   Legacy,
		Stats: Stats{
			Stations: len(nd.Nodes),
			Tracks:   len(nd.Edges),
			Trains:   len(scheds),
		},
	}, nil
}

// ParseCurrent parses a RailML 3.x document.
func ParseCurrent(data []byte) (ParseResult, error) {
	var doc railml3Doc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return ParseResult{}, railerr.Wrap(railerr.InvalidArgument, "railml.ParseCurrent", err)
	}

	var nd NetworkData
	for _, op := range doc.Infrastructure.OperationalPoints {
		nd.Nodes = append(nd.Nodes, NodeData{
			ID:            op.ID,
			Name:          op.Name,
			Kind:          currentNodeKind(op.Type),
			Lat:           op.Lat,
			Lon:           op.Lon,
			Capacity:      op.Capacity,
			PlatformCount: op.Platforms,
		})
	}
	for _, ne := range doc.Infrastructure.NetElements {
		nd.Edges = append(nd.Edges, EdgeData{
			ID:            ne.ID,
			From:          ne.PosA,
			To:            ne.PosB,
			LengthKm:      ne.Length,
			Kind:          currentTrackKind(ne.Category),
			MaxSpeedKmh:   ne.Speed,
			Capacity:      ne.Capacity,
			Bidirectional: ne.Bidirectional,
		})
	}

	var scheds []ScheduleData
	for _, tr := range doc.Timetable.Trains {
		sd := ScheduleData{ScheduleID: tr.ID, TrainID: tr.Code, TrainName: tr.Name, TrainKind: tr.Category}
		for _, stop := range tr.Stops {
			arr, dep, err := parseStopTimes(stop.Arrival, stop.Departure)
			if err != nil {
				return ParseResult{}, railerr.Wrap(railerr.InvalidArgument, "railml.ParseCurrent", err)
			}
			sd.Stops = append(sd.Stops, StopData{
				NodeID:    stop.OpRef,
				Arrival:   arr,
				Departure: dep,
				IsStop:    stop.Scheduled,
				Platform:  stop.Platform,
			})
		}
		scheds = append(scheds, sd)
	}

	return ParseResult{
		Network:   nd,
		Schedules: scheds,
		Version:   Current,
		Stats: Stats{
			Stations: len(nd.Nodes),
			Tracks:   len(nd.Edges),
			Trains:   len(scheds),
		},
	}, nil
}

func parseStopTimes(arrival, departure string) (time.Time, time.Time, error) {
	arr, err := time.Parse(timeLayout, arrival)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	dep, err := time.Parse(timeLayout, departure)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return arr, dep, nil
}

func legacyNodeKind(t string) string {
	switch t {
	case "station":
		return "station"
	case "junction":
		return "junction"
	case "depot":
		return "depot"
	case "yard":
		return "yard"
	case "crossover", "break":
		return "interchange"
	default:
		return "station"
	}
}

func currentNodeKind(t string) string { return legacyNodeKind(t) }

func legacyTrackKind(t string) string {
	switch t {
	case "single":
		return "single"
	case "mainTrack", "sidetrack":
		return "double"
	case "highSpeed":
		return "high_speed"
	case "freight", "freightOnly":
		return "freight"
	default:
		return "double"
	}
}

func currentTrackKind(t string) string {
	switch t {
	case "single":
		return "single"
	case "highSpeed":
		return "high_speed"
	case "freight":
		return "freight"
	default:
		return "double"
	}
}
