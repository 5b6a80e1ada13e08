package railml

import (
	"encoding/xml"

	"github.com/railwayai/railwayai/railerr"
)

// Export renders network data and schedule data as a RailML document in
// the requested flavor. version must be Legacy or Current; AutoDetect
// is rejected since export always produces a concrete flavor.
func Export(n NetworkData, schedules []ScheduleData, version Version, opts ExportOptions) ([]byte, Stats, error) {
	switch version {
	case Legacy:
		return exportLegacy(n, schedules, opts)
	case Current:
		return exportCurrent(n, schedules, opts)
	default:
		return nil, Stats{}, railerr.New(railerr.InvalidArgument, "railml.Export")
	}
}

func exportLegacy(n NetworkData, schedules []ScheduleData, opts ExportOptions) ([]byte, Stats, error) {
	doc := railml2Doc{Version: "2.4"}
	for _, node := range n.Nodes {
		doc.Infrastructure.OCPs = append(doc.Infrastructure.OCPs, railml2OCP{
			ID:        node.ID,
			Name:      node.Name,
			Type:      node.Kind,
			Platforms: node.PlatformCount,
			Capacity:  node.Capacity,
			Lat:       node.Lat,
			Lon:       node.Lon,
		})
	}
	for _, edge := range n.Edges {
		doc.Infrastructure.Tracks = append(doc.Infrastructure.Tracks, railml2Track{
			ID:            edge.ID,
			OCPRef:        edge.From,
			OCPRef2:       edge.To,
			Length:        edge.LengthKm,
			MaxSpeed:      edge.MaxSpeedKmh,
			TrackType:     edge.Kind,
			Capacity:      edge.Capacity,
			Bidirectional: edge.Bidirectional,
		})
	}
	if opts.ExportTimetable {
		for _, sd := range schedules {
			tp := railml2TrainPart{ID: sd.ScheduleID, TrainRef: sd.TrainID, Name: sd.TrainName, Category: sd.TrainKind}
			for _, st := range sd.Stops {
				desc := "stop"
				if !st.IsStop {
					desc = "passing"
				}
				tp.Stops = append(tp.Stops, railml2OCPTT{
					OCPRef:    st.NodeID,
					Arrival:   st.Arrival.Format(timeLayout),
					Departure: st.Departure.Format(timeLayout),
					StopDesc:  desc,
					Platform:  st.Platform,
				})
			}
			doc.Timetable.TrainParts = append(doc.Timetable.TrainParts, tp)
		}
	}
	if !opts.ExportInfrastructure {
		doc.Infrastructure = railml2Infra{}
	}

	out, err := marshal(doc, opts.PrettyPrint)
	if err != nil {
		return nil, Stats{}, railerr.Wrap(railerr.InvalidArgument, "railml.exportLegacy", err)
	}
	return out, Stats{Stations: len(doc.Infrastructure.OCPs), Tracks: len(doc.Infrastructure.Tracks), Trains: len(doc.Timetable.TrainParts)}, nil
}

func exportCurrent(n NetworkData, schedules []ScheduleData, opts ExportOptions) ([]byte, Stats, error) {
	doc := railml3Doc{Version: "3.2"}
	for _, node := range n.Nodes {
		doc.Infrastructure.OperationalPoints = append(doc.Infrastructure.OperationalPoints, railml3OperationalPoint{
			ID:        node.ID,
			Name:      node.Name,
			Type:      node.Kind,
			Platforms: node.PlatformCount,
			Capacity:  node.Capacity,
			Lat:       node.Lat,
			Lon:       node.Lon,
		})
	}
	for _, edge := range n.Edges {
		doc.Infrastructure.NetElements = append(doc.Infrastructure.NetElements, railml3NetElement{
			ID:            edge.ID,
			PosA:          edge.From,
			PosB:          edge.To,
			Length:        edge.LengthKm,
			Speed:         edge.MaxSpeedKmh,
			Category:      edge.Kind,
			Capacity:      edge.Capacity,
			Bidirectional: edge.Bidirectional,
		})
	}
	if opts.ExportTimetable {
		for _, sd := range schedules {
			tr := railml3Train{ID: sd.ScheduleID, Code: sd.TrainID, Name: sd.TrainName, Category: sd.TrainKind}
			for _, st := range sd.Stops {
				tr.Stops = append(tr.Stops, railml3Stop{
					OpRef:     st.NodeID,
					Arrival:   st.Arrival.Format(timeLayout),
					Departure: st.Departure.Format(timeLayout),
					Scheduled: st.IsStop,
					Platform:  st.Platform,
				})
			}
			doc.Timetable.Trains = append(doc.Timetable.Trains, tr)
		}
	}
	if !opts.ExportInfrastructure {
		doc.Infrastructure = railml3Infra{}
	}

	out, err := marshal(doc, opts.PrettyPrint)
	if err != nil {
		return nil, Stats{}, railerr.Wrap(railerr.InvalidArgument, "railml.exportCurrent", err)
	}
	return out, Stats{Stations: len(doc.Infrastructure.OperationalPoints), Tracks: len(doc.Infrastructure.NetElements), Trains: len(doc.Timetable.Trains)}, nil
}

func marshal(doc interface{}, pretty bool) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = xml.MarshalIndent(doc, "", "  ")
	} else {
		out, err = xml.Marshal(doc)
	}
	if err != nil {
		return nil, err
	}
	header := []byte(xml.Header)
	return append(header, out...), nil
}
