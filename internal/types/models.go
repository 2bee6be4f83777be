package types

// RouteRecord is the structured result of analyzing one video's narration:
// the literal start point of the drive, the intermediate waypoints in the
// order they are mentioned, and the end point. A record is always well
// formed; fields the extraction could not populate stay empty.
type RouteRecord struct {
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Waypoints []string `json:"waypoints"`
}
