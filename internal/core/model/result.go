package model

// CourseStop is one ordered stop inside a recommendation course. ID refers to
// a Place in the result's Places list.
type CourseStop struct {
	Order  int    `json:"order"`
	ID     string `json:"id"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// Course is an ordered visit plan produced by the ranking oracle.
type Course struct {
	Title        string       `json:"title,omitempty"`
	Stops        []CourseStop `json:"stops"`
	RouteSummary string       `json:"route_summary"`
}

// Recommendation is the ranking oracle's reply before result assembly.
type Recommendation struct {
	Summary string   `json:"summary,omitempty"`
	Persona string   `json:"persona"`
	Courses []Course `json:"courses"`
}

// SearchResult is the final value returned to the API layer. Warning is the
// only user-visible failure signal the pipeline produces.
type SearchResult struct {
	Summary string   `json:"summary,omitempty"`
	Persona string   `json:"persona"`
	Courses []Course `json:"courses"`
	Places  []Place  `json:"places"`
	Center  *Anchor  `json:"center,omitempty"`
	Warning string   `json:"warning,omitempty"`
}
