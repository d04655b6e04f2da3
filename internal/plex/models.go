package plex

// Response models for the subset of the Plex Media Server API the curator
// uses. Plex wraps every payload in a MediaContainer envelope.

type sectionsResponse struct {
	MediaContainer sectionsContainer `json:"MediaContainer"`
}

type sectionsContainer struct {
	Size      int       `json:"size"`
	Directory []section `json:"Directory,omitempty"`
}

type section struct {
	Key   string `json:"key"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

type contentResponse struct {
	MediaContainer contentContainer `json:"MediaContainer"`
}

type contentContainer struct {
	Size     int        `json:"size"`
	Metadata []metadata `json:"Metadata,omitempty"`
}

type metadata struct {
	RatingKey    string  `json:"ratingKey,omitempty"`
	Title        string  `json:"title,omitempty"`
	Summary      string  `json:"summary,omitempty"`
	Rating       float64 `json:"rating,omitempty"`
	ViewCount    int     `json:"viewCount,omitempty"`
	LastViewedAt int64   `json:"lastViewedAt,omitempty"`
	Year         int     `json:"year,omitempty"`
	Genre        []tag   `json:"Genre,omitempty"`
	Director     []tag   `json:"Director,omitempty"`
	Role         []tag   `json:"Role,omitempty"`
}

type tag struct {
	Tag string `json:"tag,omitempty"`
}

type identityResponse struct {
	MediaContainer identityContainer `json:"MediaContainer"`
}

type identityContainer struct {
	MachineIdentifier string `json:"machineIdentifier,omitempty"`
}

type playlistsResponse struct {
	MediaContainer playlistsContainer `json:"MediaContainer"`
}

type playlistsContainer struct {
	Size     int             `json:"size"`
	Metadata []playlistEntry `json:"Metadata,omitempty"`
}

type playlistEntry struct {
	RatingKey string `json:"ratingKey,omitempty"`
	Title     string `json:"title,omitempty"`
}
