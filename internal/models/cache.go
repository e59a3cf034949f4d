package models

// CacheActionRequest is the POST /cache/stats body. Which fields are required
// depends on Action.
type CacheActionRequest struct {
	Action string `json:"action"`
	UserID string `json:"userId,omitempty"`
	Date   string `json:"date,omitempty"`
	DryRun bool   `json:"dryRun,omitempty"`
	MaxAge *int   `json:"maxAge,omitempty"`
	Days   *int   `json:"days,omitempty"`
	Force  bool   `json:"force,omitempty"`
}

// EmergencyFlushRequest is the PATCH /cache/stats body.
type EmergencyFlushRequest struct {
	Operation string `json:"operation"`
	Pattern   string `json:"pattern,omitempty"`
	Confirm   bool   `json:"confirm"`
}
