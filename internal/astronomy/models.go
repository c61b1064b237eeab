// Package astronomy fetches NASA's Astronomy Picture of the Day.
package astronomy

// MediaType is the kind of media an APOD entry links to. Values outside the
// known set are kept verbatim.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Record is one day's APOD entry. Date (YYYY-MM-DD) is the unique key.
type Record struct {
	Date           string    `json:"date"`
	Title          string    `json:"title"`
	Explanation    string    `json:"explanation"`
	MediaType      MediaType `json:"media_type"`
	URL            string    `json:"url"`
	HDURL          string    `json:"hdurl,omitempty"`
	Copyright      string    `json:"copyright,omitempty"`
	ServiceVersion string    `json:"service_version,omitempty"`
}

// IsVideo reports whether the record links to a video rather than an image.
func (r Record) IsVideo() bool {
	return r.MediaType == MediaVideo
}
