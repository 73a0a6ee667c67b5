package pexels

// SearchResponse represents the Pexels photo search response.
type SearchResponse struct {
	Page         int     `json:"page"`
	PerPage      int     `json:"per_page"`
	TotalResults int     `json:"total_results"`
	Photos       []Photo `json:"photos"`
}

type Photo struct {
	ID           int64  `json:"id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Photographer string `json:"photographer"`
	Src          Src    `json:"src"`
}

type Src struct {
	Original string `json:"original"`
	Large2x  string `json:"large2x"`
	Large    string `json:"large"`
	Portrait string `json:"portrait"`
}

// best prefers the portrait crop, then the largest rendition.
func (s Src) best() string {
	for _, u := range []string{s.Portrait, s.Large2x, s.Large, s.Original} {
		if u != "" {
			return u
		}
	}
	return ""
}
