package newsapi

// APIResponse represents the NewsAPI /everything response structure.
type APIResponse struct {
	Status       string    `json:"status"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

type Article struct {
	Source      ArticleSource `json:"source"`
	Author      *string       `json:"author"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	URL         string        `json:"url"`
	URLToImage  *string       `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
	Content     *string       `json:"content"`
}

type ArticleSource struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}
