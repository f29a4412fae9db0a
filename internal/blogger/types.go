package blogger

import "time"

// Blog is the subset of the Blogger blog resource easyblogger uses.
type Blog struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Post is a Blogger post resource.
type Post struct {
	ID        string     `json:"id,omitempty"`
	Title     string     `json:"title,omitempty"`
	Content   string     `json:"content,omitempty"`
	Labels    []string   `json:"labels,omitempty"`
	URL       string     `json:"url,omitempty"`
	Status    string     `json:"status,omitempty"`
	Published *time.Time `json:"published,omitempty"`
	Updated   *time.Time `json:"updated,omitempty"`
}

// PostList is one page of posts.
type PostList struct {
	Items         []*Post `json:"items"`
	NextPageToken string  `json:"nextPageToken"`
}

// PostInput carries the fields of a create or update request.
type PostInput struct {
	Title   string
	Content string
	Labels  []string
	// Publish makes the post live; false keeps or turns it into a draft.
	Publish     bool
	PublishDate *time.Time
}

// postBody is the JSON sent to insert and patch.
type postBody struct {
	Title     string     `json:"title,omitempty"`
	Content   string     `json:"content,omitempty"`
	Labels    []string   `json:"labels,omitempty"`
	Published *time.Time `json:"published,omitempty"`
}
