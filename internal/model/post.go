package model

// FrontMatter is the metadata block stored at the top of every local post.
type FrontMatter struct {
	Title     string   `yaml:"title"`
	Date      string   `yaml:"date"`
	Updated   string   `yaml:"updated"`
	Tags      []string `yaml:"tags"`
	Status    Status   `yaml:"status"`
	Category  string   `yaml:"category"`
	Permalink string   `yaml:"permalink"`
	ID        string   `yaml:"id"`
}

// LocalPost is a Markdown file on disk together with its parsed front matter.
type LocalPost struct {
	Path        string
	FrontMatter FrontMatter
	Body        string
}
