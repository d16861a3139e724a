package media

// Collection is a curated group of preview clips hosted in an S3 bucket
// folder.
type Collection struct {
	Id          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Bucket      string `json:"bucket"`
	Folder      string `json:"folder"`
	Loop        bool   `json:"loop,omitempty"`
}
