package storage

// Info tells clients where datasets and artifacts are staged.
type Info struct {
	Bucket string `json:"bucket"`
}

func (i Info) Equal(o Info) bool {
	return i == o
}
