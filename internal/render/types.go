package render

import "time"

type IndexPageData struct {
	Email    string
	ErrorMsg string
}

type HomePageData struct {
	Email      string
	IsAdmin    bool
	Categories []string
}

type DocumentItem struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

type LibraryPageData struct {
	Category  string
	Email     string
	IsAdmin   bool
	Documents []DocumentItem
}

type VerifyResultPageData struct {
	Success         bool
	AlreadyVerified bool
	Email           string
	Message         string
}
