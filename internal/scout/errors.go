package scout

import "fmt"

// FetchError marks a network or HTTP failure on one URL. The page is dropped
// from the run; the pipeline continues.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch %s: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// RenderError marks a rendering collaborator failure. The acquirer falls back
// to the static content already fetched.
type RenderError struct {
	URL string
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render %s: %v", e.URL, e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

// ExtractionError marks a per-page extraction failure. The page contributes
// an empty candidate list.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string { return fmt.Sprintf("extract %s: %v", e.URL, e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }

// CacheError marks a cache backend failure. The store degrades to disabled
// for the rest of the run instead of failing the pipeline.
type CacheError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheError) Error() string { return fmt.Sprintf("cache %s %s: %v", e.Op, e.Key, e.Err) }
func (e *CacheError) Unwrap() error { return e.Err }
