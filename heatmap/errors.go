package heatmap

import "fmt"

// RenderError reports that a heatmap could not be laid out or drawn.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("heatmap %s: %v", e.Op, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
