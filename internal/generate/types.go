package generate

import (
	"fmt"

	"github.com/ashwanth2007/TheVibeCoders/internal/vfs"
)

// Attachment kinds accepted alongside an instruction.
const (
	AttachmentImage = "image"
	AttachmentText  = "text"
)

// Attachment is extra context for a generation request: an image data URL
// (mockup, screenshot) or a pasted text blob.
type Attachment struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
	Data string `json:"data"`
}

// Request is one generation call: the user's instruction, the current
// project files when iterating on an existing app, and attachments.
type Request struct {
	Instruction  string       `json:"instruction"`
	CurrentFiles vfs.FileSet  `json:"currentFiles,omitempty"`
	Attachments  []Attachment `json:"attachments,omitempty"`
	Selected     string       `json:"selected,omitempty"` // outerHTML of a picked element, if any
}

// Response is the structured result: a human-readable plan and the
// complete proposed file set. Files is always the whole project, never a
// diff.
type Response struct {
	Plan  string      `json:"plan"`
	Files vfs.FileSet `json:"files"`
}

// ResponseError reports a failed or malformed generation: the call
// errored, timed out, or returned something that is not a valid file
// list. It never partially applies; the host shows it as a dismissible
// notice and history stays untouched.
type ResponseError struct {
	Reason string
	Err    error
}

func (e *ResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("generation failed: %s", e.Reason)
}

func (e *ResponseError) Unwrap() error { return e.Err }
