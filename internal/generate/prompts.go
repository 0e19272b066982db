package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ashwanth2007/TheVibeCoders/internal/llm"
)

// systemPrompt pins the output contract the resolver depends on: a flat
// static project with index.html as the entry, sibling files referenced by
// literal relative paths, and an assets/ marker when no asset exists.
const systemPrompt = `You are a web application generator. Given a description, produce a complete multi-file static web project.

Respond with a single JSON object, no surrounding prose:
{
  "plan": "<markdown summary of what you built or changed>",
  "files": [
    {"path": "index.html", "content": "..."},
    {"path": "style.css", "content": "..."},
    {"path": "script.js", "content": "..."},
    {"path": "assets/.gitkeep", "content": ""}
  ]
}

Rules:
- The entry document is always index.html.
- Reference sibling stylesheets and scripts with literal relative paths, e.g. <link rel="stylesheet" href="style.css"> and <script src="script.js"></script>.
- Additional pages are additional .html files; link to them with relative hrefs.
- Include assets/.gitkeep when the project has no other asset files.
- "files" must always contain the COMPLETE project, including unchanged files. Never respond with a partial file list or a diff.
- Paths use forward slashes and are relative to the project root.`

// editPreamble frames an iteration on an existing project.
const editPreamble = `The user is editing an existing project. The current files are provided below as JSON. Apply the instruction and return the complete updated project.`

// buildMessages assembles the conversation for one generation call.
func buildMessages(req Request) []llm.Message {
	messages := []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}

	var sb strings.Builder
	if len(req.CurrentFiles) > 0 {
		sb.WriteString(editPreamble)
		sb.WriteString("\n\nCurrent files:\n")
		current, _ := json.Marshal(req.CurrentFiles)
		sb.Write(current)
		sb.WriteString("\n\n")
	}
	if req.Selected != "" {
		fmt.Fprintf(&sb, "The user selected this element in the preview; the instruction refers to it:\n%s\n\n", req.Selected)
	}
	for _, att := range req.Attachments {
		if att.Kind == AttachmentText {
			fmt.Fprintf(&sb, "Attached text (%s):\n%s\n\n", att.Name, att.Data)
		}
	}
	sb.WriteString("Instruction: ")
	sb.WriteString(req.Instruction)

	user := llm.Message{Role: llm.RoleUser, Content: sb.String()}
	for _, att := range req.Attachments {
		if att.Kind == AttachmentImage {
			user.Images = append(user.Images, att.Data)
		}
	}
	return append(messages, user)
}
