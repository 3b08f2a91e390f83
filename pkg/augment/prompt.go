package augment

import (
	"fmt"

	"github.com/coursedeck/enrich/pkg/course"
	"github.com/coursedeck/enrich/pkg/llm"
)

const systemInstruction = "You write concise metadata for course content. " +
	"Respond with a single JSON object and nothing else."

const userInstructionFormat = `Write metadata for the following course item.

Title: %s
Description: %s

Respond with a JSON object containing exactly two fields:
- "summary": one sentence of at most 140 characters describing the item
- "estimated_minutes": an integer, the minutes a learner needs for the item`

// BuildRequest embeds an item's title and description into the completion
// request, together with the explicit two-field JSON output directive.
func BuildRequest(item *course.Item) llm.Request {
	return llm.Request{
		System: systemInstruction,
		User:   fmt.Sprintf(userInstructionFormat, item.Title, item.SourceText()),
	}
}
