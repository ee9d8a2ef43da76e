package streaming

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteSSE writes one `data: <json>\n\n` frame. The trailing blank line is
// the frame terminator clients split on (spec §6: "the \n\n terminator is
// required").
func WriteSSE(w io.Writer, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("streaming: marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", body)
	return err
}
