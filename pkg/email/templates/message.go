package templates

import "strings"

// MessageData is the view model of a plain transactional email.
type MessageData struct {
	AppName string
	Subject string
	Body    string
}

// paragraphs splits a text body into blank-line separated blocks, each a list
// of lines.
func paragraphs(body string) [][]string {
	var out [][]string
	for para := range strings.SplitSeq(body, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		out = append(out, strings.Split(para, "\n"))
	}
	return out
}
