// Package chat implements the dashboard's canned-reply assistant.
//
// There is no language understanding: the first keyword found in the
// lower-cased message picks one of three fixed replies.
package chat

import "strings"

const (
	ReplyReturns  = "Our funds have historically performed well. You can use the calculator above for projected returns!"
	ReplyFunds    = "We offer various categories of funds. You can filter them on the sidebar!"
	ReplyFallback = "I'm here to assist you with mutual fund details and projections."
)

type rule struct {
	keyword string
	reply   string
}

// rules are tested in order; the first match wins.
var rules = []rule{
	{keyword: "return", reply: ReplyReturns},
	{keyword: "fund", reply: ReplyFunds},
}

// Reply returns the canned answer for text.
func Reply(text string) string {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if strings.Contains(lower, r.keyword) {
			return r.reply
		}
	}
	return ReplyFallback
}
