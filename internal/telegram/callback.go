package telegram

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind enumerates the inline-button actions the bot understands.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionDeleteRequest
	ActionDeleteConfirm
	ActionDeleteCancel
	ActionClue
	ActionExplain
	ActionSort
	ActionPage
)

// SortMode is the dictionary ordering a sort button requests.
type SortMode string

const (
	SortLexical  SortMode = "lex"
	SortEaseAsc  SortMode = "ease_asc"
	SortEaseDesc SortMode = "ease_desc"
)

// Action is a decoded callback: one kind plus its bounded payload. Callback
// data is decoded exactly once, here at the boundary; handlers never inspect
// raw strings.
type Action struct {
	Kind ActionKind
	Word string   // delete/clue/explain actions
	Sort SortMode // sort action
	Page int      // page action
}

// Wire prefixes. Telegram caps callback_data at 64 bytes, so payloads stay
// short: the word itself or a small token.
const (
	prefixDeleteRequest = "del_req:"
	prefixDeleteConfirm = "del_conf:"
	prefixDeleteCancel  = "del_can:"
	prefixClue          = "clue:"
	prefixExplain       = "ai:"
	prefixSort          = "sort:"
	prefixPage          = "page:"
)

const maxCallbackBytes = 64

// ParseAction decodes raw callback data into an Action.
func ParseAction(data string) (Action, error) {
	switch {
	case strings.HasPrefix(data, prefixDeleteRequest):
		return Action{Kind: ActionDeleteRequest, Word: data[len(prefixDeleteRequest):]}, nil
	case strings.HasPrefix(data, prefixDeleteConfirm):
		return Action{Kind: ActionDeleteConfirm, Word: data[len(prefixDeleteConfirm):]}, nil
	case strings.HasPrefix(data, prefixDeleteCancel):
		return Action{Kind: ActionDeleteCancel, Word: data[len(prefixDeleteCancel):]}, nil
	case strings.HasPrefix(data, prefixClue):
		return Action{Kind: ActionClue, Word: data[len(prefixClue):]}, nil
	case strings.HasPrefix(data, prefixExplain):
		return Action{Kind: ActionExplain, Word: data[len(prefixExplain):]}, nil
	case strings.HasPrefix(data, prefixSort):
		mode := SortMode(data[len(prefixSort):])
		switch mode {
		case SortLexical, SortEaseAsc, SortEaseDesc:
			return Action{Kind: ActionSort, Sort: mode}, nil
		}
		return Action{}, fmt.Errorf("unknown sort mode %q", data)
	case strings.HasPrefix(data, prefixPage):
		page, err := strconv.Atoi(data[len(prefixPage):])
		if err != nil || page < 1 {
			return Action{}, fmt.Errorf("bad page in callback %q", data)
		}
		return Action{Kind: ActionPage, Page: page}, nil
	}
	return Action{}, fmt.Errorf("unknown callback %q", data)
}

// Encode renders the action back to callback data. Returns false when the
// payload would not fit Telegram's 64-byte limit.
func (a Action) Encode() (string, bool) {
	var data string
	switch a.Kind {
	case ActionDeleteRequest:
		data = prefixDeleteRequest + a.Word
	case ActionDeleteConfirm:
		data = prefixDeleteConfirm + a.Word
	case ActionDeleteCancel:
		data = prefixDeleteCancel + a.Word
	case ActionClue:
		data = prefixClue + a.Word
	case ActionExplain:
		data = prefixExplain + a.Word
	case ActionSort:
		data = prefixSort + string(a.Sort)
	case ActionPage:
		data = prefixPage + strconv.Itoa(a.Page)
	default:
		return "", false
	}
	if len(data) > maxCallbackBytes {
		return "", false
	}
	return data, true
}
