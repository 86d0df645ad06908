package controller

import "github.com/aretw0/tgadmin/pkg/domain"

// AllowList is the static set of operator ids allowed to administer the document.
// An empty list allows everyone.
type AllowList struct {
	ids map[int64]struct{}
}

// NewAllowList returns an AllowList holding ids.
func NewAllowList(ids []int64) AllowList {
	a := AllowList{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		a.ids[id] = struct{}{}
	}
	return a
}

// Configured reports whether any id was listed.
func (a AllowList) Configured() bool {
	return len(a.ids) > 0
}

// Allows reports whether the requester of ev may proceed. The sender id is
// checked first; the chat id is accepted too, so a private chat can be
// listed by either.
func (a AllowList) Allows(ev domain.Event) bool {
	if !a.Configured() {
		return true
	}
	if _, ok := a.ids[ev.SenderID]; ok {
		return true
	}
	_, ok := a.ids[ev.ChatID]
	return ok
}
