package pens

import (
	"net/url"
	"strings"
)

const penIDPrefix = "room_"

// PenID strips the room_ prefix the dashboard uses for pen ids.
func PenID(penID string) string {
	return strings.TrimPrefix(penID, penIDPrefix)
}

// PensTarget is the live dashboard feed for token, or "" without a session.
func PensTarget(wsBase, token string) string {
	if token == "" {
		return ""
	}
	return strings.TrimRight(wsBase, "/") + "/ws/pens?token=" + url.QueryEscape(token)
}

// PenTarget is the live feed of one pen, or "" without a session or pen.
func PenTarget(wsBase, penID, token string) string {
	id := PenID(penID)
	if token == "" || id == "" {
		return ""
	}
	return strings.TrimRight(wsBase, "/") + "/ws/pens/" + url.PathEscape(id) + "?token=" + url.QueryEscape(token)
}
