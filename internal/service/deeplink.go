package service

import (
	"fmt"
	"net/url"
	"strconv"
)

// DeeplinkInput carries the resolved route for which a dispatch deeplink is
// built. Labels are optional; coordinates are required.
type DeeplinkInput struct {
	PickupLabel  string
	PickupLat    float64
	PickupLng    float64
	DropoffLabel string
	DropoffLat   float64
	DropoffLng   float64
}

// BuildUberDeeplink returns the universal-link form of an Uber ride request
// pre-filled with pickup and dropoff. The universal link opens the app when
// installed and falls back to the mobile web flow otherwise.
func BuildUberDeeplink(in DeeplinkInput) string {
	q := url.Values{}
	q.Set("action", "setPickup")
	q.Set("pickup[latitude]", formatCoord(in.PickupLat))
	q.Set("pickup[longitude]", formatCoord(in.PickupLng))
	if in.PickupLabel != "" {
		q.Set("pickup[nickname]", in.PickupLabel)
	}
	q.Set("dropoff[latitude]", formatCoord(in.DropoffLat))
	q.Set("dropoff[longitude]", formatCoord(in.DropoffLng))
	if in.DropoffLabel != "" {
		q.Set("dropoff[nickname]", in.DropoffLabel)
	}
	return fmt.Sprintf("https://m.uber.com/ul/?%s", q.Encode())
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
