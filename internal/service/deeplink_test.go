package service

import (
	"net/url"
	"strings"
	"testing"
)

func TestBuildUberDeeplink(t *testing.T) {
	link := BuildUberDeeplink(DeeplinkInput{
		PickupLabel:  "Gangnam Station",
		PickupLat:    37.497942,
		PickupLng:    127.027621,
		DropoffLabel: "Incheon Airport T1",
		DropoffLat:   37.449288,
		DropoffLng:   126.450858,
	})

	if !strings.HasPrefix(link, "https://m.uber.com/ul/?") {
		t.Fatalf("unexpected link prefix: %s", link)
	}

	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	q := parsed.Query()

	if q.Get("action") != "setPickup" {
		t.Errorf("action = %q, want setPickup", q.Get("action"))
	}
	if q.Get("pickup[latitude]") != "37.497942" {
		t.Errorf("pickup latitude = %q", q.Get("pickup[latitude]"))
	}
	if q.Get("dropoff[longitude]") != "126.450858" {
		t.Errorf("dropoff longitude = %q", q.Get("dropoff[longitude]"))
	}
	if q.Get("pickup[nickname]") != "Gangnam Station" {
		t.Errorf("pickup nickname = %q", q.Get("pickup[nickname]"))
	}
}

func TestBuildUberDeeplink_OmitsEmptyLabels(t *testing.T) {
	link := BuildUberDeeplink(DeeplinkInput{
		PickupLat:  37.5,
		PickupLng:  127.0,
		DropoffLat: 37.4,
		DropoffLng: 126.4,
	})

	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	q := parsed.Query()

	if _, ok := q["pickup[nickname]"]; ok {
		t.Error("empty pickup label must be omitted")
	}
	if _, ok := q["dropoff[nickname]"]; ok {
		t.Error("empty dropoff label must be omitted")
	}
}

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		amount, parts, want int64
	}{
		{30000, 3, 10000},
		{10000, 3, 3334},
		{1, 4, 1},
		{0, 4, 0},
		{25000, 4, 6250},
	}
	for _, tc := range tests {
		if got := ceilDiv(tc.amount, tc.parts); got != tc.want {
			t.Errorf("ceilDiv(%d, %d) = %d, want %d", tc.amount, tc.parts, got, tc.want)
		}
	}
}
