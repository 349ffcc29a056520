package domain

import "time"

// RideStage represents the fine-grained dispatch progress of a room's ride.
type RideStage string

const (
	RideStageIdle           RideStage = "idle"
	RideStageRequesting     RideStage = "requesting"
	RideStageDeeplinkReady  RideStage = "deeplink_ready"
	RideStageDispatching    RideStage = "dispatching"
	RideStageDriverAssigned RideStage = "driver_assigned"
	RideStageArriving       RideStage = "arriving"
	RideStageOnboard        RideStage = "onboard"
	RideStageCompleted      RideStage = "completed"
	RideStageCanceled       RideStage = "canceled"
)

// rideStageTransitions is the allowed-transition table. A stage update equal to
// the current stage is always accepted as an idempotent no-op and is not listed.
var rideStageTransitions = map[RideStage][]RideStage{
	RideStageIdle:           {RideStageRequesting, RideStageDeeplinkReady},
	RideStageRequesting:     {RideStageDeeplinkReady, RideStageDispatching},
	RideStageDeeplinkReady:  {RideStageDispatching, RideStageCanceled},
	RideStageDispatching:    {RideStageDriverAssigned, RideStageCanceled},
	RideStageDriverAssigned: {RideStageArriving, RideStageCanceled},
	RideStageArriving:       {RideStageOnboard, RideStageCanceled},
	RideStageOnboard:        {RideStageCompleted, RideStageCanceled},
	RideStageCompleted:      {},
	RideStageCanceled:       {},
}

// CanTransition reports whether target is reachable from current in one step.
func (s RideStage) CanTransition(target RideStage) bool {
	for _, next := range rideStageTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the stage accepts no further transitions.
func (s RideStage) IsTerminal() bool {
	return s == RideStageCompleted || s == RideStageCanceled
}

// CanPromoteToDriverAssigned reports whether the driver-assignment shortcut may
// skip ahead from this stage. This is the single sanctioned shortcut, used when
// an external dispatch confirmation already names a driver.
func (s RideStage) CanPromoteToDriverAssigned() bool {
	switch s {
	case RideStageIdle, RideStageRequesting, RideStageDeeplinkReady, RideStageDispatching:
		return true
	}
	return false
}

// ValidRideStage reports whether the given string names a known stage.
func ValidRideStage(s string) bool {
	_, ok := rideStageTransitions[RideStage(s)]
	return ok
}

// RoomRideState is the one-per-room dispatch record, created lazily on the
// first ride action and mutated only through validated stage transitions.
type RoomRideState struct {
	RoomID       string
	Stage        RideStage
	DeeplinkURL  string
	PickupLabel  string
	PickupLat    float64
	PickupLng    float64
	DropoffLabel string
	DropoffLat   float64
	DropoffLng   float64
	DriverName   string
	CarModel     string
	CarNumber    string
	Note         string
	UpdatedByID  string
	UpdatedAt    time.Time
}
