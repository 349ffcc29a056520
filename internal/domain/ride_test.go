package domain

import "testing"

func TestRideStage_CanTransition(t *testing.T) {
	allowed := []struct {
		from, to RideStage
	}{
		{RideStageIdle, RideStageRequesting},
		{RideStageIdle, RideStageDeeplinkReady},
		{RideStageRequesting, RideStageDeeplinkReady},
		{RideStageRequesting, RideStageDispatching},
		{RideStageDeeplinkReady, RideStageDispatching},
		{RideStageDeeplinkReady, RideStageCanceled},
		{RideStageDispatching, RideStageDriverAssigned},
		{RideStageDispatching, RideStageCanceled},
		{RideStageDriverAssigned, RideStageArriving},
		{RideStageDriverAssigned, RideStageCanceled},
		{RideStageArriving, RideStageOnboard},
		{RideStageArriving, RideStageCanceled},
		{RideStageOnboard, RideStageCompleted},
		{RideStageOnboard, RideStageCanceled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	rejected := []struct {
		from, to RideStage
	}{
		{RideStageIdle, RideStageOnboard},
		{RideStageIdle, RideStageCompleted},
		{RideStageRequesting, RideStageDriverAssigned},
		{RideStageDriverAssigned, RideStageCompleted},
		{RideStageOnboard, RideStageArriving}, // no going backwards
		{RideStageCompleted, RideStageCanceled},
		{RideStageCompleted, RideStageIdle},
		{RideStageCanceled, RideStageRequesting},
	}
	for _, tc := range rejected {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestRideStage_TerminalStagesAcceptNothing(t *testing.T) {
	all := []RideStage{
		RideStageIdle, RideStageRequesting, RideStageDeeplinkReady,
		RideStageDispatching, RideStageDriverAssigned, RideStageArriving,
		RideStageOnboard, RideStageCompleted, RideStageCanceled,
	}

	for _, terminal := range []RideStage{RideStageCompleted, RideStageCanceled} {
		if !terminal.IsTerminal() {
			t.Errorf("expected %s to be terminal", terminal)
		}
		for _, target := range all {
			if terminal.CanTransition(target) {
				t.Errorf("terminal stage %s must not transition to %s", terminal, target)
			}
		}
	}
}

func TestRideStage_DriverAssignedShortcut(t *testing.T) {
	for _, stage := range []RideStage{RideStageIdle, RideStageRequesting, RideStageDeeplinkReady, RideStageDispatching} {
		if !stage.CanPromoteToDriverAssigned() {
			t.Errorf("expected shortcut from %s", stage)
		}
	}
	for _, stage := range []RideStage{RideStageDriverAssigned, RideStageArriving, RideStageOnboard, RideStageCompleted, RideStageCanceled} {
		if stage.CanPromoteToDriverAssigned() {
			t.Errorf("shortcut must not apply from %s", stage)
		}
	}
}

func TestValidRideStage(t *testing.T) {
	if !ValidRideStage("onboard") {
		t.Error("expected onboard to be a known stage")
	}
	if ValidRideStage("warping") {
		t.Error("expected warping to be unknown")
	}
	if ValidRideStage("") {
		t.Error("expected empty string to be unknown")
	}
}
