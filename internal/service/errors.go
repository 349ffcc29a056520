package service

import (
	"errors"
	"fmt"
)

var (
	// ErrRoomNotFound is returned when the room does not exist.
	ErrRoomNotFound = errors.New("room not found")

	// ErrUserNotFound is returned when the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRoomNotOpen is returned when joining a room that is not recruiting.
	ErrRoomNotOpen = errors.New("room not open")

	// ErrRoomFull is returned when the room has no free seats.
	ErrRoomFull = errors.New("room full")

	// ErrAlreadyJoined is returned when the user already holds a seat.
	ErrAlreadyJoined = errors.New("already joined")

	// ErrSeatTaken is returned when the requested seat is occupied.
	ErrSeatTaken = errors.New("seat taken")

	// ErrSeatOutOfRange is returned when the seat number exceeds capacity.
	ErrSeatOutOfRange = errors.New("seat number exceeds room capacity")

	// ErrHostCannotLeave is returned when the host tries to leave while other
	// participants remain.
	ErrHostCannotLeave = errors.New("host cannot leave while participants remain")

	// ErrAlreadyClosed is returned when mutating a terminal room.
	ErrAlreadyClosed = errors.New("room already closed")

	// ErrSeatsLocked is returned when seat membership changes after deposits
	// were held.
	ErrSeatsLocked = errors.New("seats are locked once deposits are held")

	// ErrInvalidStageTransition is returned when the target stage is not
	// reachable from the current one.
	ErrInvalidStageTransition = errors.New("invalid stage transition")

	// ErrInsufficientBalance is returned when a debit would push the wallet
	// below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrEstimatedFareMissing is returned when settlement runs on a room with
	// no fare estimate.
	ErrEstimatedFareMissing = errors.New("estimated fare missing")

	// ErrDepositNotCollected is returned when finalize runs before the
	// deposit hold phase.
	ErrDepositNotCollected = errors.New("deposit not collected yet")

	// ErrInvalidTxKind is returned when a charge names an unknown ledger kind.
	ErrInvalidTxKind = errors.New("unknown wallet transaction kind")

	// ErrForbidden is returned when a non-host attempts a host-only action.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidAmount is returned when a wallet amount is not positive.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidCapacity is returned when capacity is outside 1-6.
	ErrInvalidCapacity = errors.New("capacity must be between 1 and 6")

	// ErrInvalidRating is returned when a review rating is outside 1-5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrNotParticipant is returned when the user holds no seat in the room.
	ErrNotParticipant = errors.New("not participating in this room")
)

// MemberDebitError reports which member's wallet failed during a multi-member
// settlement phase, so the caller can see who needs a top-up before retrying
// the whole operation.
type MemberDebitError struct {
	UserID string
	Err    error
}

func (e *MemberDebitError) Error() string {
	return fmt.Sprintf("member %s: %v", e.UserID, e.Err)
}

func (e *MemberDebitError) Unwrap() error { return e.Err }
