package repository

import "errors"

// ErrSlotFull is returned by InsertWithinCapacity when the slot cannot take
// the booking's seats.
var ErrSlotFull = errors.New("slot full")

// ErrDuplicateCode is returned when a confirmation code is already taken.
var ErrDuplicateCode = errors.New("duplicate confirmation code")
