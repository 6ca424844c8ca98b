package rental

import (
	"strings"
	"time"
)

// Stage identifies which handover an inspection documents.
type Stage string

const (
	StagePickup Stage = "PICKUP"
	StageReturn Stage = "RETURN"
)

// MinInspectionPhotos is the smallest photo set an inspection may carry.
const MinInspectionPhotos = 1

// Inspection is the condition report both parties complete at handover.
// The rental cannot activate or complete without one.
type Inspection struct {
	Stage       Stage
	PhotoKeys   []string
	Notes       string
	Waiver      WaiverSignature
	SubmittedBy string
	SubmittedAt time.Time
}

// WaiverSignature captures the renter's acknowledgment of the item condition.
type WaiverSignature struct {
	SignedBy string
	SignedAt time.Time
}

func (w WaiverSignature) Signed() bool {
	return strings.TrimSpace(w.SignedBy) != "" && !w.SignedAt.IsZero()
}

// Validate enforces the inspection gate. Photos are required at both
// handovers; the signed renter waiver is required only on the pickup report,
// which is the gate before the item changes hands.
func (i *Inspection) Validate() error {
	if i.Stage != StagePickup && i.Stage != StageReturn {
		return ErrIncompleteInspection
	}
	if len(i.PhotoKeys) < MinInspectionPhotos {
		return ErrIncompleteInspection
	}
	for _, key := range i.PhotoKeys {
		if strings.TrimSpace(key) == "" {
			return ErrIncompleteInspection
		}
	}
	if i.Stage == StagePickup && !i.Waiver.Signed() {
		return ErrIncompleteInspection
	}
	if i.SubmittedBy == "" {
		return ErrIncompleteInspection
	}
	return nil
}
