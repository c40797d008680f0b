// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package service

import (
	"errors"
	"fmt"
)

var (
	ErrPartyNotFound      = errors.New("party not found")
	ErrNotMember          = errors.New("not a member of this party")
	ErrNotLeader          = errors.New("only the party leader can finalize")
	ErrNotEligible        = errors.New("member is not eligible to vote")
	ErrForbidden          = errors.New("forbidden")
	ErrEmptyText          = errors.New("proposal text is required")
	ErrInvalidProposal    = errors.New("proposal_id is required")
	ErrProposalNotFound   = errors.New("proposal not found")
	ErrProposalClosed     = errors.New("proposal is no longer open")
	ErrAmbiguousProposal  = errors.New("proposal text matches more than one open proposal")
	ErrPartyResolved      = errors.New("party motto is already decided")
	ErrInvalidAnswer      = errors.New("invalid answer")
	ErrDuplicateAnswer    = errors.New("answer already recorded")
	ErrAssessmentFinished = errors.New("assessment already finished")
)

// Finalize steps, in the order they run.
const (
	StepSetMotto       = "set_motto"
	StepMarkFinalized  = "mark_finalized"
	StepCloseProposals = "close_proposals"
)

// FinalizeError reports which write of the finalize sequence failed. Writes
// before Step have been applied; the next finalize pass repairs the rest.
type FinalizeError struct {
	Step string
	Err  error
}

func (e *FinalizeError) Error() string {
	return fmt.Sprintf("finalize %s: %v", e.Step, e.Err)
}

func (e *FinalizeError) Unwrap() error {
	return e.Err
}
