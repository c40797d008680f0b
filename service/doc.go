// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package service implements the party operations on top of a Store.

# Motto

Propose, Vote and Finalize mutate proposals and votes. Every Vote runs
AutoFinalize, which hands the current state to consensus.Decide and, on a
winner, runs the finalize sequence:

 1. set the party motto (only while it is unset)
 2. mark the winning proposal finalized (only while none is)
 3. deactivate every proposal of the party

The writes are not transactional. A failure returns *FinalizeError naming
the step, and the next AutoFinalize pass completes the remaining writes.
A finalize that finds the motto already set is a no-op.

# Morale

Morale is recomputed after each mutation and persisted on the party.
Recompute failures are logged at Warn and never fail the operation.
MoraleSettings never fails and falls back to morale.DefaultSettings.

# Assessment

SubmitAnswers appends to the answer log. FinishAssessment derives
character sheets with stats.Derive once every eligible member is finished.
*/
package service
