package sequencer

import (
	"errors"
	"fmt"

	"github.com/danieljhkim/docmerge/internal/textbuf"
)

// ErrVerification indicates a plan that does not do what it claims.
var ErrVerification = errors.New("plan verification failed")

// ExpectedText returns buf[:s] + replacement + buf[e:] for the plan's range.
func ExpectedText(buf textbuf.Buffer, plan *MutationPlan) (string, error) {
	out, err := textbuf.Replace(buf, plan.Range, plan.Replacement)
	if err != nil {
		return "", err
	}
	return out.String(), nil
}

// Verify dry-runs plan against buf and checks that:
//   - every op applies in sequence;
//   - the final text equals ExpectedText;
//   - for preserving plans, every state before the last op still holds at
//     least one original code unit of the target range;
//   - for preserving plans, the target range tracks onto the replacement.
//
// It returns the resulting buffer.
func Verify(buf textbuf.Buffer, plan *MutationPlan) (textbuf.Buffer, error) {
	if len(plan.Ops) == 0 {
		return buf, fmt.Errorf("%w: plan has no ops", ErrVerification)
	}
	if !plan.Range.Within(buf.Len()) {
		return buf, fmt.Errorf("%w: range %s outside buffer of length %d", ErrVerification, plan.Range, buf.Len())
	}

	got, err := textbuf.ApplyOps(buf, plan.Ops)
	if err != nil {
		return buf, fmt.Errorf("%w: %w", ErrVerification, err)
	}

	want, err := ExpectedText(buf, plan)
	if err != nil {
		return buf, fmt.Errorf("%w: %w", ErrVerification, err)
	}
	if got.String() != want {
		return buf, fmt.Errorf("%w: result text differs from expected replacement", ErrVerification)
	}

	if !preserving(plan) {
		return got, nil
	}

	if idx, ok := firstOrphaningOp(buf.Len(), plan); !ok {
		return buf, fmt.Errorf("%w: op %d (%s) removes the last original character of %s",
			ErrVerification, idx, plan.Ops[idx], plan.Range)
	}

	tracked, ok := textbuf.Track(plan.Range, plan.Ops)
	if !ok || tracked != plan.ResultRange() {
		return buf, fmt.Errorf("%w: annotation range tracks to %s, expected %s",
			ErrVerification, tracked, plan.ResultRange())
	}
	return got, nil
}

func preserving(plan *MutationPlan) bool {
	return !plan.Orphaned && !plan.Range.IsEmpty() && plan.Replacement != ""
}

// firstOrphaningOp replays the ops over a tag per code unit: true for units
// of the original target range, false for anything else. It reports the
// index of the first non-final op after which no tagged unit remains.
func firstOrphaningOp(n int, plan *MutationPlan) (int, bool) {
	tags := make([]bool, n)
	for i := plan.Range.Start; i < plan.Range.End; i++ {
		tags[i] = true
	}

	for i, op := range plan.Ops[:len(plan.Ops)-1] {
		switch op.Kind {
		case textbuf.OpInsert:
			ins := make([]bool, textbuf.Len(op.Text))
			next := make([]bool, 0, len(tags)+len(ins))
			next = append(next, tags[:op.Offset]...)
			next = append(next, ins...)
			tags = append(next, tags[op.Offset:]...)
		case textbuf.OpDelete:
			tags = append(tags[:op.Start:op.Start], tags[op.End:]...)
		}
		if !anyTrue(tags) {
			return i, false
		}
	}
	return -1, true
}

func anyTrue(tags []bool) bool {
	for _, t := range tags {
		if t {
			return true
		}
	}
	return false
}
