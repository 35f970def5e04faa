package textbuf

// Track follows a span of text through a sequence of ops and returns where
// it ends up. The second result is false when the span's text vanished
// entirely and nothing took its place.
//
// Rules:
//   - an insert strictly inside the live span grows it;
//   - an insert touching either boundary of the live span does not grow it,
//     but the inserted text is remembered as the span's fallback;
//   - deletes shrink the span and the fallback alike;
//   - if every original code unit of the span is gone at the end, the span
//     moves onto the most recent fallback that still has text.
//
// This mirrors how the document service keeps a comment attached when its
// quoted text is replaced by an insert-then-delete sequence.
func Track(r Range, ops []EditOp) (Range, bool) {
	span := r
	var fallback Range

	for _, op := range ops {
		switch op.Kind {
		case OpInsert:
			n := Len(op.Text)
			p := op.Offset
			touches := !span.IsEmpty() && (p == span.Start || p == span.End)

			fallback = shiftForInsert(fallback, p, n)
			switch {
			case span.Contains(p):
				span.End += n
			case p <= span.Start:
				span.Start += n
				span.End += n
			}
			if touches {
				fallback = Range{Start: p, End: p + n}
			}

		case OpDelete:
			span = shrinkForDelete(span, op.Start, op.End)
			fallback = shrinkForDelete(fallback, op.Start, op.End)
		}
	}

	if !span.IsEmpty() {
		return span, true
	}
	if !fallback.IsEmpty() {
		return fallback, true
	}
	return Range{Start: span.Start, End: span.Start}, false
}

func shiftForInsert(r Range, p, n int) Range {
	if r.IsEmpty() {
		return r
	}
	switch {
	case r.Contains(p):
		r.End += n
	case p <= r.Start:
		r.Start += n
		r.End += n
	}
	return r
}

func shrinkForDelete(r Range, start, end int) Range {
	return Range{Start: mapThroughDelete(r.Start, start, end), End: mapThroughDelete(r.End, start, end)}
}

func mapThroughDelete(x, start, end int) int {
	switch {
	case x <= start:
		return x
	case x <= end:
		return start
	default:
		return x - (end - start)
	}
}

// MapOffset follows a boundary offset through ops. An insert at the offset
// lands before it, so the boundary moves right; a delete covering it pulls
// it back to the delete start.
func MapOffset(x int, ops []EditOp) int {
	for _, op := range ops {
		switch op.Kind {
		case OpInsert:
			if op.Offset <= x {
				x += Len(op.Text)
			}
		case OpDelete:
			x = mapThroughDelete(x, op.Start, op.End)
		}
	}
	return x
}
