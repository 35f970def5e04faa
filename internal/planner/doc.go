// Package planner handles the planning phase of content insertion.
//
// The planner chooses where new content goes so that no located annotation
// range is split by the insert. It works on a snapshot of the buffer and the
// ranges the locator resolved for it, and never touches the document.
//
// Key responsibilities:
//   - Relocate an unsafe insertion offset forward past the ranges it would split
//   - Report every range the requested offset would have split
//   - Hand back the target range unchanged in update mode
//   - Resolve a named section to an insertion offset, falling back to the end
//     of the document when the section does not exist
package planner
