package fix

import (
	"cmp"
	"fmt"
	"slices"
)

// ValidationError describes an edit whose range does not fit the content.
type ValidationError struct {
	Edit   TextEdit
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.StartOffset, e.Edit.EndOffset, e.Reason)
}

// ConflictError describes two overlapping edits.
type ConflictError struct {
	First  TextEdit
	Second TextEdit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.First.StartOffset, e.First.EndOffset,
		e.Second.StartOffset, e.Second.EndOffset)
}

// ValidateEdits checks every edit range against contentLen and returns the
// first problem found.
func ValidateEdits(edits []TextEdit, contentLen int) error {
	for _, e := range edits {
		switch {
		case e.StartOffset < 0:
			return &ValidationError{Edit: e, Reason: "start offset is negative"}
		case e.EndOffset < e.StartOffset:
			return &ValidationError{Edit: e, Reason: "end offset is before start offset"}
		case e.EndOffset > contentLen:
			return &ValidationError{
				Edit:   e,
				Reason: fmt.Sprintf("end offset %d exceeds content length %d", e.EndOffset, contentLen),
			}
		}
	}
	return nil
}

// SortEdits orders edits by start offset, then end offset. The sort is stable
// so insertions at the same offset keep their relative order.
func SortEdits(edits []TextEdit) {
	slices.SortStableFunc(edits, func(a, b TextEdit) int {
		return cmp.Or(
			cmp.Compare(a.StartOffset, b.StartOffset),
			cmp.Compare(a.EndOffset, b.EndOffset),
		)
	})
}

// DetectConflicts returns the first pair of overlapping edits in a sorted
// slice. Edits that only touch at a boundary do not overlap.
func DetectConflicts(edits []TextEdit) error {
	for i := 1; i < len(edits); i++ {
		if edits[i].StartOffset < edits[i-1].EndOffset {
			return &ConflictError{First: edits[i-1], Second: edits[i]}
		}
	}
	return nil
}

// PrepareEdits validates edits and returns a sorted copy ready for ApplyEdits.
func PrepareEdits(edits []TextEdit, contentLen int) ([]TextEdit, error) {
	if len(edits) == 0 {
		return nil, nil
	}
	if err := ValidateEdits(edits, contentLen); err != nil {
		return nil, err
	}

	sorted := slices.Clone(edits)
	SortEdits(sorted)

	if err := DetectConflicts(sorted); err != nil {
		return nil, err
	}
	return sorted, nil
}
