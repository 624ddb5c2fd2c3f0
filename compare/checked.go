package compare

import "github.com/kbukum/ductline/errors"

// CheckedBytesComparator is the bounds-checked variant of BytesComparator,
// meant for debugging suspect spill files. It validates both frames before
// reading them and reports a FRAMING_VIOLATION instead of reading past the
// buffer. On error neither cursor moves.
type CheckedBytesComparator struct{}

// CompareChecked orders the frames at the cursors of lhs and rhs.
func (CheckedBytesComparator) CompareChecked(lhs, rhs *Buffer) (int, error) {
	if lhs == rhs {
		return 0, nil
	}
	if err := ValidateFrame(lhs); err != nil {
		return 0, err
	}
	if err := ValidateFrame(rhs); err != nil {
		return 0, err
	}
	return compareFrames(lhs, rhs), nil
}

// ValidateFrame checks that a complete frame starts at the cursor of b.
func ValidateFrame(b *Buffer) error {
	have := b.Remaining()
	if b.pos < 0 || have < FrameHeaderSize {
		return errors.FramingViolation(b.pos, FrameHeaderSize, max(have, 0))
	}
	need := FrameHeaderSize + FrameLen(b.data, b.pos)
	if need > have || need < FrameHeaderSize {
		return errors.FramingViolation(b.pos, need, have)
	}
	return nil
}

func mustValidate(b *Buffer) {
	if err := ValidateFrame(b); err != nil {
		panic(err)
	}
}
