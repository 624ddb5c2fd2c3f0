//go:build !ductline_checked

package compare

// checkedFraming turns on frame validation inside every stream comparison.
// Build with -tags ductline_checked to enable it.
const checkedFraming = false
