//go:build ductline_checked

package compare

const checkedFraming = true
