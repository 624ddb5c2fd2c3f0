// Package version reports the build of the running binary. The values are
// set at link time and fall back to the module's VCS stamp:
//
//	go build -ldflags "-X github.com/kbukum/ductline/version.Version=1.4.0"
package version
