package dpkg

import (
	"fmt"
	"runtime"
)

// Architecture is a Debian architecture name as found in the Architecture
// field and in .deb file names
type Architecture string

const (
	ArchAmd64    Architecture = "amd64"
	ArchI386     Architecture = "i386"
	ArchArm64    Architecture = "arm64"
	ArchArmhf    Architecture = "armhf"
	ArchPpc64el  Architecture = "ppc64el"
	ArchS390x    Architecture = "s390x"
	ArchMips64el Architecture = "mips64el"
	ArchRiscv64  Architecture = "riscv64"
	ArchAll      Architecture = "all" // Architecture-independent
)

// goArch maps GOARCH to the Debian port running it. 32-bit ARM is assumed
// to be armhf.
var goArch = map[string]Architecture{
	"amd64":    ArchAmd64,
	"386":      ArchI386,
	"arm64":    ArchArm64,
	"arm":      ArchArmhf,
	"ppc64le":  ArchPpc64el,
	"s390x":    ArchS390x,
	"mips64le": ArchMips64el,
	"riscv64":  ArchRiscv64,
}

// DetectArchitecture returns the Debian architecture of the running binary
func DetectArchitecture() (Architecture, error) {
	if a, ok := goArch[runtime.GOARCH]; ok {
		return a, nil
	}
	return "", fmt.Errorf("unsupported architecture: %s", runtime.GOARCH)
}

// Accepts reports whether a package built for other can be installed on a.
// An empty Architecture accepts everything.
func (a Architecture) Accepts(other Architecture) bool {
	return a == "" || other == a || other == ArchAll
}

// String returns the string representation of the architecture
func (a Architecture) String() string {
	return string(a)
}
