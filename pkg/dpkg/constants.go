package dpkg

const (
	// DefaultStatusFile is the dpkg status database
	DefaultStatusFile = "/var/lib/dpkg/status"

	// DefaultDocDir holds per-package documentation, including copyright files
	DefaultDocDir = "/usr/share/doc"

	// DefaultArchiveDir is the APT download cache
	DefaultArchiveDir = "/var/cache/apt/archives"

	// DefaultCommonLicensesDir holds the full texts of common licenses
	DefaultCommonLicensesDir = "/usr/share/common-licenses"

	// QueryFormat is the dpkg-query output format understood by ParseQuery
	QueryFormat = "${db:Status-Abbrev}\t${Package}\t${Version}\t${Architecture}\t${binary:Summary}\n"
)

// Desired action flags (first status column of dpkg -l)
const (
	WantUnknown   = 'u'
	WantInstall   = 'i'
	WantHold      = 'h'
	WantDeinstall = 'r'
	WantPurge     = 'p'
)

// Package state flags (second status column of dpkg -l)
const (
	StateNotInstalled    = 'n'
	StateConfigFiles     = 'c'
	StateHalfInstalled   = 'H'
	StateUnpacked        = 'U'
	StateHalfConfigured  = 'F'
	StateTriggersAwaited = 'W'
	StateTriggersPending = 't'
	StateInstalled       = 'i'
)

// installedFamily lists the lower-cased state flags kept in a report
const installedFamily = "iufhwt"
