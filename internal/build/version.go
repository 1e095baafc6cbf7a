package build

var (
	LongVersion  = "unknown"
	ShortVersion = "unknown"
)
