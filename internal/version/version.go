package version

var (
	AppName     = "Moodscope"
	AppFullName = "Moodscope Mood Scoring & Calibration Engine"
	AppVersion  = "0.3.0"
)
