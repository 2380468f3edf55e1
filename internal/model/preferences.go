package model

const (
	DefaultWorkMinutes       = 25
	DefaultShortBreakMinutes = 5
	DefaultLongBreakMinutes  = 15
	DefaultLongBreakInterval = 4
)

// Preferences are the user's settings as stored on the profile. Durations are
// whole minutes.
type Preferences struct {
	WorkMinutes          int  `json:"work_duration" yaml:"work_duration"`
	ShortBreakMinutes    int  `json:"short_break_duration" yaml:"short_break_duration"`
	LongBreakMinutes     int  `json:"long_break_duration" yaml:"long_break_duration"`
	LongBreakInterval    int  `json:"long_break_interval" yaml:"long_break_interval"`
	NotificationsEnabled bool `json:"notifications_enabled" yaml:"notifications_enabled"`
	SoundEnabled         bool `json:"sound_enabled" yaml:"sound_enabled"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		WorkMinutes:          DefaultWorkMinutes,
		ShortBreakMinutes:    DefaultShortBreakMinutes,
		LongBreakMinutes:     DefaultLongBreakMinutes,
		LongBreakInterval:    DefaultLongBreakInterval,
		NotificationsEnabled: true,
		SoundEnabled:         true,
	}
}

type Profile struct {
	UserID      string      `json:"user_id"`
	Email       string      `json:"email"`
	FullName    *string     `json:"full_name,omitempty"`
	Preferences Preferences `json:"preferences"`
}
