package schedule

// Preset is a partial settings overlay. Nil fields leave the user's current
// value untouched when applied.
type Preset struct {
	ScheduleType   *string
	TimePreference *string
	BatchWindow    *int
	QuietStart     *string
	QuietEnd       *string
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

// presetProfiles is a constant lookup table, not computed.
var presetProfiles = map[string]Preset{
	"default": {
		ScheduleType: strp(TypeImmediate),
		QuietStart:   strp("22:00"),
		QuietEnd:     strp("08:00"),
	},
	"parent_mode": {
		ScheduleType:   strp(TypeCustom),
		TimePreference: strp("20:00"),
		QuietStart:     strp("22:00"),
		QuietEnd:       strp("08:00"),
		BatchWindow:    intp(60),
	},
	"morning_person": {
		ScheduleType:   strp(TypeCustom),
		TimePreference: strp("09:00"),
		QuietStart:     strp("22:00"),
		QuietEnd:       strp("07:00"),
	},
	"work_focus": {
		// Quiet during working hours, batched delivery outside them.
		ScheduleType: strp(TypeBatched),
		QuietStart:   strp("09:00"),
		QuietEnd:     strp("17:00"),
		BatchWindow:  intp(120),
	},
}

// PresetProfiles returns the available preset names and overlays.
func PresetProfiles() map[string]Preset {
	out := make(map[string]Preset, len(presetProfiles))
	for k, v := range presetProfiles {
		out[k] = v
	}
	return out
}

// ApplyPreset overlays a named preset onto settings, overwriting only the
// fields the preset carries, and tags the profile name. Unknown names leave
// settings unchanged.
func ApplyPreset(settings Settings, name string) Settings {
	preset, ok := presetProfiles[name]
	if !ok {
		return settings
	}
	if preset.ScheduleType != nil {
		settings.ScheduleType = *preset.ScheduleType
	}
	if preset.TimePreference != nil {
		settings.TimePreference = *preset.TimePreference
	}
	if preset.BatchWindow != nil {
		settings.BatchWindow = *preset.BatchWindow
	}
	if preset.QuietStart != nil {
		settings.QuietStart = *preset.QuietStart
	}
	if preset.QuietEnd != nil {
		settings.QuietEnd = *preset.QuietEnd
	}
	settings.Profile = name
	return settings
}
