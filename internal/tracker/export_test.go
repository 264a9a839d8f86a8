package tracker

// SetBeforeSave installs a hook that runs just before each note write.
func SetBeforeSave(t *Tracker, hook func(path string)) { t.beforeSave = hook }
