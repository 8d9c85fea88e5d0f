package ports

// Navigator sanitizes client navigation. Replace must overwrite the current
// history entry rather than push a new one, so that back-navigation cannot
// return to the denied location.
type Navigator interface {
	Replace(path string)
	// Reload truncates history to a single entry at path and forces a full
	// reload of the client.
	Reload(path string)
}
