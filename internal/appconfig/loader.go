package appconfig

// Loader loads a target struct and optionally watches its source for
// changes, calling back when a reload is warranted.
type Loader interface {
	Load(target any) error
	Watch(callback func()) error
}
