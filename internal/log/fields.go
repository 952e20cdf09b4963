package log

// FieldComponent tags every record with the emitting component.
const FieldComponent = "component"

// Component names used by the binaries.
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
)
