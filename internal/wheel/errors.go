package wheel

// WheelError is a configuration error reported by New
type WheelError string

// Error implements the error interface
func (e WheelError) Error() string {
	return string(e)
}

const (
	ErrNilConfig            WheelError = "config cannot be nil"
	ErrNilTable             WheelError = "slice table cannot be nil"
	ErrEmptyCatalog         WheelError = "prize catalog cannot be empty"
	ErrEmptySliceTable      WheelError = "slice table cannot be empty"
	ErrNegativeWeight       WheelError = "prize weight cannot be negative"
	ErrInvalidSliceCount    WheelError = "slice count must be positive"
	ErrSliceCountMismatch   WheelError = "slice count does not match slice table"
	ErrTweakTooLarge        WheelError = "stop tweak must be smaller than half a slice"
	ErrInvalidTurns         WheelError = "extra turns must satisfy 1 <= min <= max"
	ErrInvalidDuration      WheelError = "spin duration must be positive"
	ErrNilPolicy            WheelError = "selection policy cannot be nil"
	ErrFixedSliceOutOfRange WheelError = "fixed slice index is out of range"
	ErrNilClock             WheelError = "clock cannot be nil"
	ErrNilRandom            WheelError = "random source cannot be nil"
	ErrUnknownPolicy        WheelError = "unknown selection policy"
)
