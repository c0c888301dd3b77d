package pathresolver

import "fmt"

// InvalidDrive reports an unresolvable drive-qualified virtual path, e.g.
// "5:/foo" when drive 5 isn't configured.
type InvalidDrive struct {
	Drive int
}

// Error implements error.
func (e *InvalidDrive) Error() string {
	return fmt.Sprintf("pathresolver: invalid drive %d", e.Drive)
}
