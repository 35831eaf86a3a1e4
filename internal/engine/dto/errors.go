package dto

import (
	"fmt"
	"time"
)

// MissingSignalError reports that a mandatory input (price or model
// probability) was absent for an asset. The asset is excluded from the run;
// the run itself continues.
type MissingSignalError struct {
	AssetCode string
	Field     string
}

func (e *MissingSignalError) Error() string {
	return fmt.Sprintf("missing mandatory signal %q for asset %s", e.Field, e.AssetCode)
}

// StaleDataError reports that an input is older than the allowed freshness
// window. Stale assets do not participate in new-entry decisions and open
// positions are held rather than force-closed.
type StaleDataError struct {
	AssetCode string
	Field     string
	Age       time.Duration
	MaxAge    time.Duration
}

func (e *StaleDataError) Error() string {
	return fmt.Sprintf("stale %s for asset %s: age %s exceeds %s", e.Field, e.AssetCode, e.Age, e.MaxAge)
}
