// Package all registers every built-in exporter. Import it for side effects.
package all

import (
	_ "nypd311/internal/export/csv"
	_ "nypd311/internal/export/sqlite"
)
