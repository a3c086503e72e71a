package doctor

import (
	"context"
	"os"
	"path/filepath"
)

// DataDirCheck verifies the data directory exists and is writable.
type DataDirCheck struct {
	dir string
}

// NewDataDirCheck creates a new data directory check.
func NewDataDirCheck(dir string) *DataDirCheck {
	return &DataDirCheck{dir: dir}
}

func (c *DataDirCheck) Name() string {
	return "Data Directory"
}

func (c *DataDirCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	info, err := os.Stat(c.dir)
	switch {
	case os.IsNotExist(err):
		result.Items = append(result.Items, CheckItem{
			Label:   "exists",
			Status:  StatusWarn,
			Detail:  c.dir + " does not exist yet (created on first run)",
			Fixable: true,
		})
		return result
	case err != nil:
		result.Items = append(result.Items, CheckItem{
			Label:  "exists",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	case !info.IsDir():
		result.Items = append(result.Items, CheckItem{
			Label:  "exists",
			Status: StatusFail,
			Detail: c.dir + " is not a directory",
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "exists",
		Status: StatusPass,
		Detail: c.dir,
	})

	probe := filepath.Join(c.dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "writable",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}
	_ = os.Remove(probe)

	result.Items = append(result.Items, CheckItem{
		Label:  "writable",
		Status: StatusPass,
	})

	return result
}
