// Package validation checks user supplied settings before a run starts.
package validation

import (
	"fmt"
	"os"
	"strings"
)

// ReportFormats lists the supported batch report formats.
var ReportFormats = []string{"csv", "json", "yaml", "xlsx"}

// IsValidReportFormat checks if the given report format is supported.
func IsValidReportFormat(format string) error {
	for _, f := range ReportFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported report format: %s. Supported formats are %s",
		format, strings.Join(ReportFormats, ", "))
}

// IsValidFilePermissions checks if the given file mode is valid for files
// holding credentials such as .env or config.yaml.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode&0007 != 0 { // Check if 'others' have any permissions
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600 or 0640", mode.String())
	}
	return nil
}

// CheckSecretFile returns an error when path is readable by anyone. A missing
// file is not an error.
func CheckSecretFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if err := IsValidFilePermissions(info.Mode().Perm()); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
