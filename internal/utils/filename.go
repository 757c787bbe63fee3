package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// StoredImageName builds a collision-free storage name:
// image-<unix millis>-<12 random hex chars><ext>. Only the extension of the
// client filename is kept, and only if it is short and alphanumeric.
func StoredImageName(originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(originalName, `\`, "/"))))
	if !extPattern.MatchString(ext) {
		ext = ""
	}

	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("image-%d-%s%s", now.UnixMilli(), random, ext)
}
