package model

// UpdateEndpoints holds the primary and backup download URL templates.
// Templates carry {version} and {platform} placeholders, substituted with
// the installed version marker and the host platform bucket.
type UpdateEndpoints struct {
	PrimaryURLTemplate string `json:"primaryUrlTemplate"`
	BackupURLTemplate  string `json:"backupUrlTemplate"`
}

// UpdateTarget describes where updates come from for one product.
// The production instance is embedded in the binary and validated against
// schemas/update-target.schema.json at load time.
type UpdateTarget struct {
	Schema             string          `json:"schema"`
	Version            int             `json:"version"`
	Product            string          `json:"product"`
	Endpoints          UpdateEndpoints `json:"endpoints"`
	ArchiveName        string          `json:"archiveName"`
	CheckIntervalHours int             `json:"checkIntervalHours"`
}

// Manifest is the JSON entry a release archive carries alongside its
// payload files. The embedded signature lives in the archive comment, not
// here, so signing never changes entry checksums.
type Manifest struct {
	Version string `json:"version"`
}
