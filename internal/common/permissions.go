package common

// File modes used when writing to disk
const (
	// FilePermissionSecure is for files that may hold credentials
	FilePermissionSecure = 0600

	// FilePermissionNormal is for model files and other outputs
	FilePermissionNormal = 0644

	DirPermissionSecure = 0700
	DirPermissionNormal = 0755
)
