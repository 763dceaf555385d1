package config

var (
	Version    string = "dev"
	CommitHash string = ""
)

// IsProduction reports whether this is a release build.
func IsProduction() bool {
	return Version == "release" && CommitHash != ""
}

// IsDevelopment reports whether this is a development build.
func IsDevelopment() bool {
	return Version == "dev"
}
