package version

// Set at build time:
//
//	go build -ldflags "-X shop-crud/internal/version.Version=v1.0.0 -X shop-crud/internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
